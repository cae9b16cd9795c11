// Package extract defines the face-descriptor extraction contract and its
// implementations. The extractor is an external collaborator: image bytes
// go in, a fixed-length embedding (or "no face") comes out. Everything
// about how the vector is produced is out of scope here.
package extract
