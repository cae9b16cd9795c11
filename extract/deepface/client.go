package deepface

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/corehive/faceid/core"
	"github.com/corehive/faceid/extract"
)

// Client implements extract.Extractor against a DeepFace-compatible
// HTTP service (the /represent endpoint).
type Client struct {
	host     string
	model    string
	detector string
	dim      int
	http     *http.Client
	logger   *slog.Logger
}

var _ extract.Extractor = (*Client)(nil)

// NewClient creates an extractor backed by a DeepFace service.
//
// Returns extract.Extractor to enforce abstraction.
func NewClient(config *extract.Config) (extract.Extractor, error) {
	return newClient(config)
}

func newClient(config *extract.Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Client{
		host:     strings.TrimSuffix(config.Host, "/"),
		model:    config.Model,
		detector: config.Detector,
		dim:      config.Dimension,
		// Per-request deadlines come from ctx; this is a hard backstop
		// for requests issued without one.
		http:   &http.Client{Timeout: 60 * time.Second},
		logger: slog.Default().With("component", "deepface-extractor"),
	}, nil
}

// representRequest is the /represent request body.
type representRequest struct {
	Image            string `json:"img"`
	ModelName        string `json:"model_name"`
	DetectorBackend  string `json:"detector_backend"`
	EnforceDetection bool   `json:"enforce_detection"`
}

// representResponse is the /represent response body.
type representResponse struct {
	Results []struct {
		Embedding      []float64 `json:"embedding"`
		FaceConfidence float64   `json:"face_confidence"`
	} `json:"results"`
	Error string `json:"error"`
}

// Extract sends the image to the service and returns the embedding of
// the most prominent face.
func (c *Client) Extract(ctx context.Context, image []byte) (*extract.Result, error) {
	body, err := json.Marshal(representRequest{
		Image:            "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(image),
		ModelName:        c.model,
		DetectorBackend:  c.detector,
		EnforceDetection: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %w", extract.ErrExtraction, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/represent", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", extract.ErrExtraction, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", extract.ErrExtraction, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", extract.ErrExtraction, err)
	}

	var parsed representResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("%w: decode response (status %d): %w",
			extract.ErrExtraction, resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK {
		// DeepFace reports a failed enforce_detection as a client error
		// with an explanatory message.
		if isNoFaceMessage(parsed.Error) {
			return nil, extract.ErrNoFace
		}
		c.logger.Error("extraction service error",
			"status", resp.StatusCode, "err", parsed.Error)
		return nil, fmt.Errorf("%w: service returned status %d: %s",
			extract.ErrExtraction, resp.StatusCode, parsed.Error)
	}

	if len(parsed.Results) == 0 {
		return nil, extract.ErrNoFace
	}

	result := parsed.Results[0]
	if len(result.Embedding) != c.dim {
		return nil, fmt.Errorf("%w: model returned %d-dim embedding, want %d",
			extract.ErrExtraction, len(result.Embedding), c.dim)
	}

	c.logger.Debug("extracted embedding",
		"dim", len(result.Embedding), "confidence", result.FaceConfidence)

	return &extract.Result{
		Embedding:      core.Embedding(result.Embedding),
		FaceConfidence: result.FaceConfidence,
	}, nil
}

// ModelName identifies the extraction model.
func (c *Client) ModelName() string {
	return c.model
}

// Dimension is the embedding length the model produces.
func (c *Client) Dimension() int {
	return c.dim
}

// isNoFaceMessage reports whether a service error text describes a
// detection failure rather than a model fault.
func isNoFaceMessage(msg string) bool {
	m := strings.ToLower(msg)
	return strings.Contains(m, "face could not be detected") ||
		strings.Contains(m, "no face")
}
