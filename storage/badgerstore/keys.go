package badgerstore

import (
	"fmt"

	"github.com/corehive/faceid/core"
)

// Key prefixes for different data types
const (
	collectionPrefix = "faceemb"
	photoPrefix      = "facephoto"
)

// makeCollectionKey generates the key for an organization's collection.
func makeCollectionKey(orgID string) []byte {
	return []byte(fmt.Sprintf("%s:%s", collectionPrefix, orgID))
}

// makePhotoKey generates the key for an employee's enrollment photo.
// Ids never contain the colon separator (core.ValidateOrganizationID
// and core.ValidateEmployeeID reject it), so the key is unambiguous.
func makePhotoKey(orgID, employeeID string) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s", photoPrefix, orgID, employeeID))
}

// validateIDs guards every photo key. Both ids become key segments
// verbatim, so both must pass the reserved-character rules.
func validateIDs(orgID, employeeID string) error {
	if err := core.ValidateOrganizationID(orgID); err != nil {
		return err
	}
	return core.ValidateEmployeeID(employeeID)
}
