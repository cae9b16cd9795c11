package facerec

import "time"

// Outcome labels the result of a workflow for callers and logs.
type Outcome string

const (
	OutcomeMatched               Outcome = "matched"
	OutcomeNoMatch               Outcome = "no_match"
	OutcomeNoFace                Outcome = "no_face"
	OutcomeNotRegistered         Outcome = "not_registered"
	OutcomeNoRegisteredEmployees Outcome = "no_registered_employees"
	OutcomeVerified              Outcome = "verified"
	OutcomeNotVerified           Outcome = "not_verified"
	OutcomeRegistered            Outcome = "registered"
	OutcomeDeregistered          Outcome = "deregistered"
)

// RegisterResult reports a completed registration.
type RegisterResult struct {
	OrganizationID string
	EmployeeID     string
	Outcome        Outcome
	// Replaced is true when the registration overwrote an existing
	// embedding for the employee.
	Replaced     bool
	PhotoSaved   bool
	RegisteredAt time.Time
}

// IdentifyResult reports the best match for a probe image.
type IdentifyResult struct {
	OrganizationID string
	Outcome        Outcome
	// EmployeeID is set only when Outcome is OutcomeMatched.
	EmployeeID string
	// Score is the best similarity seen, reported even on no_match.
	Score     float64
	Threshold float64
	// Candidates is the number of embeddings scanned.
	Candidates int
}

// VerifyResult reports a 1:1 comparison against a claimed identity.
type VerifyResult struct {
	OrganizationID string
	EmployeeID     string
	Outcome        Outcome
	Verified       bool
	Score          float64
	Threshold      float64
}

// DeregisterResult reports a completed deregistration.
type DeregisterResult struct {
	OrganizationID string
	EmployeeID     string
	Outcome        Outcome
	PhotoDeleted   bool
	// Remaining is the number of embeddings left in the organization.
	Remaining int
}

// StatusInfo reports an employee's enrollment state.
type StatusInfo struct {
	OrganizationID string
	EmployeeID     string
	Registered     bool
	PhotoExists    bool
	RegisteredAt   time.Time
	EmbeddingDim   int
}

// OrgStats reports aggregate enrollment state for an organization.
type OrgStats struct {
	OrganizationID string
	EmployeeCount  int
	EmployeeIDs    []string
	Cached         bool
}

// Info describes the service configuration for health reporting.
type Info struct {
	Model        string
	EmbeddingDim int
	Threshold    float64
}
