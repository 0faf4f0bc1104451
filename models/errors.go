package models

import (
	"fmt"

	c "vsal/api/models/constants"
)

const (
	IncompleteQuery     c.ErrorKind = "Incomplete Query"
	MalformedQuery      c.ErrorKind = "Malformed Query"
	AuthorizationFailed c.ErrorKind = "Authorization Failed"
	DataInconsistency   c.ErrorKind = "Data Inconsistency"
	StoreFault          c.ErrorKind = "Store Fault"
)

// CoreError is the structured error attached to an otherwise empty
// response. IncompleteQuery and MalformedQuery short-circuit before
// any store access; DataInconsistency means the per-sample genotype
// table and the per-dataset summary table disagree and the operation
// aborted rather than returning partial statistics.
type CoreError struct {
	Kind        c.ErrorKind `json:"name"`
	Description string      `json:"description"`
}

func (e *CoreError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Description)
}

func NewIncompleteQuery(description string) *CoreError {
	return &CoreError{Kind: IncompleteQuery, Description: description}
}

func NewMalformedQuery(description string) *CoreError {
	return &CoreError{Kind: MalformedQuery, Description: description}
}

func NewAuthorizationFailed(description string) *CoreError {
	return &CoreError{Kind: AuthorizationFailed, Description: description}
}

func NewDataInconsistency(description string) *CoreError {
	return &CoreError{Kind: DataInconsistency, Description: description}
}

func NewStoreFault(description string) *CoreError {
	return &CoreError{Kind: StoreFault, Description: description}
}

// AsCoreError maps an arbitrary error to a CoreError, defaulting to
// StoreFault for anything the scanning layer surfaced untyped.
func AsCoreError(err error) *CoreError {
	if coreErr, ok := err.(*CoreError); ok {
		return coreErr
	}
	return NewStoreFault(err.Error())
}
