package policy

import "errors"

// ErrForbidden is the terminal error for authorization denials. Handlers
// translate it to a generic, non-enumerating forbidden response.
var ErrForbidden = errors.New("forbidden")

// ReasonCode explains a denial. Recorded into the audit entry, never
// returned verbatim to the caller.
type ReasonCode string

const (
	ReasonRoleInsufficient ReasonCode = "role_insufficient"
	ReasonNotOwner         ReasonCode = "not_owner"
	ReasonNotAssigned      ReasonCode = "not_assigned"
)
