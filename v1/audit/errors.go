package audit

import "errors"

// ErrWrite marks an audit-entry write that failed after the synchronous
// retry. It is a distinct, reportable error class: a failed audit write
// never rolls back or masks the action it was recording, but it must be
// escalated rather than swallowed.
var ErrWrite = errors.New("audit write failed")

// ErrInvalidEntry is returned when a caller hands the ledger an entry
// missing its mandatory fields (action, description).
var ErrInvalidEntry = errors.New("invalid audit entry")

// ErrQueryForbidden is returned when a non-administrator queries the
// ledger outside their own-actor scope.
var ErrQueryForbidden = errors.New("audit query forbidden")
