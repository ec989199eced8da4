// Package service provides the business logic for authentication, readings,
// meanings, and dashboard statistics, delegating persistence to repository
// interfaces.
package service

// Kind classifies a service failure so the transport layer can map it to a
// status code without string matching.
type Kind int

const (
	// KindValidation marks malformed or missing input.
	KindValidation Kind = iota + 1
	// KindAuth marks bad credentials, codes, or passwords.
	KindAuth
	// KindConflict marks a uniqueness violation.
	KindConflict
	// KindNotFound marks a missing entity.
	KindNotFound
)

// Error carries a failure classification and a stable, client-facing
// message. Storage failures are never wrapped in an Error; they surface as
// plain errors and become generic 500s.
type Error struct {
	Kind    Kind
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string { return e.Message }

func validationError(msg string) error { return &Error{Kind: KindValidation, Message: msg} }
func authError(msg string) error       { return &Error{Kind: KindAuth, Message: msg} }
func conflictError(msg string) error   { return &Error{Kind: KindConflict, Message: msg} }
func notFoundError(msg string) error   { return &Error{Kind: KindNotFound, Message: msg} }
