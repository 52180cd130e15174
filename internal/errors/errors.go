package errors

import "fmt"

// ErrorCode represents an infoboard error code.
type ErrorCode string

const (
	ErrDuplicateName       ErrorCode = "DUPLICATE_NAME"       // section name already taken
	ErrUnknownSection      ErrorCode = "UNKNOWN_SECTION"      // no section with that name
	ErrUnknownSectionType  ErrorCode = "UNKNOWN_SECTION_TYPE" // type tag not in the registry
	ErrValidationFailed    ErrorCode = "VALIDATION_FAILED"    // length/template/URL-format violation
	ErrOversizedBlock      ErrorCode = "OVERSIZED_BLOCK"      // pagination contract violation
	ErrTransientDisconnect ErrorCode = "TRANSIENT_DISCONNECT" // recoverable transport failure
	ErrFetchFailed         ErrorCode = "FETCH_FAILED"         // remote URL retrieval failure
	ErrNotFound            ErrorCode = "NOT_FOUND"            // server/note/resource missing
	ErrInternal            ErrorCode = "INTERNAL"             // unexpected internal error
)

// BoardError represents a structured error with code, message, and details.
type BoardError struct {
	Code    ErrorCode
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *BoardError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewDuplicateName creates an error for section name collisions.
// Uniqueness is case-insensitive, so "Rules" collides with "rules".
func NewDuplicateName(name string) *BoardError {
	return &BoardError{
		Code:    ErrDuplicateName,
		Message: fmt.Sprintf("a section named %q already exists", name),
		Details: map[string]any{"name": name},
	}
}

// NewUnknownSection creates an error for a missing section.
func NewUnknownSection(name string) *BoardError {
	return &BoardError{
		Code:    ErrUnknownSection,
		Message: fmt.Sprintf("no section named %q", name),
		Details: map[string]any{"name": name},
	}
}

// NewUnknownSectionType creates an error for an unregistered type tag.
func NewUnknownSectionType(tag string) *BoardError {
	return &BoardError{
		Code:    ErrUnknownSectionType,
		Message: fmt.Sprintf("unknown section type: %q", tag),
		Details: map[string]any{"type": tag},
	}
}

// NewValidation creates an error for a recoverable validation failure.
// The message is always a specific user-facing reason, never generic.
func NewValidation(msg string) *BoardError {
	return &BoardError{
		Code:    ErrValidationFailed,
		Message: msg,
	}
}

// NewOversizedBlock creates an error for a block that cannot fit a single
// message. Validated content never triggers this; it indicates a
// programming or data error on the caller's side.
func NewOversizedBlock(maxLen, actual int) *BoardError {
	return &BoardError{
		Code:    ErrOversizedBlock,
		Message: fmt.Sprintf("block of %d characters cannot fit the %d character message limit", actual, maxLen),
		Details: map[string]any{"max_chars": maxLen, "actual_chars": actual},
	}
}

// NewTransientDisconnect wraps a recoverable transport failure. The clear
// stage retries these once per batch; everything else treats them as fatal.
func NewTransientDisconnect(err error) *BoardError {
	msg := "transport disconnected"
	if err != nil {
		msg = err.Error()
	}
	return &BoardError{
		Code:    ErrTransientDisconnect,
		Message: msg,
	}
}

// NewFetchFailed creates an error for a remote URL retrieval failure.
func NewFetchFailed(url string, err error) *BoardError {
	msg := "fetch failed"
	if err != nil {
		msg = err.Error()
	}
	return &BoardError{
		Code:    ErrFetchFailed,
		Message: msg,
		Details: map[string]any{"url": url},
	}
}

// NewNotFound creates an error for a missing server or note.
func NewNotFound(identifier string) *BoardError {
	return &BoardError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewInternal creates an error for unexpected internal failures.
func NewInternal(err error) *BoardError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &BoardError{
		Code:    ErrInternal,
		Message: msg,
	}
}

// Is checks if an error is a BoardError with the given code.
func Is(err error, code ErrorCode) bool {
	if bErr, ok := err.(*BoardError); ok {
		return bErr.Code == code
	}
	return false
}
