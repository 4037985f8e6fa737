package goerror

import (
	"fmt"
	"net/http"
)

// Type classifies errors into the buckets the HTTP layer renders differently.
type Type int

const (
	// TypeServer represents server-side failures.
	TypeServer Type = iota
	// TypeBusiness represents rule violations a caller can act on.
	TypeBusiness
	// TypeValidation represents malformed or incomplete input.
	TypeValidation
)

// String returns the string representation of the error type.
func (t Type) String() string {
	switch t {
	case TypeValidation:
		return "ERROR_TYPE_VALIDATION"
	case TypeBusiness:
		return "ERROR_TYPE_BUSINESS"
	case TypeServer:
		return "ERROR_TYPE_SERVER"
	default:
		return "ERROR_TYPE_UNKNOWN"
	}
}

// Code is a stable identifier mapped to an HTTP status.
type Code int

const (
	CodeInternal Code = iota
	CodeInvalidFormat
	CodeInvalidInput
	CodeNotFound
	CodeConflict
	CodeTooManyRequest
	CodeUnauthorized
	CodeForbidden
	CodeTimeout
	// CodeGone marks a resource that existed but is no longer usable.
	CodeGone
	// CodeBadGateway marks a failure reported by an upstream dependency.
	CodeBadGateway
	// CodeGatewayTimeout marks an upstream dependency that did not answer in time.
	CodeGatewayTimeout
)

var codeNames = map[Code]string{
	CodeInternal:       "ERROR_CODE_INTERNAL",
	CodeInvalidFormat:  "ERROR_CODE_INVALID_FORMAT",
	CodeInvalidInput:   "ERROR_CODE_INVALID_INPUT",
	CodeNotFound:       "ERROR_CODE_NOT_FOUND",
	CodeConflict:       "ERROR_CODE_CONFLICT",
	CodeTooManyRequest: "ERROR_CODE_TOO_MANY_REQUESTS",
	CodeUnauthorized:   "ERROR_CODE_UNAUTHORIZED",
	CodeForbidden:      "ERROR_CODE_FORBIDDEN",
	CodeTimeout:        "ERROR_CODE_TIMEOUT",
	CodeGone:           "ERROR_CODE_GONE",
	CodeBadGateway:     "ERROR_CODE_BAD_GATEWAY",
	CodeGatewayTimeout: "ERROR_CODE_GATEWAY_TIMEOUT",
}

var codeStatus = map[Code]int{
	CodeInternal:       http.StatusInternalServerError,
	CodeInvalidFormat:  http.StatusBadRequest,
	CodeInvalidInput:   http.StatusUnprocessableEntity,
	CodeNotFound:       http.StatusNotFound,
	CodeConflict:       http.StatusConflict,
	CodeTooManyRequest: http.StatusTooManyRequests,
	CodeUnauthorized:   http.StatusUnauthorized,
	CodeForbidden:      http.StatusForbidden,
	CodeTimeout:        http.StatusRequestTimeout,
	CodeGone:           http.StatusGone,
	CodeBadGateway:     http.StatusBadGateway,
	CodeGatewayTimeout: http.StatusGatewayTimeout,
}

// String returns the string representation of the error code.
func (c Code) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}
	return "ERROR_CODE_INTERNAL"
}

// Error is the structured error rendered by the router.
//
// It may wrap an underlying error while carrying a user-facing message, a
// type and a stable code. Wrapped errors stay reachable through errors.Is.
type Error struct {
	err     error
	msg     string
	errType Type
	code    Code
	fields  map[string]string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	if e.msg != "" {
		return e.msg
	}

	switch e.errType {
	case TypeValidation:
		return "Validation violation"
	case TypeBusiness:
		return "Logical business not meet with requirement"
	case TypeServer:
		return "Internal error"
	default:
		return "Unknown error"
	}
}

// String returns a verbose representation for logging.
func (e *Error) String() string {
	return fmt.Sprintf("Error Type: %s, Code: %s, Message: %s, Underlying Error: %v",
		e.errType, e.code, e.msg, e.err)
}

// Msg returns the user-facing message, if set.
func (e *Error) Msg() string { return e.msg }

// Type returns the high-level error type.
func (e *Error) Type() Type { return e.errType }

// Code returns the stable error code.
func (e *Error) Code() Code { return e.code }

// Fields returns per-field validation messages, if any.
func (e *Error) Fields() map[string]string { return e.fields }

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error { return e.err }

// StatusCode maps the error code to an HTTP status code.
func (e *Error) StatusCode() int {
	if s, ok := codeStatus[e.code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

func newError(err error, msg string, et Type, code Code) error {
	return &Error{err: err, msg: msg, errType: et, code: code}
}

// NewServer creates a server-type error wrapping err.
func NewServer(err error) error {
	return newError(err, "Internal server error", TypeServer, CodeInternal)
}

// NewBusiness creates a business-type error with the given message and code.
func NewBusiness(msg string, code Code) error {
	return newError(nil, msg, TypeBusiness, code)
}

// NewBusinessWrap is NewBusiness that keeps cause reachable via errors.Is and errors.As.
func NewBusinessWrap(cause error, msg string, code Code) error {
	return newError(cause, msg, TypeBusiness, code)
}

// NewUpstream reports a failure of an external dependency. The cause stays
// wrapped for logging but is never shown to the caller.
func NewUpstream(cause error, msg string, code Code) error {
	return newError(cause, msg, TypeServer, code)
}

// NewInvalidInput creates a validation error. With err nil, kv is read as
// alternating field/message pairs.
func NewInvalidInput(err error, kv ...string) error {
	if err != nil {
		return newError(err, "Validation error", TypeValidation, CodeInvalidInput)
	}

	if len(kv)%2 != 0 {
		return newError(nil, "Invalid request body", TypeValidation, CodeInvalidFormat)
	}

	e := &Error{msg: "Validation error", errType: TypeValidation, code: CodeInvalidInput, fields: make(map[string]string, len(kv)/2)}
	for i := 0; i+1 < len(kv); i += 2 {
		e.fields[kv[i]] = kv[i+1]
	}

	return e
}

// NewInvalidFormat creates a validation error for an unreadable request body.
func NewInvalidFormat(msgs ...string) error {
	if len(msgs) == 0 {
		return newError(nil, "Invalid request body", TypeValidation, CodeInvalidFormat)
	}
	return newError(nil, msgs[0], TypeValidation, CodeInvalidFormat)
}
