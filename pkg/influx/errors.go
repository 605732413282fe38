package influx

import (
	"errors"
	"fmt"
)

// Code classifies a request outcome. Zero is success, every failure is
// negative.
type Code int

const (
	CodeOK              Code = 0
	CodeUnknown         Code = -1
	CodeWrite           Code = -6
	CodePrematureEOF    Code = -7
	CodeBadChunkSize    Code = -8
	CodeUnexpectedByte  Code = -9
	CodeHeaderTruncated Code = -10
	CodeMalformed       Code = -11
	CodeStatus          Code = -12
	CodeTimeout         Code = -13
	CodeResolve         Code = -20
	CodeConnect         Code = -21
	CodeClosed          Code = -22
)

// String returns a human-readable representation of the code.
func (c Code) String() string {
	switch c {
	case CodeOK:
		return "ok"
	case CodeWrite:
		return "write failed"
	case CodePrematureEOF:
		return "premature end of response"
	case CodeBadChunkSize:
		return "malformed chunk size"
	case CodeUnexpectedByte:
		return "unexpected byte in response"
	case CodeHeaderTruncated:
		return "truncated response header"
	case CodeMalformed:
		return "malformed response"
	case CodeStatus:
		return "non-2xx status"
	case CodeTimeout:
		return "response timeout"
	case CodeResolve:
		return "resolve failed"
	case CodeConnect:
		return "connect failed"
	case CodeClosed:
		return "connection closed"
	default:
		return "unknown"
	}
}

// framing reports whether c describes a malformed or truncated response.
func (c Code) framing() bool {
	switch c {
	case CodePrematureEOF, CodeBadChunkSize, CodeUnexpectedByte, CodeHeaderTruncated, CodeMalformed:
		return true
	}
	return false
}

// Error is the error type returned by this package.
type Error struct {
	Code Code
	Op   string

	// StatusCode and Body are set for CodeStatus.
	StatusCode int
	Body       []byte

	Err error
}

func (e *Error) Error() string {
	msg := "influx"
	if e.Op != "" {
		msg += ": " + e.Op
	}
	msg += ": " + e.Code.String()
	if e.Code == CodeStatus {
		msg += fmt.Sprintf(" %d", e.StatusCode)
		if len(e.Body) > 0 {
			msg += ": " + string(e.Body)
		}
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel errors of this package by code. ErrFraming
// matches every response framing code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Op != "" {
		return false
	}
	if t == ErrFraming {
		return e.Code.framing()
	}
	return t.Code == e.Code
}

// Sentinel errors for errors.Is checks.
var (
	ErrResolve = &Error{Code: CodeResolve}
	ErrConnect = &Error{Code: CodeConnect}
	ErrWrite   = &Error{Code: CodeWrite}
	ErrStatus  = &Error{Code: CodeStatus}
	ErrTimeout = &Error{Code: CodeTimeout}
	ErrClosed  = &Error{Code: CodeClosed}

	// ErrFraming matches any malformed or truncated response.
	ErrFraming = &Error{Code: CodeMalformed}
)

// ReturnCode maps err to its numeric code: 0 for nil, the Code of an
// *Error, CodeUnknown for anything else.
func ReturnCode(err error) int {
	if err == nil {
		return int(CodeOK)
	}
	var e *Error
	if errors.As(err, &e) {
		return int(e.Code)
	}
	return int(CodeUnknown)
}
