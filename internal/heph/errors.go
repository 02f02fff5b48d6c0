package heph

import (
	"errors"
	"fmt"
)

// ErrorKind classifies client failures so callers can branch without string
// matching.
type ErrorKind string

const (
	KindAuth     ErrorKind = "auth"     // bad credentials or expired token
	KindNetwork  ErrorKind = "network"  // transport failure
	KindAPI      ErrorKind = "api"      // structured non-2xx rejection
	KindDecoding ErrorKind = "decoding" // malformed response body
	KindFile     ErrorKind = "file"     // local audio or temp storage failure
	KindZip      ErrorKind = "zip"      // expected archive entry missing
)

// Error is the failure type surfaced by all Client operations.
type Error struct {
	Kind    ErrorKind
	Code    string // provider statusCode, set for api errors
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("heph %s error [%s]: %s", e.Kind, e.Code, e.Message)
	}
	return fmt.Sprintf("heph %s error: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a heph Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var he *Error
	return errors.As(err, &he) && he.Kind == kind
}

func newError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}
