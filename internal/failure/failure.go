// Package failure carries the error taxonomy shared by fetch, stream and
// delete operations so callers can pick a presentation without parsing
// error strings.
package failure

import (
	"errors"
	"fmt"
)

// Kind classifies where a transfer failed.
type Kind int

const (
	KindUnknown Kind = iota
	// KindTransport covers network failures and authorization denials
	// returned by the object store or the web endpoint.
	KindTransport
	// KindStream covers read, write and pipe failures while pumping bytes.
	KindStream
	// KindHTTPStatus is a non-2xx reply from the web endpoint.
	KindHTTPStatus
	// KindInvalid is rejected input, e.g. a key without a file name.
	KindInvalid
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindStream:
		return "stream"
	case KindHTTPStatus:
		return "http_status"
	case KindInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// ErrEmptyFileName is returned when an object key ends with a path separator.
var ErrEmptyFileName = errors.New("object key has no file name")

// Error is a classified failure.
type Error struct {
	Kind   Kind
	Op     string
	Bucket string
	Key    string
	// Status is the HTTP status code when one was received.
	Status int
	// Code is the object store error code, e.g. AccessDenied.
	Code string
	Err  error
}

func (e *Error) Error() string {
	target := e.Key
	if e.Bucket != "" {
		target = e.Bucket + "/" + e.Key
	}
	msg := e.Op
	if target != "" {
		msg = fmt.Sprintf("%s %s", e.Op, target)
	}
	if e.Status != 0 {
		msg = fmt.Sprintf("%s: status %d", msg, e.Status)
	}
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Code)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Transport builds a KindTransport error.
func Transport(op, bucket, key string, err error) *Error {
	return &Error{Kind: KindTransport, Op: op, Bucket: bucket, Key: key, Err: err}
}

// Stream builds a KindStream error.
func Stream(op string, err error) *Error {
	return &Error{Kind: KindStream, Op: op, Err: err}
}

// HTTPStatus builds a KindHTTPStatus error for the given reply status.
func HTTPStatus(op, key string, status int, err error) *Error {
	return &Error{Kind: KindHTTPStatus, Op: op, Key: key, Status: status, Err: err}
}

// Invalid builds a KindInvalid error.
func Invalid(op, key string, err error) *Error {
	return &Error{Kind: KindInvalid, Op: op, Key: key, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
