package apperr

import (
	"errors"
	"strings"
)

type Kind string

const (
	KindConfiguration Kind = "configuration"
	KindUpstreamAuth  Kind = "upstream_auth"
	KindUpstreamData  Kind = "upstream_data"
	KindStorage       Kind = "storage"
	KindNotFound      Kind = "not_found"
)

// Error classifies a failure by Kind so that callers at the edge of the
// sync pipeline can decide between "nothing to do", "re-authenticate" and
// "server error" without matching on messages.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind) + " error"
	}
	b.WriteString(msg)
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Cause }

func Configuration(op string, message string) *Error {
	return &Error{Kind: KindConfiguration, Op: op, Message: message}
}

func UpstreamAuth(op string, cause error) *Error {
	return &Error{Kind: KindUpstreamAuth, Op: op, Message: "upstream rejected credentials", Cause: cause}
}

func UpstreamData(op string, cause error) *Error {
	return &Error{Kind: KindUpstreamData, Op: op, Message: "upstream data unavailable", Cause: cause}
}

func Storage(op string, cause error) *Error {
	return &Error{Kind: KindStorage, Op: op, Message: "storage failure", Cause: cause}
}

func NotFound(op string, message string) *Error {
	return &Error{Kind: KindNotFound, Op: op, Message: message}
}

func As(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsKind reports whether any error in err's chain is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	for err != nil {
		var appErr *Error
		if !errors.As(err, &appErr) {
			return false
		}
		if appErr.Kind == kind {
			return true
		}
		err = appErr.Cause
	}
	return false
}
