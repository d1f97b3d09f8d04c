package social

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Kind classifies a failure returned by the core.
type Kind int

const (
	KindUnexpected Kind = iota
	KindNotFound
	KindConflict
	KindForbidden
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindForbidden:
		return "forbidden"
	case KindValidation:
		return "validation"
	default:
		return "unexpected"
	}
}

// Error is the tagged failure returned by every core operation.
// Code is a stable machine-readable reason such as "already_following".
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// GRPCStatus lets status.FromError and status.Convert recognise core errors.
func (e *Error) GRPCStatus() *status.Status {
	code := codes.Internal
	switch e.Kind {
	case KindNotFound:
		code = codes.NotFound
	case KindConflict:
		code = codes.AlreadyExists
	case KindForbidden:
		code = codes.PermissionDenied
	case KindValidation:
		code = codes.InvalidArgument
	default:
		switch {
		case errors.Is(e.Err, context.Canceled):
			code = codes.Canceled
		case errors.Is(e.Err, context.DeadlineExceeded):
			code = codes.DeadlineExceeded
		}
	}

	msg := e.Message
	if code == codes.Internal {
		msg = "internal error"
	}
	st := status.New(code, msg)
	if withDetails, err := st.WithDetails(&errdetails.ErrorInfo{Reason: e.Code, Domain: "social"}); err == nil {
		return withDetails
	}
	return st
}

// KindOf returns the kind of err, KindUnexpected for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func notFound(code, msg string) error {
	return &Error{Kind: KindNotFound, Code: code, Message: msg}
}

func conflict(code, msg string) error {
	return &Error{Kind: KindConflict, Code: code, Message: msg}
}

func forbidden(code, msg string) error {
	return &Error{Kind: KindForbidden, Code: code, Message: msg}
}

func invalid(code, msg string) error {
	return &Error{Kind: KindValidation, Code: code, Message: msg}
}

// passthrough keeps core errors intact and wraps anything else as Unexpected.
func (b base) passthrough(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		b.log.Debug(op+" aborted", zap.Error(err))
	} else {
		b.log.Error(op+" failed", zap.Error(err))
	}
	return &Error{Kind: KindUnexpected, Code: "internal", Message: op + " failed", Err: err}
}
