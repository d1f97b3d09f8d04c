package api

import (
	"net/http"

	"google.golang.org/grpc/codes"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

type APIError struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
}

func WriteError(w http.ResponseWriter, status int, code, message, requestID string, details map[string]any) {
	WriteJSON(w, status, ErrorResponse{Error: APIError{Code: code, Message: message, Details: details, RequestID: requestID}})
}

// HTTPStatus maps a gRPC code to the HTTP status used for it on the REST edge.
func HTTPStatus(c codes.Code) int {
	switch c {
	case codes.OK:
		return http.StatusOK
	case codes.InvalidArgument, codes.OutOfRange, codes.FailedPrecondition:
		return http.StatusBadRequest
	case codes.Unauthenticated:
		return http.StatusUnauthorized
	case codes.PermissionDenied:
		return http.StatusForbidden
	case codes.NotFound:
		return http.StatusNotFound
	case codes.AlreadyExists, codes.Aborted:
		return http.StatusConflict
	case codes.ResourceExhausted:
		return http.StatusTooManyRequests
	case codes.Canceled, codes.DeadlineExceeded, codes.Unavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func BadRequest(w http.ResponseWriter, code, message, requestID string) {
	WriteError(w, http.StatusBadRequest, code, message, requestID, nil)
}

func Unauthorized(w http.ResponseWriter, message, requestID string) {
	WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", message, requestID, nil)
}

func Forbidden(w http.ResponseWriter, code, message, requestID string) {
	WriteError(w, http.StatusForbidden, code, message, requestID, nil)
}

func Unavailable(w http.ResponseWriter, requestID string) {
	WriteError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "request aborted", requestID, nil)
}

// Internal never echoes the cause.
func Internal(w http.ResponseWriter, requestID string) {
	WriteError(w, http.StatusInternalServerError, "INTERNAL", "Internal server error", requestID, nil)
}
