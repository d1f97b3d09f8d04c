package handlers

import (
	"net/http"
	"strings"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/example/movie-platform/internal/platform/api"
)

// writeError renders a core error through its gRPC status so HTTP and gRPC
// callers see the same classification.
func writeError(w http.ResponseWriter, requestID string, err error) {
	st, ok := status.FromError(err)
	if !ok {
		api.Internal(w, requestID)
		return
	}
	switch st.Code() {
	case codes.Canceled, codes.DeadlineExceeded:
		api.Unavailable(w, requestID)
		return
	case codes.InvalidArgument, codes.PermissionDenied, codes.NotFound, codes.AlreadyExists:
	default:
		api.Internal(w, requestID)
		return
	}
	api.WriteError(w, api.HTTPStatus(st.Code()), reason(st), st.Message(), requestID, nil)
}

// reason is the upper-cased ErrorInfo reason, or the code name when absent.
func reason(st *status.Status) string {
	for _, d := range st.Details() {
		if v, ok := d.(*errdetails.ErrorInfo); ok && v.GetReason() != "" {
			return strings.ToUpper(v.GetReason())
		}
	}
	return strings.ToUpper(st.Code().String())
}
