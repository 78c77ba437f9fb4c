package rest

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/dmitrijs2005/gophdrive/internal/common"
)

var errBadRequest = errors.New("bad request")

// statusOf maps service errors to HTTP status codes.
func statusOf(err error) int {
	var verr validator.ValidationErrors
	switch {
	case errors.Is(err, errBadRequest), errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrTokenExpired):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrPartialCascade):
		return http.StatusMultiStatus
	case errors.Is(err, common.ErrDuplicateName),
		errors.Is(err, common.ErrFolderNotEmpty),
		errors.Is(err, common.ErrClipboardEmpty),
		errors.Is(err, common.ErrStorageKeyInUse):
		return http.StatusConflict
	case errors.Is(err, common.ErrInvalidPath), errors.Is(err, common.ErrExtensionChanged):
		return http.StatusUnprocessableEntity
	case errors.Is(err, common.ErrStoreUnavailable), errors.Is(err, common.ErrBlobUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, common.ErrNotSupported):
		return http.StatusNotImplemented
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// errorCode is a stable machine-readable name for the error class.
func errorCode(err error) string {
	switch {
	case errors.Is(err, common.ErrExtensionChanged):
		return "extension_changed"
	case errors.Is(err, common.ErrTokenExpired):
		return "token_expired"
	case errors.Is(err, common.ErrStorageKeyInUse):
		return "storage_key_in_use"
	}
	switch statusOf(err) {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusForbidden:
		return "permission_denied"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusMultiStatus:
		return "partial_cascade"
	case http.StatusConflict:
		return "conflict"
	case http.StatusUnprocessableEntity:
		return "invalid_path"
	case http.StatusServiceUnavailable:
		return "unavailable"
	case http.StatusNotImplemented:
		return "not_supported"
	default:
		return "internal"
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusOf(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Error: msg, Code: errorCode(err)})
}
