package httpx

import (
	"net/http"

	"github.com/recicla-soft/recicla/internal/shared"
)

// ErrorBody is the wire shape of every failure response.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries the machine-checkable kind plus a human-readable message.
type ErrorDetail struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

var kindStatus = map[shared.ErrorKind]int{
	shared.KindInvalidInput:       http.StatusBadRequest,
	shared.KindDuplicateName:      http.StatusConflict,
	shared.KindUnknownMaterial:    http.StatusUnprocessableEntity,
	shared.KindInvalidTransaction: http.StatusUnprocessableEntity,
	shared.KindForbidden:          http.StatusForbidden,
	shared.KindNotFound:           http.StatusNotFound,
	shared.KindUnauthorized:       http.StatusUnauthorized,
	shared.KindStorage:            http.StatusServiceUnavailable,
}

// RespondError maps a domain error to its HTTP status and JSON body. Errors
// without a kind are reported as opaque internal failures.
func RespondError(w http.ResponseWriter, err error) {
	kind := shared.KindOf(err)
	status, ok := kindStatus[kind]
	if !ok {
		JSON(w, http.StatusInternalServerError, ErrorBody{Error: ErrorDetail{
			Kind:    "internal",
			Message: "internal error",
		}})
		return
	}
	JSON(w, status, ErrorBody{Error: ErrorDetail{
		Kind:    string(kind),
		Message: shared.MessageOf(err),
	}})
}
