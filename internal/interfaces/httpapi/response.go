package httpapi

import (
	"context"
	"errors"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/b1g-analytics/internal/usecase"
)

const (
	apiVersion  = "2.0"
	errorDomain = "b1g-analytics"
)

// envelope follows the Google JSON style guide: data on success, error
// otherwise, never both.
type envelope struct {
	APIVersion string     `json:"apiVersion"`
	Data       any        `json:"data,omitempty"`
	Error      *errorBody `json:"error,omitempty"`
}

type errorBody struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Status  string      `json:"status"`
	Errors  []errorItem `json:"errors,omitempty"`
}

type errorItem struct {
	Domain  string `json:"domain"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type errorClass struct {
	target     error
	httpStatus int
	reason     string
	status     string
}

var internalErrorClass = errorClass{
	httpStatus: http.StatusInternalServerError,
	reason:     "internalError",
	status:     "INTERNAL",
}

// errorClasses is checked in order; the first errors.Is match wins.
var errorClasses = []errorClass{
	{usecase.ErrInvalidInput, http.StatusBadRequest, "invalidInput", "INVALID_ARGUMENT"},
	{usecase.ErrNotFound, http.StatusNotFound, "notFound", "NOT_FOUND"},
	{usecase.ErrUnauthorized, http.StatusUnauthorized, "unauthorized", "UNAUTHENTICATED"},
	{usecase.ErrConflict, http.StatusConflict, "conflict", "ABORTED"},
	{usecase.ErrDataIntegrity, http.StatusBadGateway, "upstreamDataIntegrity", "DATA_LOSS"},
	{usecase.ErrDependencyUnavailable, http.StatusServiceUnavailable, "dependencyUnavailable", "UNAVAILABLE"},
}

func classifyError(err error) errorClass {
	for _, class := range errorClasses {
		if errors.Is(err, class.target) {
			return class
		}
	}
	return internalErrorClass
}

func writeJSON(_ context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(payload)
}

func writeSuccess(ctx context.Context, w http.ResponseWriter, status int, data any) {
	writeJSON(ctx, w, status, envelope{APIVersion: apiVersion, Data: data})
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	writeErrorClass(ctx, w, classifyError(err), err.Error())
}

// writeInternalError hides the cause from the client.
func writeInternalError(ctx context.Context, w http.ResponseWriter) {
	writeErrorClass(ctx, w, internalErrorClass, "internal server error")
}

func writeErrorClass(ctx context.Context, w http.ResponseWriter, class errorClass, msg string) {
	writeJSON(ctx, w, class.httpStatus, envelope{
		APIVersion: apiVersion,
		Error: &errorBody{
			Code:    class.httpStatus,
			Message: msg,
			Status:  class.status,
			Errors:  []errorItem{{Domain: errorDomain, Reason: class.reason, Message: msg}},
		},
	})
}
