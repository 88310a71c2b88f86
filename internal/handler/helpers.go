package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"blockwriter/internal/domain"
	"blockwriter/internal/httputil"
)

const internalErrorMessage = "サーバーエラーが発生しました"

// successResponse is returned by delete endpoints
type successResponse struct {
	Success bool `json:"success"`
}

// handleError converts domain errors to the error envelope
func handleError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var httpErr domain.HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.StatusCode() >= http.StatusInternalServerError {
			logger.Error("request failed", "code", httpErr.Code(), "error", err)
		}
		httputil.RespondError(w, httpErr.StatusCode(), httpErr.Code(), httpErr.Error())
		return
	}

	switch {
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, domain.CodeValidation, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, domain.CodeNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, domain.CodeUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, domain.CodeForbidden, err.Error())
	case errors.Is(err, domain.ErrConflict):
		httputil.RespondError(w, http.StatusConflict, domain.CodeConflict, err.Error())
	case errors.Is(err, domain.ErrConfig):
		logger.Error("configuration error", "error", err)
		httputil.RespondError(w, http.StatusInternalServerError, domain.CodeConfig, err.Error())
	case errors.Is(err, domain.ErrUpstream):
		logger.Error("generation backend error", "error", err)
		httputil.RespondError(w, http.StatusBadGateway, domain.CodeInternal, err.Error())
	default:
		logger.Error("unexpected error", "error", err)
		httputil.RespondError(w, http.StatusInternalServerError, domain.CodeInternal, internalErrorMessage)
	}
}

// respondInvalidBody writes the 400 used for undecodable request bodies
func respondInvalidBody(w http.ResponseWriter) {
	httputil.RespondError(w, http.StatusBadRequest, domain.CodeValidation, "リクエストの形式が正しくありません")
}

// PathParam extracts a path value, writing 400 when it is empty
func PathParam(w http.ResponseWriter, r *http.Request, name, label string) (string, bool) {
	value := r.PathValue(name)
	if value == "" {
		httputil.RespondError(w, http.StatusBadRequest, domain.CodeValidation, label+" is required")
		return "", false
	}
	return value, true
}
