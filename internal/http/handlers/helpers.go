package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"parcel-delivery/internal/apperr"
	"parcel-delivery/internal/domain"
	"parcel-delivery/internal/logx"
)

var validate = validator.New()

func reqID(ctx context.Context) string {
	if id := middleware.GetReqID(ctx); id != "" {
		return id
	}
	return "-"
}

func writeJSON(logger logx.Logger, w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil && logger != nil {
		logger.Error("json encode error", logx.String("req_id", reqID(r.Context())), logx.Err(err))
	}
}

type errResponse struct {
	Error string `json:"error"`
}

func writeError(logger logx.Logger, w http.ResponseWriter, r *http.Request, status int, msg string) {
	if logger != nil {
		logger.Warn("http error",
			logx.String("req_id", reqID(r.Context())),
			logx.Int("status", status),
			logx.String("msg", msg),
		)
	}
	writeJSON(logger, w, r, status, errResponse{Error: msg})
}

// statusFor maps service errors onto HTTP status codes. Ownership and window
// violations are 401, every other domain failure is a client error.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, apperr.ErrForbidden),
		errors.Is(err, apperr.ErrOutsideRetrievalWindow):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, apperr.ErrInvalid),
		errors.Is(err, apperr.ErrNotFound),
		errors.Is(err, apperr.ErrConflict),
		errors.Is(err, apperr.ErrAlreadyRetrieved),
		errors.Is(err, apperr.ErrAlreadyDelivered),
		errors.Is(err, apperr.ErrAlreadyCancelled),
		errors.Is(err, apperr.ErrNotYetRetrieved),
		errors.Is(err, apperr.ErrRateLimitExceeded):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func writeServiceError(logger logx.Logger, w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusFor(err)
	if status == http.StatusInternalServerError && logger != nil {
		logger.Error("request failed", logx.String("req_id", reqID(r.Context())), logx.Err(err))
	}
	writeError(logger, w, r, status, msg)
}

const (
	bodyLimit = 1 << 20
)

// decodeJSON reads a single JSON document into dst and runs struct validation.
func decodeJSON[T any](logger logx.Logger, w http.ResponseWriter, r *http.Request, dst *T) bool {
	r.Body = http.MaxBytesReader(w, r.Body, bodyLimit)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		writeError(logger, w, r, http.StatusBadRequest, "invalid json")
		return false
	}
	if err := dec.Decode(new(struct{})); err != io.EOF {
		writeError(logger, w, r, http.StatusBadRequest, "invalid json: trailing data")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeError(logger, w, r, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return apperr.ErrInvalid.Error() + ": " + fe.Field() + " " + fe.Tag()
	}
	return apperr.ErrInvalid.Error()
}

func idFromURL(r *http.Request, name string) (int64, error) {
	idStr := chi.URLParam(r, name)
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// pageFromQuery reads ?page=N (1-based, default 1).
func pageFromQuery(r *http.Request) (domain.Page, error) {
	s := r.URL.Query().Get("page")
	if s == "" {
		return domain.PageFromNumber(1), nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return domain.Page{}, errors.New("invalid page")
	}
	return domain.PageFromNumber(n), nil
}

func boolFromQuery(r *http.Request, name string) (bool, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return false, nil
	}
	return strconv.ParseBool(s)
}

// writeList writes a page of items with the total count in X-Total-Count.
func writeList[T any](logger logx.Logger, w http.ResponseWriter, r *http.Request, items []T, total int) {
	if items == nil {
		items = []T{}
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	writeJSON(logger, w, r, http.StatusOK, items)
}
