package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"parcel-delivery/internal/domain"
	"parcel-delivery/internal/logx"
)

// RecipientHandler serves /manage/recipients.
type RecipientHandler struct {
	uc     recipientUsecase
	logger logx.Logger
}

// NewRecipientHandler wires a recipientUsecase into HTTP handlers.
func NewRecipientHandler(logger logx.Logger, uc recipientUsecase) *RecipientHandler {
	if logger == nil {
		logger = logx.Nop()
	}
	return &RecipientHandler{uc: uc, logger: logger}
}

// GetByID handles GET /manage/recipients/{id}.
func (h *RecipientHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}
	rc, err := h.uc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, toRecipientDTO(*rc))
}

// List handles GET /manage/recipients?q=&page=.
func (h *RecipientHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, err.Error())
		return
	}
	f := domain.PeopleFilter{Query: strings.TrimSpace(r.URL.Query().Get("q"))}
	list, total, err := h.uc.List(r.Context(), f, page)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeList(h.logger, w, r, toRecipientDTOs(list), total)
}

// Create handles POST /manage/recipients.
func (h *RecipientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRecipientRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	rc := req.toModel()
	id, err := h.uc.Create(r.Context(), rc)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	rc.ID = id
	w.Header().Set("Location", "/manage/recipients/"+strconv.FormatInt(id, 10))
	writeJSON(h.logger, w, r, http.StatusCreated, toRecipientDTO(*rc))
}

// Update handles PUT /manage/recipients/{id}.
func (h *RecipientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}
	var req updateRecipientRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	rc, err := h.uc.Update(r.Context(), req.toModel(id))
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, toRecipientDTO(*rc))
}

// Delete handles DELETE /manage/recipients/{id}.
func (h *RecipientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.uc.Delete(r.Context(), id); err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
