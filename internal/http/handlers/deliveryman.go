package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"parcel-delivery/internal/domain"
	"parcel-delivery/internal/logx"
)

// DeliverymanHandler serves /manage/deliverymen.
type DeliverymanHandler struct {
	uc     deliverymanUsecase
	logger logx.Logger
}

// NewDeliverymanHandler wires a deliverymanUsecase into HTTP handlers.
func NewDeliverymanHandler(logger logx.Logger, uc deliverymanUsecase) *DeliverymanHandler {
	if logger == nil {
		logger = logx.Nop()
	}
	return &DeliverymanHandler{uc: uc, logger: logger}
}

// GetByID handles GET /manage/deliverymen/{id}.
func (h *DeliverymanHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}
	m, err := h.uc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, toDeliverymanDTO(*m))
}

// List handles GET /manage/deliverymen?q=&page=.
func (h *DeliverymanHandler) List(w http.ResponseWriter, r *http.Request) {
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
	writeList(h.logger, w, r, toDeliverymanDTOs(list), total)
}

// Create handles POST /manage/deliverymen.
func (h *DeliverymanHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createDeliverymanRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	m := req.toModel()
	id, err := h.uc.Create(r.Context(), m)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	m.ID = id
	w.Header().Set("Location", "/manage/deliverymen/"+strconv.FormatInt(id, 10))
	writeJSON(h.logger, w, r, http.StatusCreated, toDeliverymanDTO(*m))
}

// Update handles PUT /manage/deliverymen/{id}.
func (h *DeliverymanHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}
	var req updateDeliverymanRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	m, err := h.uc.Update(r.Context(), req.toModel(id))
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, toDeliverymanDTO(*m))
}

// Delete handles DELETE /manage/deliverymen/{id}.
func (h *DeliverymanHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
