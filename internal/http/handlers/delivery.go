package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"parcel-delivery/internal/domain"
	"parcel-delivery/internal/logx"
	"parcel-delivery/internal/service/delivery"
)

// DeliveryHandler serves the delivery lifecycle, problem and admin delivery endpoints.
type DeliveryHandler struct {
	usecase deliveryUsecase
	logger  logx.Logger
}

// NewDeliveryHandler creates a new DeliveryHandler.
func NewDeliveryHandler(logger logx.Logger, uc deliveryUsecase) *DeliveryHandler {
	if logger == nil {
		logger = logx.Nop()
	}
	return &DeliveryHandler{usecase: uc, logger: logger}
}

// Retrieve handles PUT /deliverymen/{deliveryman_id}/retrieve/{delivery_id}.
func (h *DeliveryHandler) Retrieve(w http.ResponseWriter, r *http.Request) {
	dmID, deliveryID, ok := h.pathIDs(w, r)
	if !ok {
		return
	}
	d, err := h.usecase.Retrieve(r.Context(), dmID, deliveryID)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, toDeliveryDTO(d))
}

// Deliver handles PUT /deliverymen/{deliveryman_id}/deliver/{delivery_id}.
func (h *DeliveryHandler) Deliver(w http.ResponseWriter, r *http.Request) {
	dmID, deliveryID, ok := h.pathIDs(w, r)
	if !ok {
		return
	}
	var req deliverRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	d, err := h.usecase.Deliver(r.Context(), dmID, deliveryID, req.SignatureID)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, toDeliveryDTO(d))
}

// ListForDeliveryman handles GET /deliverymen/{deliveryman_id}/deliveries.
// ?delivered=true lists finished deliveries, otherwise pending ones.
func (h *DeliveryHandler) ListForDeliveryman(w http.ResponseWriter, r *http.Request) {
	dmID, err := idFromURL(r, "deliveryman_id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid deliveryman id")
		return
	}
	page, err := pageFromQuery(r)
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, err.Error())
		return
	}
	delivered, err := boolFromQuery(r, "delivered")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid delivered flag")
		return
	}
	list, total, err := h.usecase.ListForDeliveryman(r.Context(), dmID, delivered, page)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeList(h.logger, w, r, toDeliveryDTOs(list), total)
}

// ReportProblem handles POST /deliveries/{delivery_id}/problems.
func (h *DeliveryHandler) ReportProblem(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "delivery_id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid delivery id")
		return
	}
	var req reportProblemRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	p, err := h.usecase.ReportProblem(r.Context(), id, req.Description)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusCreated, toProblemDTO(p))
}

// ListProblems handles GET /deliveries/{delivery_id}/problems.
func (h *DeliveryHandler) ListProblems(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "delivery_id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid delivery id")
		return
	}
	page, err := pageFromQuery(r)
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, err.Error())
		return
	}
	list, total, err := h.usecase.ListProblems(r.Context(), id, page)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeList(h.logger, w, r, toProblemDTOs(list), total)
}

// CancelByProblem handles DELETE /manage/problems/{problem_id}/cancel-delivery.
func (h *DeliveryHandler) CancelByProblem(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "problem_id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid problem id")
		return
	}
	d, err := h.usecase.CancelByProblem(r.Context(), id)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, toDeliveryDTO(d))
}

// Create handles POST /manage/deliveries.
func (h *DeliveryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createDeliveryRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	d, err := h.usecase.Create(r.Context(), delivery.CreateInput{
		Product:       req.Product,
		RecipientID:   req.RecipientID,
		DeliverymanID: req.DeliverymanID,
	})
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	w.Header().Set("Location", "/manage/deliveries/"+strconv.FormatInt(d.ID, 10))
	writeJSON(h.logger, w, r, http.StatusCreated, toDeliveryDTO(d))
}

// Get handles GET /manage/deliveries/{delivery_id}.
func (h *DeliveryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "delivery_id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid delivery id")
		return
	}
	d, err := h.usecase.Get(r.Context(), id)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, toDeliveryDTO(d))
}

// List handles GET /manage/deliveries?q=&page=&onlyWithProblem=.
func (h *DeliveryHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, err.Error())
		return
	}
	withProblem, err := boolFromQuery(r, "onlyWithProblem")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid onlyWithProblem flag")
		return
	}
	f := deliveryFilterFromQuery(r)
	f.OnlyWithProblem = withProblem

	list, total, err := h.usecase.List(r.Context(), f, page)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeList(h.logger, w, r, toDeliveryDTOs(list), total)
}

// Update handles PUT /manage/deliveries/{delivery_id}.
func (h *DeliveryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "delivery_id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid delivery id")
		return
	}
	var req updateDeliveryRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	d, err := h.usecase.Update(r.Context(), req.toModel(id))
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, toDeliveryDTO(d))
}

// Delete handles DELETE /manage/deliveries/{delivery_id}.
func (h *DeliveryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "delivery_id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid delivery id")
		return
	}
	if err := h.usecase.Delete(r.Context(), id); err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *DeliveryHandler) pathIDs(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	dmID, err := idFromURL(r, "deliveryman_id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid deliveryman id")
		return 0, 0, false
	}
	deliveryID, err := idFromURL(r, "delivery_id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid delivery id")
		return 0, 0, false
	}
	return dmID, deliveryID, true
}

func deliveryFilterFromQuery(r *http.Request) domain.DeliveryFilter {
	return domain.DeliveryFilter{Query: strings.TrimSpace(r.URL.Query().Get("q"))}
}
