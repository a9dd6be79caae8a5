package handler

import (
	"net/http"

	"clubsite-be/internal/order"
	"clubsite-be/internal/utils"

	"github.com/go-chi/chi/v5"
)

func urlParam(r *http.Request, key string) string {
	return chi.URLParam(r, key)
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var in order.CheckoutInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	items, err := h.Orders.Checkout(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, map[string]any{
		"orderId": items[0].OrderID,
		"items":   items,
	})
}

func (h *Handler) OrderSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Orders.Summary(r.Context(), urlParam(r, "orderId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, summary)
}

func (h *Handler) AdminListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.OrderRepo.GetAllOrders(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if orders == nil {
		orders = []order.Order{}
	}
	utils.WriteJSON(w, http.StatusOK, orders)
}

// AdminUpdateOrder replaces every editable field of one order row.
func (h *Handler) AdminUpdateOrder(w http.ResponseWriter, r *http.Request) {
	var o order.Order
	if err := decodeJSON(w, r, &o); err != nil {
		writeError(w, r, err)
		return
	}
	o.ID = urlParam(r, "id")

	if err := h.OrderRepo.UpdateOrder(r.Context(), o); err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, o)
}

type statusRequest struct {
	Status order.Status `json:"status" validate:"required"`
}

func (h *Handler) AdminUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := utils.Validate(req); err != nil {
		writeError(w, r, err)
		return
	}

	orderID := urlParam(r, "orderId")
	if err := h.OrderRepo.UpdateOrderStatus(r.Context(), orderID, req.Status); err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"orderId": orderID,
		"status":  req.Status,
	})
}

type trackingRequest struct {
	TrackingNumber string `json:"trackingNumber"`
}

func (h *Handler) AdminUpdateTracking(w http.ResponseWriter, r *http.Request) {
	var req trackingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	o, err := h.OrderRepo.UpdateTrackingNumber(r.Context(), urlParam(r, "id"), req.TrackingNumber)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, o)
}

func (h *Handler) AdminMarkTrackingSent(w http.ResponseWriter, r *http.Request) {
	o, err := h.OrderRepo.MarkTrackingAsSent(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, o)
}

type supplierRequest struct {
	Ordered bool `json:"orderedFromSupplier"`
}

func (h *Handler) AdminSetSupplier(w http.ResponseWriter, r *http.Request) {
	var req supplierRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	o, err := h.OrderRepo.SetOrderedFromSupplier(r.Context(), urlParam(r, "id"), req.Ordered)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, o)
}

func (h *Handler) AdminDeleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.OrderRepo.DeleteOrder(r.Context(), urlParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
