package handler

import (
	"net/http"

	"clubsite-be/internal/ride"
	"clubsite-be/internal/utils"
)

func (h *Handler) ListRides(w http.ResponseWriter, r *http.Request) {
	rides, err := h.Rides.List(r.Context(), true)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, rides)
}

func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	var in ride.SignupInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.Rides.SignUp(r.Context(), urlParam(r, "id"), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, p)
}

func (h *Handler) AdminListRides(w http.ResponseWriter, r *http.Request) {
	rides, err := h.Rides.List(r.Context(), false)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, rides)
}

func (h *Handler) AdminCreateRide(w http.ResponseWriter, r *http.Request) {
	var in ride.Ride
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	created, err := h.Rides.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) AdminToggleRide(w http.ResponseWriter, r *http.Request) {
	toggled, err := h.Rides.Toggle(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, toggled)
}

func (h *Handler) AdminDeleteRide(w http.ResponseWriter, r *http.Request) {
	if err := h.Rides.Delete(r.Context(), urlParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AdminListParticipants(w http.ResponseWriter, r *http.Request) {
	participants, err := h.Rides.Participants(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, participants)
}
