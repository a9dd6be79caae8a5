package handler

import (
	"net/http"

	"clubsite-be/internal/album"
	"clubsite-be/internal/utils"
)

func (h *Handler) ListAlbums(w http.ResponseWriter, r *http.Request) {
	all, err := h.Albums.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	active := []album.Album{}
	for _, a := range all {
		if a.Active {
			active = append(active, a)
		}
	}
	utils.WriteJSON(w, http.StatusOK, active)
}

func (h *Handler) AdminListAlbums(w http.ResponseWriter, r *http.Request) {
	albums, err := h.Albums.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, albums)
}

func (h *Handler) AdminCreateAlbum(w http.ResponseWriter, r *http.Request) {
	var a album.Album
	if err := decodeJSON(w, r, &a); err != nil {
		writeError(w, r, err)
		return
	}
	if err := utils.Validate(a); err != nil {
		writeError(w, r, err)
		return
	}
	created, err := h.Albums.Create(r.Context(), a)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) AdminUpdateAlbum(w http.ResponseWriter, r *http.Request) {
	var a album.Album
	if err := decodeJSON(w, r, &a); err != nil {
		writeError(w, r, err)
		return
	}
	a.ID = urlParam(r, "id")
	if err := utils.Validate(a); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Albums.Update(r.Context(), a); err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, a)
}

func (h *Handler) AdminToggleAlbum(w http.ResponseWriter, r *http.Request) {
	a, err := h.Albums.ToggleActive(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, a)
}

func (h *Handler) AdminDeleteAlbum(w http.ResponseWriter, r *http.Request) {
	if err := h.Albums.Delete(r.Context(), urlParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
