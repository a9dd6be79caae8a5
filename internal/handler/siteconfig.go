package handler

import (
	"encoding/json"
	"net/http"

	"clubsite-be/internal/utils"
)

func (h *Handler) GetSiteConfig(w http.ResponseWriter, r *http.Request) {
	data, err := h.SiteConfig.Get(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, data)
}

func (h *Handler) AdminSaveSiteConfig(w http.ResponseWriter, r *http.Request) {
	var data json.RawMessage
	if err := decodeJSON(w, r, &data); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.SiteConfig.Save(r.Context(), data); err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, data)
}
