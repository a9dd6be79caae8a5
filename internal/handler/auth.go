package handler

import (
	"net/http"
	"time"

	"clubsite-be/internal/auth"
	"clubsite-be/internal/user"
	"clubsite-be/internal/utils"
)

const sessionTTL = 24 * time.Hour

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var in user.LoginInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	if err := utils.Validate(in); err != nil {
		writeError(w, r, err)
		return
	}

	token, u, err := h.Users.Login(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	auth.SetAccessTokenCookie(w, token, sessionTTL, h.SecureCookies)
	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  u,
	})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearAccessTokenCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// Me echoes the caller's identity from the verified token.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		utils.WriteJSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	perms, _ := ctx.Value(utils.UserPermissionsKey).([]string)
	if perms == nil {
		perms = []string{}
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"id":          id,
		"username":    utils.GetUsernameFromContext(ctx),
		"role":        utils.GetUserRoleFromContext(ctx),
		"permissions": perms,
	})
}

func (h *Handler) AdminListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, users)
}

func (h *Handler) AdminCreateUser(w http.ResponseWriter, r *http.Request) {
	var in user.RegisterInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	u, err := h.Users.Register(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, u)
}

func (h *Handler) AdminDeleteUser(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")
	if self, _ := utils.GetUserIDFromContext(r.Context()); self == id {
		utils.WriteJSONError(w, "cannot delete your own account", http.StatusBadRequest)
		return
	}
	if err := h.Users.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
