// Package handler is the REST surface used by the shop pages and the admin
// screens.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"clubsite-be/internal/album"
	"clubsite-be/internal/category"
	"clubsite-be/internal/logger"
	"clubsite-be/internal/metrics"
	"clubsite-be/internal/order"
	"clubsite-be/internal/product"
	"clubsite-be/internal/ride"
	"clubsite-be/internal/siteconfig"
	"clubsite-be/internal/user"
	"clubsite-be/internal/utils"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

type Handler struct {
	Orders     order.Service
	OrderRepo  order.Repository
	Products   product.Repository
	Categories category.Repository
	Rides      ride.Service
	Albums     album.Repository
	SiteConfig siteconfig.Repository
	Users      user.Service
	Metrics    *metrics.HTTP

	// Backend names the active storage in the health response.
	Backend       string
	SecureCookies bool
	// AllowedOrigins are the browser origins granted credentialed CORS.
	AllowedOrigins []string
}

var errBadJSON = errors.New("malformed JSON body")

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", errBadJSON)
		}
		return fmt.Errorf("%w: %w", errBadJSON, err)
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, order.ErrOrderNotFound) ||
		errors.Is(err, product.ErrProductNotFound) ||
		errors.Is(err, category.ErrCategoryNotFound) ||
		errors.Is(err, ride.ErrRideNotFound) ||
		errors.Is(err, ride.ErrParticipantNotFound) ||
		errors.Is(err, album.ErrAlbumNotFound) ||
		errors.Is(err, user.ErrUserNotFound)
}

func isBadRequest(err error) bool {
	var ve validator.ValidationErrors
	return errors.As(err, &ve) ||
		errors.Is(err, errBadJSON) ||
		errors.Is(err, order.ErrInvalidInput) ||
		errors.Is(err, ride.ErrInvalidInput) ||
		errors.Is(err, user.ErrInvalidInput) ||
		errors.Is(err, siteconfig.ErrNotObject)
}

func isConflict(err error) bool {
	return errors.Is(err, product.ErrSlugTaken) ||
		errors.Is(err, category.ErrSlugTaken) ||
		errors.Is(err, user.ErrUsernameTaken) ||
		errors.Is(err, ride.ErrRideFull) ||
		errors.Is(err, ride.ErrRideClosed)
}

// writeError maps domain errors to a status and a {"error": ...} body.
// Unexpected errors are logged and answered with a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case isNotFound(err):
		utils.WriteJSONError(w, err.Error(), http.StatusNotFound)
	case isBadRequest(err):
		body := map[string]any{"error": "invalid input"}
		if fields := utils.FieldErrors(err); len(fields) > 0 {
			if _, ok := fields["_"]; !ok {
				body["fields"] = fields
			} else {
				body["error"] = err.Error()
			}
		}
		utils.WriteJSON(w, http.StatusBadRequest, body)
	case isConflict(err):
		utils.WriteJSONError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, user.ErrInvalidCredentials):
		utils.WriteJSONError(w, err.Error(), http.StatusUnauthorized)
	default:
		logger.FromCtx(r.Context()).Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		utils.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"status":  "ok",
		"backend": h.Backend,
	}
	if h.Metrics != nil {
		body["metrics"] = h.Metrics.Snapshot()
	}
	utils.WriteJSON(w, http.StatusOK, body)
}
