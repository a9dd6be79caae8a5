package handler

import (
	"errors"
	"net/http"

	"clubsite-be/internal/category"
	"clubsite-be/internal/product"
	"clubsite-be/internal/utils"
)

// ListProducts serves the shop: active products, optionally narrowed to the
// category named by ?category=<slug>.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	opts := product.ListOptions{OnlyActive: true}

	if slug := r.URL.Query().Get("category"); slug != "" {
		c, err := h.Categories.GetBySlug(ctx, slug)
		if errors.Is(err, category.ErrCategoryNotFound) {
			utils.WriteJSON(w, http.StatusOK, []product.Product{})
			return
		}
		if err != nil {
			writeError(w, r, err)
			return
		}
		opts.CategoryID = c.ID
	}

	products, err := h.Products.List(ctx, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, products)
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.Products.GetBySlug(r.Context(), urlParam(r, "slug"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !p.Active {
		writeError(w, r, product.ErrProductNotFound)
		return
	}
	utils.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	all, err := h.Categories.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	active := []category.Category{}
	for _, c := range all {
		if c.Active {
			active = append(active, c)
		}
	}
	utils.WriteJSON(w, http.StatusOK, active)
}

func (h *Handler) AdminListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.Products.List(r.Context(), product.ListOptions{})
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, products)
}

func (h *Handler) AdminCreateProduct(w http.ResponseWriter, r *http.Request) {
	var p product.Product
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	if err := utils.Validate(p); err != nil {
		writeError(w, r, err)
		return
	}
	created, err := h.Products.Create(r.Context(), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) AdminUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var p product.Product
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	p.ID = urlParam(r, "id")
	if err := utils.Validate(p); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Products.Update(r.Context(), p); err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) AdminToggleProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.Products.ToggleActive(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) AdminDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.Products.Delete(r.Context(), urlParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AdminListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Categories.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, categories)
}

func (h *Handler) AdminCreateCategory(w http.ResponseWriter, r *http.Request) {
	var c category.Category
	if err := decodeJSON(w, r, &c); err != nil {
		writeError(w, r, err)
		return
	}
	if err := utils.Validate(c); err != nil {
		writeError(w, r, err)
		return
	}
	created, err := h.Categories.Create(r.Context(), c)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) AdminUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var c category.Category
	if err := decodeJSON(w, r, &c); err != nil {
		writeError(w, r, err)
		return
	}
	c.ID = urlParam(r, "id")
	if err := utils.Validate(c); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Categories.Update(r.Context(), c); err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) AdminToggleCategory(w http.ResponseWriter, r *http.Request) {
	c, err := h.Categories.ToggleActive(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) AdminDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.Categories.Delete(r.Context(), urlParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
