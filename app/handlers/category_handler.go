package handlers

import (
	"net/http"

	"github.com/Rakhulsr/techstore-api/app/helpers"
	"github.com/Rakhulsr/techstore-api/app/models"
	"github.com/Rakhulsr/techstore-api/app/resources"
	"github.com/Rakhulsr/techstore-api/app/services"
	"github.com/go-playground/validator/v10"
	"github.com/unrolled/render"
)

type CategoryHandler struct {
	render    *render.Render
	catalog   *services.CatalogService
	validator *validator.Validate
}

func NewCategoryHandler(r *render.Render, catalog *services.CatalogService, validator *validator.Validate) *CategoryHandler {
	return &CategoryHandler{render: r, catalog: catalog, validator: validator}
}

type createCategoryRequest struct {
	Name        *string `json:"name" validate:"required,max=255"`
	Slug        *string `json:"slug" validate:"omitnil,max=255"`
	Description *string `json:"description"`
}

type updateCategoryRequest struct {
	Name        *string `json:"name" validate:"omitnil,max=255"`
	Slug        *string `json:"slug" validate:"omitnil,max=255"`
	Description *string `json:"description"`
}

func (h *CategoryHandler) renderCategory(w http.ResponseWriter, status int, category *models.Category) {
	_ = h.render.JSON(w, status, map[string]any{"data": resources.NewCategory(category)})
}

func (h *CategoryHandler) Index(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, map[string]any{"data": resources.NewCategories(categories)})
}

func (h *CategoryHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := helpers.PathID(r, "id", "Category not found.")
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	category, err := h.catalog.GetCategory(r.Context(), id)
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	h.renderCategory(w, http.StatusOK, category)
}

func (h *CategoryHandler) Store(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if _, err := helpers.ParseRequest(r, h.validator, &req); err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}

	category, err := h.catalog.CreateCategory(r.Context(), services.CategoryInput{
		Name:        *req.Name,
		Slug:        deref(req.Slug),
		Description: req.Description,
	})
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	h.renderCategory(w, http.StatusCreated, category)
}

func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := helpers.PathID(r, "id", "Category not found.")
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}

	var req updateCategoryRequest
	in, err := helpers.ParseRequest(r, h.validator, &req)
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}

	category, err := h.catalog.UpdateCategory(r.Context(), id, services.CategoryPatch{
		Name:             req.Name,
		Slug:             req.Slug,
		Description:      req.Description,
		ClearDescription: in.Has("description") && req.Description == nil,
	})
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	h.renderCategory(w, http.StatusOK, category)
}

func (h *CategoryHandler) Destroy(w http.ResponseWriter, r *http.Request) {
	id, err := helpers.PathID(r, "id", "Category not found.")
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	if err := h.catalog.DeleteCategory(r.Context(), id); err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	helpers.RenderMessage(h.render, w, http.StatusOK, "Category deleted.")
}
