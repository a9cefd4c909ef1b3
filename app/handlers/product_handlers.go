package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Rakhulsr/techstore-api/app/helpers"
	"github.com/Rakhulsr/techstore-api/app/models"
	"github.com/Rakhulsr/techstore-api/app/repositories"
	"github.com/Rakhulsr/techstore-api/app/resources"
	"github.com/Rakhulsr/techstore-api/app/services"
	"github.com/Rakhulsr/techstore-api/app/utils/apperr"
	"github.com/Rakhulsr/techstore-api/app/utils/storage"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/unrolled/render"
)

type ProductHandler struct {
	render    *render.Render
	catalog   *services.CatalogService
	files     storage.Storage
	validator *validator.Validate
	appURL    string
}

func NewProductHandler(r *render.Render, catalog *services.CatalogService, files storage.Storage, validator *validator.Validate, appURL string) *ProductHandler {
	return &ProductHandler{
		render:    r,
		catalog:   catalog,
		files:     files,
		validator: validator,
		appURL:    strings.TrimRight(appURL, "/"),
	}
}

type createProductRequest struct {
	CategoryID  *string `json:"category_id" validate:"required,number"`
	Name        *string `json:"name" validate:"required,max=255"`
	Slug        *string `json:"slug" validate:"omitnil,max=255"`
	Description *string `json:"description"`
	Price       *string `json:"price" validate:"required,money"`
	Stock       *string `json:"stock" validate:"required,number"`
	IsActive    *string `json:"is_active" validate:"omitnil,boolean"`
}

type updateProductRequest struct {
	CategoryID  *string `json:"category_id" validate:"omitnil,number"`
	Name        *string `json:"name" validate:"omitnil,max=255"`
	Slug        *string `json:"slug" validate:"omitnil,max=255"`
	Description *string `json:"description"`
	Price       *string `json:"price" validate:"omitnil,money"`
	Stock       *string `json:"stock" validate:"omitnil,number"`
	IsActive    *string `json:"is_active" validate:"omitnil,boolean"`
}

type paginationLinks struct {
	First string  `json:"first"`
	Last  string  `json:"last"`
	Prev  *string `json:"prev"`
	Next  *string `json:"next"`
}

type paginationMeta struct {
	CurrentPage int    `json:"current_page"`
	From        *int   `json:"from"`
	LastPage    int    `json:"last_page"`
	Path        string `json:"path"`
	PerPage     int    `json:"per_page"`
	To          *int   `json:"to"`
	Total       int64  `json:"total"`
}

type productPageResponse struct {
	Data  []resources.Product `json:"data"`
	Links paginationLinks     `json:"links"`
	Meta  paginationMeta      `json:"meta"`
}

func parseUint(s string) (uint, bool) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(n), true
}

func parseCategoryID(s string) (uint, error) {
	id, ok := parseUint(s)
	if !ok {
		return 0, apperr.FieldError("category_id", "The selected category id is invalid.")
	}
	return id, nil
}

// parseStock fails on values outside the stock column instead of saturating.
func parseStock(s string) (int, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
	if err != nil || n < 0 {
		return 0, apperr.FieldError("stock", fmt.Sprintf("The stock field must be between 0 and %d.", services.MaxStock))
	}
	return int(n), nil
}

func parsePrice(s string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, apperr.FieldError("price", "The price field must be a number.")
	}
	return price, nil
}

func parseOptionalBool(s *string) (*bool, error) {
	if s == nil {
		return nil, nil
	}
	b, err := helpers.ParseBool(*s)
	if err != nil {
		return nil, apperr.FieldError("is_active", "The is active field must be true or false.")
	}
	return &b, nil
}

func pageURL(path string, page int) string {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	return path + "?" + q.Encode()
}

func (h *ProductHandler) newPageResponse(r *http.Request, page *services.ProductPage) productPageResponse {
	path := h.appURL + r.URL.Path
	res := productPageResponse{
		Data: resources.NewProducts(page.Items, h.files),
		Links: paginationLinks{
			First: pageURL(path, 1),
			Last:  pageURL(path, page.TotalPages),
		},
		Meta: paginationMeta{
			CurrentPage: page.Page,
			LastPage:    page.TotalPages,
			Path:        path,
			PerPage:     page.PerPage,
			Total:       page.TotalCount,
		},
	}
	if len(page.Items) > 0 {
		from := (page.Page-1)*page.PerPage + 1
		to := from + len(page.Items) - 1
		res.Meta.From = &from
		res.Meta.To = &to
	}
	if page.Page > 1 {
		prev := pageURL(path, page.Page-1)
		res.Links.Prev = &prev
	}
	if page.Page < page.TotalPages {
		next := pageURL(path, page.Page+1)
		res.Links.Next = &next
	}
	return res
}

// Index lists products. active=0 widens the listing to inactive products
// for administrators only.
func (h *ProductHandler) Index(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := repositories.ProductFilter{
		Search:     q.Get("search"),
		ActiveOnly: true,
	}
	filter.Page, _ = strconv.Atoi(q.Get("page"))
	filter.PerPage, _ = strconv.Atoi(q.Get("per_page"))

	if raw := strings.TrimSpace(q.Get("category_id")); raw != "" {
		// an unparsable id matches nothing
		id, _ := parseUint(raw)
		filter.CategoryID = &id
	}

	if q.Get("active") == "0" {
		if user, ok := helpers.UserFromContext(r.Context()); ok && user.IsAdmin {
			filter.ActiveOnly = false
		}
	}

	page, err := h.catalog.ListProducts(r.Context(), filter)
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, h.newPageResponse(r, page))
}

func (h *ProductHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := helpers.PathID(r, "id", "Product not found.")
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	product, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	h.renderProduct(w, http.StatusOK, product)
}

func (h *ProductHandler) renderProduct(w http.ResponseWriter, status int, product *models.Product) {
	_ = h.render.JSON(w, status, map[string]any{"data": resources.NewProduct(product, h.files)})
}

func (h *ProductHandler) Store(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	in, err := helpers.ParseRequest(r, h.validator, &req)
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}

	categoryID, err := parseCategoryID(*req.CategoryID)
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	stock, err := parseStock(*req.Stock)
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	price, err := parsePrice(*req.Price)
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	isActive, err := parseOptionalBool(req.IsActive)
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}

	upload, closeUpload, err := in.Upload("image")
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	defer closeUpload()

	product, err := h.catalog.CreateProduct(r.Context(), services.ProductInput{
		CategoryID:  categoryID,
		Name:        *req.Name,
		Slug:        deref(req.Slug),
		Description: req.Description,
		Price:       price,
		Stock:       stock,
		IsActive:    isActive,
		Image:       upload,
	})
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	h.renderProduct(w, http.StatusCreated, product)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := helpers.PathID(r, "id", "Product not found.")
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}

	var req updateProductRequest
	in, err := helpers.ParseRequest(r, h.validator, &req)
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}

	patch := services.ProductPatch{
		Name:             req.Name,
		Slug:             req.Slug,
		Description:      req.Description,
		ClearDescription: in.Has("description") && req.Description == nil,
	}
	if req.CategoryID != nil {
		categoryID, err := parseCategoryID(*req.CategoryID)
		if err != nil {
			helpers.RenderError(h.render, w, r, err)
			return
		}
		patch.CategoryID = &categoryID
	}
	if req.Price != nil {
		price, err := parsePrice(*req.Price)
		if err != nil {
			helpers.RenderError(h.render, w, r, err)
			return
		}
		patch.Price = &price
	}
	if req.Stock != nil {
		stock, err := parseStock(*req.Stock)
		if err != nil {
			helpers.RenderError(h.render, w, r, err)
			return
		}
		patch.Stock = &stock
	}
	if patch.IsActive, err = parseOptionalBool(req.IsActive); err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}

	upload, closeUpload, err := in.Upload("image")
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	defer closeUpload()
	patch.Image = upload

	product, err := h.catalog.UpdateProduct(r.Context(), id, patch)
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	h.renderProduct(w, http.StatusOK, product)
}

func (h *ProductHandler) Destroy(w http.ResponseWriter, r *http.Request) {
	id, err := helpers.PathID(r, "id", "Product not found.")
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	if err := h.catalog.DeleteProduct(r.Context(), id); err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	helpers.RenderMessage(h.render, w, http.StatusOK, "Product deleted.")
}
