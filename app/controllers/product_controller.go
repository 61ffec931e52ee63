package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/vyapar/app/services"
	"github.com/shashiranjanraj/vyapar/pkg/bind"
	"github.com/shashiranjanraj/vyapar/pkg/middleware"
	"github.com/shashiranjanraj/vyapar/pkg/response"
)

type ProductController struct {
	service *services.CatalogService
}

func NewProductController(db *gorm.DB) *ProductController {
	return &ProductController{
		service: services.NewCatalogService(db),
	}
}

func (c *ProductController) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			response.Error(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	products, err := c.service.List(limit)
	if err != nil {
		response.AppError(r, w, err)
		return
	}

	response.Success(w, products)
}

func (c *ProductController) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := uintParam(r, "id")
	if !ok {
		response.NotFound(w)
		return
	}

	product, err := c.service.Get(id)
	if err != nil {
		response.AppError(r, w, err)
		return
	}

	response.Success(w, product)
}

func (c *ProductController) Search(w http.ResponseWriter, r *http.Request) {
	products, err := c.service.Search(r.URL.Query().Get("q"))
	if err != nil {
		response.AppError(r, w, err)
		return
	}

	response.Success(w, products)
}

func (c *ProductController) ByCategory(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Category string `json:"category" validate:"required,max=255"`
	}
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	products, err := c.service.ByCategory(body.Category)
	if err != nil {
		response.AppError(r, w, err)
		return
	}

	response.Success(w, products)
}

// Upload accepts a multipart form: name, description, category, price, stock
// plus a "thumbnail" file part.
func (c *ProductController) Upload(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromCtx(r)
	if !ok {
		response.Unauthorized(w)
		return
	}

	// Thumbnail limit plus headroom for the text fields.
	if err := r.ParseMultipartForm(services.MaxThumbnailBytes + 1<<20); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	in, errs := parseProductForm(r)
	if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	file, header, err := r.FormFile("thumbnail")
	if err != nil {
		response.ValidationError(w, map[string]string{"thumbnail": "no file uploaded"})
		return
	}
	defer file.Close()

	id, err := c.service.Upload(principal, in, services.Thumbnail{
		Filename: header.Filename,
		Size:     header.Size,
		Content:  file,
	})
	if err != nil {
		response.AppError(r, w, err)
		return
	}

	response.Created(w, map[string]uint{"id": id})
}

// parseProductForm reads the text fields of the upload form.
func parseProductForm(r *http.Request) (services.UploadProductInput, map[string]string) {
	errs := make(map[string]string)
	in := services.UploadProductInput{
		Name:        strings.TrimSpace(r.FormValue("name")),
		Description: strings.TrimSpace(r.FormValue("description")),
		Category:    strings.TrimSpace(r.FormValue("category")),
	}

	if in.Name == "" {
		errs["name"] = "name is required"
	}
	if in.Category == "" {
		errs["category"] = "category is required"
	}

	price, err := strconv.ParseFloat(r.FormValue("price"), 64)
	if err != nil || price < 0 {
		errs["price"] = "price must be a non-negative number"
	}
	in.Price = price

	stock, err := strconv.Atoi(r.FormValue("stock"))
	if err != nil || stock < 0 {
		errs["stock"] = "stock must be a non-negative integer"
	}
	in.Stock = stock

	if len(errs) > 0 {
		return in, errs
	}
	return in, nil
}

func (c *ProductController) Update(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromCtx(r)
	if !ok {
		response.Unauthorized(w)
		return
	}

	id, ok := uintParam(r, "id")
	if !ok {
		response.NotFound(w)
		return
	}

	var body services.UpdateProductInput
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	if err := c.service.Update(principal, id, body); err != nil {
		response.AppError(r, w, err)
		return
	}

	response.Success(w, map[string]string{"message": "product updated"})
}

func (c *ProductController) Delete(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromCtx(r)
	if !ok {
		response.Unauthorized(w)
		return
	}

	id, ok := uintParam(r, "id")
	if !ok {
		response.NotFound(w)
		return
	}

	if err := c.service.Delete(principal, id); err != nil {
		response.AppError(r, w, err)
		return
	}

	response.Success(w, map[string]string{"message": "product deleted"})
}
