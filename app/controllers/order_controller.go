package controllers

import (
	"net/http"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/vyapar/app/services"
	"github.com/shashiranjanraj/vyapar/pkg/bind"
	"github.com/shashiranjanraj/vyapar/pkg/middleware"
	"github.com/shashiranjanraj/vyapar/pkg/response"
)

type OrderController struct {
	service *services.OrderService
}

func NewOrderController(db *gorm.DB) *OrderController {
	return &OrderController{
		service: services.NewOrderService(db),
	}
}

func (c *OrderController) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromCtx(r)
	if !ok {
		response.Unauthorized(w)
		return
	}

	var body services.CreateOrderInput
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	id, err := c.service.Create(principal, body)
	if err != nil {
		response.AppError(r, w, err)
		return
	}

	response.Created(w, map[string]uint{"id": id})
}

func (c *OrderController) List(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromCtx(r)
	if !ok {
		response.Unauthorized(w)
		return
	}

	orders, err := c.service.List(principal)
	if err != nil {
		response.AppError(r, w, err)
		return
	}

	response.Success(w, orders)
}

func (c *OrderController) ListAll(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromCtx(r)
	if !ok {
		response.Unauthorized(w)
		return
	}

	orders, err := c.service.ListAll(principal)
	if err != nil {
		response.AppError(r, w, err)
		return
	}

	response.Success(w, orders)
}

func (c *OrderController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
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

	var body struct {
		Status string `json:"status" validate:"required"`
	}
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	if err := c.service.UpdateStatus(principal, id, body.Status); err != nil {
		response.AppError(r, w, err)
		return
	}

	response.Success(w, map[string]string{"message": "status updated"})
}

func (c *OrderController) Delete(w http.ResponseWriter, r *http.Request) {
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

	response.Success(w, map[string]string{"message": "order deleted"})
}

func (c *OrderController) DeleteItem(w http.ResponseWriter, r *http.Request) {
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

	if err := c.service.DeleteItem(principal, id); err != nil {
		response.AppError(r, w, err)
		return
	}

	response.Success(w, map[string]string{"message": "order item deleted"})
}
