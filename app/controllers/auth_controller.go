package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/vyapar/app/services"
	"github.com/shashiranjanraj/vyapar/pkg/bind"
	"github.com/shashiranjanraj/vyapar/pkg/middleware"
	"github.com/shashiranjanraj/vyapar/pkg/response"
)

type AuthController struct {
	service *services.AccountService
}

func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{
		service: services.NewAccountService(db),
	}
}

// uintParam reads a numeric chi URL parameter.
func uintParam(r *http.Request, name string) (uint, bool) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var body services.RegisterInput
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	id, err := c.service.Register(body)
	if err != nil {
		response.AppError(r, w, err)
		return
	}

	response.Created(w, map[string]uint{"id": id})
}

func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	token, err := c.service.Login(body.Email, body.Password)
	if err != nil {
		response.Unauthorized(w)
		return
	}

	response.Success(w, map[string]string{"token": token})
}

func (c *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromCtx(r)
	if !ok {
		response.Unauthorized(w)
		return
	}

	account, err := c.service.Me(principal)
	if err != nil {
		response.AppError(r, w, err)
		return
	}

	response.Success(w, account)
}

func (c *AuthController) ChangePassword(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromCtx(r)
	if !ok {
		response.Unauthorized(w)
		return
	}

	var body struct {
		OldPassword string `json:"old_password" validate:"required"`
		NewPassword string `json:"new_password" validate:"required,min=8"`
	}
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	if err := c.service.ChangePassword(principal, body.OldPassword, body.NewPassword); err != nil {
		response.AppError(r, w, err)
		return
	}

	response.Success(w, map[string]string{"message": "password updated"})
}

func (c *AuthController) UpdateAddress(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromCtx(r)
	if !ok {
		response.Unauthorized(w)
		return
	}

	var body struct {
		Address string `json:"address" validate:"required,max=500"`
	}
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	if err := c.service.UpdateAddress(principal, body.Address); err != nil {
		response.AppError(r, w, err)
		return
	}

	response.Success(w, map[string]string{"message": "address updated"})
}

func (c *AuthController) UpdateRole(w http.ResponseWriter, r *http.Request) {
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
		Role string `json:"role" validate:"required"`
	}
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	if err := c.service.UpdateRole(principal, id, body.Role); err != nil {
		response.AppError(r, w, err)
		return
	}

	response.Success(w, map[string]string{"message": "role updated"})
}

func (c *AuthController) Delete(w http.ResponseWriter, r *http.Request) {
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

	response.Success(w, map[string]string{"message": "account deleted"})
}
