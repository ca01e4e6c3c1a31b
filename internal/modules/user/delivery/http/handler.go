package handler

import (
	"errors"
	"net/http"

	"github.com/budhitree/nexus-art-gallery/internal/modules/user/dto"
	user "github.com/budhitree/nexus-art-gallery/internal/modules/user/service"
	"github.com/budhitree/nexus-art-gallery/pkg/apperror"
	"github.com/budhitree/nexus-art-gallery/pkg/response"
	"github.com/budhitree/nexus-art-gallery/pkg/validator"
	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	service user.UserService
}

func NewUserHandler(service user.UserService) *UserHandler {
	return &UserHandler{service: service}
}

func (h *UserHandler) Login(c *gin.Context) {
	var req dto.LoginInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, validator.BindError(err))
		return
	}

	view, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		// an unknown account is a failed login, not a missing resource
		if errors.Is(err, apperror.ErrNotFound) {
			response.ErrorWithStatus(c, http.StatusUnauthorized, apperror.Wrap(apperror.ErrInvalidCredentials, "account does not exist"))
			return
		}
		response.Error(c, err)
		return
	}

	response.Success(c, view)
}

func (h *UserHandler) Register(c *gin.Context) {
	var req dto.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, validator.BindError(err))
		return
	}

	view, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, view)
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	view, err := h.service.GetProfile(c.Request.Context(), c.Param("userId"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, view)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req dto.UpdateProfileInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, validator.BindError(err))
		return
	}

	view, err := h.service.UpdateProfile(c.Request.Context(), c.Param("userId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, view)
}
