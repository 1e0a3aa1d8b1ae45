package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/guardino-io/guardino/internal/application/reseller/usecases"
	"github.com/guardino-io/guardino/internal/shared/logger"
	"github.com/guardino-io/guardino/internal/shared/utils"
)

type AuthHandler struct {
	authenticateUseCase *usecases.AuthenticateUseCase
	logger              logger.Interface
}

func NewAuthHandler(authenticateUC *usecases.AuthenticateUseCase, logger logger.Interface) *AuthHandler {
	return &AuthHandler{
		authenticateUseCase: authenticateUC,
		logger:              logger,
	}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	cmd := usecases.AuthenticateCommand{
		Username: req.Username,
		Password: req.Password,
	}

	result, err := h.authenticateUseCase.Execute(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "login successful", gin.H{
		"access_token": result.AccessToken,
		"token_type":   "bearer",
		"expires_in":   result.ExpiresIn,
		"reseller":     toResellerDTO(result.Reseller),
	})
}
