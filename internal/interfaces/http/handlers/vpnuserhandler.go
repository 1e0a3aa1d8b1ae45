package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/guardino-io/guardino/internal/application/provisioning/usecases"
	"github.com/guardino-io/guardino/internal/shared/constants"
	"github.com/guardino-io/guardino/internal/shared/logger"
	"github.com/guardino-io/guardino/internal/shared/utils"
)

type VPNUserHandler struct {
	provisionUseCase *usecases.ProvisionUserUseCase
	deleteUseCase    *usecases.DeleteVPNUserUseCase
	logger           logger.Interface
}

func NewVPNUserHandler(
	provisionUC *usecases.ProvisionUserUseCase,
	deleteUC *usecases.DeleteVPNUserUseCase,
	logger logger.Interface,
) *VPNUserHandler {
	return &VPNUserHandler{
		provisionUseCase: provisionUC,
		deleteUseCase:    deleteUC,
		logger:           logger,
	}
}

type ProvisionUserRequest struct {
	Username       string                 `json:"username" binding:"required,min=3,max=64"`
	DataLimitGB    float64                `json:"data_limit_gb" binding:"min=0"`
	DurationDays   int                    `json:"duration_days" binding:"min=0"`
	NodeIDs        []uint                 `json:"node_ids" binding:"required,min=1"`
	ProtocolConfig map[string]interface{} `json:"protocol_config"`
}

func (h *VPNUserHandler) Provision(c *gin.Context) {
	var req ProvisionUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	cmd := usecases.ProvisionUserCommand{
		ResellerID:     c.GetUint(constants.ContextKeyResellerID),
		IsRoot:         c.GetBool(constants.ContextKeyIsRoot),
		Username:       req.Username,
		DataLimitGB:    req.DataLimitGB,
		DurationDays:   req.DurationDays,
		NodeIDs:        req.NodeIDs,
		ProtocolConfig: req.ProtocolConfig,
	}

	result, err := h.provisionUseCase.Execute(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"user":             toVPNUserDTO(result.User),
		"total_cost":       result.TotalCost,
		"subscription_url": result.SubscriptionURL,
	}, "user provisioned successfully")
}

func (h *VPNUserHandler) Delete(c *gin.Context) {
	username := c.Param("username")
	if username == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "username is required")
		return
	}

	cmd := usecases.DeleteVPNUserCommand{
		ResellerID: c.GetUint(constants.ContextKeyResellerID),
		IsRoot:     c.GetBool(constants.ContextKeyIsRoot),
		Username:   username,
	}

	result, err := h.deleteUseCase.Execute(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "user deleted", gin.H{"refunded": result.Refunded})
}
