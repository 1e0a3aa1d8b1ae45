package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/guardino-io/guardino/internal/application/node/usecases"
	"github.com/guardino-io/guardino/internal/shared/constants"
	"github.com/guardino-io/guardino/internal/shared/logger"
	"github.com/guardino-io/guardino/internal/shared/utils"
)

type NodeHandler struct {
	createNodeUseCase     *usecases.CreateNodeUseCase
	listNodesUseCase      *usecases.ListNodesUseCase
	updateStatusUseCase   *usecases.UpdateNodeStatusUseCase
	deleteNodeUseCase     *usecases.DeleteNodeUseCase
	allocateNodeUseCase   *usecases.AllocateNodeUseCase
	deallocateNodeUseCase *usecases.DeallocateNodeUseCase
	logger                logger.Interface
}

func NewNodeHandler(
	createNodeUC *usecases.CreateNodeUseCase,
	listNodesUC *usecases.ListNodesUseCase,
	updateStatusUC *usecases.UpdateNodeStatusUseCase,
	deleteNodeUC *usecases.DeleteNodeUseCase,
	allocateNodeUC *usecases.AllocateNodeUseCase,
	deallocateNodeUC *usecases.DeallocateNodeUseCase,
	logger logger.Interface,
) *NodeHandler {
	return &NodeHandler{
		createNodeUseCase:     createNodeUC,
		listNodesUseCase:      listNodesUC,
		updateStatusUseCase:   updateStatusUC,
		deleteNodeUseCase:     deleteNodeUC,
		allocateNodeUseCase:   allocateNodeUC,
		deallocateNodeUseCase: deallocateNodeUC,
		logger:                logger,
	}
}

type CreateNodeRequest struct {
	Name               string                 `json:"name" binding:"required,min=1,max=128"`
	PanelType          string                 `json:"panel_type" binding:"required,paneltype"`
	APIURL             string                 `json:"api_url" binding:"required,url"`
	Credential         string                 `json:"credential" binding:"required"`
	Settings           map[string]interface{} `json:"settings"`
	VisibleInAggregate *bool                  `json:"visible_in_aggregate"`
}

func (h *NodeHandler) Create(c *gin.Context) {
	var req CreateNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	visible := true
	if req.VisibleInAggregate != nil {
		visible = *req.VisibleInAggregate
	}

	cmd := usecases.CreateNodeCommand{
		Name:               req.Name,
		PanelType:          req.PanelType,
		APIURL:             req.APIURL,
		Credential:         req.Credential,
		Settings:           req.Settings,
		VisibleInAggregate: visible,
	}

	result, err := h.createNodeUseCase.Execute(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, toNodeDTO(result.Node), "node created successfully")
}

func (h *NodeHandler) List(c *gin.Context) {
	cmd := usecases.ListNodesCommand{
		ActorID: c.GetUint(constants.ContextKeyResellerID),
		IsRoot:  c.GetBool(constants.ContextKeyIsRoot),
	}

	result, err := h.listNodesUseCase.Execute(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	dtos := make([]NodeDTO, 0, len(result.Nodes))
	for _, n := range result.Nodes {
		dtos = append(dtos, toNodeDTO(n))
	}

	utils.SuccessResponse(c, http.StatusOK, "success", gin.H{"nodes": dtos})
}

type UpdateNodeStatusRequest struct {
	Status             string `json:"status" binding:"omitempty,oneof=active maintenance offline"`
	VisibleInAggregate *bool  `json:"visible_in_aggregate"`
}

func (h *NodeHandler) UpdateStatus(c *gin.Context) {
	nodeID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid node id")
		return
	}

	var req UpdateNodeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	cmd := usecases.UpdateNodeStatusCommand{
		NodeID:             uint(nodeID),
		Status:             req.Status,
		VisibleInAggregate: req.VisibleInAggregate,
	}

	result, err := h.updateStatusUseCase.Execute(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "node updated", toNodeDTO(result.Node))
}

func (h *NodeHandler) Delete(c *gin.Context) {
	nodeID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid node id")
		return
	}

	if err := h.deleteNodeUseCase.Execute(c.Request.Context(), usecases.DeleteNodeCommand{NodeID: uint(nodeID)}); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "node deleted", nil)
}

type AllocateNodeRequest struct {
	ResellerID        uint   `json:"reseller_id" binding:"required"`
	CustomPricePerGB  *int64 `json:"custom_price_per_gb"`
	CustomPricePerDay *int64 `json:"custom_price_per_day"`
}

func (h *NodeHandler) Allocate(c *gin.Context) {
	nodeID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid node id")
		return
	}

	var req AllocateNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	cmd := usecases.AllocateNodeCommand{
		ResellerID:        req.ResellerID,
		NodeID:            uint(nodeID),
		CustomPricePerGB:  req.CustomPricePerGB,
		CustomPricePerDay: req.CustomPricePerDay,
	}

	result, err := h.allocateNodeUseCase.Execute(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, toAllocationDTO(result.Allocation), "node allocated")
}

func (h *NodeHandler) Deallocate(c *gin.Context) {
	nodeID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid node id")
		return
	}

	resellerID, err := strconv.ParseUint(c.Param("reseller_id"), 10, 32)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid reseller id")
		return
	}

	cmd := usecases.DeallocateNodeCommand{
		ResellerID: uint(resellerID),
		NodeID:     uint(nodeID),
	}

	if err := h.deallocateNodeUseCase.Execute(c.Request.Context(), cmd); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "node deallocated", nil)
}
