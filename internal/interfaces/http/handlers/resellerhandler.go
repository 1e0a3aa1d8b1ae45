package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/guardino-io/guardino/internal/application/reseller/usecases"
	"github.com/guardino-io/guardino/internal/shared/constants"
	"github.com/guardino-io/guardino/internal/shared/logger"
	"github.com/guardino-io/guardino/internal/shared/utils"
)

type ResellerHandler struct {
	createResellerUseCase *usecases.CreateResellerUseCase
	listResellersUseCase  *usecases.ListResellersUseCase
	adjustWalletUseCase   *usecases.AdjustWalletUseCase
	ledgerHistoryUseCase  *usecases.LedgerHistoryUseCase
	logger                logger.Interface
}

func NewResellerHandler(
	createResellerUC *usecases.CreateResellerUseCase,
	listResellersUC *usecases.ListResellersUseCase,
	adjustWalletUC *usecases.AdjustWalletUseCase,
	ledgerHistoryUC *usecases.LedgerHistoryUseCase,
	logger logger.Interface,
) *ResellerHandler {
	return &ResellerHandler{
		createResellerUseCase: createResellerUC,
		listResellersUseCase:  listResellersUC,
		adjustWalletUseCase:   adjustWalletUC,
		ledgerHistoryUseCase:  ledgerHistoryUC,
		logger:                logger,
	}
}

type CreateResellerRequest struct {
	Username       string `json:"username" binding:"required,min=3,max=64"`
	Password       string `json:"password" binding:"required,min=8"`
	PricePerGB     int64  `json:"price_per_gb" binding:"min=0"`
	PriceMasterSub int64  `json:"price_master_sub" binding:"min=0"`
	DailyFee       int64  `json:"daily_fee" binding:"min=0"`
	CanCreateSub   bool   `json:"can_create_sub"`
}

func (h *ResellerHandler) Create(c *gin.Context) {
	var req CreateResellerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	cmd := usecases.CreateResellerCommand{
		ActorID:        c.GetUint(constants.ContextKeyResellerID),
		Username:       req.Username,
		Password:       req.Password,
		PricePerGB:     req.PricePerGB,
		PriceMasterSub: req.PriceMasterSub,
		DailyFee:       req.DailyFee,
		CanCreateSub:   req.CanCreateSub,
	}

	result, err := h.createResellerUseCase.Execute(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, toResellerDTO(result.Reseller), "reseller created successfully")
}

func (h *ResellerHandler) List(c *gin.Context) {
	cmd := usecases.ListResellersCommand{
		ActorID: c.GetUint(constants.ContextKeyResellerID),
		IsRoot:  c.GetBool(constants.ContextKeyIsRoot),
	}

	result, err := h.listResellersUseCase.Execute(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	dtos := make([]ResellerDTO, 0, len(result.Resellers))
	for _, r := range result.Resellers {
		dtos = append(dtos, toResellerDTO(r))
	}

	utils.SuccessResponse(c, http.StatusOK, "success", gin.H{"resellers": dtos})
}

type AdjustWalletRequest struct {
	Amount      int64  `json:"amount" binding:"required"`
	Description string `json:"description"`
}

func (h *ResellerHandler) AdjustWallet(c *gin.Context) {
	targetID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid reseller id")
		return
	}

	var req AdjustWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	cmd := usecases.AdjustWalletCommand{
		ActorID:     c.GetUint(constants.ContextKeyResellerID),
		IsRoot:      c.GetBool(constants.ContextKeyIsRoot),
		TargetID:    uint(targetID),
		Amount:      req.Amount,
		Description: req.Description,
	}

	result, err := h.adjustWalletUseCase.Execute(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "wallet adjusted", gin.H{"balance": result.Balance})
}

// LedgerHistory serves the actor's own ledger, or a child's when the
// target query parameter names one.
func (h *ResellerHandler) LedgerHistory(c *gin.Context) {
	cmd := usecases.LedgerHistoryCommand{
		ActorID: c.GetUint(constants.ContextKeyResellerID),
		IsRoot:  c.GetBool(constants.ContextKeyIsRoot),
	}

	if raw := c.Query("reseller_id"); raw != "" {
		targetID, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "invalid reseller_id")
			return
		}
		cmd.TargetID = uint(targetID)
	}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			utils.ErrorResponse(c, http.StatusBadRequest, "invalid limit")
			return
		}
		cmd.Limit = limit
	}

	result, err := h.ledgerHistoryUseCase.Execute(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	entries := make([]LedgerEntryDTO, 0, len(result.Entries))
	for _, e := range result.Entries {
		entries = append(entries, toLedgerEntryDTO(e))
	}

	utils.SuccessResponse(c, http.StatusOK, "success", gin.H{
		"entries": entries,
		"balance": result.Balance,
	})
}
