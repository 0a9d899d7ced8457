package rest

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/JoeShih716/go-mem-accounting/internal/app/core/domain"
)

// AccountService REST 層需要的業務操作
type AccountService interface {
	ListAccounts(ctx context.Context) []domain.AccountView
	GetAccount(ctx context.Context, id int64) (domain.AccountView, bool)
	CreateAccount(ctx context.Context, name string, funds decimal.Decimal) (domain.AccountView, error)
	TransferFunds(ctx context.Context, sourceID, targetID int64, amount decimal.Decimal) (domain.AccountView, error)
}

const (
	msgInvalidID          = "Invalid account id format"
	msgAccountNotFound    = "Cannot find account by provided id"
	msgInvalidRequestData = "Invalid request data format"
	msgUnknownMethod      = "Unknown requested method"
	msgServiceError       = "Service error, contact support team"
)

type Handler struct {
	svc    AccountService
	logger *zap.Logger
}

func NewHandler(svc AccountService, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

// createAccountRequest 金額可為 JSON 字串或數字
type createAccountRequest struct {
	Name         string           `json:"name"`
	InitialFunds *decimal.Decimal `json:"initialFunds"`
}

type transferRequest struct {
	SourceID int64            `json:"sourceId"`
	TargetID int64            `json:"targetId"`
	Amount   *decimal.Decimal `json:"amount"`
}

type allAccountsResponse struct {
	Accounts []domain.AccountView `json:"accounts"`
}

// ListAccounts GET /accounts
func (h *Handler) ListAccounts(c *gin.Context) {
	c.JSON(http.StatusOK, allAccountsResponse{Accounts: h.svc.ListAccounts(c.Request.Context())})
}

// GetAccount GET /accounts/:id
func (h *Handler) GetAccount(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondMessage(c, http.StatusBadRequest, msgInvalidID)
		return
	}
	view, ok := h.svc.GetAccount(c.Request.Context(), id)
	if !ok {
		respondMessage(c, http.StatusNotFound, msgAccountNotFound)
		return
	}
	c.JSON(http.StatusOK, view)
}

// CreateAccount POST /accounts/create
func (h *Handler) CreateAccount(c *gin.Context) {
	var req createAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.InitialFunds == nil {
		respondMessage(c, http.StatusBadRequest, msgInvalidRequestData)
		return
	}
	view, err := h.svc.CreateAccount(c.Request.Context(), req.Name, domain.RoundFunds(*req.InitialFunds))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// TransferFunds POST /transfer，成功時回傳來源帳戶
func (h *Handler) TransferFunds(c *gin.Context) {
	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Amount == nil {
		respondMessage(c, http.StatusBadRequest, msgInvalidRequestData)
		return
	}
	view, err := h.svc.TransferFunds(c.Request.Context(), req.SourceID, req.TargetID, domain.RoundFunds(*req.Amount))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Health GET /health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// respondError 業務錯誤對應到 4xx，其餘一律視為服務異常
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		respondMessage(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrAccountNotFound):
		respondMessage(c, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInsufficientFunds):
		respondMessage(c, http.StatusConflict, err.Error())
	default:
		h.logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		respondMessage(c, http.StatusInternalServerError, msgServiceError)
	}
}
