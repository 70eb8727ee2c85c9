package api

import (
	"strings"
	"time"

	"budget/middleware"
	"budget/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

const dateTimeLayout = "2006-01-02 15:04:05"

// TransactionHandler 交易记录处理器
type TransactionHandler struct {
	transactions *service.TransactionService
}

// NewTransactionHandler 创建交易处理器
func NewTransactionHandler(transactions *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactions: transactions}
}

// TransactionRequest 创建/编辑交易请求，金额为有符号小数，负数为支出
type TransactionRequest struct {
	Title           string           `json:"title" binding:"required,max=100" example:"超市购物"`
	Description     string           `json:"description" binding:"omitempty,max=255" example:"周末采购"`
	Amount          *decimal.Decimal `json:"amount" binding:"required" swaggertype:"string" example:"-128.50"`
	CategoryID      uint             `json:"category_id" binding:"required" example:"1"`
	TransactionDate string           `json:"transaction_date" example:"2024-01-15 12:30:00"` // 为空时使用当前时间
}

// TransactionListRequest 交易列表请求
type TransactionListRequest struct {
	Page     int `form:"page" example:"1"`
	PageSize int `form:"page_size" example:"20"`
}

func (req *TransactionRequest) input() (service.TransactionInput, map[string]string) {
	in := service.TransactionInput{
		Title:       req.Title,
		Description: req.Description,
		Amount:      *req.Amount,
		CategoryID:  req.CategoryID,
	}
	if s := strings.TrimSpace(req.TransactionDate); s != "" {
		t, err := time.ParseInLocation(dateTimeLayout, s, time.Local)
		if err != nil {
			return in, map[string]string{"transaction_date": "时间格式错误，应为: " + dateTimeLayout}
		}
		in.TransactionDate = t
	}
	return in, nil
}

// Create 记一笔交易
// @Summary 创建交易
// @Description 所有者或成员可记账，余额随金额增减
// @Tags 交易
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "账户ID"
// @Param request body TransactionRequest true "交易信息"
// @Success 200 {object} Response{data=TransactionView} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 403 {object} Response "不是该家庭成员"
// @Failure 404 {object} Response "账户或类别不存在"
// @Router /api/v1/accounts/{id}/transactions [post]
func (h *TransactionHandler) Create(c *gin.Context) {
	accountID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req TransactionRequest
	if !bindJSON(c, &req) {
		return
	}
	in, fields := req.input()
	if fields != nil {
		ValidationFailed(c, "参数错误", fields)
		return
	}
	t, err := h.transactions.Create(c.Request.Context(), middleware.GetCurrentUserID(c), accountID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	SuccessWithMessage(c, "创建成功", toTransactionView(t))
}

// List 账户交易列表
// @Summary 获取账户下的交易
// @Description 按交易时间倒序，包含已作废交易
// @Tags 交易
// @Produce json
// @Security BearerAuth
// @Param id path int true "账户ID"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} Response{data=PageResponse{list=[]TransactionView}} "获取成功"
// @Failure 403 {object} Response "不是该家庭成员"
// @Failure 404 {object} Response "账户不存在"
// @Router /api/v1/accounts/{id}/transactions [get]
func (h *TransactionHandler) List(c *gin.Context) {
	accountID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req TransactionListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		BadRequest(c, "参数错误")
		return
	}
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 || req.PageSize > 200 {
		req.PageSize = 20
	}

	list, total, err := h.transactions.Page(c.Request.Context(), middleware.GetCurrentUserID(c), accountID, req.Page, req.PageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	Success(c, PageResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		List:     mapViews(list, toTransactionView),
	})
}

// Get 交易详情
// @Summary 获取交易详情
// @Tags 交易
// @Produce json
// @Security BearerAuth
// @Param id path int true "交易ID"
// @Success 200 {object} Response{data=TransactionView} "获取成功"
// @Failure 403 {object} Response "不是该家庭成员"
// @Failure 404 {object} Response "交易不存在"
// @Router /api/v1/transactions/{id} [get]
func (h *TransactionHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	t, err := h.transactions.Get(c.Request.Context(), middleware.GetCurrentUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, toTransactionView(t))
}

// Update 编辑交易
// @Summary 编辑交易
// @Description 创建者或所有者，余额按新旧金额差调整，已作废交易不影响余额
// @Tags 交易
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "交易ID"
// @Param request body TransactionRequest true "交易信息"
// @Success 200 {object} Response{data=TransactionView} "更新成功"
// @Failure 403 {object} Response "无权编辑"
// @Failure 404 {object} Response "交易或类别不存在"
// @Router /api/v1/transactions/{id} [put]
func (h *TransactionHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req TransactionRequest
	if !bindJSON(c, &req) {
		return
	}
	in, fields := req.input()
	if fields != nil {
		ValidationFailed(c, "参数错误", fields)
		return
	}
	t, err := h.transactions.Update(c.Request.Context(), middleware.GetCurrentUserID(c), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	SuccessWithMessage(c, "更新成功", toTransactionView(t))
}

// Delete 删除交易
// @Summary 删除交易
// @Tags 交易
// @Produce json
// @Security BearerAuth
// @Param id path int true "交易ID"
// @Success 200 {object} Response "删除成功"
// @Failure 403 {object} Response "无权删除"
// @Failure 404 {object} Response "交易不存在"
// @Router /api/v1/transactions/{id} [delete]
func (h *TransactionHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.transactions.Delete(c.Request.Context(), middleware.GetCurrentUserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	SuccessWithMessage(c, "删除成功", nil)
}

// Void 作废交易
// @Summary 作废交易
// @Description 不可撤销，重复作废返回 409
// @Tags 交易
// @Produce json
// @Security BearerAuth
// @Param id path int true "交易ID"
// @Success 200 {object} Response{data=TransactionView} "作废成功"
// @Failure 403 {object} Response "无权作废"
// @Failure 404 {object} Response "交易不存在"
// @Failure 409 {object} Response "交易已作废"
// @Router /api/v1/transactions/{id}/void [post]
func (h *TransactionHandler) Void(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	t, err := h.transactions.Void(c.Request.Context(), middleware.GetCurrentUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	SuccessWithMessage(c, "作废成功", toTransactionView(t))
}
