package api

import (
	"budget/middleware"
	"budget/service"

	"github.com/gin-gonic/gin"
)

// AccountHandler 银行账户管理
type AccountHandler struct {
	accounts *service.AccountService
}

// NewAccountHandler 创建账户处理器
func NewAccountHandler(accounts *service.AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// AccountRequest 创建/编辑账户请求，余额不可直接设置
type AccountRequest struct {
	Name        string `json:"name" binding:"required,max=100" example:"招商银行储蓄卡"`
	Description string `json:"description" binding:"omitempty,max=255"`
}

// List 家庭账户列表
// @Summary 获取家庭的银行账户
// @Tags 银行账户
// @Produce json
// @Security BearerAuth
// @Param id path int true "家庭ID"
// @Success 200 {object} Response{data=[]AccountView} "获取成功"
// @Failure 403 {object} Response "不是该家庭成员"
// @Failure 404 {object} Response "家庭不存在"
// @Router /api/v1/households/{id}/accounts [get]
func (h *AccountHandler) List(c *gin.Context) {
	householdID, ok := pathID(c, "id")
	if !ok {
		return
	}
	list, err := h.accounts.List(c.Request.Context(), middleware.GetCurrentUserID(c), householdID)
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, mapViews(list, toAccountView))
}

// Create 创建账户
// @Summary 创建银行账户
// @Description 仅所有者，初始余额为 0
// @Tags 银行账户
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "家庭ID"
// @Param request body AccountRequest true "账户信息"
// @Success 200 {object} Response{data=AccountView} "创建成功"
// @Failure 403 {object} Response "不是所有者"
// @Failure 404 {object} Response "家庭不存在"
// @Router /api/v1/households/{id}/accounts [post]
func (h *AccountHandler) Create(c *gin.Context) {
	householdID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req AccountRequest
	if !bindJSON(c, &req) {
		return
	}
	account, err := h.accounts.Create(c.Request.Context(), middleware.GetCurrentUserID(c), householdID, service.AccountInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	SuccessWithMessage(c, "创建成功", toAccountView(account))
}

// Get 账户详情
// @Summary 获取银行账户详情
// @Tags 银行账户
// @Produce json
// @Security BearerAuth
// @Param id path int true "账户ID"
// @Success 200 {object} Response{data=AccountView} "获取成功"
// @Failure 403 {object} Response "不是该家庭成员"
// @Failure 404 {object} Response "账户不存在"
// @Router /api/v1/accounts/{id} [get]
func (h *AccountHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	account, err := h.accounts.Get(c.Request.Context(), middleware.GetCurrentUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, toAccountView(account))
}

// Update 编辑账户
// @Summary 编辑银行账户
// @Tags 银行账户
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "账户ID"
// @Param request body AccountRequest true "账户信息"
// @Success 200 {object} Response{data=AccountView} "更新成功"
// @Failure 403 {object} Response "不是所有者"
// @Failure 404 {object} Response "账户不存在"
// @Router /api/v1/accounts/{id} [put]
func (h *AccountHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req AccountRequest
	if !bindJSON(c, &req) {
		return
	}
	account, err := h.accounts.Update(c.Request.Context(), middleware.GetCurrentUserID(c), id, service.AccountInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	SuccessWithMessage(c, "更新成功", toAccountView(account))
}

// Delete 删除账户
// @Summary 删除银行账户
// @Description 同时删除账户下的全部交易
// @Tags 银行账户
// @Produce json
// @Security BearerAuth
// @Param id path int true "账户ID"
// @Success 200 {object} Response "删除成功"
// @Failure 403 {object} Response "不是所有者"
// @Failure 404 {object} Response "账户不存在"
// @Router /api/v1/accounts/{id} [delete]
func (h *AccountHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.accounts.Delete(c.Request.Context(), middleware.GetCurrentUserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	SuccessWithMessage(c, "删除成功", nil)
}

// Recalculate 重新计算余额
// @Summary 按未作废交易重新计算余额
// @Tags 银行账户
// @Produce json
// @Security BearerAuth
// @Param id path int true "账户ID"
// @Success 200 {object} Response{data=AccountView} "计算成功"
// @Failure 403 {object} Response "不是所有者"
// @Failure 404 {object} Response "账户不存在"
// @Router /api/v1/accounts/{id}/recalculate [post]
func (h *AccountHandler) Recalculate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	account, err := h.accounts.Recalculate(c.Request.Context(), middleware.GetCurrentUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, toAccountView(account))
}
