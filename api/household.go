package api

import (
	"budget/middleware"
	"budget/service"

	"github.com/gin-gonic/gin"
)

// HouseholdHandler 家庭与成员管理
type HouseholdHandler struct {
	households *service.HouseholdService
}

// NewHouseholdHandler 创建家庭处理器
func NewHouseholdHandler(households *service.HouseholdService) *HouseholdHandler {
	return &HouseholdHandler{households: households}
}

// HouseholdRequest 创建/编辑家庭请求
type HouseholdRequest struct {
	Name        string `json:"name" binding:"required,max=100" example:"张家"`
	Description string `json:"description" binding:"omitempty,max=255" example:"三口之家"`
}

// InviteRequest 邀请请求
type InviteRequest struct {
	Email string `json:"email" binding:"required,email" example:"member@example.com"`
}

// Create 创建家庭
// @Summary 创建家庭
// @Description 当前用户成为家庭所有者
// @Tags 家庭
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body HouseholdRequest true "家庭信息"
// @Success 200 {object} Response{data=HouseholdView} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Router /api/v1/households [post]
func (h *HouseholdHandler) Create(c *gin.Context) {
	var req HouseholdRequest
	if !bindJSON(c, &req) {
		return
	}
	userID := middleware.GetCurrentUserID(c)
	household, err := h.households.Create(c.Request.Context(), userID, service.HouseholdInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	SuccessWithMessage(c, "创建成功", toHouseholdView(household, userID))
}

// List 我的家庭
// @Summary 获取我拥有或加入的家庭
// @Tags 家庭
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]HouseholdView} "获取成功"
// @Router /api/v1/households [get]
func (h *HouseholdHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	list, err := h.households.ListMine(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	views := make([]HouseholdView, 0, len(list))
	for i := range list {
		views = append(views, toHouseholdView(&list[i], userID))
	}
	Success(c, views)
}

// Get 家庭详情
// @Summary 获取家庭详情
// @Tags 家庭
// @Produce json
// @Security BearerAuth
// @Param id path int true "家庭ID"
// @Success 200 {object} Response{data=HouseholdView} "获取成功"
// @Failure 403 {object} Response "不是该家庭成员"
// @Failure 404 {object} Response "家庭不存在"
// @Router /api/v1/households/{id} [get]
func (h *HouseholdHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	userID := middleware.GetCurrentUserID(c)
	household, err := h.households.Get(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, toHouseholdView(household, userID))
}

// Update 编辑家庭
// @Summary 编辑家庭
// @Tags 家庭
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "家庭ID"
// @Param request body HouseholdRequest true "家庭信息"
// @Success 200 {object} Response{data=HouseholdView} "更新成功"
// @Failure 403 {object} Response "不是所有者"
// @Failure 404 {object} Response "家庭不存在"
// @Router /api/v1/households/{id} [put]
func (h *HouseholdHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req HouseholdRequest
	if !bindJSON(c, &req) {
		return
	}
	userID := middleware.GetCurrentUserID(c)
	household, err := h.households.Update(c.Request.Context(), userID, id, service.HouseholdInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	SuccessWithMessage(c, "更新成功", toHouseholdView(household, userID))
}

// Delete 删除家庭
// @Summary 删除家庭
// @Description 同时删除家庭下的类别、账户、交易与成员关系
// @Tags 家庭
// @Produce json
// @Security BearerAuth
// @Param id path int true "家庭ID"
// @Success 200 {object} Response "删除成功"
// @Failure 403 {object} Response "不是所有者"
// @Failure 404 {object} Response "家庭不存在"
// @Router /api/v1/households/{id} [delete]
func (h *HouseholdHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.households.Delete(c.Request.Context(), middleware.GetCurrentUserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	SuccessWithMessage(c, "删除成功", nil)
}

// Invite 邀请成员
// @Summary 按邮箱邀请成员
// @Description 仅所有者。重复邀请已受邀用户视为成功
// @Tags 家庭
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "家庭ID"
// @Param request body InviteRequest true "被邀请人邮箱"
// @Success 200 {object} Response "邀请成功"
// @Failure 403 {object} Response "不是所有者"
// @Failure 404 {object} Response "家庭或用户不存在"
// @Failure 409 {object} Response "对方已是所有者或成员"
// @Router /api/v1/households/{id}/invite [post]
func (h *HouseholdHandler) Invite(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req InviteRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.households.Invite(c.Request.Context(), middleware.GetCurrentUserID(c), id, req.Email); err != nil {
		respondError(c, err)
		return
	}
	SuccessWithMessage(c, "邀请成功", nil)
}

// Join 加入家庭
// @Summary 接受邀请加入家庭
// @Tags 家庭
// @Produce json
// @Security BearerAuth
// @Param id path int true "家庭ID"
// @Success 200 {object} Response{data=HouseholdView} "加入成功"
// @Failure 404 {object} Response "家庭不存在"
// @Failure 409 {object} Response "已是所有者或未受邀"
// @Router /api/v1/households/{id}/join [post]
func (h *HouseholdHandler) Join(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	userID := middleware.GetCurrentUserID(c)
	if err := h.households.Join(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}
	household, err := h.households.Get(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	SuccessWithMessage(c, "加入成功", toHouseholdView(household, userID))
}

// Leave 退出家庭
// @Summary 退出家庭
// @Description 所有者不能退出，只能删除家庭
// @Tags 家庭
// @Produce json
// @Security BearerAuth
// @Param id path int true "家庭ID"
// @Success 200 {object} Response "退出成功"
// @Failure 404 {object} Response "家庭不存在"
// @Failure 409 {object} Response "所有者或非成员"
// @Router /api/v1/households/{id}/leave [post]
func (h *HouseholdHandler) Leave(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.households.Leave(c.Request.Context(), middleware.GetCurrentUserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	SuccessWithMessage(c, "退出成功", nil)
}

// Members 成员列表
// @Summary 获取家庭成员
// @Description 所有者排在首位
// @Tags 家庭
// @Produce json
// @Security BearerAuth
// @Param id path int true "家庭ID"
// @Success 200 {object} Response{data=[]MemberView} "获取成功"
// @Failure 403 {object} Response "不是该家庭成员"
// @Failure 404 {object} Response "家庭不存在"
// @Router /api/v1/households/{id}/members [get]
func (h *HouseholdHandler) Members(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	members, err := h.households.ListMembers(c.Request.Context(), middleware.GetCurrentUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	views := make([]MemberView, 0, len(members))
	for _, m := range members {
		views = append(views, toMemberView(m))
	}
	Success(c, views)
}

// Invitations 我收到的邀请
// @Summary 获取我收到的待处理邀请
// @Tags 家庭
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]HouseholdView} "获取成功"
// @Router /api/v1/households/invitations [get]
func (h *HouseholdHandler) Invitations(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	list, err := h.households.ListInvitations(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	views := make([]HouseholdView, 0, len(list))
	for i := range list {
		views = append(views, toHouseholdView(&list[i], userID))
	}
	Success(c, views)
}
