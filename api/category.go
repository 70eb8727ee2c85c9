package api

import (
	"budget/middleware"
	"budget/service"

	"github.com/gin-gonic/gin"
)

// CategoryHandler 家庭交易类别管理
type CategoryHandler struct {
	categories *service.CategoryService
}

func NewCategoryHandler(categories *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

type CategoryRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=50" example:"餐饮"`
	Description string `json:"description" binding:"omitempty,max=255"`
}

// List 家庭类别列表
// @Summary 获取家庭的类别列表
// @Tags 类别
// @Produce json
// @Security BearerAuth
// @Param id path int true "家庭ID"
// @Success 200 {object} Response{data=[]CategoryView} "获取成功"
// @Failure 403 {object} Response "不是该家庭成员"
// @Failure 404 {object} Response "家庭不存在"
// @Router /api/v1/households/{id}/categories [get]
func (h *CategoryHandler) List(c *gin.Context) {
	householdID, ok := pathID(c, "id")
	if !ok {
		return
	}
	list, err := h.categories.List(c.Request.Context(), middleware.GetCurrentUserID(c), householdID)
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, mapViews(list, toCategoryView))
}

// Create 创建类别
// @Summary 创建类别
// @Description 仅所有者
// @Tags 类别
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "家庭ID"
// @Param request body CategoryRequest true "类别信息"
// @Success 200 {object} Response{data=CategoryView} "创建成功"
// @Failure 403 {object} Response "不是所有者"
// @Failure 404 {object} Response "家庭不存在"
// @Router /api/v1/households/{id}/categories [post]
func (h *CategoryHandler) Create(c *gin.Context) {
	householdID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req CategoryRequest
	if !bindJSON(c, &req) {
		return
	}
	category, err := h.categories.Create(c.Request.Context(), middleware.GetCurrentUserID(c), householdID, service.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	SuccessWithMessage(c, "创建成功", toCategoryView(category))
}

// Update 编辑类别
// @Summary 编辑类别
// @Tags 类别
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "类别ID"
// @Param request body CategoryRequest true "类别信息"
// @Success 200 {object} Response{data=CategoryView} "更新成功"
// @Failure 403 {object} Response "不是所有者"
// @Failure 404 {object} Response "类别不存在"
// @Router /api/v1/categories/{id} [put]
func (h *CategoryHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req CategoryRequest
	if !bindJSON(c, &req) {
		return
	}
	category, err := h.categories.Update(c.Request.Context(), middleware.GetCurrentUserID(c), id, service.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	SuccessWithMessage(c, "更新成功", toCategoryView(category))
}

// Delete 删除类别
// @Summary 删除类别
// @Description 仍有交易引用的类别不能删除
// @Tags 类别
// @Produce json
// @Security BearerAuth
// @Param id path int true "类别ID"
// @Success 200 {object} Response "删除成功"
// @Failure 403 {object} Response "不是所有者"
// @Failure 404 {object} Response "类别不存在"
// @Failure 409 {object} Response "类别仍在使用"
// @Router /api/v1/categories/{id} [delete]
func (h *CategoryHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.categories.Delete(c.Request.Context(), middleware.GetCurrentUserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	SuccessWithMessage(c, "删除成功", nil)
}
