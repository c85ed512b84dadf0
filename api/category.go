package api

import (
	"strconv"

	"fintrack/database"
	"fintrack/middleware"
	"fintrack/models"

	"github.com/gin-gonic/gin"
)

// CategoryHandler 记账类别处理器
type CategoryHandler struct{}

// NewCategoryHandler 创建记账类别处理器
func NewCategoryHandler() *CategoryHandler {
	return &CategoryHandler{}
}

// CreateCategoryRequest 创建类别请求
type CreateCategoryRequest struct {
	Name string              `json:"name" binding:"required,max=50" example:"餐饮"`
	Type models.CategoryType `json:"type" binding:"required,oneof=expense income" example:"expense"`
}

// UpdateCategoryRequest 更新类别请求，未提供的字段不变
type UpdateCategoryRequest struct {
	Name *string              `json:"name" binding:"omitempty,max=50" example:"餐饮"`
	Type *models.CategoryType `json:"type" binding:"omitempty,oneof=expense income" example:"expense"`
}

// CategoryListRequest 类别列表请求
type CategoryListRequest struct {
	Page     int `form:"page" example:"1"`
	PageSize int `form:"page_size" example:"50"`
}

// Create 创建类别
// @Summary 创建类别
// @Description 创建一个记账类别，同一用户下 (名称, 类型) 不可重复
// @Tags 类别
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateCategoryRequest true "类别信息"
// @Success 200 {object} Response{data=models.Category} "创建成功"
// @Failure 400 {object} Response "请求参数错误或类别已存在"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/categories [post]
func (h *CategoryHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	// 同用户下 (名称, 类型) 查重
	var existing models.Category
	if err := database.DB.Where("user_id = ? AND name = ? AND type = ?", userID, req.Name, req.Type).
		First(&existing).Error; err == nil {
		BadRequest(c, "类别已存在")
		return
	}

	category := models.Category{
		UserID: userID,
		Name:   req.Name,
		Type:   req.Type,
	}

	if err := database.DB.Create(&category).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建类别失败"))
		return
	}

	SuccessWithMessage(c, "创建成功", category)
}

// List 获取类别列表
// @Summary 获取类别列表
// @Description 获取当前用户的类别列表，按ID升序
// @Tags 类别
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(50)
// @Success 200 {object} Response{data=PageResponse{list=[]models.Category}} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/categories [get]
func (h *CategoryHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req CategoryListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	// 默认分页参数
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 50
	}
	if req.PageSize > 200 {
		req.PageSize = 200
	}

	query := database.DB.Model(&models.Category{}).Where("user_id = ?", userID)

	var total int64
	query.Count(&total)

	var categories []models.Category
	offset := (req.Page - 1) * req.PageSize
	if err := query.Order("id ASC").Offset(offset).Limit(req.PageSize).Find(&categories).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, PageResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		List:     categories,
	})
}

// Update 更新类别
// @Summary 更新类别
// @Description 部分更新类别，只修改请求中提供的字段。类型变更只影响之后的统计口径，不会回算历史数据。
// @Tags 类别
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "类别ID"
// @Param request body UpdateCategoryRequest true "类别信息"
// @Success 200 {object} Response{data=models.Category} "更新成功"
// @Failure 400 {object} Response "请求参数错误或类别已存在"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "类别不存在"
// @Router /api/v1/categories/{id} [patch]
func (h *CategoryHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var category models.Category
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&category).Error; err != nil {
		NotFound(c, "类别不存在")
		return
	}

	var req UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	// 合并后的 (名称, 类型) 查重，排除自身
	newName := category.Name
	if req.Name != nil {
		newName = *req.Name
	}
	newType := category.Type
	if req.Type != nil {
		newType = *req.Type
	}
	var dup models.Category
	if err := database.DB.Where("user_id = ? AND name = ? AND type = ? AND id != ?", userID, newName, newType, category.ID).
		First(&dup).Error; err == nil {
		BadRequest(c, "类别已存在")
		return
	}

	// 显式合并补丁字段
	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Type != nil {
		updates["type"] = *req.Type
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&category).Updates(updates).Error; err != nil {
			InternalError(c, SafeErrorMessage(err, "更新失败"))
			return
		}
	}

	database.DB.First(&category, category.ID)
	SuccessWithMessage(c, "更新成功", category)
}

// Delete 删除类别
// @Summary 删除类别
// @Description 删除类别。仍被交易或预算引用的类别不可删除，需先处理引用数据。
// @Tags 类别
// @Produce json
// @Security BearerAuth
// @Param id path int true "类别ID"
// @Success 200 {object} Response "删除成功"
// @Failure 400 {object} Response "类别仍被引用"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "类别不存在"
// @Router /api/v1/categories/{id} [delete]
func (h *CategoryHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var category models.Category
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&category).Error; err != nil {
		NotFound(c, "类别不存在")
		return
	}

	// 禁止级联删除：仍被交易或预算引用时拒绝
	var txCount int64
	database.DB.Model(&models.Transaction{}).Where("category_id = ?", category.ID).Count(&txCount)
	if txCount > 0 {
		BadRequest(c, "该类别下仍有交易记录，无法删除")
		return
	}
	var budgetCount int64
	database.DB.Model(&models.Budget{}).Where("category_id = ?", category.ID).Count(&budgetCount)
	if budgetCount > 0 {
		BadRequest(c, "该类别仍被预算引用，无法删除")
		return
	}

	if err := database.DB.Delete(&category).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}

	SuccessWithMessage(c, "删除成功", nil)
}
