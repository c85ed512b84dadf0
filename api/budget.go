package api

import (
	"encoding/json"
	"strconv"
	"time"

	"fintrack/database"
	"fintrack/middleware"
	"fintrack/models"

	"github.com/gin-gonic/gin"
)

// BudgetHandler 预算处理器
type BudgetHandler struct{}

// NewBudgetHandler 创建预算处理器
func NewBudgetHandler() *BudgetHandler {
	return &BudgetHandler{}
}

// CreateBudgetRequest 创建预算请求
// category_id 为空表示总预算
type CreateBudgetRequest struct {
	Month       string   `json:"month" binding:"required" example:"2025-09"`
	LimitAmount *float64 `json:"limit_amount" binding:"required,gte=0" example:"500.00"`
	CategoryID  *uint    `json:"category_id" example:"3"`
}

// UpdateBudgetRequest 更新预算请求，未提供的字段不变
// category_id 显式传 null 可改为总预算
type UpdateBudgetRequest struct {
	Month       *string  `json:"month" example:"2025-09"`
	LimitAmount *float64 `json:"limit_amount" binding:"omitempty,gte=0" example:"500.00"`
	CategoryID  *uint    `json:"category_id" example:"3"`
}

// BudgetListRequest 预算列表请求
type BudgetListRequest struct {
	Month string `form:"month" example:"2025-09"`
}

// findDuplicateBudget 查找同 (用户, 月份, 类别) 范围的预算，excludeID 非 0 时排除自身
func findDuplicateBudget(userID uint, month string, categoryID *uint, excludeID uint) bool {
	q := database.DB.Where("user_id = ? AND month = ?", userID, month)
	if categoryID != nil {
		q = q.Where("category_id = ?", *categoryID)
	} else {
		q = q.Where("category_id IS NULL")
	}
	if excludeID > 0 {
		q = q.Where("id != ?", excludeID)
	}
	var existing models.Budget
	return q.First(&existing).Error == nil
}

// Create 创建预算
// @Summary 创建预算
// @Description 为某月创建预算，category_id 为空表示覆盖所有支出类别的总预算。同一 (月份, 类别) 范围只能有一个预算。
// @Tags 预算
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateBudgetRequest true "预算信息"
// @Success 200 {object} Response{data=models.Budget} "创建成功"
// @Failure 400 {object} Response "请求参数错误或预算已存在"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "类别不存在"
// @Router /api/v1/budgets [post]
func (h *BudgetHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req CreateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	// 月份必须是 "YYYY-MM"
	if _, err := time.Parse(models.BudgetMonthLayout, req.Month); err != nil {
		BadRequest(c, "月份格式错误，应为: 2025-09")
		return
	}

	// 指定类别时校验归属
	if req.CategoryID != nil {
		if _, err := findOwnedCategory(userID, *req.CategoryID); err != nil {
			NotFound(c, "类别不存在")
			return
		}
	}

	// (用户, 月份, 类别) 查重
	if findDuplicateBudget(userID, req.Month, req.CategoryID, 0) {
		BadRequest(c, "该范围的预算已存在")
		return
	}

	budget := models.Budget{
		UserID:      userID,
		Month:       req.Month,
		CategoryID:  req.CategoryID,
		LimitAmount: *req.LimitAmount,
	}

	if err := database.DB.Create(&budget).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建预算失败"))
		return
	}

	SuccessWithMessage(c, "创建成功", budget)
}

// List 获取预算列表
// @Summary 获取预算列表
// @Description 获取当前用户的预算列表，可按月份筛选，按月份倒序
// @Tags 预算
// @Produce json
// @Security BearerAuth
// @Param month query string false "月份筛选 (2025-09)"
// @Success 200 {object} Response{data=[]models.Budget} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/budgets [get]
func (h *BudgetHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req BudgetListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	query := database.DB.Model(&models.Budget{}).Where("user_id = ?", userID)
	if req.Month != "" {
		query = query.Where("month = ?", req.Month)
	}

	var budgets []models.Budget
	if err := query.Order("month DESC, id DESC").Find(&budgets).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, budgets)
}

// Update 更新预算
// @Summary 更新预算
// @Description 部分更新预算，只修改请求中提供的字段；category_id 显式传 null 可改为总预算。合并后的 (月份, 类别) 范围不可与其他预算重复。
// @Tags 预算
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "预算ID"
// @Param request body UpdateBudgetRequest true "预算信息"
// @Success 200 {object} Response{data=models.Budget} "更新成功"
// @Failure 400 {object} Response "请求参数错误或预算已存在"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "预算或类别不存在"
// @Router /api/v1/budgets/{id} [patch]
func (h *BudgetHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var budget models.Budget
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&budget).Error; err != nil {
		NotFound(c, "预算不存在")
		return
	}

	// category_id 需要区分 "未提供" 和 "显式 null"，先取原始 JSON 判断字段是否出现
	body, err := c.GetRawData()
	if err != nil {
		BadRequest(c, "读取请求失败")
		return
	}
	var req UpdateBudgetRequest
	if err := json.Unmarshal(body, &req); err != nil {
		BadRequest(c, "参数错误")
		return
	}
	var raw map[string]json.RawMessage
	_ = json.Unmarshal(body, &raw)
	_, categoryProvided := raw["category_id"]

	if req.LimitAmount != nil && *req.LimitAmount < 0 {
		BadRequest(c, "限额不能为负数")
		return
	}

	// 合并补丁字段
	newMonth := budget.Month
	if req.Month != nil {
		if _, err := time.Parse(models.BudgetMonthLayout, *req.Month); err != nil {
			BadRequest(c, "月份格式错误，应为: 2025-09")
			return
		}
		newMonth = *req.Month
	}
	newCategoryID := budget.CategoryID
	if categoryProvided {
		newCategoryID = req.CategoryID
		if newCategoryID != nil {
			if _, err := findOwnedCategory(userID, *newCategoryID); err != nil {
				NotFound(c, "类别不存在")
				return
			}
		}
	}

	// 合并后的 (月份, 类别) 查重，排除自身
	if findDuplicateBudget(userID, newMonth, newCategoryID, budget.ID) {
		BadRequest(c, "该范围的预算已存在")
		return
	}

	updates := make(map[string]interface{})
	if req.Month != nil {
		updates["month"] = newMonth
	}
	if categoryProvided {
		// nil 值会写入 NULL，即改为总预算
		updates["category_id"] = newCategoryID
	}
	if req.LimitAmount != nil {
		updates["limit_amount"] = *req.LimitAmount
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&budget).Updates(updates).Error; err != nil {
			InternalError(c, SafeErrorMessage(err, "更新失败"))
			return
		}
	}

	database.DB.First(&budget, budget.ID)
	SuccessWithMessage(c, "更新成功", budget)
}

// Delete 删除预算
// @Summary 删除预算
// @Tags 预算
// @Produce json
// @Security BearerAuth
// @Param id path int true "预算ID"
// @Success 200 {object} Response "删除成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "预算不存在"
// @Router /api/v1/budgets/{id} [delete]
func (h *BudgetHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var budget models.Budget
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&budget).Error; err != nil {
		NotFound(c, "预算不存在")
		return
	}

	if err := database.DB.Delete(&budget).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}

	SuccessWithMessage(c, "删除成功", nil)
}
