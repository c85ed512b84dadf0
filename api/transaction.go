package api

import (
	"strconv"
	"time"

	"fintrack/database"
	"fintrack/middleware"
	"fintrack/models"

	"github.com/gin-gonic/gin"
)

// TransactionHandler 交易记录处理器
type TransactionHandler struct{}

// NewTransactionHandler 创建交易记录处理器
func NewTransactionHandler() *TransactionHandler {
	return &TransactionHandler{}
}

// CreateTransactionRequest 创建交易请求
type CreateTransactionRequest struct {
	Amount     float64 `json:"amount" binding:"required,gt=0" example:"99.99"`
	Currency   string  `json:"currency" example:"USD"` // 不限定币种列表
	Note       string  `json:"note" example:"午餐"`
	TxDate     string  `json:"tx_date" binding:"required" example:"2025-09-15"`
	CategoryID uint    `json:"category_id" binding:"required" example:"1"`
}

// UpdateTransactionRequest 更新交易请求，未提供的字段不变
type UpdateTransactionRequest struct {
	Amount     *float64 `json:"amount" binding:"omitempty,gt=0" example:"99.99"`
	Currency   *string  `json:"currency" example:"USD"`
	Note       *string  `json:"note" example:"午餐"`
	TxDate     *string  `json:"tx_date" example:"2025-09-15"`
	CategoryID *uint    `json:"category_id" example:"1"`
}

// TransactionListRequest 交易列表请求
type TransactionListRequest struct {
	Page       int    `form:"page" example:"1"`
	PageSize   int    `form:"page_size" example:"20"`
	CategoryID uint   `form:"category_id" example:"1"`
	StartDate  string `form:"start_date" example:"2025-09-01"`
	EndDate    string `form:"end_date" example:"2025-09-30"`
}

// findOwnedCategory 校验类别存在且属于当前用户，禁止跨用户引用
func findOwnedCategory(userID, categoryID uint) (*models.Category, error) {
	var category models.Category
	if err := database.DB.Where("id = ? AND user_id = ?", categoryID, userID).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// Create 创建交易记录
// @Summary 创建交易记录
// @Description 创建一条交易记录，类别必须属于当前用户
// @Tags 交易记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateTransactionRequest true "交易信息"
// @Success 200 {object} Response{data=models.Transaction} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "类别不存在"
// @Router /api/v1/transactions [post]
func (h *TransactionHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	if _, err := findOwnedCategory(userID, req.CategoryID); err != nil {
		NotFound(c, "类别不存在")
		return
	}

	// 解析日历日期
	txDate, err := time.ParseInLocation("2006-01-02", req.TxDate, time.Local)
	if err != nil {
		BadRequest(c, "日期格式错误，应为: 2025-09-15")
		return
	}

	if req.Currency == "" {
		req.Currency = "USD"
	}

	transaction := models.Transaction{
		UserID:     userID,
		CategoryID: req.CategoryID,
		Amount:     req.Amount,
		Currency:   req.Currency,
		Note:       req.Note,
		TxDate:     txDate,
	}

	if err := database.DB.Create(&transaction).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建交易记录失败"))
		return
	}

	SuccessWithMessage(c, "创建成功", transaction)
}

// List 获取交易记录列表
// @Summary 获取交易记录列表
// @Description 获取当前用户的交易记录，支持类别和日期范围（闭区间）筛选
// @Tags 交易记录
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Param category_id query int false "类别筛选"
// @Param start_date query string false "开始日期 (2025-09-01)"
// @Param end_date query string false "结束日期 (2025-09-30)"
// @Success 200 {object} Response{data=PageResponse{list=[]models.Transaction}} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/transactions [get]
func (h *TransactionHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req TransactionListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	// 默认分页参数
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 20
	}
	if req.PageSize > 100 {
		req.PageSize = 100
	}

	query := database.DB.Model(&models.Transaction{}).Where("user_id = ?", userID)

	// 类别筛选
	if req.CategoryID > 0 {
		query = query.Where("category_id = ?", req.CategoryID)
	}

	// 日期范围筛选（闭区间）
	if req.StartDate != "" {
		startDate, err := time.ParseInLocation("2006-01-02", req.StartDate, time.Local)
		if err != nil {
			BadRequest(c, "开始日期格式错误，应为: 2025-09-01")
			return
		}
		query = query.Where("tx_date >= ?", startDate)
	}
	if req.EndDate != "" {
		endDate, err := time.ParseInLocation("2006-01-02", req.EndDate, time.Local)
		if err != nil {
			BadRequest(c, "结束日期格式错误，应为: 2025-09-30")
			return
		}
		query = query.Where("tx_date <= ?", endDate)
	}

	// 获取总数
	var total int64
	query.Count(&total)

	// 获取列表
	var transactions []models.Transaction
	offset := (req.Page - 1) * req.PageSize
	if err := query.Order("tx_date DESC, id DESC").Offset(offset).Limit(req.PageSize).Find(&transactions).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, PageResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		List:     transactions,
	})
}

// Get 获取单条交易记录
// @Summary 获取单条交易记录
// @Tags 交易记录
// @Produce json
// @Security BearerAuth
// @Param id path int true "交易记录ID"
// @Success 200 {object} Response{data=models.Transaction} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/transactions/{id} [get]
func (h *TransactionHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var transaction models.Transaction
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&transaction).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	Success(c, transaction)
}

// Update 更新交易记录
// @Summary 更新交易记录
// @Description 部分更新交易记录，只修改请求中提供的字段；更换类别时会重新校验归属
// @Tags 交易记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "交易记录ID"
// @Param request body UpdateTransactionRequest true "交易信息"
// @Success 200 {object} Response{data=models.Transaction} "更新成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录或类别不存在"
// @Router /api/v1/transactions/{id} [patch]
func (h *TransactionHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var transaction models.Transaction
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&transaction).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	// 显式合并补丁字段
	updates := make(map[string]interface{})
	if req.Amount != nil {
		updates["amount"] = *req.Amount
	}
	if req.Currency != nil {
		updates["currency"] = *req.Currency
	}
	if req.Note != nil {
		updates["note"] = *req.Note
	}
	if req.TxDate != nil {
		txDate, err := time.ParseInLocation("2006-01-02", *req.TxDate, time.Local)
		if err != nil {
			BadRequest(c, "日期格式错误，应为: 2025-09-15")
			return
		}
		updates["tx_date"] = txDate
	}
	if req.CategoryID != nil {
		if _, err := findOwnedCategory(userID, *req.CategoryID); err != nil {
			NotFound(c, "类别不存在")
			return
		}
		updates["category_id"] = *req.CategoryID
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&transaction).Updates(updates).Error; err != nil {
			InternalError(c, SafeErrorMessage(err, "更新失败"))
			return
		}
	}

	// 重新获取更新后的记录
	database.DB.First(&transaction, transaction.ID)
	SuccessWithMessage(c, "更新成功", transaction)
}

// Delete 删除交易记录
// @Summary 删除交易记录
// @Tags 交易记录
// @Produce json
// @Security BearerAuth
// @Param id path int true "交易记录ID"
// @Success 200 {object} Response "删除成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/transactions/{id} [delete]
func (h *TransactionHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var transaction models.Transaction
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&transaction).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	if err := database.DB.Delete(&transaction).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}

	SuccessWithMessage(c, "删除成功", nil)
}
