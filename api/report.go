package api

import (
	"errors"
	"strconv"
	"time"

	"fintrack/database"
	"fintrack/middleware"
	"fintrack/models"
	"fintrack/service"

	"github.com/gin-gonic/gin"
)

// ReportHandler 报表处理器，聚合计算委托给 service.ReportService
type ReportHandler struct {
	reports *service.ReportService
}

// NewReportHandler 创建报表处理器
func NewReportHandler() *ReportHandler {
	return &ReportHandler{
		reports: service.NewReportService(service.NewGormReportStore(database.DB)),
	}
}

// BudgetProgress 查询预算进度
// @Summary 查询预算进度
// @Description 计算某月预算的已用金额、剩余额度和使用百分比。不传 category_id 查询总预算（只匹配未绑定类别的预算），传 category_id 查询对应类别预算。
// @Tags 报表
// @Produce json
// @Security BearerAuth
// @Param month query string true "月份 (2025-09)"
// @Param category_id query int false "类别ID，不传表示总预算"
// @Success 200 {object} Response{data=service.BudgetProgress} "获取成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "该范围未设置预算"
// @Router /api/v1/budgets/progress [get]
func (h *ReportHandler) BudgetProgress(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	month := c.Query("month")
	if _, err := time.Parse(models.BudgetMonthLayout, month); err != nil {
		BadRequest(c, "月份格式错误，应为: 2025-09")
		return
	}

	var categoryID *uint
	if v := c.Query("category_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			BadRequest(c, "无效的类别ID")
			return
		}
		u := uint(id)
		categoryID = &u
	}

	progress, err := h.reports.BudgetProgress(userID, month, categoryID)
	if err != nil {
		if errors.Is(err, service.ErrBudgetNotFound) {
			NotFound(c, "该范围未设置预算")
			return
		}
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, progress)
}

// Summary 查询收支汇总
// @Summary 查询收支汇总
// @Description 统计日期区间（两端闭区间，均可省略）内的收入、支出、净额，以及每个有交易的类别的合计
// @Tags 报表
// @Produce json
// @Security BearerAuth
// @Param start_date query string false "开始日期 (2025-01-01)"
// @Param end_date query string false "结束日期 (2025-01-31)"
// @Success 200 {object} Response{data=service.SummaryReport} "获取成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/reports/summary [get]
func (h *ReportHandler) Summary(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var r service.DateRange
	if v := c.Query("start_date"); v != "" {
		start, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			BadRequest(c, "开始日期格式错误，应为: 2025-01-01")
			return
		}
		r.Start = &start
	}
	if v := c.Query("end_date"); v != "" {
		end, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			BadRequest(c, "结束日期格式错误，应为: 2025-01-31")
			return
		}
		r.End = &end
	}

	report, err := h.reports.Summary(userID, r)
	if err != nil {
		if errors.Is(err, service.ErrInvalidDateRange) {
			BadRequest(c, "开始日期不能晚于结束日期")
			return
		}
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, report)
}
