package service

import (
	"errors"
	"time"

	"fintrack/models"

	"github.com/shopspring/decimal"
)

var (
	// ErrBudgetNotFound 请求的 (月份, 类别) 范围没有设置预算
	ErrBudgetNotFound = errors.New("该范围未设置预算")
	// ErrInvalidDateRange 开始日期晚于结束日期
	ErrInvalidDateRange = errors.New("开始日期不能晚于结束日期")
)

// DateRange 闭区间日期过滤，nil 表示该侧无界
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

// CategoryTotal 汇总报表中单个类别的合计行
type CategoryTotal struct {
	CategoryID uint                `json:"category_id"`
	Name       string              `json:"name"`
	Type       models.CategoryType `json:"type"`
	Total      float64             `json:"total"`
}

// ReportStore 报表计算依赖的只读查询接口
// 聚合引擎本身不做任何写操作，实体增删改全部走 CRUD 接口
type ReportStore interface {
	// FindBudget 精确查找 (用户, 月份, 类别) 的预算
	// categoryID 为 nil 时只匹配 category_id 为 NULL 的总预算；未找到返回 (nil, nil)
	FindBudget(userID uint, month string, categoryID *uint) (*models.Budget, error)
	// SumExpensesByMonth 汇总某月支出类交易金额，月份按 "YYYY-MM" 派生键精确匹配
	// categoryID 非 nil 时额外限定类别
	SumExpensesByMonth(userID uint, month string, categoryID *uint) (float64, error)
	// SumByType 按类别类型汇总日期区间内的交易金额
	SumByType(userID uint, categoryType models.CategoryType, r DateRange) (float64, error)
	// CategoryTotals 日期区间内每个有交易的类别的合计，无交易的类别不返回
	CategoryTotals(userID uint, r DateRange) ([]CategoryTotal, error)
}

// ReportService 预算进度与汇总报表的聚合引擎
type ReportService struct {
	store ReportStore
}

// NewReportService 创建报表服务
func NewReportService(store ReportStore) *ReportService {
	return &ReportService{store: store}
}

// BudgetProgress 预算进度计算结果
type BudgetProgress struct {
	Month       string  `json:"month"`
	Scope       string  `json:"scope"` // "category" 或 "overall"
	CategoryID  *uint   `json:"category_id"`
	Limit       float64 `json:"limit"`
	Spent       float64 `json:"spent"`
	Remaining   float64 `json:"remaining"`
	UsedPercent float64 `json:"used_percent"`
}

// BudgetProgress 计算某月预算的使用进度
// 预算按 (用户, 月份, 类别) 精确查找，categoryID 同时用于预算定位和支出求和过滤
func (s *ReportService) BudgetProgress(userID uint, month string, categoryID *uint) (*BudgetProgress, error) {
	budget, err := s.store.FindBudget(userID, month, categoryID)
	if err != nil {
		return nil, err
	}
	if budget == nil {
		return nil, ErrBudgetNotFound
	}

	spent, err := s.store.SumExpensesByMonth(userID, month, categoryID)
	if err != nil {
		return nil, err
	}

	limit := budget.LimitAmount

	// 剩余额度不为负，超支时显示 0
	remaining := limit - spent
	if remaining < 0 {
		remaining = 0
	}

	// 限额为 0 时使用率恒为 0，不做除法
	// 百分比用 decimal 计算后保留 2 位小数，0.5 进位（四舍五入）
	usedPercent := 0.0
	if limit != 0 {
		usedPercent = decimal.NewFromFloat(spent).
			Div(decimal.NewFromFloat(limit)).
			Mul(decimal.NewFromInt(100)).
			Round(2).
			InexactFloat64()
	}

	scope := "overall"
	if categoryID != nil {
		scope = "category"
	}

	return &BudgetProgress{
		Month:       month,
		Scope:       scope,
		CategoryID:  categoryID,
		Limit:       limit,
		Spent:       spent,
		Remaining:   remaining,
		UsedPercent: usedPercent,
	}, nil
}

// SummaryReport 收支汇总报表
type SummaryReport struct {
	StartDate  *string         `json:"start_date"`
	EndDate    *string         `json:"end_date"`
	Income     float64         `json:"income"`
	Expense    float64         `json:"expense"`
	Net        float64         `json:"net"`
	ByCategory []CategoryTotal `json:"by_category"`
}

// Summary 计算日期区间内的收支汇总
// 两端都是可选的闭区间日历日期；金额合计不做舍入
func (s *ReportService) Summary(userID uint, r DateRange) (*SummaryReport, error) {
	if r.Start != nil && r.End != nil && r.Start.After(*r.End) {
		return nil, ErrInvalidDateRange
	}

	income, err := s.store.SumByType(userID, models.CategoryTypeIncome, r)
	if err != nil {
		return nil, err
	}

	expense, err := s.store.SumByType(userID, models.CategoryTypeExpense, r)
	if err != nil {
		return nil, err
	}

	byCategory, err := s.store.CategoryTotals(userID, r)
	if err != nil {
		return nil, err
	}
	if byCategory == nil {
		byCategory = []CategoryTotal{}
	}

	report := &SummaryReport{
		Income:     income,
		Expense:    expense,
		Net:        income - expense,
		ByCategory: byCategory,
	}
	if r.Start != nil {
		s := r.Start.Format("2006-01-02")
		report.StartDate = &s
	}
	if r.End != nil {
		e := r.End.Format("2006-01-02")
		report.EndDate = &e
	}
	return report, nil
}
