package service

import (
	"errors"

	"fintrack/models"

	"gorm.io/gorm"
)

// GormReportStore ReportStore 的 GORM 实现，只读
type GormReportStore struct {
	db *gorm.DB
}

// NewGormReportStore 创建报表查询存储
func NewGormReportStore(db *gorm.DB) *GormReportStore {
	return &GormReportStore{db: db}
}

// FindBudget 精确查找 (用户, 月份, 类别) 的预算
// categoryID 为 nil 时仅匹配 category_id IS NULL 的总预算
func (s *GormReportStore) FindBudget(userID uint, month string, categoryID *uint) (*models.Budget, error) {
	q := s.db.Where("user_id = ? AND month = ?", userID, month)
	if categoryID != nil {
		q = q.Where("category_id = ?", *categoryID)
	} else {
		q = q.Where("category_id IS NULL")
	}

	var budget models.Budget
	if err := q.First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &budget, nil
}

// SumExpensesByMonth 汇总某月支出类交易金额
// 月份匹配使用 DATE_FORMAT 派生的 "YYYY-MM" 键做字符串等值比较，
// 与日期区间查询不同，依赖 tx_date 是纯日历日期
func (s *GormReportStore) SumExpensesByMonth(userID uint, month string, categoryID *uint) (float64, error) {
	q := s.db.Model(&models.Transaction{}).
		Joins("JOIN categories ON categories.id = transactions.category_id").
		Where("transactions.user_id = ? AND categories.type = ?", userID, models.CategoryTypeExpense).
		Where("DATE_FORMAT(transactions.tx_date, '%Y-%m') = ?", month)
	if categoryID != nil {
		q = q.Where("transactions.category_id = ?", *categoryID)
	}

	var total float64
	err := q.Select("COALESCE(SUM(transactions.amount), 0)").Scan(&total).Error
	return total, err
}

// SumByType 按类别类型汇总日期区间内的交易金额，区间两端闭
func (s *GormReportStore) SumByType(userID uint, categoryType models.CategoryType, r DateRange) (float64, error) {
	q := s.db.Model(&models.Transaction{}).
		Joins("JOIN categories ON categories.id = transactions.category_id").
		Where("transactions.user_id = ? AND categories.type = ?", userID, categoryType)
	q = applyDateRange(q, r)

	var total float64
	err := q.Select("COALESCE(SUM(transactions.amount), 0)").Scan(&total).Error
	return total, err
}

// CategoryTotals 日期区间内每个有交易的类别合计，按合计金额降序
func (s *GormReportStore) CategoryTotals(userID uint, r DateRange) ([]CategoryTotal, error) {
	q := s.db.Model(&models.Transaction{}).
		Select("categories.id AS category_id, categories.name AS name, categories.type AS type, COALESCE(SUM(transactions.amount), 0) AS total").
		Joins("JOIN categories ON categories.id = transactions.category_id").
		Where("transactions.user_id = ?", userID)
	q = applyDateRange(q, r)

	var rows []CategoryTotal
	err := q.Group("categories.id, categories.name, categories.type").
		Order("total DESC").
		Scan(&rows).Error
	return rows, err
}

// applyDateRange 附加闭区间日期过滤，nil 端无界
func applyDateRange(q *gorm.DB, r DateRange) *gorm.DB {
	if r.Start != nil {
		q = q.Where("transactions.tx_date >= ?", *r.Start)
	}
	if r.End != nil {
		q = q.Where("transactions.tx_date <= ?", *r.End)
	}
	return q
}
