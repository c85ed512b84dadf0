package models

import (
	"time"
)

// BudgetMonthLayout 预算月份格式，如 "2025-09"
const BudgetMonthLayout = "2006-01"

// Budget 月度预算模型
// category_id 为 NULL 表示总预算（覆盖该月所有支出类别）
// 同一用户下 (month, category_id) 唯一，除唯一索引外创建/更新时还会显式查重
type Budget struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	UserID      uint      `json:"user_id" gorm:"not null;uniqueIndex:uq_budget_user_month_category"`
	Month       string    `json:"month" gorm:"size:7;not null;uniqueIndex:uq_budget_user_month_category"`
	CategoryID  *uint     `json:"category_id" gorm:"uniqueIndex:uq_budget_user_month_category"`
	LimitAmount float64   `json:"limit_amount" gorm:"type:decimal(10,2);not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	User        User      `json:"-" gorm:"foreignKey:UserID"`
	Category    *Category `json:"-" gorm:"foreignKey:CategoryID"`
}

// TableName 设置表名
func (Budget) TableName() string {
	return "budgets"
}

// IsOverall 是否为总预算（不限定类别）
func (b *Budget) IsOverall() bool {
	return b.CategoryID == nil
}
