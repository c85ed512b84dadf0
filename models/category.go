package models

import (
	"time"
)

// CategoryType 类别类型，只有支出和收入两种
type CategoryType string

const (
	// CategoryTypeExpense 支出类别
	CategoryTypeExpense CategoryType = "expense"
	// CategoryTypeIncome 收入类别
	CategoryTypeIncome CategoryType = "income"
)

// IsValid 校验类别类型是否合法
func (t CategoryType) IsValid() bool {
	return t == CategoryTypeExpense || t == CategoryTypeIncome
}

// Category 记账类别，属于单个用户
// 同一用户下 (name, type) 唯一
type Category struct {
	ID        uint         `json:"id" gorm:"primaryKey"`
	UserID    uint         `json:"user_id" gorm:"not null;uniqueIndex:uq_category_user_name_type"`
	Name      string       `json:"name" gorm:"size:50;not null;uniqueIndex:uq_category_user_name_type"`
	Type      CategoryType `json:"type" gorm:"size:10;not null;uniqueIndex:uq_category_user_name_type"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
	User      User         `json:"-" gorm:"foreignKey:UserID"`
}

// TableName 设置表名
func (Category) TableName() string {
	return "categories"
}
