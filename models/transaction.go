package models

import (
	"time"
)

// Transaction 交易记录模型
// tx_date 是纯日历日期（DATE 列，无时间部分），月度匹配基于它派生的 "YYYY-MM" 键
type Transaction struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     uint      `json:"user_id" gorm:"index;not null"`
	CategoryID uint      `json:"category_id" gorm:"index;not null"`
	Amount     float64   `json:"amount" gorm:"type:decimal(10,2);not null"`
	Currency   string    `json:"currency" gorm:"size:10;not null;default:USD"`
	Note       string    `json:"note" gorm:"size:255"`
	TxDate     time.Time `json:"tx_date" gorm:"type:date;not null"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	User       User      `json:"-" gorm:"foreignKey:UserID"`
	Category   Category  `json:"-" gorm:"foreignKey:CategoryID"`
}

// TableName 设置表名
func (Transaction) TableName() string {
	return "transactions"
}

// MonthKey 返回交易日期的 "YYYY-MM" 月份键
func (t *Transaction) MonthKey() string {
	return t.TxDate.Format("2006-01")
}
