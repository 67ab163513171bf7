package model

import (
	"time"
)

// Customer 客户及其积分余额
type Customer struct {
	ID         uint      `gorm:"primarykey" json:"-"`
	CustomerID string    `gorm:"size:64;uniqueIndex" json:"customerId"`
	Name       string    `gorm:"size:128" json:"name"`
	Email      string    `gorm:"size:128;uniqueIndex" json:"email"`
	Phone      string    `gorm:"size:32" json:"phone"`
	Points     int       `json:"points"` // 当前积分余额
	IsActive   bool      `gorm:"default:true;index" json:"isActive"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
