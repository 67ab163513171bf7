package model

import (
	"time"
)

// Scheme 积分兑换方案
type Scheme struct {
	ID             uint      `gorm:"primarykey" json:"-"`
	SchemeID       string    `gorm:"size:64;uniqueIndex" json:"schemeId"`
	Name           string    `gorm:"size:128" json:"name"`
	Description    string    `gorm:"size:512" json:"description"`
	PointsRequired int       `json:"pointsRequired"` // 兑换所需积分
	ImageURL       string    `gorm:"size:512" json:"imageUrl"`
	IsActive       bool      `gorm:"default:true;index" json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
