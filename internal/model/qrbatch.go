package model

import (
	"time"
)

// QRBatch 二维码批次
// 一次生成请求产生的全部二维码共享同一个批次，软删除通过 IsActive 实现
type QRBatch struct {
	ID         uint         `gorm:"primarykey" json:"-"`
	BatchID    string       `gorm:"size:64;uniqueIndex" json:"batchId"`
	QRData     string       `gorm:"size:512" json:"qrData"` // 可读的批次摘要
	Format     string       `gorm:"size:10" json:"format"`  // png, jpg, jpeg, svg
	Size       string       `gorm:"size:20" json:"size"`    // 宽x高，要求为正方形
	Points     int          `json:"points"`                 // 扫码可获得的积分
	TotalCount int          `json:"totalCount"`             // 实际生成成功的数量
	IsActive   bool         `gorm:"default:true;index" json:"isActive"`
	QRCodes    []QRCodeItem `gorm:"foreignKey:BatchRef;references:BatchID" json:"qrCodes,omitempty"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}

// QRCodeItem 批次内的单个二维码
// ItemIndex 保留生成顺序，IsScanned 由扫码接口置位
type QRCodeItem struct {
	ID        uint      `gorm:"primarykey" json:"-"`
	BatchRef  string    `gorm:"size:64;index" json:"-"`
	ItemIndex int       `json:"-"`
	QRID      string    `gorm:"size:16;index" json:"qrId"`
	QRCodeURL string    `gorm:"size:1024" json:"qrCodeUrl"` // 外部渲染服务的图片地址
	IsScanned bool      `gorm:"default:false" json:"isScanned"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
