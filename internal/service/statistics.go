package service

import (
	"fmt"

	"loyalty-system/internal/model"
	"loyalty-system/internal/pkg/database"
)

var Statistics = new(StatisticsService)

type StatisticsService struct{}

// QRStats 二维码扫码统计
type QRStats struct {
	TotalBatches   int64  `json:"totalBatches"`   // 有效批次数
	TotalQRCodes   int64  `json:"totalQRCodes"`   // 二维码总数
	ScannedCount   int64  `json:"scannedCount"`   // 已扫描数量
	UnscannedCount int64  `json:"unscannedCount"` // 未扫描数量
	ScanRate       string `json:"scanRate"`       // 扫码率，保留两位小数的百分比
}

// GetQRStats 统计所有有效批次的扫码情况
func (s *StatisticsService) GetQRStats() (*QRStats, error) {
	var batches []model.QRBatch
	if err := database.DB.Preload("QRCodes").
		Where("is_active = ?", true).
		Find(&batches).Error; err != nil {
		return nil, err
	}

	return aggregateQRStats(batches), nil
}

// aggregateQRStats 在内存中汇总批次数据
// 总数为零时扫码率记为0.00%，避免除零
func aggregateQRStats(batches []model.QRBatch) *QRStats {
	stats := &QRStats{
		TotalBatches: int64(len(batches)),
	}

	for _, batch := range batches {
		stats.TotalQRCodes += int64(len(batch.QRCodes))
		for _, item := range batch.QRCodes {
			if item.IsScanned {
				stats.ScannedCount++
			}
		}
	}
	stats.UnscannedCount = stats.TotalQRCodes - stats.ScannedCount

	if stats.TotalQRCodes == 0 {
		stats.ScanRate = "0.00%"
	} else {
		rate := float64(stats.ScannedCount) / float64(stats.TotalQRCodes) * 100
		stats.ScanRate = fmt.Sprintf("%.2f%%", rate)
	}

	return stats
}
