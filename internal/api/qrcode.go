package api

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"loyalty-system/internal/model"
	"loyalty-system/internal/pkg/database"
	"loyalty-system/internal/pkg/logger"
	"loyalty-system/internal/service"
	"loyalty-system/internal/utils"
)

// GenerateQR 同步生成二维码批次
// 部分失败时返回200，errors数组记录逐项错误；全部失败返回500
func GenerateQR(c *gin.Context) {
	var req service.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "参数错误")
		return
	}

	if err := service.QRCode.Validate(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	batch, itemErrs, err := service.QRCode.Generate(c.Request.Context(), &req)
	if err != nil {
		logger.Errorf("二维码批次生成失败: %v", err)
		utils.ServerError(c, "二维码批次生成失败")
		return
	}

	utils.OKWithErrors(c, batch, itemErrs)
}

// GenerateBulkQRAsync 异步生成二维码批次
// 登记任务后立即返回202，生成在后台进行
func GenerateBulkQRAsync(c *gin.Context) {
	var req service.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "参数错误")
		return
	}

	if err := service.QRCode.ValidateAsync(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	jobID := service.Jobs.Create(req.Quantity)
	go service.QRCode.RunJob(jobID, &req)

	utils.Accepted(c, gin.H{"jobId": jobID})
}

// GetJob 查询异步任务状态
func GetJob(c *gin.Context) {
	jobID := c.Param("jobId")

	job, ok := service.Jobs.Get(jobID)
	if !ok {
		utils.NotFound(c, "任务不存在")
		return
	}

	utils.OK(c, job)
}

// BatchQuery 批次列表查询参数
type BatchQuery struct {
	Page  int    `form:"page,default=1"`
	Size  int    `form:"size,default=10"`
	Sort  string `form:"sort,default=created_at"`
	Order string `form:"order,default=desc"`
}

// GetQRBatches 获取有效批次列表，支持分页和排序
func GetQRBatches(c *gin.Context) {
	var query BatchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.BadRequest(c, "参数错误")
		return
	}

	// 设置默认值
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Size <= 0 {
		query.Size = 10
	}

	// 排序字段白名单
	sortFields := map[string]bool{
		"created_at":  true,
		"total_count": true,
	}
	if !sortFields[query.Sort] {
		utils.BadRequest(c, "不支持的排序字段")
		return
	}
	order := "DESC"
	if query.Order == "asc" {
		order = "ASC"
	}

	db := database.DB.Model(&model.QRBatch{}).Where("is_active = ?", true)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		logger.Errorf("获取批次总数失败: %v", err)
		utils.ServerError(c, "获取批次列表失败")
		return
	}

	var batches []model.QRBatch
	if err := db.Order(query.Sort + " " + order).
		Offset((query.Page - 1) * query.Size).
		Limit(query.Size).
		Find(&batches).Error; err != nil {
		logger.Errorf("获取批次列表失败: %v", err)
		utils.ServerError(c, "获取批次列表失败")
		return
	}

	utils.OK(c, gin.H{
		"total": total,
		"page":  query.Page,
		"size":  query.Size,
		"items": batches,
	})
}

// GetQRBatch 获取单个有效批次，附带全部二维码
func GetQRBatch(c *gin.Context) {
	batchID := c.Param("batchId")

	var batch model.QRBatch
	err := database.DB.Preload("QRCodes", func(db *gorm.DB) *gorm.DB {
		return db.Order("item_index ASC")
	}).Where("batch_id = ? AND is_active = ?", batchID, true).
		First(&batch).Error
	if err != nil {
		utils.NotFound(c, "批次不存在")
		return
	}

	utils.OK(c, batch)
}

// DeleteQRBatch 软删除批次，二维码记录保留
func DeleteQRBatch(c *gin.Context) {
	batchID := c.Param("batchId")

	result := database.DB.Model(&model.QRBatch{}).
		Where("batch_id = ? AND is_active = ?", batchID, true).
		Update("is_active", false)
	if result.Error != nil {
		logger.Errorf("删除批次 %s 失败: %v", batchID, result.Error)
		utils.ServerError(c, "删除批次失败")
		return
	}
	if result.RowsAffected == 0 {
		utils.NotFound(c, "批次不存在")
		return
	}

	utils.OKMessage(c, "批次已删除")
}

// GetQRStats 获取二维码扫码统计
func GetQRStats(c *gin.Context) {
	stats, err := service.Statistics.GetQRStats()
	if err != nil {
		logger.Errorf("获取扫码统计失败: %v", err)
		utils.ServerError(c, "获取扫码统计失败")
		return
	}

	utils.OK(c, stats)
}

// ScanRequest 扫码请求参数
type ScanRequest struct {
	QRID       string `json:"qrId"`
	CustomerID string `json:"customerId"`
}

// ScanQR 标记二维码已扫描并给客户加积分
// 同一个二维码只能被扫描一次
func ScanQR(c *gin.Context) {
	var req ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "参数错误")
		return
	}
	if req.QRID == "" || req.CustomerID == "" {
		utils.BadRequest(c, "qrId和customerId不能为空")
		return
	}

	var points int
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var item model.QRCodeItem
		if err := tx.Where("qr_id = ?", req.QRID).First(&item).Error; err != nil {
			return errQRNotFound
		}
		if item.IsScanned {
			return errAlreadyScanned
		}

		var batch model.QRBatch
		if err := tx.Where("batch_id = ? AND is_active = ?", item.BatchRef, true).
			First(&batch).Error; err != nil {
			return errQRNotFound
		}

		var customer model.Customer
		if err := tx.Where("customer_id = ? AND is_active = ?", req.CustomerID, true).
			First(&customer).Error; err != nil {
			return errCustomerNotFound
		}

		if err := tx.Model(&item).Update("is_scanned", true).Error; err != nil {
			return err
		}
		if err := tx.Model(&customer).
			Update("points", gorm.Expr("points + ?", batch.Points)).Error; err != nil {
			return err
		}

		points = batch.Points
		return nil
	})

	switch err {
	case nil:
		utils.OK(c, gin.H{
			"qrId":          req.QRID,
			"customerId":    req.CustomerID,
			"pointsAwarded": points,
		})
	case errQRNotFound:
		utils.NotFound(c, "二维码不存在")
	case errCustomerNotFound:
		utils.NotFound(c, "客户不存在")
	case errAlreadyScanned:
		utils.BadRequest(c, "二维码已被扫描")
	default:
		logger.Errorf("扫码处理失败: %v", err)
		utils.ServerError(c, "扫码处理失败")
	}
}
