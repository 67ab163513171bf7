package api

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"loyalty-system/internal/model"
	"loyalty-system/internal/pkg/database"
	"loyalty-system/internal/pkg/logger"
	"loyalty-system/internal/utils"
)

// SchemeQuery 方案列表查询参数
type SchemeQuery struct {
	Page int    `form:"page,default=1"`
	Size int    `form:"size,default=10"`
	Name string `form:"name"`
}

// SchemeRequest 方案创建/更新参数
type SchemeRequest struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	PointsRequired int    `json:"pointsRequired"`
	ImageURL       string `json:"imageUrl"`
}

// GetSchemes 获取方案列表
func GetSchemes(c *gin.Context) {
	var query SchemeQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.BadRequest(c, "参数错误")
		return
	}

	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Size <= 0 {
		query.Size = 10
	}

	db := database.DB.Model(&model.Scheme{}).Where("is_active = ?", true)
	if query.Name != "" {
		db = db.Where("name LIKE ?", "%"+query.Name+"%")
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		logger.Errorf("获取方案总数失败: %v", err)
		utils.ServerError(c, "获取方案列表失败")
		return
	}

	var schemes []model.Scheme
	if err := db.Order("created_at DESC").
		Offset((query.Page - 1) * query.Size).
		Limit(query.Size).
		Find(&schemes).Error; err != nil {
		logger.Errorf("获取方案列表失败: %v", err)
		utils.ServerError(c, "获取方案列表失败")
		return
	}

	utils.OK(c, gin.H{
		"total": total,
		"page":  query.Page,
		"size":  query.Size,
		"items": schemes,
	})
}

// GetScheme 获取单个方案
func GetScheme(c *gin.Context) {
	schemeID := c.Param("schemeId")

	var scheme model.Scheme
	if err := database.DB.Where("scheme_id = ? AND is_active = ?", schemeID, true).
		First(&scheme).Error; err != nil {
		utils.NotFound(c, "方案不存在")
		return
	}

	utils.OK(c, scheme)
}

// CreateScheme 创建方案
func CreateScheme(c *gin.Context) {
	var req SchemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "参数错误")
		return
	}
	if req.Name == "" {
		utils.BadRequest(c, "name不能为空")
		return
	}
	if req.PointsRequired <= 0 {
		utils.BadRequest(c, "pointsRequired必须为正数")
		return
	}

	scheme := &model.Scheme{
		SchemeID:       uuid.New().String(),
		Name:           req.Name,
		Description:    req.Description,
		PointsRequired: req.PointsRequired,
		ImageURL:       req.ImageURL,
		IsActive:       true,
	}

	if err := database.DB.Create(scheme).Error; err != nil {
		logger.Errorf("创建方案失败: %v", err)
		utils.ServerError(c, "创建方案失败")
		return
	}

	utils.OK(c, scheme)
}

// UpdateScheme 更新方案
func UpdateScheme(c *gin.Context) {
	schemeID := c.Param("schemeId")

	var req SchemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "参数错误")
		return
	}

	var scheme model.Scheme
	if err := database.DB.Where("scheme_id = ? AND is_active = ?", schemeID, true).
		First(&scheme).Error; err != nil {
		utils.NotFound(c, "方案不存在")
		return
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.PointsRequired > 0 {
		updates["points_required"] = req.PointsRequired
	}
	if req.ImageURL != "" {
		updates["image_url"] = req.ImageURL
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&scheme).Updates(updates).Error; err != nil {
			logger.Errorf("更新方案 %s 失败: %v", schemeID, err)
			utils.ServerError(c, "更新方案失败")
			return
		}
	}

	utils.OK(c, scheme)
}

// DeleteScheme 软删除方案
func DeleteScheme(c *gin.Context) {
	schemeID := c.Param("schemeId")

	result := database.DB.Model(&model.Scheme{}).
		Where("scheme_id = ? AND is_active = ?", schemeID, true).
		Update("is_active", false)
	if result.Error != nil {
		logger.Errorf("删除方案 %s 失败: %v", schemeID, result.Error)
		utils.ServerError(c, "删除方案失败")
		return
	}
	if result.RowsAffected == 0 {
		utils.NotFound(c, "方案不存在")
		return
	}

	utils.OKMessage(c, "方案已删除")
}
