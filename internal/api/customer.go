package api

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"loyalty-system/internal/model"
	"loyalty-system/internal/pkg/database"
	"loyalty-system/internal/pkg/logger"
	"loyalty-system/internal/utils"
)

// CustomerQuery 客户列表查询参数
type CustomerQuery struct {
	Page  int    `form:"page,default=1"`
	Size  int    `form:"size,default=10"`
	Name  string `form:"name"`
	Email string `form:"email"`
}

// CustomerRequest 客户创建/更新参数
type CustomerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// GetCustomers 获取客户列表
func GetCustomers(c *gin.Context) {
	var query CustomerQuery
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

	db := database.DB.Model(&model.Customer{}).Where("is_active = ?", true)
	if query.Name != "" {
		db = db.Where("name LIKE ?", "%"+query.Name+"%")
	}
	if query.Email != "" {
		db = db.Where("email = ?", query.Email)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		logger.Errorf("获取客户总数失败: %v", err)
		utils.ServerError(c, "获取客户列表失败")
		return
	}

	var customers []model.Customer
	if err := db.Order("created_at DESC").
		Offset((query.Page - 1) * query.Size).
		Limit(query.Size).
		Find(&customers).Error; err != nil {
		logger.Errorf("获取客户列表失败: %v", err)
		utils.ServerError(c, "获取客户列表失败")
		return
	}

	utils.OK(c, gin.H{
		"total": total,
		"page":  query.Page,
		"size":  query.Size,
		"items": customers,
	})
}

// GetCustomer 获取单个客户
func GetCustomer(c *gin.Context) {
	customerID := c.Param("customerId")

	var customer model.Customer
	if err := database.DB.Where("customer_id = ? AND is_active = ?", customerID, true).
		First(&customer).Error; err != nil {
		utils.NotFound(c, "客户不存在")
		return
	}

	utils.OK(c, customer)
}

// CreateCustomer 创建客户，初始积分为0
func CreateCustomer(c *gin.Context) {
	var req CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "参数错误")
		return
	}
	if req.Name == "" || req.Email == "" {
		utils.BadRequest(c, "name和email不能为空")
		return
	}

	customer := &model.Customer{
		CustomerID: uuid.New().String(),
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Points:     0,
		IsActive:   true,
	}

	if err := database.DB.Create(customer).Error; err != nil {
		logger.Errorf("创建客户失败: %v", err)
		utils.ServerError(c, "创建客户失败")
		return
	}

	utils.OK(c, customer)
}

// UpdateCustomer 更新客户信息，积分不走此接口
func UpdateCustomer(c *gin.Context) {
	customerID := c.Param("customerId")

	var req CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "参数错误")
		return
	}

	var customer model.Customer
	if err := database.DB.Where("customer_id = ? AND is_active = ?", customerID, true).
		First(&customer).Error; err != nil {
		utils.NotFound(c, "客户不存在")
		return
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Email != "" {
		updates["email"] = req.Email
	}
	if req.Phone != "" {
		updates["phone"] = req.Phone
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&customer).Updates(updates).Error; err != nil {
			logger.Errorf("更新客户 %s 失败: %v", customerID, err)
			utils.ServerError(c, "更新客户失败")
			return
		}
	}

	utils.OK(c, customer)
}

// DeleteCustomer 软删除客户
func DeleteCustomer(c *gin.Context) {
	customerID := c.Param("customerId")

	result := database.DB.Model(&model.Customer{}).
		Where("customer_id = ? AND is_active = ?", customerID, true).
		Update("is_active", false)
	if result.Error != nil {
		logger.Errorf("删除客户 %s 失败: %v", customerID, result.Error)
		utils.ServerError(c, "删除客户失败")
		return
	}
	if result.RowsAffected == 0 {
		utils.NotFound(c, "客户不存在")
		return
	}

	utils.OKMessage(c, "客户已删除")
}

// RedeemRequest 兑换请求参数
type RedeemRequest struct {
	SchemeID string `json:"schemeId"`
}

// RedeemScheme 用积分兑换方案，余额扣减在事务内完成
func RedeemScheme(c *gin.Context) {
	customerID := c.Param("customerId")

	var req RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "参数错误")
		return
	}
	if req.SchemeID == "" {
		utils.BadRequest(c, "schemeId不能为空")
		return
	}

	var remaining int
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var customer model.Customer
		if err := tx.Where("customer_id = ? AND is_active = ?", customerID, true).
			First(&customer).Error; err != nil {
			return errCustomerNotFound
		}

		var scheme model.Scheme
		if err := tx.Where("scheme_id = ? AND is_active = ?", req.SchemeID, true).
			First(&scheme).Error; err != nil {
			return errSchemeNotFound
		}

		if customer.Points < scheme.PointsRequired {
			return errNotEnoughPoints
		}

		if err := tx.Model(&customer).
			Update("points", gorm.Expr("points - ?", scheme.PointsRequired)).Error; err != nil {
			return err
		}

		remaining = customer.Points - scheme.PointsRequired
		return nil
	})

	switch err {
	case nil:
		utils.OK(c, gin.H{
			"customerId":      customerID,
			"schemeId":        req.SchemeID,
			"remainingPoints": remaining,
		})
	case errCustomerNotFound:
		utils.NotFound(c, "客户不存在")
	case errSchemeNotFound:
		utils.NotFound(c, "方案不存在")
	case errNotEnoughPoints:
		utils.BadRequest(c, "积分不足")
	default:
		logger.Errorf("兑换处理失败: %v", err)
		utils.ServerError(c, "兑换处理失败")
	}
}
