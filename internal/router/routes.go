package router

import (
	"github.com/gin-gonic/gin"

	"loyalty-system/internal/api"
	"loyalty-system/internal/middleware"
)

// SetupRoutes 配置所有路由
func SetupRoutes(r *gin.Engine, uploadDir string) {
	// 健康检查接口（不需要任何中间件）
	r.GET("/api/health", api.HealthCheck)

	// 上传文件静态访问
	r.Static("/uploads", uploadDir)

	// API路由
	apiGroup := r.Group("/api")
	apiGroup.Use(middleware.Cors())
	apiGroup.Use(middleware.Session())
	{
		// 二维码生成与批次管理
		apiGroup.POST("/generate-qr", api.GenerateQR)                   // 同步生成
		apiGroup.POST("/generate-bulk-qr-async", api.GenerateBulkQRAsync) // 异步生成
		apiGroup.GET("/jobs/:jobId", api.GetJob)                        // 异步任务查询
		apiGroup.GET("/qr-batches", api.GetQRBatches)                   // 批次列表
		apiGroup.GET("/qr-batches/:batchId", api.GetQRBatch)            // 单个批次
		apiGroup.DELETE("/qr-batches/:batchId", api.DeleteQRBatch)      // 软删除批次
		apiGroup.GET("/qr-stats", api.GetQRStats)                       // 扫码统计
		apiGroup.POST("/qr-scan", api.ScanQR)                           // 扫码并加积分

		// 兑换方案管理
		schemes := apiGroup.Group("/schemes")
		{
			schemes.GET("", api.GetSchemes)                 // 方案列表
			schemes.GET("/:schemeId", api.GetScheme)        // 单个方案
			schemes.POST("", api.CreateScheme)              // 创建方案
			schemes.PUT("/:schemeId", api.UpdateScheme)     // 更新方案
			schemes.DELETE("/:schemeId", api.DeleteScheme)  // 软删除方案
		}

		// 客户管理
		customers := apiGroup.Group("/customers")
		{
			customers.GET("", api.GetCustomers)                    // 客户列表
			customers.GET("/:customerId", api.GetCustomer)         // 单个客户
			customers.POST("", api.CreateCustomer)                 // 创建客户
			customers.PUT("/:customerId", api.UpdateCustomer)      // 更新客户
			customers.DELETE("/:customerId", api.DeleteCustomer)   // 软删除客户
			customers.POST("/:customerId/redeem", api.RedeemScheme) // 积分兑换
		}

		// 文件上传
		apiGroup.POST("/upload", api.UploadFile)
	}
}
