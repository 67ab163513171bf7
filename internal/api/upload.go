package api

import (
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"loyalty-system/internal/config"
	"loyalty-system/internal/pkg/logger"
	"loyalty-system/internal/utils"
)

// 允许上传的图片后缀
var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".svg":  true,
	".gif":  true,
}

// UploadFile 上传图片文件，保存到配置的上传目录
// 文件以随机名落盘，通过 /uploads 静态路由访问
func UploadFile(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		utils.BadRequest(c, "未找到上传文件")
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[ext] {
		utils.BadRequest(c, "不支持的文件类型")
		return
	}

	filename := uuid.New().String() + ext
	dst := filepath.Join(config.GlobalConfig.QR.UploadDir, filename)

	if err := c.SaveUploadedFile(file, dst); err != nil {
		logger.Errorf("保存上传文件失败: %v", err)
		utils.ServerError(c, "保存文件失败")
		return
	}

	utils.OK(c, gin.H{
		"filename": filename,
		"url":      "/uploads/" + filename,
	})
}
