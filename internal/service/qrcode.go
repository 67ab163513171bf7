package service

import (
	"context"
	"fmt"
	"math/rand"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"loyalty-system/internal/config"
	"loyalty-system/internal/model"
	"loyalty-system/internal/pkg/database"
	"loyalty-system/internal/pkg/logger"
)

var QRCode = new(QRCodeService)

type QRCodeService struct{}

const (
	// 批次ID的随机后缀字符集
	batchRandChars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	// 二维码ID的随机字符集，约6000万种组合
	qrRandChars = "abcdefghijklmnopqrstuvwxyz0123456789"

	// 数量上限，单次请求最多生成100个
	maxQuantity = 100

	// 尺寸边界：栅格格式上限1000，svg上限100万
	minDimension       = 10
	maxRasterDimension = 1000
	maxVectorDimension = 1000000

	defaultFormat = "png"
	defaultSize   = "200x200"
)

var sizePattern = regexp.MustCompile(`^(\d+)x(\d+)$`)

// 支持的图片格式
var supportedFormats = map[string]bool{
	"png":  true,
	"jpg":  true,
	"jpeg": true,
	"svg":  true,
}

// GenerateRequest 批量生成请求参数
type GenerateRequest struct {
	Points   int    `json:"points"`
	URL      string `json:"url"`
	Format   string `json:"format"`
	Size     string `json:"size"`
	Quantity int    `json:"quantity"`
}

// ItemError 单个二维码的生成失败记录
type ItemError struct {
	Index   int    `json:"index"`
	Message string `json:"message"`
}

// Validate 校验生成参数并填充默认值
func (s *QRCodeService) Validate(req *GenerateRequest) error {
	if req.Points <= 0 {
		return fmt.Errorf("points必须为正数")
	}

	if req.URL == "" {
		return fmt.Errorf("url不能为空")
	}
	parsed, err := url.Parse(req.URL)
	if err != nil || !parsed.IsAbs() || parsed.Host == "" {
		return fmt.Errorf("url必须是合法的绝对地址")
	}

	if req.Format == "" {
		req.Format = defaultFormat
	}
	req.Format = strings.ToLower(req.Format)
	if !supportedFormats[req.Format] {
		return fmt.Errorf("format仅支持png、jpg、jpeg、svg")
	}

	if req.Size == "" {
		req.Size = defaultSize
	}
	m := sizePattern.FindStringSubmatch(req.Size)
	if m == nil {
		return fmt.Errorf("size格式必须为 宽x高")
	}
	width, _ := strconv.Atoi(m[1])
	height, _ := strconv.Atoi(m[2])
	if width != height {
		return fmt.Errorf("size必须为正方形")
	}
	maxDim := maxRasterDimension
	if req.Format == "svg" {
		maxDim = maxVectorDimension
	}
	if width < minDimension || width > maxDim {
		return fmt.Errorf("size必须在%dx%d到%dx%d之间", minDimension, minDimension, maxDim, maxDim)
	}

	if req.Quantity < 1 || req.Quantity > maxQuantity {
		return fmt.Errorf("quantity必须在1到%d之间", maxQuantity)
	}

	return nil
}

// ValidateAsync 异步接口的简化校验
// 只检查points/url是否给出和quantity边界，格式与尺寸在后台任务中校验
func (s *QRCodeService) ValidateAsync(req *GenerateRequest) error {
	if req.Points <= 0 {
		return fmt.Errorf("points必须为正数")
	}
	if req.URL == "" {
		return fmt.Errorf("url不能为空")
	}
	if req.Quantity < 1 || req.Quantity > maxQuantity {
		return fmt.Errorf("quantity必须在1到%d之间", maxQuantity)
	}
	return nil
}

// BuildBatch 生成一个批次的全部二维码，不落库
// 批次ID在循环之前生成一次，使每个二维码载荷都能携带所属批次
// 单个失败只记录不中断；全部失败时返回错误
// onProgress 在每次尝试（无论成败）后回调已尝试数量，可为nil
func (s *QRCodeService) BuildBatch(ctx context.Context, req *GenerateRequest, onProgress func(attempted int)) (*model.QRBatch, []ItemError, error) {
	batchID := generateBatchID()

	items := make([]model.QRCodeItem, 0, req.Quantity)
	var itemErrs []ItemError

	for i := 0; i < req.Quantity; i++ {
		// 相邻二维码之间加入间隔，对外部渲染服务做限速
		if i > 0 {
			if err := pace(ctx); err != nil {
				return nil, itemErrs, err
			}
		}

		item, err := s.buildItem(batchID, i, req)
		if err != nil {
			itemErrs = append(itemErrs, ItemError{Index: i, Message: err.Error()})
		} else {
			items = append(items, item)
		}

		if onProgress != nil {
			onProgress(i + 1)
		}
	}

	if len(items) == 0 {
		return nil, itemErrs, fmt.Errorf("所有二维码生成失败")
	}

	batch := &model.QRBatch{
		BatchID:    batchID,
		QRData:     fmt.Sprintf("%d积分 - %s", req.Points, req.URL),
		Format:     req.Format,
		Size:       req.Size,
		Points:     req.Points,
		TotalCount: len(items),
		IsActive:   true,
		QRCodes:    items,
	}

	return batch, itemErrs, nil
}

// Generate 同步生成并落库，调用前需先通过 Validate
func (s *QRCodeService) Generate(ctx context.Context, req *GenerateRequest) (*model.QRBatch, []ItemError, error) {
	batch, itemErrs, err := s.BuildBatch(ctx, req, nil)
	if err != nil {
		return nil, itemErrs, err
	}

	// 批次和全部二维码一次写入，不存在部分落库
	if err := database.DB.Create(batch).Error; err != nil {
		return nil, itemErrs, fmt.Errorf("保存二维码批次失败: %v", err)
	}

	return batch, itemErrs, nil
}

// JobResult 异步任务完成后的结果载荷
type JobResult struct {
	BatchID    string      `json:"batchId"`
	TotalCount int         `json:"totalCount"`
	Errors     []ItemError `json:"errors,omitempty"`
}

// RunJob 在后台执行一次批量生成，并把进度同步到任务注册表
// 任何panic都会被兜住并把任务置为failed，避免任务卡在processing
func (s *QRCodeService) RunJob(jobID string, req *GenerateRequest) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("异步生成任务 %s 发生panic: %v", jobID, r)
			Jobs.Fail(jobID, "内部错误")
		}
	}()

	Jobs.MarkProcessing(jobID)

	// 完整校验放在后台执行，与同步路径保持同一套规则
	if err := s.Validate(req); err != nil {
		Jobs.Fail(jobID, err.Error())
		return
	}

	batch, itemErrs, err := s.BuildBatch(context.Background(), req, func(attempted int) {
		Jobs.Advance(jobID, attempted)
	})
	if err != nil {
		logger.Errorf("异步生成任务 %s 失败: %v", jobID, err)
		Jobs.Fail(jobID, err.Error())
		return
	}

	if err := database.DB.Create(batch).Error; err != nil {
		logger.Errorf("异步生成任务 %s 保存批次失败: %v", jobID, err)
		Jobs.Fail(jobID, "保存二维码批次失败")
		return
	}

	Jobs.Complete(jobID, &JobResult{
		BatchID:    batch.BatchID,
		TotalCount: batch.TotalCount,
		Errors:     itemErrs,
	})
}

// buildItem 生成单个二维码记录
func (s *QRCodeService) buildItem(batchID string, index int, req *GenerateRequest) (model.QRCodeItem, error) {
	qrID := generateQRID()

	// 载荷携带目标地址、二维码ID、批次ID和积分值
	payload := fmt.Sprintf("%s?qrId=%s&batchId=%s&points=%d", req.URL, qrID, batchID, req.Points)

	renderURL, err := buildRenderURL(payload, req)
	if err != nil {
		return model.QRCodeItem{}, err
	}

	return model.QRCodeItem{
		BatchRef:  batchID,
		ItemIndex: index,
		QRID:      qrID,
		QRCodeURL: renderURL,
		IsScanned: false,
	}, nil
}

// buildRenderURL 拼接外部渲染服务的图片地址
// 视觉参数固定：黑底白字反转（黑码白底）、L级纠错、边距1、静区1
func buildRenderURL(payload string, req *GenerateRequest) (string, error) {
	base, err := url.Parse(renderBaseURL())
	if err != nil {
		return "", fmt.Errorf("渲染服务地址无效: %v", err)
	}

	q := url.Values{}
	q.Set("data", payload)
	q.Set("size", req.Size)
	q.Set("format", req.Format)
	q.Set("color", "000000")
	q.Set("bgcolor", "ffffff")
	q.Set("ecc", "L")
	q.Set("margin", "1")
	q.Set("qzone", "1")

	base.RawQuery = q.Encode()
	return base.String(), nil
}

// generateBatchID 生成批次ID：BATCH_<36进制毫秒时间戳>_<6位随机>，全大写
// 时间戳成分使跨批次撞号概率可以忽略，不做查库去重
func generateBatchID() string {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 36)

	suffix := make([]byte, 6)
	for i := range suffix {
		suffix[i] = batchRandChars[rand.Intn(len(batchRandChars))]
	}

	return strings.ToUpper("BATCH_" + ts + "_" + string(suffix))
}

// generateQRID 生成二维码ID：QR + 5位随机小写字母数字
// 不做唯一性检查，批次内也不查重，依赖约6000万组合空间
func generateQRID() string {
	b := make([]byte, 5)
	for i := range b {
		b[i] = qrRandChars[rand.Intn(len(qrRandChars))]
	}
	return "QR" + string(b)
}

// pace 在生成循环内等待一个间隔，支持取消
func pace(ctx context.Context) error {
	d := paceInterval()
	if d <= 0 {
		return nil
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// paceInterval 读取限速间隔，未加载配置时使用默认100毫秒
func paceInterval() time.Duration {
	if config.GlobalConfig == nil {
		return 100 * time.Millisecond
	}
	if config.GlobalConfig.QR.PaceMS <= 0 {
		return 0
	}
	return time.Duration(config.GlobalConfig.QR.PaceMS) * time.Millisecond
}

// renderBaseURL 读取渲染服务地址，未加载配置时使用默认服务
func renderBaseURL() string {
	if config.GlobalConfig == nil || config.GlobalConfig.QR.RenderBaseURL == "" {
		return "https://api.qrserver.com/v1/create-qr-code/"
	}
	return config.GlobalConfig.QR.RenderBaseURL
}
