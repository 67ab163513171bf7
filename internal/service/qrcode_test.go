package service

import (
	"context"
	"os"
	"regexp"
	"strings"
	"testing"
	"time"

	"loyalty-system/internal/config"
)

func TestMain(m *testing.M) {
	// 测试中关闭生成限速
	config.GlobalConfig = &config.Config{
		QR: config.QRConfig{
			PaceMS:        -1,
			RenderBaseURL: "https://api.qrserver.com/v1/create-qr-code/",
		},
	}
	os.Exit(m.Run())
}

func validRequest() *GenerateRequest {
	return &GenerateRequest{
		Points:   10,
		URL:      "https://example.com",
		Quantity: 1,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *GenerateRequest)
		wantErr bool
	}{
		{"最小合法请求", func(r *GenerateRequest) {}, false},
		{"points为零", func(r *GenerateRequest) { r.Points = 0 }, true},
		{"points为负", func(r *GenerateRequest) { r.Points = -5 }, true},
		{"url为空", func(r *GenerateRequest) { r.URL = "" }, true},
		{"url非绝对地址", func(r *GenerateRequest) { r.URL = "example.com/page" }, true},
		{"url乱码", func(r *GenerateRequest) { r.URL = "://bad" }, true},
		{"不支持的格式", func(r *GenerateRequest) { r.Format = "bmp" }, true},
		{"格式大写归一", func(r *GenerateRequest) { r.Format = "PNG" }, false},
		{"尺寸非宽x高", func(r *GenerateRequest) { r.Size = "200" }, true},
		{"尺寸低于下限", func(r *GenerateRequest) { r.Size = "5x5" }, true},
		{"栅格上限边界", func(r *GenerateRequest) { r.Size = "1000x1000" }, false},
		{"栅格超上限", func(r *GenerateRequest) { r.Size = "1001x1001" }, true},
		{"svg大尺寸", func(r *GenerateRequest) { r.Format = "svg"; r.Size = "100000x100000" }, false},
		{"svg非正方形", func(r *GenerateRequest) { r.Format = "svg"; r.Size = "1000x999" }, true},
		{"数量为零", func(r *GenerateRequest) { r.Quantity = 0 }, true},
		{"数量超上限", func(r *GenerateRequest) { r.Quantity = 101 }, true},
		{"数量上限边界", func(r *GenerateRequest) { r.Quantity = 100 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)
			err := QRCode.Validate(req)
			if tt.wantErr && err == nil {
				t.Fatalf("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateDefaults(t *testing.T) {
	req := validRequest()
	if err := QRCode.Validate(req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Format != "png" {
		t.Errorf("expected default format png, got %s", req.Format)
	}
	if req.Size != "200x200" {
		t.Errorf("expected default size 200x200, got %s", req.Size)
	}
}

func TestValidateAsync(t *testing.T) {
	// 简化校验不检查格式和尺寸
	req := &GenerateRequest{Points: 10, URL: "not-even-a-url", Format: "bmp", Size: "5x5", Quantity: 5}
	if err := QRCode.ValidateAsync(req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req.Quantity = 0
	if err := QRCode.ValidateAsync(req); err == nil {
		t.Fatal("expected error for quantity 0")
	}
	req.Quantity = 101
	if err := QRCode.ValidateAsync(req); err == nil {
		t.Fatal("expected error for quantity 101")
	}
	req.Quantity = 5
	req.Points = 0
	if err := QRCode.ValidateAsync(req); err == nil {
		t.Fatal("expected error for missing points")
	}
	req.Points = 10
	req.URL = ""
	if err := QRCode.ValidateAsync(req); err == nil {
		t.Fatal("expected error for missing url")
	}
}

var (
	batchIDPattern = regexp.MustCompile(`^BATCH_[0-9A-Z]+_[0-9A-Z]{6}$`)
	qrIDPattern    = regexp.MustCompile(`^QR[a-z0-9]{5}$`)
)

func TestBuildBatch(t *testing.T) {
	req := validRequest()
	req.Quantity = 3
	if err := QRCode.Validate(req); err != nil {
		t.Fatalf("validate: %v", err)
	}

	batch, itemErrs, err := QRCode.BuildBatch(context.Background(), req, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(itemErrs) != 0 {
		t.Fatalf("expected no item errors, got %v", itemErrs)
	}

	if !batchIDPattern.MatchString(batch.BatchID) {
		t.Errorf("batch id %q does not match pattern", batch.BatchID)
	}
	if batch.TotalCount != 3 || len(batch.QRCodes) != 3 {
		t.Fatalf("expected 3 items, got totalCount=%d len=%d", batch.TotalCount, len(batch.QRCodes))
	}
	if !batch.IsActive {
		t.Error("new batch should be active")
	}

	seen := make(map[string]bool)
	for i, item := range batch.QRCodes {
		if item.ItemIndex != i {
			t.Errorf("item %d has index %d", i, item.ItemIndex)
		}
		if !qrIDPattern.MatchString(item.QRID) {
			t.Errorf("qr id %q does not match pattern", item.QRID)
		}
		if seen[item.QRID] {
			t.Errorf("duplicate qr id %q", item.QRID)
		}
		seen[item.QRID] = true

		// 每个二维码的渲染地址都必须嵌入所属批次ID
		if !strings.Contains(item.QRCodeURL, batch.BatchID) {
			t.Errorf("item %d url does not embed batch id: %s", i, item.QRCodeURL)
		}
		if item.IsScanned {
			t.Errorf("item %d should not be scanned", i)
		}
	}
}

func TestBuildBatchProgress(t *testing.T) {
	req := validRequest()
	req.Quantity = 5
	if err := QRCode.Validate(req); err != nil {
		t.Fatalf("validate: %v", err)
	}

	var progress []int
	_, _, err := QRCode.BuildBatch(context.Background(), req, func(attempted int) {
		progress = append(progress, attempted)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(progress) != 5 {
		t.Fatalf("expected 5 progress callbacks, got %d", len(progress))
	}
	for i, p := range progress {
		if p != i+1 {
			t.Errorf("progress callback %d reported %d", i, p)
		}
	}
}

func TestBuildBatchCancel(t *testing.T) {
	// 打开限速以便出现可取消的等待点
	old := config.GlobalConfig.QR.PaceMS
	config.GlobalConfig.QR.PaceMS = 50
	defer func() { config.GlobalConfig.QR.PaceMS = old }()

	req := validRequest()
	req.Quantity = 3
	if err := QRCode.Validate(req); err != nil {
		t.Fatalf("validate: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := QRCode.BuildBatch(ctx, req, nil)
	if err == nil {
		t.Fatal("expected cancellation error")
	}
}

func TestGenerateBatchID(t *testing.T) {
	a := generateBatchID()
	if !batchIDPattern.MatchString(a) {
		t.Fatalf("batch id %q does not match pattern", a)
	}

	time.Sleep(2 * time.Millisecond)
	b := generateBatchID()
	if a == b {
		t.Errorf("consecutive batch ids collided: %s", a)
	}
}

func TestGenerateQRID(t *testing.T) {
	id := generateQRID()
	if !qrIDPattern.MatchString(id) {
		t.Fatalf("qr id %q does not match pattern", id)
	}
}
