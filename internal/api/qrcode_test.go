package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"loyalty-system/internal/config"
	"loyalty-system/internal/service"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	// 测试中关闭生成限速
	config.GlobalConfig = &config.Config{
		QR: config.QRConfig{PaceMS: -1},
	}
	os.Exit(m.Run())
}

func newTestRouter() *gin.Engine {
	r := gin.New()
	r.POST("/api/generate-qr", GenerateQR)
	r.POST("/api/generate-bulk-qr-async", GenerateBulkQRAsync)
	r.GET("/api/jobs/:jobId", GetJob)
	return r
}

type envelope struct {
	Success bool                   `json:"success"`
	Error   string                 `json:"error"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data"`
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("invalid response body %q: %v", w.Body.String(), err)
	}
	return w, env
}

func TestGenerateQRValidation(t *testing.T) {
	r := newTestRouter()

	tests := []struct {
		name string
		body string
	}{
		{"非法JSON", `{`},
		{"缺少url", `{"points":10,"quantity":1}`},
		{"缺少points", `{"url":"https://example.com","quantity":1}`},
		{"数量为零", `{"points":10,"url":"https://example.com","quantity":0}`},
		{"数量超上限", `{"points":10,"url":"https://example.com","quantity":101}`},
		{"尺寸过小", `{"points":10,"url":"https://example.com","quantity":1,"size":"5x5"}`},
		{"svg非正方形", `{"points":10,"url":"https://example.com","quantity":1,"format":"svg","size":"1000x999"}`},
		{"不支持的格式", `{"points":10,"url":"https://example.com","quantity":1,"format":"bmp"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := doJSON(t, r, http.MethodPost, "/api/generate-qr", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
			if env.Success {
				t.Error("validation failure should report success=false")
			}
			if env.Error == "" {
				t.Error("validation failure should carry an error message")
			}
		})
	}
}

func TestGenerateBulkQRAsyncValidation(t *testing.T) {
	r := newTestRouter()

	w, env := doJSON(t, r, http.MethodPost, "/api/generate-bulk-qr-async",
		`{"points":10,"url":"https://example.com","quantity":0}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if env.Success {
		t.Error("expected success=false")
	}
}

func TestGetJob(t *testing.T) {
	r := newTestRouter()

	id := service.Jobs.Create(3)
	w, env := doJSON(t, r, http.MethodGet, "/api/jobs/"+id, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !env.Success {
		t.Error("expected success=true")
	}
	if env.Data["status"] != service.JobStatusPending {
		t.Errorf("expected pending job, got %v", env.Data["status"])
	}
	if env.Data["id"] != id {
		t.Errorf("expected job id %s, got %v", id, env.Data["id"])
	}
}

func TestGetJobNotFound(t *testing.T) {
	r := newTestRouter()

	w, env := doJSON(t, r, http.MethodGet, "/api/jobs/unknown-id", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if env.Success {
		t.Error("expected success=false")
	}
}

// 异步接口应立即受理并在后台推进任务状态
// 测试环境没有数据库，任务最终会因落库失败进入failed，但进度必须先走满
func TestGenerateBulkQRAsyncAccepted(t *testing.T) {
	r := newTestRouter()

	w, env := doJSON(t, r, http.MethodPost, "/api/generate-bulk-qr-async",
		`{"points":10,"url":"https://example.com","quantity":5}`)
	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", w.Code, w.Body.String())
	}
	jobID, ok := env.Data["jobId"].(string)
	if !ok || jobID == "" {
		t.Fatalf("expected jobId in response, got %v", env.Data)
	}

	deadline := time.After(2 * time.Second)
	for {
		job, ok := service.Jobs.Get(jobID)
		if !ok {
			t.Fatal("job disappeared from registry")
		}
		if job.Status == service.JobStatusCompleted || job.Status == service.JobStatusFailed {
			if job.Progress != 5 {
				t.Fatalf("expected progress 5 before terminal state, got %d", job.Progress)
			}
			return
		}
		select {
		case <-deadline:
			t.Fatalf("job never reached a terminal state, stuck at %s", job.Status)
		case <-time.After(10 * time.Millisecond):
		}
	}
}
