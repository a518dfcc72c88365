package handlers

import (
	"context"
	"encoding/base64"
	"net/http"

	"github.com/BaSui01/framelens/api"
	"github.com/BaSui01/framelens/llm/conversation"
	"github.com/BaSui01/framelens/llm/dispatch"
	"github.com/BaSui01/framelens/llm/image"
	"github.com/BaSui01/framelens/types"
	"go.uber.org/zap"
)

// =============================================================================
// 🖼️ Gemini 分析 Handler
// =============================================================================

// Engine 是 Handler 依赖的分发能力，由 *dispatch.Dispatcher 实现.
type Engine interface {
	DispatchBatch(ctx context.Context, frame []byte, specs []types.AgentSpec) (types.BatchResult, error)
	DispatchImage(ctx context.Context, frame []byte, prompt, model string) (*dispatch.Reply, error)
	DispatchPrompt(ctx context.Context, p conversation.Prompt, model string) (string, error)
}

// GeminiHandler 处理 /api/gemini/* 请求.
type GeminiHandler struct {
	engine       Engine
	maxBodyBytes int64
	logger       *zap.Logger
}

// NewGeminiHandler 创建 GeminiHandler，maxBodyBytes <= 0 时使用默认上限.
func NewGeminiHandler(engine Engine, maxBodyBytes int64, logger *zap.Logger) *GeminiHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	return &GeminiHandler{
		engine:       engine,
		maxBodyBytes: maxBodyBytes,
		logger:       logger.With(zap.String("component", "gemini_handler")),
	}
}

// HandleBatchImages 处理 POST /api/gemini/batch-images
// @Summary 多 Agent 帧分析
// @Tags 分析
// @Accept json
// @Produce json
// @Param request body api.BatchImagesRequest true "帧与 Agent 配置"
// @Success 200 {object} api.Response "每个 Agent 的结果，顺序与请求一致"
// @Failure 400 {object} api.Response "参数或图像格式错误"
// @Router /api/gemini/batch-images [post]
func (h *GeminiHandler) HandleBatchImages(w http.ResponseWriter, r *http.Request) {
	var req api.BatchImagesRequest
	if err := DecodeJSONBody(w, r, &req, h.maxBodyBytes, h.logger); err != nil {
		return
	}

	specs, err := req.Specs()
	if err != nil {
		WriteError(w, r, err, h.logger)
		return
	}
	frame, err := image.DecodeDataURI(req.ImageData)
	if err != nil {
		WriteError(w, r, err, h.logger)
		return
	}

	results, err := h.engine.DispatchBatch(r.Context(), frame, specs)
	if err != nil {
		WriteError(w, r, err, h.logger)
		return
	}

	h.logger.Debug("batch analyzed",
		zap.Int("agents", len(results)),
		zap.Int("failures", results.Failures()),
	)
	WriteSuccess(w, results)
}

// HandleImages 处理 POST /api/gemini/images
// @Summary 单提示词帧分析
// @Tags 分析
// @Accept json
// @Produce json
// @Param request body api.ImagesRequest true "帧与提示词"
// @Success 200 {object} api.Response "文本与可选的 JPEG 图像"
// @Failure 400 {object} api.Response "参数或图像格式错误"
// @Router /api/gemini/images [post]
func (h *GeminiHandler) HandleImages(w http.ResponseWriter, r *http.Request) {
	var req api.ImagesRequest
	if err := DecodeJSONBody(w, r, &req, h.maxBodyBytes, h.logger); err != nil {
		return
	}
	if req.Prompt == "" || req.ImageData == "" {
		WriteError(w, r, types.NewValidationError(api.ImageRequiredMessage), h.logger)
		return
	}

	frame, err := image.DecodeDataURI(req.ImageData)
	if err != nil {
		WriteError(w, r, err, h.logger)
		return
	}

	reply, err := h.engine.DispatchImage(r.Context(), frame, req.Prompt, req.Model)
	if err != nil {
		WriteError(w, r, err, h.logger)
		return
	}

	out := api.ImageResult{Text: reply.Text}
	if reply.Image != nil {
		out.Image = base64.StdEncoding.EncodeToString(reply.Image.Data)
	}
	WriteSuccess(w, out)
}

// HandleText 处理 POST /api/gemini/text
// @Summary 文本生成
// @Tags 分析
// @Accept json
// @Produce json
// @Param request body api.TextRequest true "单条提示词或结构化对话"
// @Success 200 {object} api.Response "生成的文本"
// @Failure 400 {object} api.Response "messageHistory 格式错误"
// @Router /api/gemini/text [post]
func (h *GeminiHandler) HandleText(w http.ResponseWriter, r *http.Request) {
	var req api.TextRequest
	if err := DecodeJSONBody(w, r, &req, h.maxBodyBytes, h.logger); err != nil {
		return
	}

	prompt, err := req.ToPrompt()
	if err != nil {
		WriteError(w, r, err, h.logger)
		return
	}

	text, err := h.engine.DispatchPrompt(r.Context(), prompt, req.Model)
	if err != nil {
		WriteError(w, r, err, h.logger)
		return
	}
	WriteSuccess(w, api.TextResult{Text: text})
}

// Register 在 mux 上挂载全部分析路由.
func (h *GeminiHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/gemini/batch-images", h.HandleBatchImages)
	mux.HandleFunc("POST /api/gemini/images", h.HandleImages)
	mux.HandleFunc("POST /api/gemini/text", h.HandleText)
}
