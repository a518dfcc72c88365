package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BaSui01/framelens/analysis"
	"github.com/BaSui01/framelens/client"
	"github.com/BaSui01/framelens/config"
	"github.com/BaSui01/framelens/llm/image"
	"github.com/BaSui01/framelens/types"
)

// =============================================================================
// 🎞️ analyze 命令
// =============================================================================

func runAnalyze(args []string) {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	addr := fs.String("addr", "", "Server address (overrides client.base_url)")
	imagePath := fs.String("image", "", "PNG or JPEG frame")
	agentRefs := fs.String("agents", "", "Comma separated agent names or IDs")
	category := fs.String("category", "", "Catalog category")
	project := fs.String("project", "", "Project prompt")
	mediaName := fs.String("media-name", "", "Media name")
	mediaDesc := fs.String("media-desc", "", "Media description")
	mediaUUID := fs.String("media-uuid", "", "Media UUID recorded in the output")
	timestamp := fs.Float64("timestamp", 0, "Frame timestamp in seconds")
	fs.Parse(args)

	cfg, logger := loadCallerConfig(*configPath)
	defer logger.Sync()

	if *imagePath == "" {
		exitf("--image is required")
	}
	data, err := os.ReadFile(*imagePath)
	if err != nil {
		exitf("read image: %v", err)
	}
	dataURI, err := frameDataURI(data)
	if err != nil {
		exitf("%v", err)
	}

	catalog := loadCatalog(cfg.Catalog, logger)
	agents, err := selectAgents(catalog, *agentRefs, *category)
	if err != nil {
		exitf("%v", err)
	}

	media := analysis.Media{UUID: *mediaUUID, Name: *mediaName, Description: *mediaDesc}
	if media.UUID == "" {
		media.UUID = uuid.NewString()
	}
	specs := analysis.FrameSpecs(agents, *project, media)

	c := newCaller(cfg.Client, *addr, logger)
	result, err := c.AnalyzeFrame(context.Background(), dataURI, specs)
	if err != nil {
		logger.Error("batch analysis failed", zap.Error(err))
		result = failedOutcomes(specs, err)
	}

	for _, outcome := range result {
		if outcome.Response.Failed() {
			logger.Warn("agent failed",
				zap.String("agent_id", outcome.AgentID),
				zap.String("error", outcome.Response.Error),
			)
		}
	}
	logger.Info("frame analyzed",
		zap.Int("agents", len(result)),
		zap.Int("failures", result.Failures()),
	)

	writeJSON(os.Stdout, []analysis.FrameRecord{{
		MediaUUID: media.UUID,
		Timestamp: *timestamp,
		Analysis:  result,
	}})
}

// failedOutcomes 在整批失败时为每个 Agent 记录同一条错误，帧记录仍然完整.
func failedOutcomes(specs []types.AgentSpec, err error) types.BatchResult {
	msg := types.ErrorMessage(err)
	if msg == "" {
		msg = "Batch analysis failed"
	}
	out := make(types.BatchResult, len(specs))
	for i, spec := range specs {
		out[i] = types.AgentOutcome{AgentID: spec.AgentID, Response: types.Failed(msg)}
	}
	return out
}

// =============================================================================
// 📝 report 命令
// =============================================================================

func runReport(args []string) {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	addr := fs.String("addr", "", "Server address (overrides client.base_url)")
	framesPath := fs.String("frames", "", "JSON file with analyzed frames")
	agentRef := fs.String("agent", "", "Report agent name or ID")
	project := fs.String("project", "", "Project prompt")
	fs.Parse(args)

	cfg, logger := loadCallerConfig(*configPath)
	defer logger.Sync()

	if *framesPath == "" || *agentRef == "" {
		exitf("--frames and --agent are required")
	}
	f, err := os.Open(*framesPath)
	if err != nil {
		exitf("open frames: %v", err)
	}
	frames, err := readFrameRecords(f)
	f.Close()
	if err != nil {
		exitf("%v", err)
	}

	catalog := loadCatalog(cfg.Catalog, logger)
	agent, ok := catalog.Find(*agentRef)
	if !ok {
		exitf("unknown agent %q", *agentRef)
	}

	c := newCaller(cfg.Client, *addr, logger)
	text, err := c.GenerateText(context.Background(),
		analysis.ReportPrompt(agent, *project, frames),
		analysis.ReportModel(agent),
	)
	if err != nil {
		exitf("generate report: %v", err)
	}
	fmt.Println(text)
}

// =============================================================================
// 🔧 辅助函数
// =============================================================================

// loadCallerConfig 加载调用方配置，不要求 API Key
func loadCallerConfig(path string) (*config.Config, *zap.Logger) {
	loader := config.NewLoader()
	if path != "" {
		loader = loader.WithConfigPath(path)
	}
	cfg, err := loader.Load()
	if err != nil {
		exitf("Failed to load config: %v", err)
	}
	// 标准输出留给结果
	logCfg := cfg.Log
	logCfg.OutputPaths = []string{"stderr"}
	logger, _ := initLogger(logCfg)
	return cfg, logger
}

func newCaller(cfg config.ClientConfig, addr string, logger *zap.Logger) *client.Client {
	if addr != "" {
		cfg.BaseURL = addr
	}
	c, err := client.New(client.Config{
		BaseURL:   cfg.BaseURL,
		Timeout:   cfg.Timeout,
		RetryMode: cfg.RetryMode,
	}, logger)
	if err != nil {
		exitf("create client: %v", err)
	}
	return c
}

// loadCatalog 加载 Agent 目录，未配置目录时使用内置目录
func loadCatalog(cfg config.CatalogConfig, logger *zap.Logger) *analysis.Catalog {
	fsys := analysis.DefaultAgents()
	if cfg.Dir != "" {
		fsys = os.DirFS(cfg.Dir)
	}
	categories := cfg.Categories
	if len(categories) == 0 {
		categories = analysis.DefaultCategories()
	}
	return analysis.LoadCatalog(fsys, categories, logger)
}

// selectAgents 按名称/ID 列表或类别选择 Agent，两者都为空时选择全部
func selectAgents(catalog *analysis.Catalog, refs, category string) ([]analysis.Agent, error) {
	var agents []analysis.Agent
	switch {
	case refs != "":
		for _, ref := range strings.Split(refs, ",") {
			ref = strings.TrimSpace(ref)
			if ref == "" {
				continue
			}
			agent, ok := catalog.Find(ref)
			if !ok {
				return nil, fmt.Errorf("unknown agent %q", ref)
			}
			agents = append(agents, agent)
		}
	case category != "":
		agents = catalog.Category(category)
	default:
		agents = catalog.All()
	}
	if len(agents) == 0 {
		return nil, errors.New("no agents selected")
	}
	return agents, nil
}

// frameDataURI 校验帧为 PNG/JPEG 并编码为数据 URI
func frameDataURI(data []byte) (string, error) {
	info, err := image.Sniff(data)
	if err != nil {
		return "", err
	}
	if !image.IsFrameFormat(info.Format) {
		return "", types.NewValidationError(image.InvalidImageFormatMessage)
	}
	return image.EncodeDataURI(&types.ImageAsset{Data: data, MIMEType: info.Format.MIMEType()}), nil
}

// readFrameRecords 读取帧记录，接受数组或单个对象
func readFrameRecords(r io.Reader) ([]analysis.FrameRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read frames: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var one analysis.FrameRecord
		if err := json.Unmarshal(data, &one); err != nil {
			return nil, fmt.Errorf("parse frames: %w", err)
		}
		return []analysis.FrameRecord{one}, nil
	}
	var frames []analysis.FrameRecord
	if err := json.Unmarshal(data, &frames); err != nil {
		return nil, fmt.Errorf("parse frames: %w", err)
	}
	return frames, nil
}

func writeJSON(w io.Writer, v any) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		exitf("encode output: %v", err)
	}
}

func exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
