package image

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"time"

	// 注册解码器：输入帧为 PNG/JPEG，Provider 可能返回 GIF/WebP.
	_ "image/gif"
	_ "image/png"

	"go.uber.org/zap"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/semaphore"

	"github.com/BaSui01/framelens/internal/pool"
	"github.com/BaSui01/framelens/types"
)

// encodeBuffers 复用 JPEG 编码缓冲区，超过 8 MB 的不回收.
var encodeBuffers = pool.NewBufferPool(64<<10, 8<<20)

// Observer 接收每次转码的耗时，可为 nil.
type Observer interface {
	ObserveNormalize(mode string, duration time.Duration, err error)
}

// Normalizer 将任意支持的栅格图像转换为 JPEG.
// 并发安全，不保存跨调用状态.
type Normalizer struct {
	cfg      Config
	sem      *semaphore.Weighted
	observer Observer
	logger   *zap.Logger
}

// NewNormalizer 创建 Normalizer.
func NewNormalizer(cfg Config, logger *zap.Logger) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg = cfg.withDefaults()
	return &Normalizer{
		cfg:    cfg,
		sem:    semaphore.NewWeighted(int64(cfg.MaxConcurrency)),
		logger: logger.With(zap.String("component", "image_normalizer")),
	}
}

// WithObserver 设置转码观察者.
func (n *Normalizer) WithObserver(o Observer) *Normalizer {
	n.observer = o
	return n
}

// Config 返回生效的配置.
func (n *Normalizer) Config() Config {
	return n.cfg
}

// Normalize 按 mode 归一化图像.
func (n *Normalizer) Normalize(ctx context.Context, data []byte, mode Mode) (*types.ImageAsset, error) {
	if mode != Compact && mode != Preserve {
		return nil, types.NewValidationError("unknown normalization mode: " + mode.String())
	}
	if len(data) == 0 {
		return nil, types.NewDecodeError("image data is empty", nil)
	}

	// 先读头部，像素数超限的输入不进入解码
	info, err := Sniff(data)
	if err != nil {
		return nil, err
	}
	if pixels := int64(info.Width) * int64(info.Height); pixels > n.cfg.MaxPixels {
		return nil, types.NewDecodeError(
			fmt.Sprintf("image dimensions %dx%d exceed pixel limit %d", info.Width, info.Height, n.cfg.MaxPixels), nil)
	}

	payload := n.cfg.markerPayload(mode)
	if hasStamp(data, payload) && (mode != Compact || info.Width <= n.cfg.MaxWidth) {
		return &types.ImageAsset{Data: data, MIMEType: types.MIMEJPEG}, nil
	}

	if err := n.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer n.sem.Release(1)

	start := time.Now()
	out, err := n.transcode(data, mode, payload)
	if n.observer != nil {
		n.observer.ObserveNormalize(mode.String(), time.Since(start), err)
	}
	if err != nil {
		return nil, err
	}

	n.logger.Debug("image normalized",
		zap.String("mode", mode.String()),
		zap.Int("input_bytes", len(data)),
		zap.Int("output_bytes", len(out)),
		zap.Duration("duration", time.Since(start)),
	)
	return &types.ImageAsset{Data: out, MIMEType: types.MIMEJPEG}, nil
}

func (n *Normalizer) transcode(data []byte, mode Mode, payload []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, types.NewDecodeError("failed to decode image", err)
	}

	img := src
	if mode == Compact {
		img = fitWidth(src, n.cfg.MaxWidth)
	}

	buf := encodeBuffers.Get()
	defer encodeBuffers.Put(buf)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: n.cfg.quality(mode)}); err != nil {
		return nil, types.NewDecodeError("failed to encode image", err)
	}
	// stamp 总是复制，缓冲区可以安全归还
	return stamp(buf.Bytes(), payload), nil
}

// fitWidth 将图像缩小到 maxWidth 宽，不放大.
func fitWidth(src image.Image, maxWidth int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxWidth || w == 0 {
		return src
	}
	nh := (h*maxWidth + w/2) / w
	if nh < 1 {
		nh = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}
