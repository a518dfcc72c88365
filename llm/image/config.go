package image

import "runtime"

// Config 配置 Normalizer.
type Config struct {
	// MaxWidth 是 Compact 模式的宽度上限.
	MaxWidth int `json:"max_width" yaml:"max_width"`
	// CompactQuality 是 Compact 模式的 JPEG 质量.
	CompactQuality int `json:"compact_quality" yaml:"compact_quality"`
	// PreserveQuality 是 Preserve 模式的 JPEG 质量.
	PreserveQuality int `json:"preserve_quality" yaml:"preserve_quality"`
	// MaxConcurrency 限制同时进行的转码数量，<= 0 时取 CPU 数.
	MaxConcurrency int `json:"max_concurrency" yaml:"max_concurrency"`
	// MaxPixels 是解码前允许的宽 × 高上限，<= 0 时取默认值.
	MaxPixels int64 `json:"max_pixels" yaml:"max_pixels"`
}

// DefaultMaxPixels 与常见图像库的输入像素上限一致 (16383 × 16383).
const DefaultMaxPixels int64 = 16383 * 16383

// DefaultConfig 返回默认归一化配置.
func DefaultConfig() Config {
	return Config{
		MaxWidth:        640,
		CompactQuality:  70,
		PreserveQuality: 90,
		MaxConcurrency:  runtime.NumCPU(),
		MaxPixels:       DefaultMaxPixels,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxWidth <= 0 {
		c.MaxWidth = d.MaxWidth
	}
	if c.CompactQuality <= 0 || c.CompactQuality > 100 {
		c.CompactQuality = d.CompactQuality
	}
	if c.PreserveQuality <= 0 || c.PreserveQuality > 100 {
		c.PreserveQuality = d.PreserveQuality
	}
	if c.MaxConcurrency <= 0 {
		c.MaxConcurrency = d.MaxConcurrency
	}
	if c.MaxPixels <= 0 {
		c.MaxPixels = d.MaxPixels
	}
	return c
}
