package image

import "fmt"

// Mode 选择归一化策略.
type Mode int

const (
	// Compact 缩放至宽度上限并以较低质量编码，用于展示与单图分析.
	Compact Mode = iota + 1
	// Preserve 保持尺寸并以较高质量编码，用于批量分发的输入帧.
	Preserve
)

// String 返回模式名称.
func (m Mode) String() string {
	switch m {
	case Compact:
		return "compact"
	case Preserve:
		return "preserve"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Format 是 Sniff 识别出的栅格格式.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatGIF  Format = "gif"
	FormatWebP Format = "webp"
)

// MIMEType 返回格式对应的 MIME 类型.
func (f Format) MIMEType() string {
	return "image/" + string(f)
}

// Info 是图像头部信息.
type Info struct {
	Format Format
	Width  int
	Height int
}
