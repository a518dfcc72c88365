package image

import (
	"bytes"
	"encoding/base64"
	"image"
	"regexp"

	"github.com/BaSui01/framelens/types"
)

// InvalidImageFormatMessage 是输入帧格式不合法时的统一提示.
const InvalidImageFormatMessage = "Invalid base64 image format. Must be PNG or JPEG."

var dataURIPrefix = regexp.MustCompile(`^data:image/(png|jpeg|jpg);base64,`)

// DecodeDataURI 解析 PNG/JPEG 数据 URI 并返回原始字节.
// 前缀不匹配或 base64 非法时返回 ValidationError.
func DecodeDataURI(s string) ([]byte, error) {
	loc := dataURIPrefix.FindStringIndex(s)
	if loc == nil {
		return nil, types.NewValidationError(InvalidImageFormatMessage)
	}
	data, err := base64.StdEncoding.DecodeString(s[loc[1]:])
	if err != nil {
		return nil, types.NewValidationError(InvalidImageFormatMessage).WithCause(err)
	}
	if len(data) == 0 {
		return nil, types.NewValidationError(InvalidImageFormatMessage)
	}
	return data, nil
}

// EncodeDataURI 将图像编码为数据 URI.
func EncodeDataURI(asset *types.ImageAsset) string {
	if asset == nil {
		return ""
	}
	mime := asset.MIMEType
	if mime == "" {
		mime = types.MIMEJPEG
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(asset.Data)
}

// Sniff 只解析图像头部，返回格式与尺寸.
// 无法识别的字节返回 DecodeError.
func Sniff(data []byte) (Info, error) {
	if len(data) == 0 {
		return Info{}, types.NewDecodeError("image data is empty", nil)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Info{}, types.NewDecodeError("unrecognized image data", err)
	}
	return Info{Format: Format(format), Width: cfg.Width, Height: cfg.Height}, nil
}

// IsFrameFormat 报告格式是否可以作为输入帧.
func IsFrameFormat(f Format) bool {
	return f == FormatPNG || f == FormatJPEG
}
