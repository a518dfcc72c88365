// =============================================================================
// 📦 测试数据工厂 - Provider 响应测试数据
// =============================================================================
package fixtures

import (
	"github.com/BaSui01/framelens/llm"
	"github.com/BaSui01/framelens/types"
)

// TextResponse 返回纯文本响应
func TextResponse(text string) *llm.Response {
	return &llm.Response{Text: text}
}

// ImageResponse 返回带 PNG 图像的响应
func ImageResponse(text string, w, h int) *llm.Response {
	return &llm.Response{Text: text, Image: PNG(w, h), ImageMIMEType: types.MIMEPNG}
}
