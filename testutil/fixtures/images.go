// =============================================================================
// 📦 测试数据工厂 - 图像测试数据
// =============================================================================
// 生成确定性的测试图像（渐变色块），所有工厂函数对相同参数返回相同字节
// =============================================================================
package fixtures

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
)

// =============================================================================
// 🖼️ 栅格图像工厂
// =============================================================================

// Frame 返回 w×h 的渐变 RGBA 图像
func Frame(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8((x * 255) / max(w, 1)),
				G: uint8((y * 255) / max(h, 1)),
				B: uint8(((x + y) * 127) / max(w+h, 1)),
				A: 0xff,
			})
		}
	}
	return img
}

// PNG 返回 w×h 的 PNG 字节
func PNG(w, h int) []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, Frame(w, h)); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// JPEG 返回 w×h、指定质量的 JPEG 字节
func JPEG(w, h, quality int) []byte {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, Frame(w, h), &jpeg.Options{Quality: quality}); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// OversizedPNG 返回头部声明 w×h、实际只有 1×1 像素数据的 PNG.
// 头部可被正常读取，完整解码会失败或分配巨量内存.
func OversizedPNG(w, h uint32) []byte {
	data := PNG(1, 1)
	// 签名 8 字节，随后是 IHDR：长度(4) 类型(4) 宽(4) 高(4) ... CRC(4)
	const ihdr = 8 + 4
	binary.BigEndian.PutUint32(data[ihdr+4:], w)
	binary.BigEndian.PutUint32(data[ihdr+8:], h)
	binary.BigEndian.PutUint32(data[ihdr+4+13:], crc32.ChecksumIEEE(data[ihdr:ihdr+4+13]))
	return data
}

// GIF 返回 w×h 的 GIF 字节
func GIF(w, h int) []byte {
	var buf bytes.Buffer
	if err := gif.Encode(&buf, Frame(w, h), nil); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// =============================================================================
// 🔗 数据 URI 工厂
// =============================================================================

// PNGDataURI 返回 PNG 数据 URI
func PNGDataURI(w, h int) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(PNG(w, h))
}

// JPEGDataURI 返回 JPEG 数据 URI
func JPEGDataURI(w, h int) string {
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(JPEG(w, h, 85))
}

// GIFDataURI 返回 GIF 数据 URI（不是合法的输入帧）
func GIFDataURI(w, h int) string {
	return "data:image/gif;base64," + base64.StdEncoding.EncodeToString(GIF(w, h))
}

// GarbageDataURI 返回前缀合法但内容无法解码的数据 URI
func GarbageDataURI() string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("not an image at all"))
}
