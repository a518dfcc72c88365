package image

import (
	"bytes"
	"fmt"
)

const (
	jpegSOI    = 0xD8
	jpegCOM    = 0xFE
	markerByte = 0xFF
)

// markerPayload 描述一次归一化的参数，参数变化会使旧标记失效.
func (c Config) markerPayload(mode Mode) []byte {
	width := 0
	if mode == Compact {
		width = c.MaxWidth
	}
	return []byte(fmt.Sprintf("framelens-normalized;mode=%s;q=%d;w=%d", mode, c.quality(mode), width))
}

func (c Config) quality(mode Mode) int {
	if mode == Compact {
		return c.CompactQuality
	}
	return c.PreserveQuality
}

// stamp 在 SOI 之后插入 COM 段.
func stamp(jpegData, payload []byte) []byte {
	if len(jpegData) < 2 || len(payload)+2 > 0xFFFF {
		return append([]byte(nil), jpegData...)
	}
	segLen := len(payload) + 2
	out := make([]byte, 0, len(jpegData)+4+len(payload))
	out = append(out, jpegData[:2]...)
	out = append(out, markerByte, jpegCOM, byte(segLen>>8), byte(segLen))
	out = append(out, payload...)
	out = append(out, jpegData[2:]...)
	return out
}

// hasStamp 报告 data 是否以 SOI + 指定 COM 段开头.
func hasStamp(data, payload []byte) bool {
	if len(data) < 6 || data[0] != markerByte || data[1] != jpegSOI {
		return false
	}
	if data[2] != markerByte || data[3] != jpegCOM {
		return false
	}
	segLen := int(data[4])<<8 | int(data[5])
	if segLen-2 != len(payload) || len(data) < 4+segLen {
		return false
	}
	return bytes.Equal(data[6:4+segLen], payload)
}
