package types

// MIME types handled by the engine.
const (
	MIMEJPEG = "image/jpeg"
	MIMEPNG  = "image/png"
	MIMEGIF  = "image/gif"
	MIMEWebP = "image/webp"
)

// ImageAsset is an encoded raster image. After normalization MIMEType is
// always image/jpeg.
type ImageAsset struct {
	Data     []byte `json:"data"`
	MIMEType string `json:"mimeType"`
}

// Len returns the encoded size in bytes.
func (a *ImageAsset) Len() int {
	if a == nil {
		return 0
	}
	return len(a.Data)
}
