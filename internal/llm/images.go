package llm

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
)

// EncodeImagePNG serializes an image to PNG bytes for transport.
func EncodeImagePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding image: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeImageBase64 serializes an image to a text-safe base64 PNG string,
// the form consumed by backends that cannot carry binary payloads.
func EncodeImageBase64(img image.Image) (string, error) {
	b, err := EncodeImagePNG(img)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}
