package service

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/webp"
)

var formatExtensions = map[string]string{
	"gif":  ".gif",
	"jpeg": ".jpeg",
	"png":  ".png",
	"webp": ".webp",
}

// decodeImageConfig reads the image header and returns the detected format name.
func decodeImageConfig(data []byte) (image.Config, string, error) {
	if len(data) == 0 {
		return image.Config{}, "", ErrImageInvalid
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return image.Config{}, "", fmt.Errorf("%w: %v", ErrImageInvalid, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return image.Config{}, "", ErrImageInvalid
	}
	if _, ok := formatExtensions[format]; !ok {
		return image.Config{}, "", ErrImageInvalid
	}
	return cfg, format, nil
}

// storedFilename replaces the client extension with the one of the detected format.
func storedFilename(filename, format string) string {
	base := filepath.Base(strings.ReplaceAll(filename, `\`, "/"))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." || base == "/" {
		base = "image"
	}
	return base + formatExtensions[format]
}
