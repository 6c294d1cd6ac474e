// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package imaging inspects and downscales uploaded featured images.
// JPEG, PNG and WebP sources wider than the limit are resized; GIFs are
// stored as uploaded so animations survive.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"net/http"

	"golang.org/x/image/draw"
	"golang.org/x/image/webp"
)

// JPEGQuality is the encoder quality for downscaled JPEGs.
const JPEGQuality = 85

// Detect sniffs the content type of data from its leading bytes.
func Detect(data []byte) string {
	return http.DetectContentType(data)
}

// decode reads an image of the given content type.
func decode(data []byte, contentType string) (image.Image, error) {
	r := bytes.NewReader(data)
	switch contentType {
	case "image/jpeg":
		return jpeg.Decode(r)
	case "image/png":
		return png.Decode(r)
	case "image/webp":
		return webp.Decode(r)
	default:
		return nil, fmt.Errorf("imaging: unsupported type %q", contentType)
	}
}

// Downscale returns data resized to at most maxWidth pixels wide, keeping
// the aspect ratio, along with the content type of the result. Images that
// already fit and GIFs are returned unchanged. WebP has no encoder here,
// so a resized WebP comes back as PNG.
func Downscale(data []byte, contentType string, maxWidth int) ([]byte, string, error) {
	if contentType == "image/gif" {
		if _, err := gif.DecodeConfig(bytes.NewReader(data)); err != nil {
			return nil, "", fmt.Errorf("imaging: gif config: %w", err)
		}
		return data, contentType, nil
	}

	src, err := decode(data, contentType)
	if err != nil {
		return nil, "", fmt.Errorf("imaging: decode: %w", err)
	}

	b := src.Bounds()
	if maxWidth <= 0 || b.Dx() <= maxWidth {
		return data, contentType, nil
	}

	height := b.Dy() * maxWidth / b.Dx()
	if height < 1 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)

	var buf bytes.Buffer
	switch contentType {
	case "image/jpeg":
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: JPEGQuality})
	default:
		contentType = "image/png"
		err = png.Encode(&buf, dst)
	}
	if err != nil {
		return nil, "", fmt.Errorf("imaging: encode: %w", err)
	}
	return buf.Bytes(), contentType, nil
}
