// Package sniffer identifies profile images by their leading bytes rather
// than by what the browser claims.
package sniffer

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/textproto"
	"strings"
)

type MediaType string

const (
	TypeJPEG MediaType = "jpeg"
	TypePNG  MediaType = "png"
	TypeGIF  MediaType = "gif"
	TypeWEBP MediaType = "webp"
	TypeSVG  MediaType = "svg"
)

var (
	ErrUnknownType = errors.New("unknown media type")
	ErrTooLarge    = errors.New("image exceeds size limit")
	ErrEmpty       = errors.New("empty image")
)

type Result struct {
	Type MediaType
	MIME string
}

func (r Result) Extension() string {
	if r.Type == TypeJPEG {
		return ".jpg"
	}
	return "." + string(r.Type)
}

// ReadImage reads at most limit bytes from r and identifies them. Anything
// longer than limit is rejected with ErrTooLarge.
func ReadImage(r io.Reader, limit int64) (Result, []byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return Result{}, nil, fmt.Errorf("read image: %w", err)
	}
	if len(data) == 0 {
		return Result{}, nil, ErrEmpty
	}
	if int64(len(data)) > limit {
		return Result{}, nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, limit)
	}
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	result, err := DetectHead(head)
	if err != nil {
		return Result{}, nil, err
	}
	return result, data, nil
}

func DetectHead(head []byte) (Result, error) {
	if len(head) == 0 {
		return Result{}, ErrUnknownType
	}

	switch {
	case isJPEG(head):
		return Result{Type: TypeJPEG, MIME: "image/jpeg"}, nil
	case isPNG(head):
		return Result{Type: TypePNG, MIME: "image/png"}, nil
	case isGIF(head):
		return Result{Type: TypeGIF, MIME: "image/gif"}, nil
	case isWEBP(head):
		return Result{Type: TypeWEBP, MIME: "image/webp"}, nil
	case isSVG(head):
		return Result{Type: TypeSVG, MIME: "image/svg+xml"}, nil
	}
	return Result{}, ErrUnknownType
}

func isJPEG(head []byte) bool {
	return len(head) > 3 &&
		head[0] == 0xff &&
		head[1] == 0xd8 &&
		head[2] == 0xff
}

func isPNG(head []byte) bool {
	pngMagic := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	return len(head) >= len(pngMagic) && bytes.Equal(head[:len(pngMagic)], pngMagic)
}

func isGIF(head []byte) bool {
	return len(head) >= 6 && (bytes.Equal(head[:6], []byte("GIF87a")) || bytes.Equal(head[:6], []byte("GIF89a")))
}

func isWEBP(head []byte) bool {
	return len(head) >= 12 &&
		bytes.Equal(head[:4], []byte("RIFF")) &&
		bytes.Equal(head[8:12], []byte("WEBP"))
}

func isSVG(head []byte) bool {
	trimmed := strings.ToLower(strings.TrimSpace(string(head)))
	if strings.HasPrefix(trimmed, "<svg") {
		return true
	}
	return strings.HasPrefix(trimmed, "<?xml") && strings.Contains(trimmed, "<svg")
}

// DeclaredMIME returns the media type of a multipart part header without
// parameters.
func DeclaredMIME(header textproto.MIMEHeader) string {
	contentType := header.Get("Content-Type")
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		contentType = contentType[:idx]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}

// Compatible reports whether a declared type agrees with the sniffed one.
// Browsers send octet-stream or nothing for some files; both are accepted.
func Compatible(declared string, r Result) bool {
	switch declared {
	case "", "application/octet-stream":
		return true
	case "image/jpg", "image/pjpeg":
		return r.Type == TypeJPEG
	}
	return declared == r.MIME
}
