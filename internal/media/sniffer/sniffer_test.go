package sniffer_test

import (
	"bytes"
	"errors"
	"net/textproto"
	"strings"
	"testing"

	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/media/sniffer"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 13}

func TestReadImage(t *testing.T) {
	res, data, err := sniffer.ReadImage(bytes.NewReader(pngHeader), 1024)
	if err != nil || res.Type != sniffer.TypePNG || len(data) != len(pngHeader) {
		t.Fatalf("png: %+v %d %v", res, len(data), err)
	}
	if res.Extension() != ".png" {
		t.Fatalf("unexpected extension %q", res.Extension())
	}

	if _, _, err := sniffer.ReadImage(bytes.NewReader(pngHeader), 4); !errors.Is(err, sniffer.ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
	if _, _, err := sniffer.ReadImage(strings.NewReader(""), 4); !errors.Is(err, sniffer.ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
	if _, _, err := sniffer.ReadImage(strings.NewReader("%PDF-1.7"), 1024); !errors.Is(err, sniffer.ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}

	res, _, err = sniffer.ReadImage(strings.NewReader(`<?xml version="1.0"?><svg xmlns="http://www.w3.org/2000/svg"/>`), 1024)
	if err != nil || res.Type != sniffer.TypeSVG {
		t.Fatalf("svg: %+v %v", res, err)
	}
}

func TestCompatible(t *testing.T) {
	jpeg := sniffer.Result{Type: sniffer.TypeJPEG, MIME: "image/jpeg"}
	h := textproto.MIMEHeader{}
	h.Set("Content-Type", "image/JPEG; charset=binary")
	if got := sniffer.DeclaredMIME(h); got != "image/jpeg" {
		t.Fatalf("declared mime %q", got)
	}
	for declared, want := range map[string]bool{
		"":                         true,
		"application/octet-stream": true,
		"image/jpg":                true,
		"image/jpeg":               true,
		"image/png":                false,
	} {
		if sniffer.Compatible(declared, jpeg) != want {
			t.Errorf("Compatible(%q) != %v", declared, want)
		}
	}
}
