package raster

import (
	"bytes"
	"image"
	"image/jpeg"
	"testing"
)

func TestPNGRoundTrip(t *testing.T) {
	img := NewRGBA(5, 3)
	for i := range img.Buf {
		img.Buf[i] = byte(i * 11)
	}
	// PNG stores non-premultiplied samples; keep alpha at full opacity so
	// the color channels survive the round trip unchanged.
	for i := 3; i < len(img.Buf); i += 4 {
		img.Buf[i] = 255
	}

	data, err := EncodePNG(img)
	if err != nil {
		t.Fatalf("EncodePNG failed: %v", err)
	}

	if len(data) < 4 || !bytes.Equal(data[:4], []byte{0x89, 0x50, 0x4E, 0x47}) {
		t.Fatal("Encoded data does not start with the PNG signature")
	}

	decoded, err := DecodeImage(data)
	if err != nil {
		t.Fatalf("DecodeImage failed: %v", err)
	}

	if decoded.Width != img.Width || decoded.Height != img.Height || decoded.Depth != 4 {
		t.Fatalf("Expected %dx%dx4, got %dx%dx%d",
			img.Width, img.Height, decoded.Width, decoded.Height, decoded.Depth)
	}

	if !bytes.Equal(decoded.Buf, img.Buf) {
		t.Error("Decoded pixels differ from the encoded ones")
	}
}

func TestDecodeJPEG(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 6, 4))
	for i := range src.Pix {
		src.Pix[i] = 255
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, nil); err != nil {
		t.Fatalf("jpeg.Encode failed: %v", err)
	}

	decoded, err := DecodeImage(buf.Bytes())
	if err != nil {
		t.Fatalf("DecodeImage failed: %v", err)
	}

	if decoded.Width != 6 || decoded.Height != 4 || decoded.Depth != 4 {
		t.Fatalf("Expected 6x4x4, got %dx%dx%d", decoded.Width, decoded.Height, decoded.Depth)
	}

	// JPEG has no alpha channel; everything comes back opaque.
	for i := 3; i < len(decoded.Buf); i += 4 {
		if decoded.Buf[i] != 255 {
			t.Fatalf("Expected opaque alpha at byte %d, got %d", i, decoded.Buf[i])
		}
	}
}

func TestDecodeUnknownFormat(t *testing.T) {
	if _, err := DecodeImage([]byte("not an image")); err == nil {
		t.Error("Expected an error for unrecognized data")
	}
}

func TestEncodePNGRejectsNonRGBA(t *testing.T) {
	img := &Image{Buf: make([]byte, 2*2*3), Width: 2, Height: 2, Depth: 3}
	if _, err := EncodePNG(img); err == nil {
		t.Error("Expected an error for non-RGBA input")
	}
}
