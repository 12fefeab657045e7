package raster

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
)

// DecodeImage detects the payload format by its magic bytes and decodes
// PNG or JPEG into an RGBA image. Sources without an alpha channel come
// back fully opaque.
func DecodeImage(data []byte) (*Image, error) {
	if len(data) >= 4 && bytes.Equal(data[:4], []byte{0x89, 0x50, 0x4E, 0x47}) {
		return decodePNG(data)
	} else if len(data) >= 2 && bytes.Equal(data[:2], []byte{0xFF, 0xD8}) {
		return decodeJPEG(data)
	}

	return nil, fmt.Errorf("unrecognized image format")
}

func decodePNG(data []byte) (*Image, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return fromImage(img), nil
}

func decodeJPEG(data []byte) (*Image, error) {
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return fromImage(img), nil
}

// fromImage converts any stdlib image into the flat RGBA layout.
func fromImage(img image.Image) *Image {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	out := NewRGBA(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, a := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			idx := (y*width + x) * 4
			out.Buf[idx] = byte(r >> 8)
			out.Buf[idx+1] = byte(g >> 8)
			out.Buf[idx+2] = byte(b >> 8)
			out.Buf[idx+3] = byte(a >> 8)
		}
	}

	return out
}

// EncodePNG encodes an RGBA image as PNG.
func EncodePNG(img *Image) ([]byte, error) {
	if img.Depth != 4 {
		return nil, fmt.Errorf("PNG encoding requires an RGBA image, got %d channels", img.Depth)
	}

	rgba := image.NewRGBA(image.Rect(0, 0, img.Width, img.Height))
	copy(rgba.Pix, img.Buf)

	var output bytes.Buffer
	if err := png.Encode(&output, rgba); err != nil {
		return nil, err
	}

	return output.Bytes(), nil
}

// WritePNG writes img as PNG to filename, or to stdout when filename is
// empty.
func WritePNG(filename string, img *Image) error {
	data, err := EncodePNG(img)
	if err != nil {
		return err
	}

	var output io.Writer
	if filename == "" {
		output = os.Stdout
		fmt.Fprintf(os.Stderr, "Output PNG: stdout\n")
	} else {
		fmt.Fprintf(os.Stderr, "Output PNG: %s\n", filename)
		file, err := os.Create(filename)
		if err != nil {
			return err
		}
		defer file.Close()
		output = file
	}

	_, err = output.Write(data)
	return err
}
