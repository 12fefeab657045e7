package raster

import (
	"fmt"
	"image"
	"math"

	xdraw "golang.org/x/image/draw"
)

// Fit selects how an image is mapped onto an exact target rectangle when
// both target dimensions are given.
type Fit int

const (
	// FitContain preserves the aspect ratio, centers the content and pads
	// the remainder with fully transparent pixels.
	FitContain Fit = iota
	// FitStretch scales each axis independently to the target size.
	FitStretch
)

// ParseFit maps the wire names onto Fit values. The empty string selects
// FitContain.
func ParseFit(s string) (Fit, error) {
	switch s {
	case "", "contain":
		return FitContain, nil
	case "stretch":
		return FitStretch, nil
	}
	return 0, fmt.Errorf("unknown fit %q (expected contain or stretch)", s)
}

// Resize rescales an RGBA image. With both targets zero the input is
// returned unchanged. With one target given the other dimension scales
// proportionally. With both given the output is exactly
// targetWidth x targetHeight, filled according to fit.
//
// Resampling uses a Catmull-Rom kernel on the premultiplied-alpha samples,
// so partially transparent edges survive downscaling without a fringe.
func Resize(img *Image, targetWidth, targetHeight int, fit Fit) (*Image, error) {
	if targetWidth == 0 && targetHeight == 0 {
		return img, nil
	}
	if targetWidth < 0 || targetHeight < 0 {
		return nil, fmt.Errorf("target dimensions must be positive, got %dx%d", targetWidth, targetHeight)
	}
	if img.Depth != 4 {
		return nil, fmt.Errorf("resize requires an RGBA image, got %d channels", img.Depth)
	}
	if img.Width <= 0 || img.Height <= 0 {
		return nil, fmt.Errorf("cannot resize an empty %dx%d image", img.Width, img.Height)
	}

	outW, outH := targetWidth, targetHeight
	switch {
	case outW == 0:
		outW = scaleDim(img.Width, img.Height, outH)
	case outH == 0:
		outH = scaleDim(img.Height, img.Width, outW)
	}

	src := &image.RGBA{
		Pix:    img.Buf,
		Stride: img.Width * 4,
		Rect:   image.Rect(0, 0, img.Width, img.Height),
	}
	dst := image.NewRGBA(image.Rect(0, 0, outW, outH))

	dstRect := dst.Bounds()
	if fit == FitContain && targetWidth > 0 && targetHeight > 0 {
		dstRect = containRect(img.Width, img.Height, outW, outH)
	}
	xdraw.CatmullRom.Scale(dst, dstRect, src, src.Bounds(), xdraw.Src, nil)

	return &Image{Buf: dst.Pix, Width: outW, Height: outH, Depth: 4}, nil
}

// scaleDim computes the companion dimension so that dim:other keeps its
// ratio when other becomes target.
func scaleDim(dim, other, target int) int {
	n := int(math.Round(float64(dim) * float64(target) / float64(other)))
	if n < 1 {
		n = 1
	}
	return n
}

// containRect centers a srcW x srcH image inside a dstW x dstH frame at
// the largest scale that fits both axes.
func containRect(srcW, srcH, dstW, dstH int) image.Rectangle {
	sx := float64(dstW) / float64(srcW)
	sy := float64(dstH) / float64(srcH)
	s := sx
	if sy < s {
		s = sy
	}
	w := int(math.Round(float64(srcW) * s))
	if w < 1 {
		w = 1
	}
	h := int(math.Round(float64(srcH) * s))
	if h < 1 {
		h = 1
	}
	x0 := (dstW - w) / 2
	y0 := (dstH - h) / 2
	return image.Rect(x0, y0, x0+w, y0+h)
}
