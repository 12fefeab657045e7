package raster

// DefaultAlphaThreshold is the alpha cutoff used when callers do not pick
// one: a pixel counts as visible when its alpha value is strictly greater
// than the threshold.
const DefaultAlphaThreshold = 1

// Bounds scans img row-major and returns the tight rectangle around every
// pixel whose alpha value exceeds threshold. The second return value is
// false when no pixel qualifies. Images without an alpha channel are
// treated as fully opaque, so the box covers the whole image.
func Bounds(img *Image, threshold int) (Box, bool) {
	if img.Width <= 0 || img.Height <= 0 {
		return Box{}, false
	}
	if img.Depth < 4 {
		return Box{Width: img.Width, Height: img.Height}, true
	}

	minX, minY := img.Width, img.Height
	maxX, maxY := -1, -1

	stride := img.Width * img.Depth
	for y := 0; y < img.Height; y++ {
		row := img.Buf[y*stride : (y+1)*stride]
		for x := 0; x < img.Width; x++ {
			if int(row[x*img.Depth+3]) <= threshold {
				continue
			}
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
	}

	if maxX < minX {
		return Box{}, false
	}

	return Box{
		Left:   minX,
		Top:    minY,
		Width:  maxX - minX + 1,
		Height: maxY - minY + 1,
	}, true
}

// Expand grows the box by margin pixels on every side, clamped to the
// bounds of a srcWidth x srcHeight image. The result never reaches outside
// the source.
func (b Box) Expand(margin, srcWidth, srcHeight int) Box {
	left := b.Left - margin
	if left < 0 {
		left = 0
	}
	top := b.Top - margin
	if top < 0 {
		top = 0
	}
	width := b.Width + 2*margin
	if width > srcWidth-left {
		width = srcWidth - left
	}
	height := b.Height + 2*margin
	if height > srcHeight-top {
		height = srcHeight - top
	}
	return Box{Left: left, Top: top, Width: width, Height: height}
}

// Crop copies the pixels inside box out of img into a fresh image. The box
// must lie within the source bounds.
func Crop(img *Image, box Box) *Image {
	rowLen := box.Width * img.Depth
	out := make([]byte, box.Height*rowLen)
	for y := 0; y < box.Height; y++ {
		srcOff := ((box.Top+y)*img.Width + box.Left) * img.Depth
		copy(out[y*rowLen:(y+1)*rowLen], img.Buf[srcOff:srcOff+rowLen])
	}
	return &Image{Buf: out, Width: box.Width, Height: box.Height, Depth: img.Depth}
}
