package raster

// Image holds a decoded raster as a flat, row-major byte buffer.
// The invariant len(Buf) == Width*Height*Depth holds for every Image
// produced by this package.
type Image struct {
	Buf    []byte
	Width  int
	Height int
	Depth  int // channels: 1=grayscale, 3=RGB, 4=RGBA
}

// NewRGBA allocates a fully transparent RGBA image.
func NewRGBA(width, height int) *Image {
	return &Image{
		Buf:    make([]byte, width*height*4),
		Width:  width,
		Height: height,
		Depth:  4,
	}
}

// Box is a pixel-aligned rectangle within a source image.
type Box struct {
	Left   int
	Top    int
	Width  int
	Height int
}
