package pipeline

import "github.com/tiletex/tiletex/pkg/raster"

// CropInfo locates the delivered pixels inside the original raster.
type CropInfo struct {
	Left           int
	Top            int
	Width          int
	Height         int
	OriginalWidth  int
	OriginalHeight int
}

// Payload is the transport-ready result of one render: the final image
// split into row bands, plus everything the receiver needs to reassemble
// it. Payloads are immutable once built.
type Payload struct {
	Tiles      [][]byte
	Width      int
	Height     int
	Channels   int
	TileHeight int
	Crop       CropInfo
}

// Assemble concatenates the row bands back into a single image.
func (p *Payload) Assemble() *raster.Image {
	buf := make([]byte, 0, p.Width*p.Height*p.Channels)
	for _, t := range p.Tiles {
		buf = append(buf, t...)
	}
	return &raster.Image{Buf: buf, Width: p.Width, Height: p.Height, Depth: p.Channels}
}
