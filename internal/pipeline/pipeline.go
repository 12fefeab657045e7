package pipeline

import (
	"context"

	"github.com/tiletex/tiletex/internal/typeset"
	"github.com/tiletex/tiletex/pkg/raster"
)

// DefaultWorkers bounds concurrent rasterizations unless overridden. Raw
// RGBA buffers are width*height*4 bytes, so an unbounded number of
// simultaneous renders would make memory use proportional to request
// concurrency.
const DefaultWorkers = 4

// Pipeline turns typeset markup into transport-ready tile payloads. One
// Pipeline is shared by every request: the rasterizer handle is injected
// once at construction and results are cached by parameter fingerprint.
type Pipeline struct {
	rasterizer typeset.Rasterizer
	cache      *Cache
	workers    chan struct{}
}

// New creates a pipeline around the given rasterizer. workers bounds how
// many rasterizations may run at once; values below 1 select
// DefaultWorkers.
func New(r typeset.Rasterizer, workers int) *Pipeline {
	if workers < 1 {
		workers = DefaultWorkers
	}
	return &Pipeline{
		rasterizer: r,
		cache:      NewCache(),
		workers:    make(chan struct{}, workers),
	}
}

// Cache exposes the pipeline's payload cache.
func (pl *Pipeline) Cache() *Cache {
	return pl.cache
}

// Render runs the full pipeline for p: cache lookup, rasterization, crop
// to the visible content plus margin, optional resize, and tiling.
// Identical parameter sets render at most once; concurrent duplicates
// await the first computation and reuse its payload.
func (pl *Pipeline) Render(ctx context.Context, p Params) (*Payload, error) {
	p = p.withDefaults()
	if err := p.validate(); err != nil {
		return nil, err
	}

	return pl.cache.Do(ctx, p.Fingerprint(), func() (*Payload, error) {
		// An abandoning caller must not abort a shared render; later
		// arrivals reuse whatever this computation produces.
		return pl.render(context.WithoutCancel(ctx), p)
	})
}

func (pl *Pipeline) render(ctx context.Context, p Params) (*Payload, error) {
	pl.workers <- struct{}{}
	defer func() { <-pl.workers }()

	img, err := pl.rasterizer.Rasterize(ctx, typeset.Request{
		Markup:   p.Markup,
		Scale:    p.Scale,
		FontSize: p.FontSize,
		Color:    p.Color,
	})
	if err != nil {
		return nil, err
	}

	box, ok := raster.Bounds(img, p.AlphaThreshold)
	if !ok {
		// Fully transparent render: fall back to the whole image so the
		// caller still receives dimensioned, if blank, tiles.
		box = raster.Box{Width: img.Width, Height: img.Height}
	}
	crop := box.Expand(p.Margin, img.Width, img.Height)
	if crop.Width <= 0 || crop.Height <= 0 {
		return nil, &DegenerateImageError{Width: img.Width, Height: img.Height}
	}

	out := raster.Crop(img, crop)

	if p.TargetWidth > 0 || p.TargetHeight > 0 {
		out, err = raster.Resize(out, p.TargetWidth, p.TargetHeight, p.Fit)
		if err != nil {
			return nil, &ResampleError{Err: err}
		}
	}

	return &Payload{
		Tiles:      raster.Split(out, p.TileHeight),
		Width:      out.Width,
		Height:     out.Height,
		Channels:   out.Depth,
		TileHeight: p.TileHeight,
		Crop: CropInfo{
			Left:           crop.Left,
			Top:            crop.Top,
			Width:          crop.Width,
			Height:         crop.Height,
			OriginalWidth:  img.Width,
			OriginalHeight: img.Height,
		},
	}, nil
}
