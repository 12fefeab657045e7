package raster

// Split slices img into full-width horizontal bands of at most tileHeight
// rows each. Bands appear in top-to-bottom order and preserve the source
// byte layout, so concatenating them reproduces the original buffer
// exactly. Every band except possibly the last holds tileHeight rows; a
// tileHeight of at least img.Height yields a single band.
func Split(img *Image, tileHeight int) [][]byte {
	if tileHeight <= 0 || img.Height <= 0 {
		return nil
	}

	rowLen := img.Width * img.Depth
	tiles := make([][]byte, 0, (img.Height+tileHeight-1)/tileHeight)

	for top := 0; top < img.Height; top += tileHeight {
		rows := tileHeight
		if top+rows > img.Height {
			rows = img.Height - top
		}
		band := make([]byte, rows*rowLen)
		copy(band, img.Buf[top*rowLen:(top+rows)*rowLen])
		tiles = append(tiles, band)
	}

	return tiles
}
