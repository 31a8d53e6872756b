package deck

import (
	"bytes"
	"image"
	"image/color"
	"image/png"

	"paperdeck/internal/services"
)

const (
	placeholderWidth  = 1280
	placeholderHeight = 720
)

// placeholderImage renders a flat 16:9 stand-in for a slide whose image was
// never imported. Deck geometry stays intact and the gap is obvious on sight.
func placeholderImage() ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, placeholderWidth, placeholderHeight))
	background := color.RGBA{R: 0xE8, G: 0xE8, B: 0xE8, A: 0xFF}
	band := color.RGBA{R: 0xB0, G: 0xB0, B: 0xB0, A: 0xFF}
	for y := 0; y < placeholderHeight; y++ {
		fill := background
		if y > placeholderHeight/2-24 && y < placeholderHeight/2+24 {
			fill = band
		}
		for x := 0; x < placeholderWidth; x++ {
			img.Set(x, y, fill)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, services.Wrap(services.ErrTransient, "assemble", "render placeholder image", "", err)
	}
	return buf.Bytes(), nil
}
