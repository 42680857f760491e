// Package overlay annotates recorded frames with the navigation step they
// show.
package overlay

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// BannerHeight is the height of the caption banner in pixels
const BannerHeight = 22

var (
	bannerColor   = color.RGBA{0, 0, 0, 170}
	textColor     = color.RGBA{255, 255, 255, 255}
	progressColor = color.RGBA{0, 136, 206, 255} // PatternFly blue
)

// Caption returns a copy of frame with label and a progress bar for step
// (1-based) of total drawn along the bottom edge.
func Caption(frame image.Image, label string, step, total int) image.Image {
	bounds := frame.Bounds()
	result := image.NewRGBA(bounds)
	draw.Draw(result, bounds, frame, bounds.Min, draw.Src)

	banner := image.Rect(bounds.Min.X, bounds.Max.Y-BannerHeight, bounds.Max.X, bounds.Max.Y).Intersect(bounds)
	if banner.Empty() {
		return result
	}
	draw.Draw(result, banner, image.NewUniform(bannerColor), image.Point{}, draw.Over)

	if total > 0 && step > 0 {
		if step > total {
			step = total
		}
		barWidth := banner.Dx() * step / total
		bar := image.Rect(banner.Min.X, banner.Max.Y-3, banner.Min.X+barWidth, banner.Max.Y).Intersect(banner)
		draw.Draw(result, bar, image.NewUniform(progressColor), image.Point{}, draw.Src)
	}

	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  result,
		Src:  image.NewUniform(textColor),
		Face: face,
		Dot:  fixed.P(banner.Min.X+6, banner.Min.Y+face.Ascent+3),
	}
	d.DrawString(label)
	return result
}
