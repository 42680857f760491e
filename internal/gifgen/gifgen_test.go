package gifgen

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-logr/logr/testr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/v0xg/uinav/internal/navigator"
	"github.com/v0xg/uinav/internal/widget/widgettest"
)

type entity string

func (e entity) EntityType() navigator.EntityType { return navigator.EntityType(e) }

func solid(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func decode(t *testing.T, path string) *gif.GIF {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	g, err := gif.DecodeAll(f)
	require.NoError(t, err)
	return g
}

func TestGenerateScalesDown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "walk.gif")
	frames := []image.Image{solid(200, 100, color.White), solid(200, 100, color.Black)}

	size, err := Generate(frames, path, Options{FPS: 2, MaxWidth: 100})
	require.NoError(t, err)
	assert.Positive(t, size)

	g := decode(t, path)
	require.Len(t, g.Image, 2)
	assert.Equal(t, 100, g.Image[0].Bounds().Dx())
	assert.Equal(t, 50, g.Image[0].Bounds().Dy())
	assert.Equal(t, []int{50, 50}, g.Delay)
}

func TestGenerateNeverUpscales(t *testing.T) {
	path := filepath.Join(t.TempDir(), "walk.gif")
	_, err := Generate([]image.Image{solid(40, 20, color.White)}, path, Options{})
	require.NoError(t, err)

	g := decode(t, path)
	assert.Equal(t, 40, g.Image[0].Bounds().Dx())
	assert.Equal(t, []int{100}, g.Delay)
}

func TestGenerateNoFrames(t *testing.T) {
	size, err := Generate(nil, filepath.Join(t.TempDir(), "x.gif"), Options{})
	require.NoError(t, err)
	assert.Zero(t, size)
}

func TestRecorderCapturesEveryStep(t *testing.T) {
	page := widgettest.NewPage()
	rec := NewRecorder(page, testr.New(t))

	ctx := context.Background()
	rec.Hook(ctx, navigator.Hop{Entity: entity("appliance"), Step: navigator.Step{Name: "LoggedIn"}}, nil)
	rec.Hook(ctx, navigator.Hop{Entity: entity("MyService"), Step: navigator.Step{Name: "All"}}, nil)

	frames := rec.Frames()
	require.Len(t, frames, 2)
	assert.Equal(t, "appliance/LoggedIn", frames[0].Label)
	assert.Equal(t, "MyService/All", frames[1].Label)

	path := filepath.Join(t.TempDir(), "walk.gif")
	_, err := rec.Save(path, Options{FPS: 1})
	require.NoError(t, err)
	assert.Len(t, decode(t, path).Image, 2)
}

type brokenScreen struct{ *widgettest.Page }

func (brokenScreen) Screenshot() ([]byte, error) { return nil, errors.New("target closed") }

func TestRecorderSkipsFailedScreenshots(t *testing.T) {
	rec := NewRecorder(brokenScreen{widgettest.NewPage()}, testr.New(t))
	rec.Hook(context.Background(), navigator.Hop{Entity: entity("appliance"), Step: navigator.Step{Name: "LoggedIn"}}, nil)
	assert.Empty(t, rec.Frames())

	_, err := rec.Save(filepath.Join(t.TempDir(), "x.gif"), Options{})
	require.Error(t, err)
}
