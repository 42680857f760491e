package gifgen

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/png"
	"sync"

	"github.com/go-logr/logr"

	"github.com/v0xg/uinav/internal/navigator"
	"github.com/v0xg/uinav/internal/overlay"
	"github.com/v0xg/uinav/internal/widget"
)

// Frame is the screenshot taken after one step
type Frame struct {
	Image image.Image
	Label string
}

// Recorder screenshots the page after every navigation step. Install
// Hook in navigator.Options.Hooks.
type Recorder struct {
	driver widget.Driver
	log    logr.Logger

	mu     sync.Mutex
	frames []Frame
}

// NewRecorder records from d.
func NewRecorder(d widget.Driver, log logr.Logger) *Recorder {
	return &Recorder{driver: d, log: log.WithName("recorder")}
}

// Hook is the navigator.StepHook capturing a frame per step. Screenshot
// failures are logged and skipped so recording never breaks navigation.
func (r *Recorder) Hook(_ context.Context, hop navigator.Hop, _ navigator.View) {
	data, err := r.driver.Screenshot()
	if err != nil {
		r.log.Error(err, "screenshot failed", "step", hop.String())
		return
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		r.log.Error(err, "decode screenshot", "step", hop.String())
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, Frame{Image: img, Label: hop.String()})
	r.log.V(1).Info("captured frame", "step", hop.String(), "frames", len(r.frames))
}

// Frames returns the captured frames in step order.
func (r *Recorder) Frames() []Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Frame(nil), r.frames...)
}

// Save captions the frames with their step and writes the GIF to path.
func (r *Recorder) Save(path string, opts Options) (int64, error) {
	frames := r.Frames()
	if len(frames) == 0 {
		return 0, fmt.Errorf("recorder: no frames captured")
	}
	images := make([]image.Image, len(frames))
	for i, f := range frames {
		images[i] = overlay.Caption(f.Image, f.Label, i+1, len(frames))
	}
	return Generate(images, path, opts)
}
