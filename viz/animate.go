package viz

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"math"

	"github.com/icza/mjpeg"
	"github.com/iti/virnet"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	frameMargin = 20
	nodeRadius  = 4
)

// ErrAnimatorClosed is returned by Observe after Close.
var ErrAnimatorClosed = errors.New("animator is closed")

// Frame describes the geometry of a rendered frame: a square of Size pixels
// onto which the placement area SpaceWidth x SpaceHeight is scaled.
type Frame struct {
	Size        int
	SpaceWidth  float64
	SpaceHeight float64
}

// toPixel maps a position in the placement area to image coordinates, y up.
func (fr Frame) toPixel(x, y float64) (int, int) {
	inner := float64(fr.Size - 2*frameMargin)
	px := frameMargin + int(math.Round(x/fr.SpaceWidth*inner))
	py := fr.Size - frameMargin - int(math.Round(y/fr.SpaceHeight*inner))
	return px, py
}

// RenderFrame draws the network in snap: links, nodes colored by state, and
// a caption with the tick and the counts.
func RenderFrame(snap virnet.Snapshot, fr Frame) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fr.Size, fr.Size))
	draw.Draw(img, img.Bounds(), image.NewUniform(colorBackground), image.Point{}, draw.Src)

	views := collectNodes(snap)
	for _, view := range views {
		x0, y0 := fr.toPixel(view.X, view.Y)
		for _, nbrID := range view.NeighborIDs {
			if nbrID < view.ID {
				continue
			}
			x1, y1 := fr.toPixel(views[nbrID].X, views[nbrID].Y)
			drawLine(img, x0, y0, x1, y1, colorEdge)
		}
	}
	for _, view := range views {
		px, py := fr.toPixel(view.X, view.Y)
		fillCircle(img, px, py, nodeRadius, StateColor(view.State))
	}

	c := snap.Counts()
	addLabel(img, 4, 14, fmt.Sprintf("tick %d  I=%d R=%d S=%d", c.Tick, c.Infected, c.Resistant, c.Susceptible), colorText)
	return img
}

// drawLine sets the pixels of the segment between two points
func drawLine(img *image.RGBA, x0, y0, x1, y1 int, col color.Color) {
	steps := max(abs(x1-x0), abs(y1-y0))
	if steps == 0 {
		img.Set(x0, y0, col)
		return
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x := x0 + int(math.Round(t*float64(x1-x0)))
		y := y0 + int(math.Round(t*float64(y1-y0)))
		img.Set(x, y, col)
	}
}

func fillCircle(img *image.RGBA, cx, cy, r int, col color.Color) {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				img.Set(cx+dx, cy+dy, col)
			}
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// addLabel draws a text label onto an image with its baseline at (x, y)
func addLabel(img *image.RGBA, x, y int, label string, col color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(label)
}

// Animator is an Observer that appends one frame per snapshot to an MJPEG
// AVI file.
type Animator struct {
	frame  Frame
	writer mjpeg.AviWriter
	buf    bytes.Buffer
	opts   *jpeg.Options
	frames int
	closed bool
}

// CreateAnimator opens the video file. fps is the number of ticks shown per second.
func CreateAnimator(file string, fr Frame, fps int) (*Animator, error) {
	if fr.Size <= 2*frameMargin {
		return nil, fmt.Errorf("frame size %d too small", fr.Size)
	}
	if fr.SpaceWidth <= 0 || fr.SpaceHeight <= 0 {
		return nil, fmt.Errorf("frame space %gx%g must be positive", fr.SpaceWidth, fr.SpaceHeight)
	}
	if fps < 1 {
		fps = 1
	}
	writer, err := mjpeg.New(file, int32(fr.Size), int32(fr.Size), int32(fps))
	if err != nil {
		return nil, fmt.Errorf("failed to create MJPEG writer: %w", err)
	}
	return &Animator{frame: fr, writer: writer, opts: &jpeg.Options{Quality: 90}}, nil
}

// Observe renders snap and appends it as the next frame.
func (a *Animator) Observe(snap virnet.Snapshot) error {
	if a.closed {
		return ErrAnimatorClosed
	}
	a.buf.Reset()
	if err := jpeg.Encode(&a.buf, RenderFrame(snap, a.frame), a.opts); err != nil {
		return fmt.Errorf("failed to encode frame %d: %w", a.frames, err)
	}
	if err := a.writer.AddFrame(a.buf.Bytes()); err != nil {
		return fmt.Errorf("failed to add frame %d: %w", a.frames, err)
	}
	a.frames++
	return nil
}

// Frames returns the number of frames written so far.
func (a *Animator) Frames() int {
	return a.frames
}

// Close finalizes the video file.
func (a *Animator) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true
	return a.writer.Close()
}
