package camerabackend

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"math"
	"sync"
	"time"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"github.com/google/uuid"
	"github.com/tauraamui/stilldaemon/pkg/camera"
	"github.com/tauraamui/stilldaemon/pkg/log"
	"github.com/tauraamui/xerror"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
)

type mockBackend struct{}

func (b *mockBackend) Open(_ context.Context, device string, dims camera.Dimensions) (camera.Peripheral, error) {
	if dims.W <= 0 || dims.H <= 0 {
		dims = camera.Dimensions{W: 640, H: 480}
	}
	return &mockPeripheral{uuid: uuid.NewString(), device: device, dims: dims}, nil
}

// mockPeripheral renders an offline test card with a sequence number and
// timestamp burned in, so saved stills show which grab produced them.
type mockPeripheral struct {
	uuid        string
	device      string
	dims        camera.Dimensions
	mu          sync.Mutex
	sequence    int
	outstanding int
	base        image.Image
	face        *truetype.Font
}

func (m *mockPeripheral) UUID() string {
	return m.uuid
}

func (m *mockPeripheral) Init() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, err := freetype.ParseFont(goregular.TTF)
	if err != nil {
		return xerror.Errorf("unable to load mock camera font: %w", err)
	}
	m.face = f
	m.base = renderBaseCanvas(m.dims.W, m.dims.H)
	return nil
}

func (m *mockPeripheral) Grab() (camera.Frame, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.base == nil {
		return nil, xerror.New("mock camera has not been initialised")
	}

	m.sequence++
	canvas := cloneImage(m.base)
	fontSize := float64(m.dims.H) / 8
	drawText(canvas, m.face, fontSize, 10, int(fontSize)+10, "STILLDAEMON_MOCK")
	drawText(canvas, m.face, fontSize, 10, int(fontSize*2)+20, fmt.Sprintf("#%06d", m.sequence))
	drawText(canvas, m.face, fontSize, 10, int(fontSize*3)+30, time.Now().Format("2006-01-02 15:04:05"))

	buf := bytes.Buffer{}
	if err := jpeg.Encode(&buf, canvas, &jpeg.Options{Quality: camera.DefaultJPEGQuality}); err != nil {
		return nil, xerror.Errorf("unable to encode mock frame: %w", err)
	}

	m.outstanding++
	return camera.NewFrame(buf.Bytes(), m.dims, camera.PixelFormatJPEG, m.release), nil
}

func (m *mockPeripheral) release() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outstanding--
}

func (m *mockPeripheral) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.outstanding != 0 {
		log.Warn("Mock camera [%s] closed with %d frames not handed back", m.device, m.outstanding)
	}
	m.base = nil
	return nil
}

func renderBaseCanvas(w, h int) image.Image {
	hw, hh := float64(w/2), float64(h/2)
	r := float64(h) / 2
	θ := 2 * math.Pi / 3
	cr := &circle{hw - r*math.Sin(0), hh - r*math.Cos(0), float64(h) * 0.75}
	cg := &circle{hw - r*math.Sin(θ), hh - r*math.Cos(θ), float64(h) * 0.75}
	cb := &circle{hw - r*math.Sin(-θ), hh - r*math.Cos(-θ), float64(h) * 0.75}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{
				cr.brightness(float64(x), float64(y)),
				cg.brightness(float64(x), float64(y)),
				cb.brightness(float64(x), float64(y)),
				255,
			})
		}
	}
	return img
}

func cloneImage(src image.Image) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(b)
	draw.Draw(dst, b, src, b.Min, draw.Src)
	return dst
}

func drawText(canvas *image.RGBA, f *truetype.Font, size float64, x, y int, text string) {
	d := &font.Drawer{
		Dst: canvas,
		Src: image.White,
		Face: truetype.NewFace(f, &truetype.Options{
			Size:    size,
			Hinting: font.HintingFull,
		}),
		Dot: fixed.P(x, y),
	}
	d.DrawString(text)
}

type circle struct {
	X, Y, R float64
}

func (c *circle) brightness(x, y float64) uint8 {
	dx, dy := c.X-x, c.Y-y
	if math.Sqrt(dx*dx+dy*dy)/c.R > 1 {
		return 0
	}
	return 255
}
