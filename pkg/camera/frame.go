package camera

import (
	"sync"
	"time"
)

type PixelFormat int

const (
	PixelFormatJPEG PixelFormat = iota
	PixelFormatRGB888
	PixelFormatGrayscale
)

func (p PixelFormat) String() string {
	switch p {
	case PixelFormatJPEG:
		return "jpeg"
	case PixelFormatRGB888:
		return "rgb888"
	case PixelFormatGrayscale:
		return "grayscale"
	default:
		return "unknown"
	}
}

// Extension is the file extension a frame of this format is stored
// under.
func (p PixelFormat) Extension() string {
	switch p {
	case PixelFormatJPEG:
		return ".jpg"
	case PixelFormatRGB888:
		return ".rgb"
	case PixelFormatGrayscale:
		return ".gray"
	default:
		return ".raw"
	}
}

type Dimensions struct {
	W, H int
}

// Frame is a single buffer handed out by a peripheral. Whoever holds it
// must Close it exactly once, which hands the buffer back to its owner.
type Frame interface {
	Data() []byte
	Len() int
	Dimensions() Dimensions
	Format() PixelFormat
	Timestamp() time.Time
	Close()
}

// NewFrame wraps data as a Frame. release is invoked on the first Close
// only; pass nil for heap buffers which have nothing to hand back.
func NewFrame(data []byte, dims Dimensions, format PixelFormat, release func()) Frame {
	return &frame{
		data:      data,
		dims:      dims,
		format:    format,
		timestamp: time.Now(),
		release:   release,
	}
}

type frame struct {
	data      []byte
	dims      Dimensions
	format    PixelFormat
	timestamp time.Time
	release   func()
	once      sync.Once
}

func (f *frame) Data() []byte { return f.data }

func (f *frame) Len() int { return len(f.data) }

func (f *frame) Dimensions() Dimensions { return f.dims }

func (f *frame) Format() PixelFormat { return f.format }

func (f *frame) Timestamp() time.Time { return f.timestamp }

func (f *frame) Close() {
	f.once.Do(func() {
		if f.release != nil {
			f.release()
		}
	})
}
