package camerabackend

import (
	"bytes"
	"context"
	"image/jpeg"
	"testing"

	"github.com/matryer/is"
	"github.com/tauraamui/stilldaemon/pkg/camera"
)

func TestMockPeripheralProducesDecodableFrames(t *testing.T) {
	is := is.New(t)

	p, err := Mock().Open(context.Background(), "mock0", camera.Dimensions{W: 160, H: 120})
	is.NoErr(err)
	is.NoErr(p.Init())

	f, err := p.Grab()
	is.NoErr(err)
	is.Equal(f.Format(), camera.PixelFormatJPEG)
	is.Equal(f.Dimensions(), camera.Dimensions{W: 160, H: 120})

	img, err := jpeg.Decode(bytes.NewReader(f.Data()))
	is.NoErr(err)
	is.Equal(img.Bounds().Dx(), 160)

	mp := p.(*mockPeripheral)
	is.Equal(mp.outstanding, 1)
	f.Close()
	f.Close()
	is.Equal(mp.outstanding, 0)
	is.NoErr(p.Close())
}

func TestMockPeripheralUUIDIsFixedAtOpen(t *testing.T) {
	is := is.New(t)

	p, err := Mock().Open(context.Background(), "mock0", camera.Dimensions{})
	is.NoErr(err)
	id := p.UUID()
	is.True(len(id) > 0)

	done := make(chan string)
	for i := 0; i < 4; i++ {
		go func() { done <- p.UUID() }()
	}
	for i := 0; i < 4; i++ {
		is.Equal(<-done, id)
	}
}

func TestMockPeripheralGrabBeforeInitFails(t *testing.T) {
	is := is.New(t)

	p, err := Mock().Open(context.Background(), "mock0", camera.Dimensions{})
	is.NoErr(err)

	f, err := p.Grab()
	is.True(f == nil)
	is.True(err != nil)
}

func TestResolveBackend(t *testing.T) {
	is := is.New(t)

	_, isMock := Resolve("mock").(*mockBackend)
	is.True(isMock)
	_, isOpenCV := Resolve("").(*openCVBackend)
	is.True(isOpenCV)
}
