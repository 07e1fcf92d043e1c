package camera_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tauraamui/stilldaemon/pkg/camera"
)

type testBackend struct {
	onOpenError error
	openedWith  camera.Settings
}

func (tb *testBackend) Open(ctx context.Context, device string, dims camera.Dimensions) (camera.Peripheral, error) {
	if tb.onOpenError != nil {
		return nil, tb.onOpenError
	}
	tb.openedWith = camera.Settings{Device: device, Dimensions: dims}
	return &scriptedPeripheral{}, nil
}

func TestConnectReturnsPeripheralAndNoError(t *testing.T) {
	backend := testBackend{}
	p, err := camera.Connect(&backend, camera.Settings{
		Device:     "/dev/video0",
		Dimensions: camera.Dimensions{W: 640, H: 480},
	})
	require.NoError(t, err)
	require.NotNil(t, p)

	assert.Equal(t, "scripted", p.UUID())
	assert.Equal(t, "/dev/video0", backend.openedWith.Device)
	assert.Equal(t, camera.Dimensions{W: 640, H: 480}, backend.openedWith.Dimensions)
}

func TestConnectReturnsNoPeripheralAndError(t *testing.T) {
	p, err := camera.Connect(&testBackend{onOpenError: errors.New("test error")}, camera.Settings{Device: "fakedevice"})
	assert.EqualError(t, err, "unable to connect to camera [fakedevice]: test error")
	assert.Nil(t, p)
}

func TestConnectWithCancelPassesContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p, err := camera.ConnectWithCancel(ctx, &testBackend{}, camera.Settings{Device: "fakedevice"})
	require.NoError(t, err)
	assert.NotNil(t, p)
}
