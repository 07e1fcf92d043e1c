package camerabackend

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/tauraamui/stilldaemon/pkg/camera"
	"github.com/tauraamui/xerror"
	"gocv.io/x/gocv"
)

type openCVBackend struct{}

func (b *openCVBackend) Open(ctx context.Context, device string, dims camera.Dimensions) (camera.Peripheral, error) {
	p := openCVPeripheral{uuid: uuid.NewString(), device: device, dims: dims}
	if err := p.connect(ctx); err != nil {
		return nil, err
	}
	return &p, nil
}

type openCVPeripheral struct {
	uuid   string
	device string
	dims   camera.Dimensions
	mu     sync.Mutex
	vc     *gocv.VideoCapture
	mat    gocv.Mat
}

type openVideoCaptureResult struct {
	vc  *gocv.VideoCapture
	err error
}

func (p *openCVPeripheral) connect(ctx context.Context) error {
	result := make(chan openVideoCaptureResult, 1)
	go func() {
		vc, err := openVideoCapture(p.device)
		result <- openVideoCaptureResult{vc: vc, err: err}
	}()

	select {
	case r := <-result:
		if r.err != nil {
			return xerror.Errorf("unable to open camera device %s: %w", p.device, r.err)
		}
		p.vc = r.vc
		p.mat = gocv.NewMat()
		return nil
	case <-ctx.Done():
		return xerror.New("camera connection cancelled")
	}
}

var openVideoCapture = func(device string) (*gocv.VideoCapture, error) {
	return gocv.OpenVideoCapture(device)
}

func (p *openCVPeripheral) UUID() string {
	return p.uuid
}

func (p *openCVPeripheral) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.vc == nil || !p.vc.IsOpened() {
		return xerror.New("camera device is not open")
	}
	// keep the driver queue as short as it allows so a flush grab
	// actually drains what is stale
	p.vc.Set(gocv.VideoCaptureBufferSize, 1)
	if p.dims.W > 0 && p.dims.H > 0 {
		p.vc.Set(gocv.VideoCaptureFrameWidth, float64(p.dims.W))
		p.vc.Set(gocv.VideoCaptureFrameHeight, float64(p.dims.H))
	}
	return nil
}

func (p *openCVPeripheral) Grab() (camera.Frame, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.vc.IsOpened() {
		return nil, xerror.New("camera device is not open")
	}
	if ok := p.vc.Read(&p.mat); !ok || p.mat.Empty() {
		return nil, xerror.New("unable to read frame from camera device")
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, p.mat)
	if err != nil {
		return nil, xerror.Errorf("unable to encode camera frame: %w", err)
	}

	return camera.NewFrame(
		buf.GetBytes(),
		camera.Dimensions{W: p.mat.Cols(), H: p.mat.Rows()},
		camera.PixelFormatJPEG,
		buf.Close,
	), nil
}

func (p *openCVPeripheral) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mat.Close()
	return p.vc.Close()
}
