package camerabackend

import "github.com/tauraamui/stilldaemon/pkg/camera"

func Default() camera.Backend {
	return OpenCV()
}

func OpenCV() camera.Backend {
	return &openCVBackend{}
}

func Mock() camera.Backend {
	return &mockBackend{}
}

func Resolve(t string) camera.Backend {
	switch t {
	case "mock":
		return Mock()
	default:
		return Default()
	}
}
