package camera

import (
	"errors"

	"github.com/tauraamui/xerror"
)

const (
	KindNoFrame    = xerror.Kind("no_frame")
	KindEmptyFrame = xerror.Kind("empty_frame")
	KindTranscode  = xerror.Kind("transcode")
)

var (
	ErrNoFrame    = errors.New("no usable frame from camera")
	ErrEmptyFrame = errors.New("frame has zero length")
)
