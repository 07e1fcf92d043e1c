package camera

import (
	"bytes"
	"image"
	"image/jpeg"

	"github.com/tauraamui/xerror"
)

const DefaultJPEGQuality = 80

// NeedsTranscode reports whether f has to be turned into JPEG before it
// can be written out or streamed.
func NeedsTranscode(f Frame, threshold int) bool {
	return f.Format() != PixelFormatJPEG && f.Len() > threshold
}

// Transcode encodes a raw frame into a new heap owned JPEG frame. The
// source frame is left untouched and must still be closed by the caller.
func Transcode(f Frame, quality int) (Frame, error) {
	if quality < 1 || quality > 100 {
		quality = DefaultJPEGQuality
	}

	img, err := toImage(f)
	if err != nil {
		return nil, err
	}

	buf := bytes.Buffer{}
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, xerror.Errorf("unable to encode frame as jpeg: %w", err).AsKind(KindTranscode)
	}

	return &frame{
		data:      buf.Bytes(),
		dims:      f.Dimensions(),
		format:    PixelFormatJPEG,
		timestamp: f.Timestamp(),
	}, nil
}

func toImage(f Frame) (image.Image, error) {
	dims := f.Dimensions()
	data := f.Data()
	rect := image.Rect(0, 0, dims.W, dims.H)

	switch f.Format() {
	case PixelFormatRGB888:
		if len(data) != dims.W*dims.H*3 {
			return nil, dimensionsMismatch(f)
		}
		img := image.NewRGBA(rect)
		for i, p := 0, 0; i < len(data); i, p = i+3, p+4 {
			img.Pix[p] = data[i]
			img.Pix[p+1] = data[i+1]
			img.Pix[p+2] = data[i+2]
			img.Pix[p+3] = 0xFF
		}
		return img, nil
	case PixelFormatGrayscale:
		if len(data) != dims.W*dims.H {
			return nil, dimensionsMismatch(f)
		}
		img := image.NewGray(rect)
		copy(img.Pix, data)
		return img, nil
	default:
		return nil, xerror.NewWithKind(KindTranscode, "unsupported pixel format for transcoding").
			WithParam("format", f.Format().String())
	}
}

func dimensionsMismatch(f Frame) error {
	return xerror.NewWithKind(KindTranscode, "frame length does not match its dimensions").
		WithParams(map[string]interface{}{
			"length":     f.Len(),
			"dimensions": f.Dimensions(),
			"format":     f.Format().String(),
		})
}
