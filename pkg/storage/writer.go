package storage

import (
	"bufio"
	"io"
	"os"

	"github.com/spf13/afero"
	"github.com/tauraamui/stilldaemon/pkg/camera"
	"github.com/tauraamui/xerror"
)

const defaultWriteBufferSize = 32 * 1024

// Writer persists frames as individual files.
type Writer struct {
	fs         afero.Fs
	bufferSize int
}

func NewWriter(fs afero.Fs) *Writer {
	return &Writer{fs: fs, bufferSize: defaultWriteBufferSize}
}

type countingWriter struct {
	w io.Writer
	n int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}

// Write stores the frame's bytes at path, pushing them through the
// application buffer and then the storage driver's cache before closing.
// A file with fewer bytes than the frame is left where it is.
func (w *Writer) Write(frame camera.Frame, path string) (int, error) {
	if frame == nil || frame.Len() == 0 {
		return 0, xerror.Errorf("refusing to persist %s: %w", path, camera.ErrEmptyFrame).AsKind(camera.KindEmptyFrame)
	}

	file, err := w.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return 0, xerror.Errorf("%s: %w: %v", path, ErrOpen, err).AsKind(KindOpen)
	}

	counter := countingWriter{w: file}
	bw := bufio.NewWriterSize(&counter, w.bufferSize)

	_, writeErr := bw.Write(frame.Data())
	flushErr := bw.Flush()
	syncErr := file.Sync()
	closeErr := file.Close()

	if counter.n != frame.Len() {
		return counter.n, xerror.Errorf(
			"%s: %w", path, ErrPartialWrite,
		).AsKind(KindPartialWrite).WithParams(map[string]interface{}{
			"written":  counter.n,
			"expected": frame.Len(),
			"cause":    firstErr(writeErr, flushErr, closeErr),
		})
	}

	if err := firstErr(syncErr, closeErr); err != nil {
		return counter.n, xerror.Errorf("%s: %w: %v", path, ErrSync, err).AsKind(KindSync)
	}

	return counter.n, nil
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
