package store

import (
	"sync"

	"github.com/wippyai/memseg/errors"
	"github.com/wippyai/memseg/layout"
	"go.uber.org/zap"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// Logger returns the store package's logger instance.
// It uses a no-op logger by default.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	return logger
}

// SetLogger configures the store package's logger.
// This must be called before any allocations.
func SetLogger(l *zap.Logger) {
	logger = l
}

func checkRange(offset, length, size uint64) error {
	end := offset + length
	if end < offset || end > size {
		return errors.OutOfBounds(errors.PhaseAccess, end, size)
	}
	return nil
}

func readBytes(buf []byte, offset uint64, l layout.Layout) (layout.Value, error) {
	if err := checkRange(offset, l.Size, uint64(len(buf))); err != nil {
		return layout.Value{}, err
	}
	return layout.Decode(buf[offset:offset+l.Size], l), nil
}

func writeBytes(buf []byte, offset uint64, l layout.Layout, v layout.Value) error {
	if err := checkRange(offset, l.Size, uint64(len(buf))); err != nil {
		return err
	}
	layout.Encode(buf[offset:offset+l.Size], l, v)
	return nil
}
