package utils

import (
	"bytes"
	"io"
	"sync"
)

// DeferredWriter buffers writes until Flush copies them to a real writer.
// It holds log output while the TUI owns the terminal.
type DeferredWriter struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (d *DeferredWriter) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.buf.Write(p)
}

// Flush writes the buffered output to w line by line and resets the buffer.
// Each line is a complete zerolog JSON event, so w may be a ConsoleWriter.
func (d *DeferredWriter) Flush(w io.Writer) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for {
		line, err := d.buf.ReadBytes('\n')
		if len(line) > 0 {
			if _, werr := w.Write(line); werr != nil {
				return werr
			}
		}
		if err != nil {
			break
		}
	}
	d.buf.Reset()
	return nil
}
