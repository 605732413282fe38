package influx

import (
	"errors"
	"io"
)

var errNegativeWrite = errors.New("negative byte count")

type vectorWriter interface {
	Writev(bufs [][]byte) (int, error)
}

// writeFull delivers every byte of bufs, calling Writev until the total is
// reached. Fully sent buffers are skipped and a partially sent one is
// resliced, so no byte is sent twice. scratch is reused for the pending
// list and may be nil.
func writeFull(w vectorWriter, bufs, scratch [][]byte) (int, error) {
	total := 0
	for _, b := range bufs {
		total += len(b)
	}
	pending := append(scratch[:0], bufs...)

	written := 0
	for written < total {
		n, err := w.Writev(pending)
		switch {
		case err != nil:
			return written, &Error{Code: CodeWrite, Op: "writev", Err: err}
		case n < 0:
			return written, &Error{Code: CodeWrite, Op: "writev", Err: errNegativeWrite}
		case n == 0:
			return written, &Error{Code: CodeWrite, Op: "writev", Err: io.ErrNoProgress}
		}
		written += n
		if written >= total {
			break
		}
		for len(pending) > 0 && n >= len(pending[0]) {
			n -= len(pending[0])
			pending = pending[1:]
		}
		pending[0] = pending[0][n:]
	}
	return written, nil
}
