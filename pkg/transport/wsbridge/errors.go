package wsbridge

import "errors"

var (
	// ErrShortFrame is returned when a wire message ends before a field
	// it declares (a truncated varint or length prefix) is fully read.
	ErrShortFrame = errors.New("wsbridge: truncated frame")
	// ErrUnknownOp is returned for a leading op byte this version of the
	// bridge does not recognize.
	ErrUnknownOp = errors.New("wsbridge: unknown op byte")
	// ErrClosed names a closed bridge connection. Bridge itself does not
	// return it: send returns the websocket error, and ReadLoop returns
	// nothing.
	ErrClosed = errors.New("wsbridge: connection closed")
)
