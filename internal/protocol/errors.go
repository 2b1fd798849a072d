package protocol

import "errors"

var (
	// ErrShortBuffer means the buffer was shorter than the tag byte alone,
	// or shorter than the target type's total width.
	ErrShortBuffer = errors.New("protocol: short buffer")
	// ErrTagMismatch means the buffer's leading tag byte did not match the
	// type being deserialized.
	ErrTagMismatch = errors.New("protocol: tag mismatch")
)
