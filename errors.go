package webphoto

import "errors"

var (
	ErrNoActiveLayer     = errors.New("no active layer")
	ErrLayerNotFound     = errors.New("layer not found")
	ErrLastLayer         = errors.New("cannot delete the last layer")
	ErrInvalidSize       = errors.New("invalid canvas size")
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrSelectionRequired = errors.New("operation requires a selection")
)
