package core

import (
	"errors"
)

var (
	ErrSwapchainBooting = errors.New("swapchain resized or recreated, booting")
	ErrUnknown          = errors.New("unknown")

	ErrStaleHandle  = errors.New("stale handle: generation mismatch")
	ErrInvalidIndex = errors.New("invalid handle: index out of range")
	ErrOutOfMemory  = errors.New("allocator: region request could not be satisfied")
)
