package core

import (
	"github.com/cockroachdb/errors"
)

var (
	// Runtime driver errors.
	ErrSwapchainOutOfDate = errors.New("swapchain out of date")
	ErrDeviceLost         = errors.New("device lost")

	// Resource errors.
	ErrOutOfMemory      = errors.New("out of memory")
	ErrCapacityExceeded = errors.New("capacity exceeded")

	// Init errors.
	ErrInitialization   = errors.New("initialization failed")
	ErrNoPhysicalDevice = errors.New("no physical device")
	ErrNoGraphicsQueue  = errors.New("no queue family supports graphics")

	// Asset errors.
	ErrAssetNotFound = errors.New("asset not found")

	ErrUnknownMesh        = errors.New("unknown mesh")
	ErrUnknownMaterial    = errors.New("unknown material")
	ErrUnknownInstanceSet = errors.New("unknown instance set")
)

// IsFatal reports whether err leaves the device unusable. Such results are
// never downgraded to warnings.
func IsFatal(err error) bool {
	return errors.Is(err, ErrDeviceLost) || errors.Is(err, ErrOutOfMemory)
}
