package vulkan

import (
	"github.com/cockroachdb/errors"
	"github.com/droune2001/vulkan-sub000/engine/core"
	vk "github.com/goki/vulkan"
)

var ErrNoPresentQueue = errors.New("no queue family supports presentation")

// QueueFamilyCaps is what device selection needs to know about one queue
// family.
type QueueFamilyCaps struct {
	Flags          vk.QueueFlags
	QueueCount     uint32
	PresentSupport bool
}

func (c QueueFamilyCaps) has(bit vk.QueueFlagBits) bool {
	return c.QueueCount > 0 && c.Flags&vk.QueueFlags(bit) != 0
}

// QueueFamilyIndices names the family serving each queue role. Several roles
// may share one family.
type QueueFamilyIndices struct {
	Graphics uint32
	Compute  uint32
	Transfer uint32
	Present  uint32
}

// SelectQueueFamilies picks, for every role, the first family offering it.
// Compute and transfer fall back to the graphics family; graphics queues
// always accept transfer commands.
func SelectQueueFamilies(families []QueueFamilyCaps) (QueueFamilyIndices, error) {
	graphics, compute, transfer, present := -1, -1, -1, -1
	for i, f := range families {
		if graphics < 0 && f.has(vk.QueueGraphicsBit) {
			graphics = i
		}
		if compute < 0 && f.has(vk.QueueComputeBit) {
			compute = i
		}
		if transfer < 0 && f.has(vk.QueueTransferBit) {
			transfer = i
		}
		if present < 0 && f.QueueCount > 0 && f.PresentSupport {
			present = i
		}
	}

	if graphics < 0 {
		return QueueFamilyIndices{}, core.ErrNoGraphicsQueue
	}
	if present < 0 {
		return QueueFamilyIndices{}, ErrNoPresentQueue
	}
	if compute < 0 {
		compute = graphics
	}
	if transfer < 0 {
		transfer = graphics
	}
	return QueueFamilyIndices{
		Graphics: uint32(graphics),
		Compute:  uint32(compute),
		Transfer: uint32(transfer),
		Present:  uint32(present),
	}, nil
}

// Unique returns the distinct families in role order graphics, compute,
// transfer, present. The logical device gets one queue per entry.
func (q QueueFamilyIndices) Unique() []uint32 {
	out := make([]uint32, 0, 4)
	for _, f := range []uint32{q.Graphics, q.Compute, q.Transfer, q.Present} {
		seen := false
		for _, o := range out {
			if o == f {
				seen = true
				break
			}
		}
		if !seen {
			out = append(out, f)
		}
	}
	return out
}

// ComputeSharesGraphics reports whether instance buffers can move between the
// compute and graphics queues without an ownership transfer.
func (q QueueFamilyIndices) ComputeSharesGraphics() bool {
	return q.Compute == q.Graphics
}
