package vulkan

import (
	"fmt"
	"testing"

	vk "github.com/goki/vulkan"
)

// queueOwner replays recorded barriers and checks that every use of the
// buffer happens on the family that owns it, with no transfer half done.
type queueOwner struct {
	t       *testing.T
	step    string
	owner   uint32
	pending int64
}

func newQueueOwner(t *testing.T, compute uint32) *queueOwner {
	return &queueOwner{t: t, owner: compute, pending: -1}
}

func (q *queueOwner) record(queue uint32, barriers []BufferBarrier) {
	q.t.Helper()
	for _, b := range barriers {
		src, dst := b.Barrier.SrcQueueFamilyIndex, b.Barrier.DstQueueFamilyIndex
		switch {
		case src == dst || src == vk.QueueFamilyIgnored:
			if q.pending >= 0 || q.owner != queue {
				q.t.Errorf("%s: memory barrier on family %d while owner is %d (pending %d)", q.step, queue, q.owner, q.pending)
			}
		case queue == src:
			if q.owner != src || q.pending >= 0 {
				q.t.Errorf("%s: family %d releases a buffer owned by %d (pending %d)", q.step, src, q.owner, q.pending)
			}
			q.pending = int64(dst)
		case queue == dst:
			if q.owner != src || q.pending != int64(dst) {
				q.t.Errorf("%s: family %d acquires from %d without a matching release (owner %d, pending %d)", q.step, dst, src, q.owner, q.pending)
			}
			q.owner, q.pending = dst, -1
		default:
			q.t.Errorf("%s: barrier %d -> %d recorded on unrelated family %d", q.step, src, dst, queue)
		}
	}
}

func (q *queueOwner) use(queue uint32) {
	q.t.Helper()
	if q.owner != queue || q.pending >= 0 {
		q.t.Errorf("%s: family %d touches a buffer owned by %d (pending %d)", q.step, queue, q.owner, q.pending)
	}
}

// replay runs steps U (upload), C (compute) and G (graphics) and returns the
// number of barriers each step recorded before and after its work.
func replay(t *testing.T, graphics, compute uint32, steps string) []string {
	t.Helper()
	o := NewInstanceOwnership(vk.NullBuffer, testBufferSize, graphics, compute)
	q := newQueueOwner(t, compute)

	var counts []string
	for i, s := range steps {
		q.step = fmt.Sprintf("step %d (%c)", i, s)
		var before, after []BufferBarrier
		switch s {
		case 'U':
			before, after = o.Upload()
			q.record(compute, before)
			q.use(compute)
			q.record(compute, after)
			if !o.ComputeOwned() {
				t.Errorf("%s: buffer not on compute after upload", q.step)
			}
		case 'C':
			before, after = o.Compute()
			q.record(compute, before)
			q.use(compute)
			q.record(compute, after)
		case 'G':
			before = o.GraphicsAcquire()
			q.record(graphics, before)
			q.use(graphics)
			after = o.GraphicsRelease()
			q.record(graphics, after)
		}
		counts = append(counts, fmt.Sprintf("%c%d%d", s, len(before), len(after)))
	}
	return counts
}

func TestInstanceOwnershipSchedules(t *testing.T) {
	cases := []struct {
		name              string
		graphics, compute uint32
		steps             string
		want              []string
	}{
		{"split, no uploads", 0, 1, "UCGCGCG",
			[]string{"U01", "C01", "G11", "C11", "G11", "C11", "G11"}},
		{"split, upload every frame", 0, 1, "UCGUCGUCG",
			[]string{"U01", "C01", "G11", "U11", "C01", "G11", "U11", "C01", "G11"}},
		{"split, upload every other frame", 0, 1, "UCGCGUCGCG",
			[]string{"U01", "C01", "G11", "C11", "G11", "U11", "C01", "G11", "C11", "G11"}},
		{"shared, no uploads", 0, 0, "UCGCGCG",
			[]string{"U01", "C11", "G00", "C11", "G00", "C11", "G00"}},
		{"shared, upload every frame", 2, 2, "UCGUCGUCG",
			[]string{"U01", "C11", "G00", "U11", "C11", "G00", "U11", "C11", "G00"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := replay(t, c.graphics, c.compute, c.steps)
			if fmt.Sprint(got) != fmt.Sprint(c.want) {
				t.Errorf("barrier counts = %v, want %v", got, c.want)
			}
		})
	}
}

func TestInstanceOwnershipSplitAcquireMatchesRelease(t *testing.T) {
	o := NewInstanceOwnership(vk.NullBuffer, testBufferSize, 0, 1)
	_, release := o.Compute()
	acquire := o.GraphicsAcquire()
	if len(release) != 1 || len(acquire) != 1 {
		t.Fatalf("release %d, acquire %d barriers", len(release), len(acquire))
	}
	r, a := release[0].Barrier, acquire[0].Barrier
	if r.SrcQueueFamilyIndex != a.SrcQueueFamilyIndex || r.DstQueueFamilyIndex != a.DstQueueFamilyIndex {
		t.Errorf("release %d -> %d, acquire %d -> %d", r.SrcQueueFamilyIndex, r.DstQueueFamilyIndex, a.SrcQueueFamilyIndex, a.DstQueueFamilyIndex)
	}
	if r.Offset != a.Offset || r.Size != a.Size {
		t.Errorf("release range %d+%d, acquire range %d+%d", r.Offset, r.Size, a.Offset, a.Size)
	}

	o.GraphicsRelease()
	if o.ComputeOwned() {
		t.Error("buffer still on compute after the graphics release")
	}
	before, _ := o.Upload()
	if len(before) != 1 || before[0].Barrier.SrcQueueFamilyIndex != 0 || before[0].Barrier.DstQueueFamilyIndex != 1 {
		t.Errorf("upload after graphics release = %+v, want an acquire 0 -> 1", before)
	}
}
