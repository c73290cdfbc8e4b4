package vulkan

import "testing"

func TestStagingChunks(t *testing.T) {
	if got := stagingChunks(0, 64); got != nil {
		t.Errorf("empty copy: %v", got)
	}
	if got := stagingChunks(64, 0); got != nil {
		t.Errorf("no staging capacity: %v", got)
	}

	got := stagingChunks(100, 64)
	want := []stagingChunk{{Offset: 0, Size: 64}, {Offset: 64, Size: 36}}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("chunk %d = %+v, want %+v", i, got[i], want[i])
		}
	}

	var total uint64
	for _, c := range stagingChunks(4<<20+3, 1<<20) {
		if c.Offset != total {
			t.Fatalf("gap before offset %d", c.Offset)
		}
		total += c.Size
	}
	if total != 4<<20+3 {
		t.Errorf("chunks cover %d bytes", total)
	}
}
