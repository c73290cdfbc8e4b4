package vulkan

import "testing"

func TestShaderCodeSize(t *testing.T) {
	if got := shaderCodeSize(make([]uint32, 5)); got != 20 {
		t.Errorf("shaderCodeSize(5 words) = %d, want 20", got)
	}
	if got := shaderCodeSize(nil); got != 0 {
		t.Errorf("shaderCodeSize(nil) = %d", got)
	}
}
