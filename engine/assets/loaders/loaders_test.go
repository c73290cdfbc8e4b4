package loaders

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/droune2001/vulkan-sub000/engine/core"
	"golang.org/x/image/bmp"
)

func spirv(words ...uint32) []byte {
	out := make([]byte, 4*(len(words)+1))
	binary.LittleEndian.PutUint32(out, spirvMagic)
	for i, w := range words {
		binary.LittleEndian.PutUint32(out[4*(i+1):], w)
	}
	return out
}

func TestBytesToBytecode(t *testing.T) {
	code, err := bytesToBytecode(spirv(0x00010000, 0xdeadbeef))
	if err != nil {
		t.Fatal(err)
	}
	if len(code) != 3 || code[0] != spirvMagic || code[2] != 0xdeadbeef {
		t.Errorf("unexpected bytecode %x", code)
	}

	if _, err := bytesToBytecode([]byte{1, 2, 3}); err == nil {
		t.Error("a size that is not a multiple of 4 should be refused")
	}
	if _, err := bytesToBytecode([]byte{0, 0, 0, 0}); err == nil {
		t.Error("a bad magic number should be refused")
	}
}

func TestShaderLoaderMissingFile(t *testing.T) {
	sl := &ShaderLoader{}
	_, err := sl.Load(filepath.Join(t.TempDir(), "vert.spv"), nil)
	if !errors.Is(err, core.ErrAssetNotFound) {
		t.Errorf("expected asset not found, got %v", err)
	}
}

func TestShaderLoaderReadsWords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frag.spv")
	if err := os.WriteFile(path, spirv(7), 0o644); err != nil {
		t.Fatal(err)
	}
	res, err := (&ShaderLoader{}).Load(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Type != ResourceTypeShader || res.Name != "frag.spv" || res.DataSize != 8 {
		t.Errorf("unexpected resource %+v", res)
	}
	if words := res.Data.([]uint32); words[1] != 7 {
		t.Errorf("second word = %d", words[1])
	}
}

func checker(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x+y)%2 == 0 {
				img.Set(x, y, color.NRGBA{255, 0, 0, 255})
			} else {
				img.Set(x, y, color.NRGBA{0, 0, 255, 255})
			}
		}
	}
	return img
}

func TestTextureDecodeFormats(t *testing.T) {
	img := checker(4, 2)
	encoders := map[string]func(*bytes.Buffer) error{
		"png": func(b *bytes.Buffer) error { return png.Encode(b, img) },
		"bmp": func(b *bytes.Buffer) error { return bmp.Encode(b, img) },
	}
	for name, encode := range encoders {
		buf := &bytes.Buffer{}
		if err := encode(buf); err != nil {
			t.Fatalf("%s: encode: %v", name, err)
		}
		tex, err := (&TextureLoader{}).Decode(buf)
		if err != nil {
			t.Fatalf("%s: decode: %v", name, err)
		}
		if tex.Width != 4 || tex.Height != 2 || len(tex.Pixels) != 4*2*4 {
			t.Fatalf("%s: got %dx%d with %d bytes", name, tex.Width, tex.Height, len(tex.Pixels))
		}
		if !bytes.Equal(tex.Pixels[0:4], []byte{255, 0, 0, 255}) {
			t.Errorf("%s: first pixel %v, want red", name, tex.Pixels[0:4])
		}
		if !bytes.Equal(tex.Pixels[4:8], []byte{0, 0, 255, 255}) {
			t.Errorf("%s: second pixel %v, want blue", name, tex.Pixels[4:8])
		}
	}
}

func TestTextureScalesDownLargeImages(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := png.Encode(buf, checker(64, 16)); err != nil {
		t.Fatal(err)
	}
	tex, err := (&TextureLoader{MaxSize: 32}).Decode(buf)
	if err != nil {
		t.Fatal(err)
	}
	if tex.Width != 32 || tex.Height != 8 {
		t.Errorf("scaled to %dx%d, want 32x8", tex.Width, tex.Height)
	}
}

func TestTextureDecodeGarbage(t *testing.T) {
	if _, err := (&TextureLoader{}).Decode(strings.NewReader("not an image")); err == nil {
		t.Error("expected a decode error")
	}
}

const quadObj = `
v -1 0 -1
v  1 0 -1
v  1 0  1
v -1 0  1
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 1 0
f 1/1/1 2/2/1 3/3/1 4/4/1
`

func TestMeshDecodeTriangulatesAndShares(t *testing.T) {
	mesh, err := (&MeshLoader{}).Decode("quad", strings.NewReader(quadObj))
	if err != nil {
		t.Fatal(err)
	}
	if len(mesh.Indices) != 6 {
		t.Fatalf("quad should become two triangles, got %d indices", len(mesh.Indices))
	}
	if len(mesh.Vertices) != 4 {
		t.Errorf("shared corners should be de-duplicated, got %d vertices", len(mesh.Vertices))
	}
	for _, v := range mesh.Vertices {
		if v.Normal.Y() != 1 {
			t.Errorf("normal %v, want +Y", v.Normal)
		}
	}
	// The uv origin moves to the top left.
	if mesh.Vertices[0].UV.Y() != 1 {
		t.Errorf("first uv %v, want v flipped to 1", mesh.Vertices[0].UV)
	}
}

const triangleNoNormals = `
v 0 0 0
v 1 0 0
v 0 0 -1
f 1 2 3
`

func TestMeshDecodeGeneratesFlatNormals(t *testing.T) {
	mesh, err := (&MeshLoader{}).Decode("tri", strings.NewReader(triangleNoNormals))
	if err != nil {
		t.Fatal(err)
	}
	if len(mesh.Vertices) != 3 || len(mesh.Indices) != 3 {
		t.Fatalf("got %d vertices %d indices", len(mesh.Vertices), len(mesh.Indices))
	}
	if n := mesh.Vertices[0].Normal; n.Y() < 0.99 {
		t.Errorf("generated normal %v, want +Y", n)
	}
}
