package loaders

import (
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/droune2001/vulkan-sub000/engine/core"
	"github.com/droune2001/vulkan-sub000/engine/scene"
	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// TextureLoader decodes png, jpeg, gif, bmp, tiff and webp images into RGBA8
// pixels. Images larger than MaxSize on either side are scaled down.
type TextureLoader struct {
	MaxSize int
}

func (tl *TextureLoader) Load(path string, params interface{}) (*Resource, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(core.ErrAssetNotFound, "texture %s", path)
		}
		return nil, errors.Wrapf(err, "texture %s", path)
	}
	defer f.Close()

	tex, err := tl.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "texture %s", path)
	}
	return &Resource{
		Name:     filepath.Base(path),
		FullPath: path,
		Type:     ResourceTypeTexture,
		DataSize: uint64(len(tex.Pixels)),
		Data:     tex,
	}, nil
}

// Decode reads any registered image format from r.
func (tl *TextureLoader) Decode(r io.Reader) (scene.Texture, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return scene.Texture{}, errors.Wrap(err, "decode image")
	}
	core.LogDebug("decoded %s image %dx%d", format, img.Bounds().Dx(), img.Bounds().Dy())
	return tl.toRGBA(img), nil
}

func (tl *TextureLoader) toRGBA(img image.Image) scene.Texture {
	src := img.Bounds()
	w, h := src.Dx(), src.Dy()
	if tl.MaxSize > 0 && (w > tl.MaxSize || h > tl.MaxSize) {
		if w >= h {
			w, h = tl.MaxSize, max(1, h*tl.MaxSize/w)
		} else {
			w, h = max(1, w*tl.MaxSize/h), tl.MaxSize
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == src.Dx() && h == src.Dy() {
		xdraw.Draw(dst, dst.Bounds(), img, src.Min, xdraw.Src)
	} else {
		xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, src, xdraw.Src, nil)
	}
	return scene.Texture{
		Width:  uint32(w),
		Height: uint32(h),
		Pixels: dst.Pix,
	}
}

func (tl *TextureLoader) Unload(*Resource) error {
	return nil
}
