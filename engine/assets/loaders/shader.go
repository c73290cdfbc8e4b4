package loaders

import (
	"io"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/droune2001/vulkan-sub000/engine/core"
)

const spirvMagic uint32 = 0x07230203

type ShaderLoader struct{}

// Load reads a SPIR-V binary and returns its words.
func (sl *ShaderLoader) Load(path string, params interface{}) (*Resource, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(core.ErrAssetNotFound, "shader %s", path)
		}
		return nil, errors.Wrapf(err, "shader %s", path)
	}
	defer f.Close()

	buf, err := io.ReadAll(f)
	if err != nil {
		return nil, errors.Wrapf(err, "shader %s", path)
	}
	code, err := bytesToBytecode(buf)
	if err != nil {
		return nil, errors.Wrapf(err, "shader %s", path)
	}

	return &Resource{
		Name:     filepath.Base(path),
		FullPath: path,
		Type:     ResourceTypeShader,
		DataSize: uint64(len(buf)),
		Data:     code,
	}, nil
}

func (sl *ShaderLoader) Unload(*Resource) error {
	return nil
}

func bytesToBytecode(b []byte) ([]uint32, error) {
	if len(b) == 0 || len(b)%4 != 0 {
		return nil, errors.Newf("SPIR-V size %d is not a positive multiple of 4", len(b))
	}
	byteCode := make([]uint32, len(b)/4)
	for i := 0; i < len(byteCode); i++ {
		byteIndex := i * 4
		byteCode[i] = 0
		byteCode[i] |= uint32(b[byteIndex])
		byteCode[i] |= uint32(b[byteIndex+1]) << 8
		byteCode[i] |= uint32(b[byteIndex+2]) << 16
		byteCode[i] |= uint32(b[byteIndex+3]) << 24
	}
	if byteCode[0] != spirvMagic {
		return nil, errors.Newf("bad SPIR-V magic 0x%08x", byteCode[0])
	}

	return byteCode, nil
}
