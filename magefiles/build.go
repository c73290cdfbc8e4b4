//go:build mage

package main

import (
	"path/filepath"

	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

const shaderDir = "shaders"

// GLSL source to SPIR-V output, both relative to shaderDir.
var shaderSources = [][2]string{
	{"shader.vert", "vert.spv"},
	{"shader.frag", "frag.spv"},
	{"instanced.vert", "instanced.vert.spv"},
	{"instanced.frag", "instanced.frag.spv"},
	{"particles.comp", "particles.comp.spv"},
}

// Compiles the GLSL sources to the SPIR-V binaries the renderer loads.
func (Build) Shaders() error {
	return buildShaders()
}

func buildShaders() error {
	for _, s := range shaderSources {
		src := filepath.Join(shaderDir, s[0])
		dst := filepath.Join(shaderDir, s[1])
		if _, err := executeCmd("glslc", withArgs(src, "-o", dst), withStream()); err != nil {
			return err
		}
	}
	return nil
}
