package loaders

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/droune2001/vulkan-sub000/engine/core"
	"github.com/droune2001/vulkan-sub000/engine/geometry"
	"github.com/g3n/engine/loader/obj"
	"github.com/go-gl/mathgl/mgl32"
)

// MeshLoader reads Wavefront .obj files. Every object of the file is merged
// into one mesh; polygons are triangulated as fans and identical
// position/uv/normal triples share one vertex.
type MeshLoader struct{}

func (ml *MeshLoader) Load(path string, params interface{}) (*Resource, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(core.ErrAssetNotFound, "mesh %s", path)
		}
		return nil, errors.Wrapf(err, "mesh %s", path)
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	mesh, err := ml.Decode(name, f)
	if err != nil {
		return nil, errors.Wrapf(err, "mesh %s", path)
	}
	return &Resource{
		Name:     name,
		FullPath: path,
		Type:     ResourceTypeMesh,
		DataSize: uint64(len(mesh.Vertices)*geometry.VertexSize + len(mesh.Indices)*geometry.IndexSize),
		Data:     mesh,
	}, nil
}

func (ml *MeshLoader) Unload(*Resource) error {
	return nil
}

type objVertexKey struct {
	v, uv, n int
}

// Decode parses .obj text from r. Materials are ignored.
func (ml *MeshLoader) Decode(name string, r io.Reader) (geometry.Mesh, error) {
	// Faces before any "o" statement need an object to land in.
	src := io.MultiReader(strings.NewReader("o "+name+"\n"), r)
	decoder, err := obj.DecodeReader(src, strings.NewReader(""))
	if err != nil {
		return geometry.Mesh{}, errors.Wrap(err, "decode obj")
	}

	mesh := geometry.Mesh{Name: name}
	unique := make(map[objVertexKey]uint16)

	position := func(i int) (mgl32.Vec3, bool) {
		if i < 0 || i*3+2 >= len(decoder.Vertices) {
			return mgl32.Vec3{}, false
		}
		return mgl32.Vec3{decoder.Vertices[i*3], decoder.Vertices[i*3+1], decoder.Vertices[i*3+2]}, true
	}

	addVertex := func(face obj.Face, corner int, flat mgl32.Vec3) error {
		key := objVertexKey{v: face.Vertices[corner], uv: -1, n: -1}
		if corner < len(face.Uvs) && face.Uvs[corner] >= 0 && face.Uvs[corner]*2+1 < len(decoder.Uvs) {
			key.uv = face.Uvs[corner]
		}
		if corner < len(face.Normals) && face.Normals[corner] >= 0 && face.Normals[corner]*3+2 < len(decoder.Normals) {
			key.n = face.Normals[corner]
		}
		if idx, ok := unique[key]; ok && key.n >= 0 {
			mesh.Indices = append(mesh.Indices, idx)
			return nil
		}

		p, ok := position(key.v)
		if !ok {
			return errors.Newf("face references missing vertex %d", key.v)
		}
		vert := geometry.Vertex{Position: p, Normal: flat}
		if key.uv >= 0 {
			// .obj puts the uv origin at the bottom left.
			vert.UV = mgl32.Vec2{decoder.Uvs[key.uv*2], 1.0 - decoder.Uvs[key.uv*2+1]}
		}
		if key.n >= 0 {
			vert.Normal = mgl32.Vec3{decoder.Normals[key.n*3], decoder.Normals[key.n*3+1], decoder.Normals[key.n*3+2]}.Normalize()
		}

		if len(mesh.Vertices) >= geometry.MaxMeshVertices {
			return errors.Newf("more than %d vertices", geometry.MaxMeshVertices)
		}
		idx := uint16(len(mesh.Vertices))
		mesh.Vertices = append(mesh.Vertices, vert)
		mesh.Indices = append(mesh.Indices, idx)
		// Vertices with a generated flat normal belong to one face only.
		if key.n >= 0 {
			unique[key] = idx
		}
		return nil
	}

	for _, o := range decoder.Objects {
		for _, face := range o.Faces {
			// Triangulate as a fan around the first corner.
			for i := 2; i < len(face.Vertices); i++ {
				corners := [3]int{0, i - 1, i}
				var flat mgl32.Vec3
				p0, ok0 := position(face.Vertices[0])
				p1, ok1 := position(face.Vertices[i-1])
				p2, ok2 := position(face.Vertices[i])
				if ok0 && ok1 && ok2 {
					if n := p1.Sub(p0).Cross(p2.Sub(p0)); n.Len() > 0 {
						flat = n.Normalize()
					}
				}
				if flat.Len() == 0 {
					flat = mgl32.Vec3{0, 1, 0}
				}
				for _, c := range corners {
					if err := addVertex(face, c, flat); err != nil {
						return geometry.Mesh{}, err
					}
				}
			}
		}
	}

	if len(mesh.Indices) == 0 {
		return geometry.Mesh{}, errors.New("obj has no faces")
	}
	return mesh, nil
}
