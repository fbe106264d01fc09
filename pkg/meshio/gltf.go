// Package meshio reads and writes mesh geometry as binary glTF, the
// interchange format for environment scenes and grown vines.
package meshio

import (
	"fmt"
	"math"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/taigrr/ivy/pkg/geom"
	"github.com/taigrr/ivy/pkg/math3d"
)

// LoadGLB loads a binary glTF (.glb) file and flattens every triangle
// primitive in the document into a single mesh.
func LoadGLB(path string) (*geom.Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}

	mesh := geom.NewMesh(filepath.Base(path))
	for _, m := range doc.Meshes {
		if err := appendMesh(doc, m, mesh); err != nil {
			return nil, fmt.Errorf("mesh %q: %w", m.Name, err)
		}
	}

	// Documents without normals get smooth ones so lighting and leaf
	// placement have something to work with.
	if !hasNormals(mesh) {
		mesh.CalculateSmoothNormals()
	}
	mesh.CalculateBounds()
	return mesh, nil
}

// SaveGLB writes the given meshes as one binary glTF file, one node per
// non-empty mesh. The typical call saves the branch and leaf meshes of a
// grown vine side by side.
func SaveGLB(path string, meshes ...*geom.Mesh) error {
	doc := gltf.NewDocument()

	for _, m := range meshes {
		if m == nil || len(m.Faces) == 0 {
			continue
		}

		positions := make([][3]float32, len(m.Vertices))
		normals := make([][3]float32, len(m.Vertices))
		uvs := make([][2]float32, len(m.Vertices))
		for i, v := range m.Vertices {
			positions[i] = [3]float32{float32(v.Position.X), float32(v.Position.Y), float32(v.Position.Z)}
			normals[i] = [3]float32{float32(v.Normal.X), float32(v.Normal.Y), float32(v.Normal.Z)}
			uvs[i] = [2]float32{float32(v.UV.X), float32(v.UV.Y)}
		}
		indices := make([]uint32, 0, len(m.Faces)*3)
		for _, f := range m.Faces {
			indices = append(indices, uint32(f[0]), uint32(f[1]), uint32(f[2]))
		}

		prim := &gltf.Primitive{
			Mode:    gltf.PrimitiveTriangles,
			Indices: gltf.Index(modeler.WriteIndices(doc, indices)),
			Attributes: map[string]int{
				gltf.POSITION:   modeler.WritePosition(doc, positions),
				gltf.NORMAL:     modeler.WriteNormal(doc, normals),
				gltf.TEXCOORD_0: modeler.WriteTextureCoord(doc, uvs),
			},
		}
		doc.Meshes = append(doc.Meshes, &gltf.Mesh{
			Name:       m.Name,
			Primitives: []*gltf.Primitive{prim},
		})
		doc.Nodes = append(doc.Nodes, &gltf.Node{
			Name: m.Name,
			Mesh: gltf.Index(len(doc.Meshes) - 1),
		})
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, len(doc.Nodes)-1)
	}

	if err := gltf.SaveBinary(doc, path); err != nil {
		return fmt.Errorf("save glb: %w", err)
	}
	return nil
}

// appendMesh extracts the triangle primitives of one glTF mesh into dst.
func appendMesh(doc *gltf.Document, m *gltf.Mesh, dst *geom.Mesh) error {
	for _, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
			continue
		}

		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}
		positions, err := readVec3(doc, posIdx)
		if err != nil {
			return fmt.Errorf("positions: %w", err)
		}

		var normals []math3d.Vec3
		if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
			if normals, err = readVec3(doc, idx); err != nil {
				return fmt.Errorf("normals: %w", err)
			}
		}
		var uvs []math3d.Vec2
		if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
			if uvs, err = readVec2(doc, idx); err != nil {
				return fmt.Errorf("uvs: %w", err)
			}
		}

		base := len(dst.Vertices)
		for i, p := range positions {
			v := geom.Vertex{Position: p}
			if i < len(normals) {
				v.Normal = normals[i]
			}
			if i < len(uvs) {
				v.UV = uvs[i]
			}
			dst.Vertices = append(dst.Vertices, v)
		}

		if prim.Indices != nil {
			indices, err := readIndices(doc, *prim.Indices)
			if err != nil {
				return fmt.Errorf("indices: %w", err)
			}
			for i := 0; i+2 < len(indices); i += 3 {
				dst.Faces = append(dst.Faces, [3]int{
					base + indices[i], base + indices[i+1], base + indices[i+2],
				})
			}
		} else {
			for i := 0; i+2 < len(positions); i += 3 {
				dst.Faces = append(dst.Faces, [3]int{base + i, base + i + 1, base + i + 2})
			}
		}
	}
	return nil
}

func hasNormals(m *geom.Mesh) bool {
	for _, v := range m.Vertices {
		if v.Normal.LenSq() > 1e-6 {
			return true
		}
	}
	return false
}

// readVec3 decodes a VEC3 float accessor.
func readVec3(doc *gltf.Document, accessorIdx int) ([]math3d.Vec3, error) {
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorVec3 || accessor.ComponentType != gltf.ComponentFloat {
		return nil, fmt.Errorf("expected float VEC3, got %v %v", accessor.ComponentType, accessor.Type)
	}
	data, stride, err := accessorBytes(doc, accessor, 12)
	if err != nil {
		return nil, err
	}

	out := make([]math3d.Vec3, accessor.Count)
	for i := range out {
		off := i * stride
		out[i] = math3d.V3(
			float64(readFloat32(data[off:])),
			float64(readFloat32(data[off+4:])),
			float64(readFloat32(data[off+8:])),
		)
	}
	return out, nil
}

// readVec2 decodes a VEC2 float accessor.
func readVec2(doc *gltf.Document, accessorIdx int) ([]math3d.Vec2, error) {
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorVec2 || accessor.ComponentType != gltf.ComponentFloat {
		return nil, fmt.Errorf("expected float VEC2, got %v %v", accessor.ComponentType, accessor.Type)
	}
	data, stride, err := accessorBytes(doc, accessor, 8)
	if err != nil {
		return nil, err
	}

	out := make([]math3d.Vec2, accessor.Count)
	for i := range out {
		off := i * stride
		out[i] = math3d.V2(float64(readFloat32(data[off:])), float64(readFloat32(data[off+4:])))
	}
	return out, nil
}

// readIndices decodes a scalar index accessor of any of the three legal
// component widths.
func readIndices(doc *gltf.Document, accessorIdx int) ([]int, error) {
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorScalar {
		return nil, fmt.Errorf("expected SCALAR indices, got %v", accessor.Type)
	}

	var width int
	switch accessor.ComponentType {
	case gltf.ComponentUbyte:
		width = 1
	case gltf.ComponentUshort:
		width = 2
	case gltf.ComponentUint:
		width = 4
	default:
		return nil, fmt.Errorf("unsupported index component type %v", accessor.ComponentType)
	}

	data, stride, err := accessorBytes(doc, accessor, width)
	if err != nil {
		return nil, err
	}

	out := make([]int, accessor.Count)
	for i := range out {
		off := i * stride
		switch width {
		case 1:
			out[i] = int(data[off])
		case 2:
			out[i] = int(uint16(data[off]) | uint16(data[off+1])<<8)
		case 4:
			out[i] = int(uint32(data[off]) | uint32(data[off+1])<<8 |
				uint32(data[off+2])<<16 | uint32(data[off+3])<<24)
		}
	}
	return out, nil
}

// accessorBytes returns the accessor's backing bytes and element stride.
// Only embedded (GLB) buffers are supported.
func accessorBytes(doc *gltf.Document, accessor *gltf.Accessor, elemSize int) ([]byte, int, error) {
	if accessor.BufferView == nil {
		return nil, 0, fmt.Errorf("accessor has no buffer view")
	}
	view := doc.BufferViews[*accessor.BufferView]
	buffer := doc.Buffers[view.Buffer]
	if buffer.URI != "" {
		return nil, 0, fmt.Errorf("external buffers not supported")
	}
	if buffer.Data == nil {
		return nil, 0, fmt.Errorf("buffer has no data")
	}

	stride := view.ByteStride
	if stride == 0 {
		stride = elemSize
	}
	start := view.ByteOffset + accessor.ByteOffset
	end := start + (accessor.Count-1)*stride + elemSize
	if end > len(buffer.Data) {
		return nil, 0, fmt.Errorf("accessor spans past buffer end (%d > %d)", end, len(buffer.Data))
	}
	return buffer.Data[start:end], stride, nil
}

// readFloat32 reads a little-endian float32.
func readFloat32(b []byte) float32 {
	bits := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
	return math.Float32frombits(bits)
}
