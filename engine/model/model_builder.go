package model

import (
	"encoding/binary"

	"github.com/Carmen-Shannon/oxy-deferred/engine/gpu"
)

// MeshBuilderOption is a functional option for configuring a Mesh via NewMesh.
type MeshBuilderOption func(*mesh)

// WithName is an option builder that sets the name of the Mesh.
//
// Parameters:
//   - name: the mesh identifier
//
// Returns:
//   - MeshBuilderOption: a function that applies the name option to a mesh
func WithName(name string) MeshBuilderOption {
	return func(m *mesh) {
		m.name = name
	}
}

// WithVertexData is an option builder that sets the raw vertex data and vertex count of the Mesh.
//
// Parameters:
//   - data: the interleaved vertex bytes
//   - count: the number of vertices in data
//
// Returns:
//   - MeshBuilderOption: a function that applies the vertex data option to a mesh
func WithVertexData(data []byte, count int) MeshBuilderOption {
	return func(m *mesh) {
		m.vertexData = data
		m.vertexCount = uint32(count)
	}
}

// WithIndices16 is an option builder that sets 16-bit indices. The encoded
// bytes are padded to a multiple of 4 so they can be written to a GPU buffer directly.
//
// Parameters:
//   - indices: the index list
//
// Returns:
//   - MeshBuilderOption: a function that applies the index option to a mesh
func WithIndices16(indices []uint16) MeshBuilderOption {
	return func(m *mesh) {
		size := (len(indices)*2 + 3) &^ 3
		b := make([]byte, size)
		for i, idx := range indices {
			binary.LittleEndian.PutUint16(b[i*2:], idx)
		}
		m.indexData = b
		m.indexCount = uint32(len(indices))
		m.indexFormat = gpu.IndexUint16
	}
}

// WithTopology is an option builder that sets the primitive topology of the Mesh.
//
// Parameters:
//   - topology: the topology the mesh was generated for
//
// Returns:
//   - MeshBuilderOption: a function that applies the topology option to a mesh
func WithTopology(topology gpu.Topology) MeshBuilderOption {
	return func(m *mesh) {
		m.topology = topology
	}
}

// WithLayout is an option builder that sets the vertex buffer layout of the Mesh.
//
// Parameters:
//   - layout: the layout of the vertex data
//
// Returns:
//   - MeshBuilderOption: a function that applies the layout option to a mesh
func WithLayout(layout gpu.VertexLayout) MeshBuilderOption {
	return func(m *mesh) {
		m.layout = layout
	}
}
