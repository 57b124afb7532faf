package model

import (
	"github.com/Carmen-Shannon/oxy-deferred/engine/gpu"
)

// mesh is the implementation of the Mesh interface.
type mesh struct {
	name        string
	vertexData  []byte
	indexData   []byte
	vertexCount uint32
	indexCount  uint32
	indexFormat gpu.IndexFormat
	topology    gpu.Topology
	layout      gpu.VertexLayout
}

// Mesh is CPU-side geometry ready for upload into a vertex buffer and an optional index buffer.
// Meshes are generated procedurally at startup and never change afterwards.
type Mesh interface {
	// Name retrieves the mesh identifier, used as the label of its GPU buffers.
	//
	// Returns:
	//   - string: the mesh name
	Name() string

	// VertexData retrieves the interleaved vertex bytes.
	//
	// Returns:
	//   - []byte: the vertex data
	VertexData() []byte

	// IndexData retrieves the index bytes, padded to a multiple of 4 bytes.
	// Returns nil for non-indexed meshes.
	//
	// Returns:
	//   - []byte: the index data
	IndexData() []byte

	// VertexCount returns the number of vertices.
	//
	// Returns:
	//   - uint32: the vertex count
	VertexCount() uint32

	// IndexCount returns the number of indices, 0 for non-indexed meshes.
	//
	// Returns:
	//   - uint32: the index count
	IndexCount() uint32

	// IndexFormat returns the element type of IndexData.
	//
	// Returns:
	//   - gpu.IndexFormat: the index format
	IndexFormat() gpu.IndexFormat

	// Topology returns the primitive topology the indices or vertices were generated for.
	//
	// Returns:
	//   - gpu.Topology: the topology
	Topology() gpu.Topology

	// Layout returns the vertex buffer layout of VertexData.
	//
	// Returns:
	//   - gpu.VertexLayout: the layout
	Layout() gpu.VertexLayout

	// Indexed reports whether the mesh is drawn with an index buffer.
	//
	// Returns:
	//   - bool: true if IndexCount is non-zero
	Indexed() bool
}

var _ Mesh = &mesh{}

// NewMesh creates a new Mesh with the provided options.
//
// Parameters:
//   - options: variadic list of MeshBuilderOption functions to configure the mesh
//
// Returns:
//   - Mesh: the newly created Mesh instance
func NewMesh(options ...MeshBuilderOption) Mesh {
	m := &mesh{
		indexFormat: gpu.IndexUint16,
		topology:    gpu.TopologyTriangleList,
	}
	for _, option := range options {
		option(m)
	}
	return m
}

func (m *mesh) Name() string {
	return m.name
}

func (m *mesh) VertexData() []byte {
	return m.vertexData
}

func (m *mesh) IndexData() []byte {
	return m.indexData
}

func (m *mesh) VertexCount() uint32 {
	return m.vertexCount
}

func (m *mesh) IndexCount() uint32 {
	return m.indexCount
}

func (m *mesh) IndexFormat() gpu.IndexFormat {
	return m.indexFormat
}

func (m *mesh) Topology() gpu.Topology {
	return m.topology
}

func (m *mesh) Layout() gpu.VertexLayout {
	return m.layout
}

func (m *mesh) Indexed() bool {
	return m.indexCount > 0
}
