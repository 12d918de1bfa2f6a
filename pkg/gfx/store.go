package gfx

import (
	"fmt"
	"image"
)

// store 设备资源表，RecordingDevice 与 EbitenDevice 共用
type store struct {
	nextID        uint32
	vertexBuffers map[BufferID][]Vertex
	indexBuffers  map[BufferID][]uint32
	textures      map[TextureID]image.Image
	samplers      map[SamplerID]SamplerDesc
	shaders       map[ShaderID]string
}

func newStore() store {
	return store{
		vertexBuffers: make(map[BufferID][]Vertex),
		indexBuffers:  make(map[BufferID][]uint32),
		textures:      make(map[TextureID]image.Image),
		samplers:      make(map[SamplerID]SamplerDesc),
		shaders:       make(map[ShaderID]string),
	}
}

func (s *store) id() uint32 {
	s.nextID++
	return s.nextID
}

func (s *store) createMesh(name string, vertices []Vertex, indices []uint32) (*Mesh, error) {
	if len(vertices) == 0 || len(indices) == 0 {
		return nil, fmt.Errorf("mesh %q: %w: empty geometry", name, ErrMissingResource)
	}
	for _, idx := range indices {
		if int(idx) >= len(vertices) {
			return nil, fmt.Errorf("mesh %q: index %d out of range (%d vertices)", name, idx, len(vertices))
		}
	}
	vb := BufferID(s.id())
	ib := BufferID(s.id())
	s.vertexBuffers[vb] = vertices
	s.indexBuffers[ib] = indices
	return &Mesh{
		Name:         name,
		VertexBuffer: vb,
		IndexBuffer:  ib,
		IndexCount:   len(indices),
	}, nil
}

func (s *store) updateBuffers(mesh *Mesh, vertices []Vertex, indices []uint32) error {
	if mesh == nil {
		return fmt.Errorf("update buffers: %w: nil mesh", ErrMissingResource)
	}
	if _, ok := s.vertexBuffers[mesh.VertexBuffer]; !ok {
		return fmt.Errorf("update buffers %q: %w", mesh.Name, ErrMissingResource)
	}
	s.vertexBuffers[mesh.VertexBuffer] = vertices
	s.indexBuffers[mesh.IndexBuffer] = indices
	mesh.IndexCount = len(indices)
	return nil
}

func (s *store) createTexture(name string, img image.Image) (TextureID, error) {
	if img == nil {
		return 0, fmt.Errorf("texture %q: %w", name, ErrMissingResource)
	}
	id := TextureID(s.id())
	s.textures[id] = img
	return id, nil
}

func (s *store) createSampler(desc SamplerDesc) (SamplerID, error) {
	id := SamplerID(s.id())
	s.samplers[id] = desc
	return id, nil
}

func (s *store) loadShader(name string) (ShaderID, error) {
	if !IsKnownShader(name) {
		return 0, fmt.Errorf("load shader %q: %w", name, ErrUnknownShader)
	}
	id := ShaderID(s.id())
	s.shaders[id] = name
	return id, nil
}

// checkSubmit 校验一次提交的前置条件
func (s *store) checkSubmit(vb, ib BufferID, indexCount int, b *ShaderBindings) error {
	if b == nil {
		return fmt.Errorf("submit: %w: nil bindings", ErrMissingResource)
	}
	if _, ok := s.shaders[b.VertexShader]; !ok {
		return fmt.Errorf("submit: %w: vertex shader %d", ErrMissingResource, b.VertexShader)
	}
	if _, ok := s.shaders[b.PixelShader]; !ok {
		return fmt.Errorf("submit: %w: pixel shader %d", ErrMissingResource, b.PixelShader)
	}
	if _, ok := s.vertexBuffers[vb]; !ok {
		return fmt.Errorf("submit: %w: vertex buffer %d", ErrMissingResource, vb)
	}
	indices, ok := s.indexBuffers[ib]
	if !ok {
		return fmt.Errorf("submit: %w: index buffer %d", ErrMissingResource, ib)
	}
	if indexCount > len(indices) {
		return fmt.Errorf("submit: index count %d exceeds buffer (%d)", indexCount, len(indices))
	}
	if b.Texture != 0 {
		if _, ok := s.textures[b.Texture]; !ok {
			return fmt.Errorf("submit: %w: texture %d", ErrMissingResource, b.Texture)
		}
	}
	return nil
}

// ShaderName 返回着色器句柄对应的程序名
func (s *store) ShaderName(id ShaderID) string {
	return s.shaders[id]
}
