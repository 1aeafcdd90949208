package resource

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/warg/internal/assets"
	"github.com/Faultbox/warg/internal/engine/gpu"
	"github.com/Faultbox/warg/internal/engine/mesh"
	"github.com/Faultbox/warg/internal/engine/texture"
	"github.com/Faultbox/warg/internal/logger"
)

var ErrNoShader = errors.New("material has no shader program")

type programKey struct {
	vertex, fragment string
}

type entry[T comparable] struct {
	id   T
	refs int
}

// Library deduplicates GPU resources. Meshes are shared by unique id,
// textures by resolved path and programs by shader pair. Each acquisition
// takes a reference; the GPU object is destroyed when the last reference
// is released.
type Library struct {
	dev      gpu.Device
	textures *assets.Manager
	shaders  *assets.Manager

	// DefaultVertexShader and DefaultFragmentShader are used by
	// descriptors that name no shaders.
	DefaultVertexShader   string
	DefaultFragmentShader string

	meshes   map[string]*entry[gpu.MeshID]
	texs     map[string]*entry[gpu.TextureID]
	programs map[programKey]*entry[gpu.ProgramID]

	log *zap.Logger
}

// NewLibrary creates a library uploading through dev. Texture and shader
// paths are resolved through the given managers.
func NewLibrary(dev gpu.Device, textures, shaders *assets.Manager) *Library {
	return &Library{
		dev:      dev,
		textures: textures,
		shaders:  shaders,
		meshes:   make(map[string]*entry[gpu.MeshID]),
		texs:     make(map[string]*entry[gpu.TextureID]),
		programs: make(map[programKey]*entry[gpu.ProgramID]),
		log:      logger.Named("resource"),
	}
}

// Device returns the device resources are uploaded to.
func (l *Library) Device() gpu.Device { return l.dev }

// Mesh uploads d, or shares the live upload of a mesh with the same
// unique id. Data without a unique id is never shared.
func (l *Library) Mesh(d *mesh.Data) (Mesh, error) {
	m := Mesh{Name: d.Name, UniqueID: d.UniqueID, IndexCount: len(d.Indices)}
	if d.UniqueID != "" {
		if e, ok := l.meshes[d.UniqueID]; ok {
			e.refs++
			m.GPU = e.id
			return m, nil
		}
	}
	l.log.Debug("caching mesh", zap.String("name", d.Name), zap.String("uid", d.UniqueID))
	id, err := l.dev.UploadMesh(d)
	if err != nil {
		return Mesh{}, fmt.Errorf("mesh %s: %w", d.Name, err)
	}
	if d.UniqueID != "" {
		l.meshes[d.UniqueID] = &entry[gpu.MeshID]{id: id, refs: 1}
	}
	m.GPU = id
	return m, nil
}

// ReleaseMesh drops one reference to m.
func (l *Library) ReleaseMesh(m Mesh) {
	if m.UniqueID == "" {
		l.dev.DestroyMesh(m.GPU)
		return
	}
	release(l.meshes, m.UniqueID, l.dev.DestroyMesh)
}

// Material loads every texture and the program of desc. On error no
// reference is left behind.
func (l *Library) Material(desc MaterialDescriptor) (mat Material, err error) {
	mat.Descriptor = desc
	defer func() {
		if err != nil {
			l.ReleaseMaterial(mat)
			mat = Material{}
		}
	}()

	for slot, path := range desc.texturePaths() {
		if path == "" {
			continue
		}
		key, id, err := l.texture(path)
		if err != nil {
			return mat, err
		}
		mat.texKeys[slot] = key
		mat.Textures[slot] = id
	}

	key := programKey{desc.VertexShader, desc.FragmentShader}
	if key.vertex == "" {
		key.vertex = l.DefaultVertexShader
	}
	if key.fragment == "" {
		key.fragment = l.DefaultFragmentShader
	}
	if key.vertex == "" || key.fragment == "" {
		return mat, ErrNoShader
	}
	id, err := l.program(key)
	if err != nil {
		return mat, err
	}
	mat.programKey = key
	mat.Program = id
	return mat, nil
}

// ReleaseMaterial drops the references held by m.
func (l *Library) ReleaseMaterial(m Material) {
	for _, key := range m.texKeys {
		if key != "" {
			release(l.texs, key, l.dev.DestroyTexture)
		}
	}
	if m.programKey != (programKey{}) {
		release(l.programs, m.programKey, l.dev.DestroyProgram)
	}
}

func (l *Library) texture(path string) (string, gpu.TextureID, error) {
	key := path
	if !texture.IsColor(path) {
		resolved, err := l.textures.Resolve(path)
		if err != nil {
			return "", 0, fmt.Errorf("texture: %w", err)
		}
		key = resolved
	}
	if e, ok := l.texs[key]; ok {
		e.refs++
		return key, e.id, nil
	}
	l.log.Debug("texture load cache miss", zap.String("path", key))
	id, err := l.dev.LoadTexture(key)
	if err != nil {
		return "", 0, fmt.Errorf("texture %s: %w", key, err)
	}
	l.texs[key] = &entry[gpu.TextureID]{id: id, refs: 1}
	return key, id, nil
}

func (l *Library) program(key programKey) (gpu.ProgramID, error) {
	vs, err := l.shaders.Resolve(key.vertex)
	if err != nil {
		return 0, fmt.Errorf("vertex shader: %w", err)
	}
	fs, err := l.shaders.Resolve(key.fragment)
	if err != nil {
		return 0, fmt.Errorf("fragment shader: %w", err)
	}
	if e, ok := l.programs[key]; ok {
		e.refs++
		return e.id, nil
	}
	l.log.Debug("shader load cache miss", zap.String("vertex", vs), zap.String("fragment", fs))
	id, err := l.dev.CompileProgram(vs, fs)
	if err != nil {
		return 0, err
	}
	l.programs[key] = &entry[gpu.ProgramID]{id: id, refs: 1}
	return id, nil
}

func release[K comparable, T comparable](m map[K]*entry[T], key K, destroy func(T)) {
	e, ok := m[key]
	if !ok {
		return
	}
	e.refs--
	if e.refs <= 0 {
		destroy(e.id)
		delete(m, key)
	}
}

// Stats reports the number of live shared resources.
type Stats struct {
	Meshes   int
	Textures int
	Programs int
}

// Stats returns the number of live shared resources.
func (l *Library) Stats() Stats {
	return Stats{Meshes: len(l.meshes), Textures: len(l.texs), Programs: len(l.programs)}
}

// Close destroys every shared resource regardless of references.
func (l *Library) Close() {
	for k, e := range l.meshes {
		l.dev.DestroyMesh(e.id)
		delete(l.meshes, k)
	}
	for k, e := range l.texs {
		l.dev.DestroyTexture(e.id)
		delete(l.texs, k)
	}
	for k, e := range l.programs {
		l.dev.DestroyProgram(e.id)
		delete(l.programs, k)
	}
}
