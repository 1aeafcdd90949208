package gpu

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/warg/internal/engine/mesh"
	"github.com/Faultbox/warg/internal/engine/texture"
	"github.com/Faultbox/warg/internal/logger"
)

// Headless records uploads and draws without a GPU. Texture files are
// decoded and shader files are read, so missing or corrupt resources fail
// the same way they would on a real device.
type Headless struct {
	maxInstances int
	next         uint32

	meshes   map[MeshID]int // triangle count
	textures map[TextureID]string
	programs map[ProgramID][2]string

	stats Stats
	log   *zap.Logger
}

// NewHeadless creates a recording device accepting up to maxInstances
// instances per draw.
func NewHeadless(maxInstances int) *Headless {
	return &Headless{
		maxInstances: maxInstances,
		meshes:       make(map[MeshID]int),
		textures:     make(map[TextureID]string),
		programs:     make(map[ProgramID][2]string),
		log:          logger.Named("gpu"),
	}
}

func (h *Headless) id() uint32 {
	h.next++
	return h.next
}

// UploadMesh implements Device.
func (h *Headless) UploadMesh(d *mesh.Data) (MeshID, error) {
	if err := d.Validate(); err != nil {
		return 0, fmt.Errorf("uploading mesh: %w", err)
	}
	id := MeshID(h.id())
	h.meshes[id] = d.TriangleCount()
	h.stats.Meshes++
	h.log.Debug("uploaded mesh", zap.String("name", d.Name), zap.Uint32("id", uint32(id)))
	return id, nil
}

// LoadTexture implements Device.
func (h *Headless) LoadTexture(path string) (TextureID, error) {
	if _, err := texture.Load(path); err != nil {
		return 0, err
	}
	id := TextureID(h.id())
	h.textures[id] = path
	h.stats.Textures++
	return id, nil
}

// CompileProgram implements Device.
func (h *Headless) CompileProgram(vertexPath, fragmentPath string) (ProgramID, error) {
	for _, p := range []string{vertexPath, fragmentPath} {
		src, err := os.ReadFile(p)
		if err != nil {
			return 0, fmt.Errorf("reading shader: %w", err)
		}
		if len(src) == 0 {
			return 0, fmt.Errorf("%w: %s is empty", ErrShaderCompile, p)
		}
	}
	id := ProgramID(h.id())
	h.programs[id] = [2]string{vertexPath, fragmentPath}
	h.stats.Programs++
	return id, nil
}

// DestroyMesh implements Device.
func (h *Headless) DestroyMesh(id MeshID) {
	if _, ok := h.meshes[id]; ok {
		delete(h.meshes, id)
		h.stats.Meshes--
	}
}

// DestroyTexture implements Device.
func (h *Headless) DestroyTexture(id TextureID) {
	if _, ok := h.textures[id]; ok {
		delete(h.textures, id)
		h.stats.Textures--
	}
}

// DestroyProgram implements Device.
func (h *Headless) DestroyProgram(id ProgramID) {
	if _, ok := h.programs[id]; ok {
		delete(h.programs, id)
		h.stats.Programs--
	}
}

// DrawInstanced implements Device.
func (h *Headless) DrawInstanced(c DrawCall) error {
	tris, ok := h.meshes[c.Mesh]
	if !ok {
		return fmt.Errorf("%w: mesh %d", ErrUnknownObject, c.Mesh)
	}
	if _, ok := h.programs[c.Program]; !ok {
		return fmt.Errorf("%w: program %d", ErrUnknownObject, c.Program)
	}
	for _, tex := range c.Textures {
		if tex == 0 {
			continue
		}
		if _, ok := h.textures[tex]; !ok {
			return fmt.Errorf("%w: texture %d", ErrUnknownObject, tex)
		}
	}
	if len(c.Models) != len(c.MVPs) {
		return fmt.Errorf("draw: %d model matrices but %d mvp matrices", len(c.Models), len(c.MVPs))
	}
	if len(c.Models) > h.maxInstances {
		return fmt.Errorf("%w: %d > %d", ErrTooManyInstances, len(c.Models), h.maxInstances)
	}
	h.stats.DrawCalls++
	h.stats.Instances += len(c.Models)
	h.stats.Triangles += tris * len(c.Models)
	return nil
}

// MaxInstances implements Device.
func (h *Headless) MaxInstances() int { return h.maxInstances }

// Stats implements Device.
func (h *Headless) Stats() Stats { return h.stats }

// ResetFrameStats implements Device.
func (h *Headless) ResetFrameStats() {
	h.stats.DrawCalls = 0
	h.stats.Instances = 0
	h.stats.Triangles = 0
}
