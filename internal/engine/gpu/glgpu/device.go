// Package glgpu implements gpu.Device on OpenGL 4.1 core.
//
// A Device must be created and used on the goroutine that owns the current
// GL context (see package window).
package glgpu

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/warg/internal/engine/gpu"
	"github.com/Faultbox/warg/internal/engine/mesh"
	"github.com/Faultbox/warg/internal/engine/texture"
	"github.com/Faultbox/warg/internal/logger"
)

// Vertex attribute locations expected by shaders.
const (
	locPosition  = 0
	locNormal    = 1
	locUV        = 2
	locTangent   = 3
	locBitangent = 4
	locModel     = 5 // mat4, occupies 5..8
	locMVP       = 9 // mat4, occupies 9..12
)

const mat4Size = 16 * 4

var slotUniforms = [gpu.NumSlots]string{
	gpu.SlotAlbedo:           "albedo",
	gpu.SlotSpecular:         "specular",
	gpu.SlotNormal:           "normal",
	gpu.SlotEmissive:         "emissive",
	gpu.SlotRoughness:        "roughness",
	gpu.SlotMetalness:        "metalness",
	gpu.SlotAmbientOcclusion: "ambient_occlusion",
}

type glMesh struct {
	vao        uint32
	buffers    [6]uint32 // 5 attribute streams + index buffer
	indexCount int32
}

// Device is an OpenGL implementation of gpu.Device.
type Device struct {
	maxInstances int
	next         uint32

	modelBuf uint32
	mvpBuf   uint32

	meshes   map[gpu.MeshID]*glMesh
	textures map[gpu.TextureID]uint32
	programs map[gpu.ProgramID]*program

	stats gpu.Stats
	log   *zap.Logger
}

// New initializes GL function pointers for the current context and
// allocates per-instance buffers for maxInstances instances.
func New(maxInstances int) (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("gl.Init: %w", err)
	}
	d := &Device{
		maxInstances: maxInstances,
		meshes:       make(map[gpu.MeshID]*glMesh),
		textures:     make(map[gpu.TextureID]uint32),
		programs:     make(map[gpu.ProgramID]*program),
		log:          logger.Named("gpu"),
	}
	for _, buf := range []*uint32{&d.modelBuf, &d.mvpBuf} {
		gl.GenBuffers(1, buf)
		gl.BindBuffer(gl.ARRAY_BUFFER, *buf)
		gl.BufferData(gl.ARRAY_BUFFER, maxInstances*mat4Size, nil, gl.STREAM_DRAW)
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.Enable(gl.DEPTH_TEST)

	d.log.Info("opengl device ready",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)
	return d, nil
}

func (d *Device) id() uint32 {
	d.next++
	return d.next
}

// UploadMesh implements gpu.Device.
func (d *Device) UploadMesh(data *mesh.Data) (gpu.MeshID, error) {
	if err := data.Validate(); err != nil {
		return 0, fmt.Errorf("uploading mesh: %w", err)
	}
	m := &glMesh{indexCount: int32(len(data.Indices))}
	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)
	gl.GenBuffers(int32(len(m.buffers)), &m.buffers[0])

	vec3Attr(m.buffers[0], locPosition, flatten3(data.Positions))
	vec3Attr(m.buffers[1], locNormal, flatten3(data.Normals))
	uvs := make([]float32, 0, len(data.UVs)*2)
	for _, uv := range data.UVs {
		uvs = append(uvs, uv[0], uv[1])
	}
	attr(m.buffers[2], locUV, 2, uvs)
	vec3Attr(m.buffers[3], locTangent, flatten3(data.Tangents))
	vec3Attr(m.buffers[4], locBitangent, flatten3(data.Bitangents))

	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.buffers[5])
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(data.Indices)*4, gl.Ptr(data.Indices), gl.STATIC_DRAW)

	instanceMat4(d.modelBuf, locModel)
	instanceMat4(d.mvpBuf, locMVP)

	gl.BindVertexArray(0)

	id := gpu.MeshID(d.id())
	d.meshes[id] = m
	d.stats.Meshes++
	d.log.Debug("uploaded mesh", zap.String("name", data.Name), zap.Uint32("id", uint32(id)))
	return id, nil
}

func flatten3[V ~[3]float32](vs []V) []float32 {
	out := make([]float32, 0, len(vs)*3)
	for _, v := range vs {
		out = append(out, v[0], v[1], v[2])
	}
	return out
}

func vec3Attr(buf, loc uint32, data []float32) {
	attr(buf, loc, 3, data)
}

func attr(buf, loc uint32, size int32, data []float32) {
	gl.BindBuffer(gl.ARRAY_BUFFER, buf)
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(loc)
	gl.VertexAttribPointerWithOffset(loc, size, gl.FLOAT, false, 0, 0)
}

// instanceMat4 binds a per-instance mat4 attribute spanning four locations.
func instanceMat4(buf, loc uint32) {
	gl.BindBuffer(gl.ARRAY_BUFFER, buf)
	for col := uint32(0); col < 4; col++ {
		gl.EnableVertexAttribArray(loc + col)
		gl.VertexAttribPointerWithOffset(loc+col, 4, gl.FLOAT, false, mat4Size, uintptr(col*16))
		gl.VertexAttribDivisor(loc+col, 1)
	}
}

// LoadTexture implements gpu.Device.
func (d *Device) LoadTexture(path string) (gpu.TextureID, error) {
	img, err := texture.Load(path)
	if err != nil {
		return 0, err
	}
	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	w, h := int32(img.Rect.Dx()), int32(img.Rect.Dy())
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, w, h, 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	if texture.IsColor(path) {
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	} else {
		gl.GenerateMipmap(gl.TEXTURE_2D)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	}
	gl.BindTexture(gl.TEXTURE_2D, 0)

	id := gpu.TextureID(d.id())
	d.textures[id] = tex
	d.stats.Textures++
	return id, nil
}

// CompileProgram implements gpu.Device.
func (d *Device) CompileProgram(vertexPath, fragmentPath string) (gpu.ProgramID, error) {
	p, err := loadProgram(vertexPath, fragmentPath)
	if err != nil {
		return 0, err
	}
	id := gpu.ProgramID(d.id())
	d.programs[id] = p
	d.stats.Programs++
	return id, nil
}

// DestroyMesh implements gpu.Device.
func (d *Device) DestroyMesh(id gpu.MeshID) {
	m, ok := d.meshes[id]
	if !ok {
		return
	}
	gl.DeleteBuffers(int32(len(m.buffers)), &m.buffers[0])
	gl.DeleteVertexArrays(1, &m.vao)
	delete(d.meshes, id)
	d.stats.Meshes--
}

// DestroyTexture implements gpu.Device.
func (d *Device) DestroyTexture(id gpu.TextureID) {
	tex, ok := d.textures[id]
	if !ok {
		return
	}
	gl.DeleteTextures(1, &tex)
	delete(d.textures, id)
	d.stats.Textures--
}

// DestroyProgram implements gpu.Device.
func (d *Device) DestroyProgram(id gpu.ProgramID) {
	p, ok := d.programs[id]
	if !ok {
		return
	}
	gl.DeleteProgram(p.id)
	delete(d.programs, id)
	d.stats.Programs--
}

// DrawInstanced implements gpu.Device.
func (d *Device) DrawInstanced(c gpu.DrawCall) error {
	m, ok := d.meshes[c.Mesh]
	if !ok {
		return fmt.Errorf("%w: mesh %d", gpu.ErrUnknownObject, c.Mesh)
	}
	p, ok := d.programs[c.Program]
	if !ok {
		return fmt.Errorf("%w: program %d", gpu.ErrUnknownObject, c.Program)
	}
	n := len(c.Models)
	if n != len(c.MVPs) {
		return fmt.Errorf("draw: %d model matrices but %d mvp matrices", n, len(c.MVPs))
	}
	if n > d.maxInstances {
		return fmt.Errorf("%w: %d > %d", gpu.ErrTooManyInstances, n, d.maxInstances)
	}
	if n == 0 {
		return nil
	}

	gl.UseProgram(p.id)
	for slot, texID := range c.Textures {
		loc := p.uniform(slotUniforms[slot])
		if loc < 0 {
			continue
		}
		gl.ActiveTexture(gl.TEXTURE0 + uint32(slot))
		gl.BindTexture(gl.TEXTURE_2D, d.textures[texID])
		gl.Uniform1i(loc, int32(slot))
	}
	if loc := p.uniform("uv_scale"); loc >= 0 {
		gl.Uniform2f(loc, c.UVScale[0], c.UVScale[1])
	}
	if c.Lights != nil {
		d.uploadLights(p, c)
	}
	if c.BackfaceCulling {
		gl.Enable(gl.CULL_FACE)
	} else {
		gl.Disable(gl.CULL_FACE)
	}

	gl.BindBuffer(gl.ARRAY_BUFFER, d.modelBuf)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, n*mat4Size, gl.Ptr(&c.Models[0][0]))
	gl.BindBuffer(gl.ARRAY_BUFFER, d.mvpBuf)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, n*mat4Size, gl.Ptr(&c.MVPs[0][0]))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	gl.BindVertexArray(m.vao)
	gl.DrawElementsInstanced(gl.TRIANGLES, m.indexCount, gl.UNSIGNED_INT, nil, int32(n))
	gl.BindVertexArray(0)

	d.stats.DrawCalls++
	d.stats.Instances += n
	d.stats.Triangles += int(m.indexCount/3) * n
	return nil
}

func (d *Device) uploadLights(p *program, c gpu.DrawCall) {
	ls := c.Lights
	if loc := p.uniform("light_count"); loc >= 0 {
		gl.Uniform1i(loc, int32(ls.Count))
	}
	if loc := p.uniform("additional_ambient"); loc >= 0 {
		gl.Uniform3f(loc, ls.AdditionalAmbient[0], ls.AdditionalAmbient[1], ls.AdditionalAmbient[2])
	}
	vec3s := []struct {
		name string
		data []float32
	}{
		{"light_position", ls.Positions()},
		{"light_direction", ls.Directions()},
		{"light_color", ls.Colors()},
		{"light_attenuation", ls.Attenuations()},
	}
	for _, u := range vec3s {
		if loc := p.uniform(u.name); loc >= 0 {
			gl.Uniform3fv(loc, int32(len(u.data)/3), &u.data[0])
		}
	}
	if loc := p.uniform("light_type"); loc >= 0 {
		types := ls.Types()
		gl.Uniform1iv(loc, int32(len(types)), &types[0])
	}
}

// MaxInstances implements gpu.Device.
func (d *Device) MaxInstances() int { return d.maxInstances }

// Stats implements gpu.Device.
func (d *Device) Stats() gpu.Stats { return d.stats }

// ResetFrameStats implements gpu.Device.
func (d *Device) ResetFrameStats() {
	d.stats.DrawCalls = 0
	d.stats.Instances = 0
	d.stats.Triangles = 0
}

// Clear clears the color and depth buffers.
func (d *Device) Clear(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
	gl.ClearColor(0.05, 0.05, 0.08, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// Close releases all GL objects owned by the device.
func (d *Device) Close() {
	for id := range d.meshes {
		d.DestroyMesh(id)
	}
	for id := range d.textures {
		d.DestroyTexture(id)
	}
	for id := range d.programs {
		d.DestroyProgram(id)
	}
	gl.DeleteBuffers(1, &d.modelBuf)
	gl.DeleteBuffers(1, &d.mvpBuf)
}

var _ gpu.Device = (*Device)(nil)
