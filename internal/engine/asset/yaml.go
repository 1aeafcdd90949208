package asset

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/warg/internal/assets"
)

var ErrMalformed = errors.New("malformed asset file")

// Importer parses asset files.
type Importer interface {
	Import(path string, flags Flags) (*Scene, error)
}

// YAMLImporter reads scenes stored as YAML documents.
type YAMLImporter struct {
	Files *assets.Manager
}

// NewYAMLImporter creates an importer reading through files.
func NewYAMLImporter(files *assets.Manager) *YAMLImporter {
	return &YAMLImporter{Files: files}
}

// Import implements Importer.
func (im *YAMLImporter) Import(path string, flags Flags) (*Scene, error) {
	resolved, err := im.Files.Resolve(path)
	if err != nil {
		return nil, err
	}
	data, err := im.Files.Load(resolved)
	if err != nil {
		return nil, err
	}
	s, err := Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", resolved, err)
	}
	s.Path = resolved
	Process(s, flags)
	if err := Validate(s); err != nil {
		return nil, err
	}
	return s, nil
}

type yamlScene struct {
	Name      string         `yaml:"name"`
	Root      *yamlNode      `yaml:"root"`
	Meshes    []yamlMesh     `yaml:"meshes"`
	Materials []yamlMaterial `yaml:"materials"`
}

type yamlNode struct {
	Name      string      `yaml:"name"`
	Transform []float32   `yaml:"transform,omitempty,flow"` // 16 floats, column-major
	Meshes    []int       `yaml:"meshes,omitempty,flow"`
	Children  []*yamlNode `yaml:"children,omitempty"`
}

type yamlMesh struct {
	Name       string          `yaml:"name"`
	Material   int             `yaml:"material"`
	Positions  [][]float32     `yaml:"positions,flow"`
	Normals    [][]float32     `yaml:"normals,omitempty,flow"`
	UVChannels []yamlUVChannel `yaml:"uv_channels,omitempty"`
	Tangents   [][]float32     `yaml:"tangents,omitempty,flow"`
	Bitangents [][]float32     `yaml:"bitangents,omitempty,flow"`
	Colors     [][][]float32   `yaml:"colors,omitempty,flow"`
	Faces      [][]uint32      `yaml:"faces,flow"`
}

type yamlUVChannel struct {
	Components int         `yaml:"components"`
	Coords     [][]float32 `yaml:"coords,flow"`
}

type yamlMaterial struct {
	Name     string            `yaml:"name"`
	Textures map[string]string `yaml:"textures,omitempty"`
}

// Unmarshal parses a YAML asset document without post-processing or
// validation.
func Unmarshal(data []byte) (*Scene, error) {
	var doc yamlScene
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	s := &Scene{}
	if doc.Root != nil {
		root, err := doc.Root.toNode()
		if err != nil {
			return nil, err
		}
		s.Root = root
	}
	for i, ym := range doc.Meshes {
		m, err := ym.toMesh()
		if err != nil {
			return nil, fmt.Errorf("mesh %d (%s): %w", i, ym.Name, err)
		}
		s.Meshes = append(s.Meshes, m)
	}
	for _, ymat := range doc.Materials {
		mat := Material{Name: ymat.Name, Textures: make(map[TextureSlot]string, len(ymat.Textures))}
		for slot, path := range ymat.Textures {
			mat.Textures[TextureSlot(slot)] = path
		}
		s.Materials = append(s.Materials, mat)
	}
	return s, nil
}

func (yn *yamlNode) toNode() (*Node, error) {
	n := &Node{Name: yn.Name, Transform: identity, Meshes: yn.Meshes}
	switch len(yn.Transform) {
	case 0:
	case 16:
		copy(n.Transform[:], yn.Transform)
	default:
		return nil, fmt.Errorf("%w: node %s: transform has %d values, want 16", ErrMalformed, yn.Name, len(yn.Transform))
	}
	for _, yc := range yn.Children {
		c, err := yc.toNode()
		if err != nil {
			return nil, err
		}
		n.Children = append(n.Children, c)
	}
	return n, nil
}

func (ym *yamlMesh) toMesh() (Mesh, error) {
	m := Mesh{Name: ym.Name, MaterialIndex: ym.Material, Faces: ym.Faces}
	var err error
	if m.Positions, err = vec3s(ym.Positions, "positions"); err != nil {
		return m, err
	}
	if m.Normals, err = vec3s(ym.Normals, "normals"); err != nil {
		return m, err
	}
	if m.Tangents, err = vec3s(ym.Tangents, "tangents"); err != nil {
		return m, err
	}
	if m.Bitangents, err = vec3s(ym.Bitangents, "bitangents"); err != nil {
		return m, err
	}
	for _, ch := range ym.UVChannels {
		uv := UVChannel{Components: ch.Components, Coords: make([]mgl32.Vec3, len(ch.Coords))}
		for i, c := range ch.Coords {
			if len(c) != ch.Components {
				return m, fmt.Errorf("%w: uv %d has %d components, channel declares %d", ErrMalformed, i, len(c), ch.Components)
			}
			copy(uv.Coords[i][:], c)
		}
		m.UVChannels = append(m.UVChannels, uv)
	}
	for _, set := range ym.Colors {
		colors := make([]mgl32.Vec4, len(set))
		for i, c := range set {
			copy(colors[i][:], c)
		}
		m.Colors = append(m.Colors, colors)
	}
	return m, nil
}

func vec3s(in [][]float32, what string) ([]mgl32.Vec3, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make([]mgl32.Vec3, len(in))
	for i, v := range in {
		if len(v) != 3 {
			return nil, fmt.Errorf("%w: %s[%d] has %d components", ErrMalformed, what, i, len(v))
		}
		out[i] = mgl32.Vec3{v[0], v[1], v[2]}
	}
	return out, nil
}

// Marshal encodes s as a YAML asset document.
func Marshal(s *Scene) ([]byte, error) {
	doc := yamlScene{}
	if s.Root != nil {
		doc.Name = s.Root.Name
		doc.Root = fromNode(s.Root)
	}
	for _, m := range s.Meshes {
		ym := yamlMesh{
			Name:       m.Name,
			Material:   m.MaterialIndex,
			Positions:  fromVec3s(m.Positions),
			Normals:    fromVec3s(m.Normals),
			Tangents:   fromVec3s(m.Tangents),
			Bitangents: fromVec3s(m.Bitangents),
			Faces:      m.Faces,
		}
		for _, ch := range m.UVChannels {
			yc := yamlUVChannel{Components: ch.Components}
			for _, c := range ch.Coords {
				yc.Coords = append(yc.Coords, append([]float32(nil), c[:ch.Components]...))
			}
			ym.UVChannels = append(ym.UVChannels, yc)
		}
		doc.Meshes = append(doc.Meshes, ym)
	}
	for _, mat := range s.Materials {
		ymat := yamlMaterial{Name: mat.Name, Textures: make(map[string]string, len(mat.Textures))}
		for slot, path := range mat.Textures {
			ymat.Textures[string(slot)] = path
		}
		doc.Materials = append(doc.Materials, ymat)
	}
	return yaml.Marshal(&doc)
}

func fromNode(n *Node) *yamlNode {
	yn := &yamlNode{Name: n.Name, Meshes: n.Meshes}
	if n.Transform != identity {
		yn.Transform = append([]float32(nil), n.Transform[:]...)
	}
	for _, c := range n.Children {
		yn.Children = append(yn.Children, fromNode(c))
	}
	return yn
}

func fromVec3s(vs []mgl32.Vec3) [][]float32 {
	if len(vs) == 0 {
		return nil
	}
	out := make([][]float32, len(vs))
	for i, v := range vs {
		out[i] = []float32{v[0], v[1], v[2]}
	}
	return out
}
