// Package batch groups render entities into instanced draws.
//
// Entities sharing a mesh and a material become one Instance holding the
// model and model-view-projection matrices of every occurrence. Grouping
// does not depend on entity order; bucket order is first-seen order.
package batch

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/warg/internal/engine/gpu"
	"github.com/Faultbox/warg/internal/engine/invariant"
	"github.com/Faultbox/warg/internal/engine/lighting"
	"github.com/Faultbox/warg/internal/engine/scene"
)

// DefaultMaxInstances is the instance limit of one bucket.
const DefaultMaxInstances = 100

// Policy decides what happens when a bucket is full.
type Policy int

const (
	// PolicyReject treats an overflowing bucket as a broken invariant.
	PolicyReject Policy = iota
	// PolicySplit opens another bucket for the same mesh and material.
	PolicySplit
)

func (p Policy) String() string {
	switch p {
	case PolicyReject:
		return "reject"
	case PolicySplit:
		return "split"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// ParsePolicy parses an overflow policy name.
func ParsePolicy(name string) (Policy, error) {
	switch name {
	case "reject":
		return PolicyReject, nil
	case "split":
		return PolicySplit, nil
	}
	return 0, fmt.Errorf("unknown overflow policy %q", name)
}

// Instance is every occurrence of one mesh and material in a frame.
type Instance struct {
	Mesh     scene.MeshHandle
	Material scene.MaterialHandle
	Lights   *lighting.Set
	Models   []mgl32.Mat4
	MVPs     []mgl32.Mat4
}

// Len returns the instance count.
func (in *Instance) Len() int { return len(in.Models) }

type identity struct {
	mesh     scene.MeshHandle
	material scene.MaterialHandle
}

// Batcher accumulates the buckets of one frame.
type Batcher struct {
	MaxInstances int
	Overflow     Policy

	instances []Instance
	open      map[identity]int // bucket currently accepting the identity
}

// New creates a batcher. maxInstances <= 0 selects DefaultMaxInstances.
func New(maxInstances int, policy Policy) *Batcher {
	if maxInstances <= 0 {
		maxInstances = DefaultMaxInstances
	}
	return &Batcher{
		MaxInstances: maxInstances,
		Overflow:     policy,
		open:         make(map[identity]int),
	}
}

// Add folds one entity into its bucket.
func (b *Batcher) Add(e scene.RenderEntity, viewProj mgl32.Mat4) {
	key := identity{e.Mesh, e.Material}
	mvp := viewProj.Mul4(e.Transform)

	if i, ok := b.open[key]; ok {
		in := &b.instances[i]
		invariant.Check(sameLights(in.Lights, e.Lights), "batch.Add",
			"mesh %s material %s drawn under different light sets", e.Mesh, e.Material)
		if len(in.Models) < b.MaxInstances {
			in.Models = append(in.Models, e.Transform)
			in.MVPs = append(in.MVPs, mvp)
			return
		}
		if b.Overflow != PolicySplit {
			invariant.Fail("batch.Add", "mesh %s material %s exceeds %d instances", e.Mesh, e.Material, b.MaxInstances)
		}
	}

	b.open[key] = len(b.instances)
	b.instances = append(b.instances, Instance{
		Mesh:     e.Mesh,
		Material: e.Material,
		Lights:   e.Lights,
		Models:   []mgl32.Mat4{e.Transform},
		MVPs:     []mgl32.Mat4{mvp},
	})
}

// Build resets the batcher and folds entities into buckets. The result is
// valid until the next Reset or Build.
func (b *Batcher) Build(entities []scene.RenderEntity, viewProj mgl32.Mat4) []Instance {
	b.Reset()
	for _, e := range entities {
		b.Add(e, viewProj)
	}
	return b.instances
}

// Instances returns the buckets built so far.
func (b *Batcher) Instances() []Instance { return b.instances }

// Reset drops all buckets.
func (b *Batcher) Reset() {
	b.instances = b.instances[:0]
	clear(b.open)
}

func sameLights(a, b *lighting.Set) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return a.Equal(*b)
}

// DrawCalls resolves buckets against g into device submissions.
func DrawCalls(instances []Instance, g *scene.Graph) []gpu.DrawCall {
	calls := make([]gpu.DrawCall, len(instances))
	for i := range instances {
		in := &instances[i]
		c := &calls[i]
		c.Mesh = g.Mesh(in.Mesh).GPU
		g.Material(in.Material).Apply(c)
		c.Lights = in.Lights
		c.Models = in.Models
		c.MVPs = in.MVPs
	}
	return calls
}

// Submit draws every call on dev and stops at the first error.
func Submit(dev gpu.Device, calls []gpu.DrawCall) error {
	for i := range calls {
		if err := dev.DrawInstanced(calls[i]); err != nil {
			return fmt.Errorf("draw %d: %w", i, err)
		}
	}
	return nil
}
