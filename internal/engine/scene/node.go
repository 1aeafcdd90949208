package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/warg/internal/engine/pool"
	"github.com/Faultbox/warg/internal/engine/resource"
)

// Handles into the graph's pools.
type (
	NodeHandle     = pool.Handle[Node]
	MeshHandle     = pool.Handle[resource.Mesh]
	MaterialHandle = pool.Handle[resource.Material]
)

// Part is one drawable attached to a node.
type Part struct {
	Mesh     MeshHandle
	Material MaterialHandle
}

// Node is a scene graph node.
//
// Position, Orientation and Scale are owned by the application and may be
// changed between traversals. Orientation holds per-axis Euler angles in
// radians, applied as Y, then X, then Z.
type Node struct {
	Name        string
	Position    mgl32.Vec3
	Orientation mgl32.Vec3
	Scale       mgl32.Vec3

	basis       mgl32.Mat4 // propagates to children
	importBasis mgl32.Mat4 // applies to this node's parts only
	parent      NodeHandle
	children    []NodeHandle
	parts       []Part
}

func newNode(name string, parent NodeHandle, importBasis *mgl32.Mat4) Node {
	n := Node{
		Name:        name,
		Scale:       mgl32.Vec3{1, 1, 1},
		basis:       mgl32.Ident4(),
		importBasis: mgl32.Ident4(),
		parent:      parent,
	}
	if importBasis != nil {
		n.importBasis = *importBasis
	}
	return n
}

// Parent returns the parent handle. The root's parent is the zero handle.
func (n *Node) Parent() NodeHandle { return n.parent }

// Children returns the child handles in insertion order. The slice must
// not be modified.
func (n *Node) Children() []NodeHandle { return n.children }

// Parts returns the attached drawables in insertion order. The slice must
// not be modified.
func (n *Node) Parts() []Part { return n.parts }

// Basis returns the node's static transform.
func (n *Node) Basis() mgl32.Mat4 { return n.basis }

// ImportBasis returns the corrective transform applied to this node's
// own parts.
func (n *Node) ImportBasis() mgl32.Mat4 { return n.importBasis }

// IsRoot reports whether n has no parent.
func (n *Node) IsRoot() bool { return !n.parent.IsValid() }

// Rotation returns the rotation matrix of the Euler orientation.
func (n *Node) Rotation() mgl32.Mat4 {
	return mgl32.HomogRotate3DY(n.Orientation.Y()).
		Mul4(mgl32.HomogRotate3DX(n.Orientation.X())).
		Mul4(mgl32.HomogRotate3DZ(n.Orientation.Z()))
}

// Local returns basis · T · S · R, the transform this node contributes to
// its own and its descendants' stacks.
func (n *Node) Local() mgl32.Mat4 {
	return n.basis.
		Mul4(mgl32.Translate3D(n.Position.X(), n.Position.Y(), n.Position.Z())).
		Mul4(mgl32.Scale3D(n.Scale.X(), n.Scale.Y(), n.Scale.Z())).
		Mul4(n.Rotation())
}
