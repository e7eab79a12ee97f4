package grabdoc

import (
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// NodeID is a stable handle for a node within a tree. Handles are
// returned at creation time and remain valid until the node is removed.
type NodeID string

func makeNodeID() NodeID {
	return NodeID(uuid.NewString())
}

type SocketType int

const (
	SocketShader SocketType = iota
	SocketFloat
	SocketInt
	SocketBool
	SocketVector
	SocketColor
)

func (t SocketType) String() string {
	switch t {
	case SocketShader:
		return "shader"
	case SocketFloat:
		return "float"
	case SocketInt:
		return "int"
	case SocketBool:
		return "bool"
	case SocketVector:
		return "vector"
	case SocketColor:
		return "color"
	default:
		return "unknown"
	}
}

// SocketValue is the tagged union carried by socket defaults.
type SocketValue struct {
	Type   SocketType
	Float  float32
	Int    int
	Bool   bool
	Vector mgl32.Vec3
	Color  mgl32.Vec4
}

func FloatValue(v float32) SocketValue { return SocketValue{Type: SocketFloat, Float: v} }
func IntValue(v int) SocketValue       { return SocketValue{Type: SocketInt, Int: v} }
func BoolValue(v bool) SocketValue     { return SocketValue{Type: SocketBool, Bool: v} }

func VectorValue(x, y, z float32) SocketValue {
	return SocketValue{Type: SocketVector, Vector: mgl32.Vec3{x, y, z}}
}

func ColorValue(r, g, b, a float32) SocketValue {
	return SocketValue{Type: SocketColor, Color: mgl32.Vec4{r, g, b, a}}
}

// coerceValue converts v for assignment into a socket of type dst.
// Identical types pass through; float and int coerce both ways, which
// covers the numeric mismatches that come up when copying material
// defaults across socket boundaries. Anything else is an error.
func coerceValue(dst SocketType, v SocketValue) (SocketValue, error) {
	if v.Type == dst {
		return v, nil
	}
	switch {
	case dst == SocketInt && v.Type == SocketFloat:
		return IntValue(int(v.Float)), nil
	case dst == SocketFloat && v.Type == SocketInt:
		return FloatValue(float32(v.Int)), nil
	}
	return SocketValue{}, fmt.Errorf("cannot assign %s value to %s socket", v.Type, dst)
}

type Socket struct {
	Name    string
	Type    SocketType
	Default SocketValue
}

func (s *Socket) SetDefault(v SocketValue) error {
	coerced, err := coerceValue(s.Type, v)
	if err != nil {
		return fmt.Errorf("socket %q: %w", s.Name, err)
	}
	s.Default = coerced
	return nil
}

func newSocket(def socketDef) *Socket {
	return &Socket{Name: def.name, Type: def.typ, Default: def.def}
}

func cloneSockets(src []*Socket) []*Socket {
	out := make([]*Socket, len(src))
	for i, s := range src {
		c := *s
		out[i] = &c
	}
	return out
}

type RampElement struct {
	Position float32
	Color    mgl32.Vec4
}

// ColorRamp models the host color ramp: a sorted list of color stops.
type ColorRamp struct {
	Elements []*RampElement
}

func newColorRamp() *ColorRamp {
	return &ColorRamp{Elements: []*RampElement{
		{Position: 0, Color: mgl32.Vec4{0, 0, 0, 1}},
		{Position: 1, Color: mgl32.Vec4{1, 1, 1, 1}},
	}}
}

// NewElement inserts a stop at the given position, keeping stops sorted.
func (r *ColorRamp) NewElement(position float32) *RampElement {
	el := &RampElement{Position: position, Color: mgl32.Vec4{1, 1, 1, 1}}
	r.Elements = append(r.Elements, el)
	sort.SliceStable(r.Elements, func(i, j int) bool {
		return r.Elements[i].Position < r.Elements[j].Position
	})
	return el
}

type Node struct {
	ID       NodeID
	Type     string
	Name     string
	Label    string
	Location mgl32.Vec2
	Hidden   bool
	Width    float32
	Height   float32

	Inputs  []*Socket
	Outputs []*Socket

	// Type-specific knobs, meaningful only for the matching Type.
	Operation  string    // ShaderNodeVectorMath, ShaderNodeMixRGB blend type
	DataType   string    // ShaderNodeMix
	VectorType string    // ShaderNodeVectorTransform
	ConvertTo  string    // ShaderNodeVectorTransform
	Samples    int       // ShaderNodeAmbientOcclusion
	Ramp       *ColorRamp // ShaderNodeValToRGB
	Group      *NodeTree  // ShaderNodeGroup
	Text       *TextBlock // NodeFrame
	Image      *Image     // ShaderNodeTexImage
}

// Input returns the first input socket with the given name, or nil.
func (n *Node) Input(name string) *Socket {
	for _, s := range n.Inputs {
		if s.Name == name {
			return s
		}
	}
	return nil
}

func (n *Node) Output(name string) *Socket {
	for _, s := range n.Outputs {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// SetGroup points a group node at its backing tree and mirrors the
// tree's interface onto the node instance, defaults included.
func (n *Node) SetGroup(tree *NodeTree) {
	n.Group = tree
	n.Inputs = cloneSockets(tree.Inputs)
	n.Outputs = cloneSockets(tree.Outputs)
}

// Link connects an output socket to an input socket. An input socket
// carries at most one link.
type Link struct {
	FromNode   NodeID
	FromSocket string
	ToNode     NodeID
	ToSocket   string
}

// NodeTree is a shader node graph: either a material's own graph or a
// named, document-wide group usable as a passthrough node.
type NodeTree struct {
	Name     string
	FakeUser bool

	// Group interface, present only on group trees.
	Inputs  []*Socket
	Outputs []*Socket

	nodes []*Node
	byID  map[NodeID]*Node
	links []*Link
}

func NewNodeTree(name string) *NodeTree {
	return &NodeTree{
		Name: name,
		byID: make(map[NodeID]*Node),
	}
}

// AddNode instantiates a node of the given vocabulary type and returns
// its handle-bearing node. The node gets a unique name derived from the
// type label, the way the host names fresh nodes.
func (t *NodeTree) AddNode(typeName string) (*Node, error) {
	def, err := lookupNodeDef(typeName)
	if err != nil {
		return nil, err
	}
	n := &Node{
		ID:    makeNodeID(),
		Type:  typeName,
		Label: def.label,
	}
	for _, in := range def.inputs {
		n.Inputs = append(n.Inputs, newSocket(in))
	}
	for _, out := range def.outputs {
		n.Outputs = append(n.Outputs, newSocket(out))
	}
	switch typeName {
	case "ShaderNodeValToRGB":
		n.Ramp = newColorRamp()
	case "ShaderNodeAmbientOcclusion":
		n.Samples = 16
	case "NodeGroupInput":
		n.Outputs = cloneSockets(t.Inputs)
	case "NodeGroupOutput":
		n.Inputs = cloneSockets(t.Outputs)
	}
	n.Name = t.uniqueName(def.label)
	t.nodes = append(t.nodes, n)
	t.byID[n.ID] = n
	return n, nil
}

// SetNodeName renames a node, deduplicating with numeric suffixes the
// way the host does, so repeated passthrough insertions stay findable
// by prefix.
func (t *NodeTree) SetNodeName(n *Node, name string) {
	n.Name = ""
	n.Name = t.uniqueName(name)
}

func (t *NodeTree) uniqueName(base string) string {
	if !t.nameTaken(base) {
		return base
	}
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s.%03d", base, i)
		if !t.nameTaken(candidate) {
			return candidate
		}
	}
}

func (t *NodeTree) nameTaken(name string) bool {
	for _, n := range t.nodes {
		if n.Name == name {
			return true
		}
	}
	return false
}

func (t *NodeTree) Nodes() []*Node {
	return t.nodes
}

func (t *NodeTree) Node(id NodeID) *Node {
	return t.byID[id]
}

// NodeByName returns the first node with the given name, or nil.
func (t *NodeTree) NodeByName(name string) *Node {
	for _, n := range t.nodes {
		if n.Name == name {
			return n
		}
	}
	return nil
}

// RemoveNode deletes a node and every link touching it.
func (t *NodeTree) RemoveNode(id NodeID) {
	n, ok := t.byID[id]
	if !ok {
		return
	}
	delete(t.byID, id)
	for i, other := range t.nodes {
		if other == n {
			t.nodes = append(t.nodes[:i], t.nodes[i+1:]...)
			break
		}
	}
	kept := t.links[:0]
	for _, l := range t.links {
		if l.FromNode != id && l.ToNode != id {
			kept = append(kept, l)
		}
	}
	t.links = kept
}

// LinkSockets connects from's output socket to to's input socket,
// displacing any link already driving that input. Both sockets must
// exist; a miss is a vocabulary-level lookup failure.
func (t *NodeTree) LinkSockets(from *Node, fromSocket string, to *Node, toSocket string) (*Link, error) {
	if from == nil || to == nil {
		return nil, fmt.Errorf("link in tree %q: nil node", t.Name)
	}
	if from.Output(fromSocket) == nil {
		return nil, fmt.Errorf("node %q has no output socket %q", from.Name, fromSocket)
	}
	if to.Input(toSocket) == nil {
		return nil, fmt.Errorf("node %q has no input socket %q", to.Name, toSocket)
	}
	if existing := t.InputLink(to, toSocket); existing != nil {
		t.RemoveLink(existing)
	}
	l := &Link{
		FromNode:   from.ID,
		FromSocket: fromSocket,
		ToNode:     to.ID,
		ToSocket:   toSocket,
	}
	t.links = append(t.links, l)
	return l, nil
}

func (t *NodeTree) RemoveLink(l *Link) {
	for i, other := range t.links {
		if other == l {
			t.links = append(t.links[:i], t.links[i+1:]...)
			return
		}
	}
}

// InputLink returns the link currently driving the named input socket
// of the given node, or nil.
func (t *NodeTree) InputLink(n *Node, socket string) *Link {
	for _, l := range t.links {
		if l.ToNode == n.ID && l.ToSocket == socket {
			return l
		}
	}
	return nil
}

// OutputLinks returns every link departing the named output socket.
func (t *NodeTree) OutputLinks(n *Node, socket string) []*Link {
	var out []*Link
	for _, l := range t.links {
		if l.FromNode == n.ID && l.FromSocket == socket {
			out = append(out, l)
		}
	}
	return out
}

func (t *NodeTree) Links() []*Link {
	return t.links
}

// NewInterfaceInput declares a named input socket on a group tree.
// Must run before group boundary nodes are instantiated.
func (t *NodeTree) NewInterfaceInput(name string, typ SocketType) *Socket {
	s := &Socket{Name: name, Type: typ, Default: zeroValue(typ)}
	t.Inputs = append(t.Inputs, s)
	return s
}

func (t *NodeTree) NewInterfaceOutput(name string, typ SocketType) *Socket {
	s := &Socket{Name: name, Type: typ, Default: zeroValue(typ)}
	t.Outputs = append(t.Outputs, s)
	return s
}

func zeroValue(typ SocketType) SocketValue {
	switch typ {
	case SocketColor:
		return ColorValue(0, 0, 0, 1)
	default:
		return SocketValue{Type: typ}
	}
}
