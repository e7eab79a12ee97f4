package grabdoc

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Well-known datablock names. Everything this package creates inside a
// document carries the GD_ prefix so teardown can find its own work.
const (
	gdPrefix = "GD_"

	BGPlaneName          = "GD_Background Plane"
	TrimCameraName       = "GD_Trim Camera"
	ScratchMaterialName  = "GD_Material (do not touch contents)"
	ReimportMaterialName = "GD_Reimport"

	ngWarningTextName = "_grabdoc_ng_warning"
	ngWarningText     = "This node group is managed by GrabDoc and is " +
		"removed automatically after a bake. Changes made here will be lost."
)

// Image is an image datablock. Pixel dimensions are filled in when the
// file could be decoded; a zero size means the image is referenced by
// path only.
type Image struct {
	Name       string
	Filepath   string
	Width      int
	Height     int
	Colorspace string // "sRGB" or "Non-Color"
}

// TextBlock is a free-floating text datablock, used for the note frame
// placed next to spliced passthrough nodes.
type TextBlock struct {
	Name string
	body string
}

func (t *TextBlock) Clear()         { t.body = "" }
func (t *TextBlock) Write(s string) { t.body += s }
func (t *TextBlock) Body() string   { return t.body }

// Material owns a shader node tree. A fresh material with nodes
// enabled is seeded with a Principled BSDF wired into a material
// output, matching host behavior.
type Material struct {
	Name        string
	UseNodes    bool
	BlendMethod string // "OPAQUE" or "CLIP"
	Tree        *NodeTree
}

// EnableNodes turns on the node tree, seeding the default BSDF->output
// wiring on first use.
func (m *Material) EnableNodes() {
	if m.UseNodes && m.Tree != nil {
		return
	}
	m.UseNodes = true
	m.Tree = NewNodeTree(m.Name)
	bsdf, _ := m.Tree.AddNode("ShaderNodeBsdfPrincipled")
	output, _ := m.Tree.AddNode("ShaderNodeOutputMaterial")
	m.Tree.LinkSockets(bsdf, "BSDF", output, "Surface")
}

// Object is a renderable scene object. Slots may hold nil entries:
// an intentionally empty material slot used for geometry masking.
type Object struct {
	Name           string
	Slots          []*Material
	ActiveMaterial *Material
	HideRender     bool
	HideViewport   bool
	Location       mgl32.Vec3
	BoundsMin      mgl32.Vec3
	BoundsMax      mgl32.Vec3
	Color          mgl32.Vec4
}

// HasEmptySlot reports whether any slot exists but holds no material.
func (o *Object) HasEmptySlot() bool {
	for _, m := range o.Slots {
		if m == nil {
			return true
		}
	}
	return false
}

// World mirrors the host's world datablock; only its node toggle
// matters to the bake process.
type World struct {
	UseNodes bool
}

// Document is the mutable scene document the bake process operates on.
// Single-threaded by contract: concurrent bakes on one document would
// corrupt the snapshot.
type Document struct {
	Settings RenderSettings
	Shading  SceneShading
	Props    SceneProps

	ViewLayerUse bool
	World        *World
	Camera       *Object

	objects    []*Object
	materials  []*Material
	materialIx map[string]*Material
	nodeGroups map[string]*NodeTree
	groupOrder []string
	Images     map[string]*Image
	Texts      map[string]*TextBlock

	// Recipe handles registered by BuildNodeGraphs, keyed by map kind.
	recipes map[MapKind]*Recipe

	Log Logger
}

func NewDocument() *Document {
	doc := &Document{
		Settings:     defaultRenderSettings(),
		Shading:      defaultSceneShading(),
		ViewLayerUse: true,
		World:        &World{UseNodes: true},
		materialIx:   make(map[string]*Material),
		nodeGroups:   make(map[string]*NodeTree),
		Images:       make(map[string]*Image),
		Texts:        make(map[string]*TextBlock),
		recipes:      make(map[MapKind]*Recipe),
		Log:          NewNopLogger(),
	}
	doc.Props = defaultSceneProps()
	doc.Camera = &Object{
		Name:     TrimCameraName,
		Location: mgl32.Vec3{0, 0, 15},
	}
	return doc
}

func (doc *Document) Objects() []*Object {
	return doc.objects
}

func (doc *Document) AddObject(ob *Object) *Object {
	doc.objects = append(doc.objects, ob)
	return ob
}

func (doc *Document) ObjectByName(name string) *Object {
	for _, ob := range doc.objects {
		if ob.Name == name {
			return ob
		}
	}
	return nil
}

func (doc *Document) Materials() []*Material {
	return doc.materials
}

func (doc *Document) MaterialByName(name string) *Material {
	return doc.materialIx[name]
}

func (doc *Document) NewMaterial(name string) *Material {
	m := &Material{Name: name, BlendMethod: "OPAQUE"}
	doc.materials = append(doc.materials, m)
	doc.materialIx[name] = m
	return m
}

func (doc *Document) RemoveMaterial(m *Material) {
	delete(doc.materialIx, m.Name)
	for i, other := range doc.materials {
		if other == m {
			doc.materials = append(doc.materials[:i], doc.materials[i+1:]...)
			return
		}
	}
}

// NodeGroup returns the named document-wide node group, or nil.
func (doc *Document) NodeGroup(name string) *NodeTree {
	return doc.nodeGroups[name]
}

// NodeGroups returns the document's node groups in creation order.
func (doc *Document) NodeGroups() []*NodeTree {
	out := make([]*NodeTree, 0, len(doc.groupOrder))
	for _, name := range doc.groupOrder {
		out = append(out, doc.nodeGroups[name])
	}
	return out
}

func (doc *Document) NewNodeGroup(name string) *NodeTree {
	tree := NewNodeTree(name)
	doc.nodeGroups[name] = tree
	doc.groupOrder = append(doc.groupOrder, name)
	return tree
}

func (doc *Document) RemoveNodeGroup(name string) {
	if _, ok := doc.nodeGroups[name]; !ok {
		return
	}
	delete(doc.nodeGroups, name)
	for i, n := range doc.groupOrder {
		if n == name {
			doc.groupOrder = append(doc.groupOrder[:i], doc.groupOrder[i+1:]...)
			return
		}
	}
}

// TextBlockByName fetches or lazily creates a text datablock.
func (doc *Document) TextBlockByName(name string) *TextBlock {
	if t, ok := doc.Texts[name]; ok {
		return t
	}
	t := &TextBlock{Name: name}
	doc.Texts[name] = t
	return t
}

// SceneDef declares the initial contents of a test or working scene.
type SceneDef struct {
	Objects []ObjectDef
	BGPlane bool
	CameraZ float32
}

// ObjectDef declares one object and the materials assigned to its
// slots. An empty string in Materials produces an empty slot.
type ObjectDef struct {
	Name      string
	Materials []string
	BoundsMin mgl32.Vec3
	BoundsMax mgl32.Vec3
}

// LoadScene populates a document from a SceneDef, creating materials
// on first reference.
func LoadScene(doc *Document, def *SceneDef) {
	if def.CameraZ != 0 {
		doc.Camera.Location[2] = def.CameraZ
	}
	if def.BGPlane {
		doc.AddObject(&Object{
			Name:      BGPlaneName,
			BoundsMin: mgl32.Vec3{-1, -1, 0},
			BoundsMax: mgl32.Vec3{1, 1, 0},
		})
	}
	for _, od := range def.Objects {
		ob := &Object{
			Name:      od.Name,
			BoundsMin: od.BoundsMin,
			BoundsMax: od.BoundsMax,
		}
		for _, matName := range od.Materials {
			if matName == "" {
				ob.Slots = append(ob.Slots, nil)
				continue
			}
			mat := doc.MaterialByName(matName)
			if mat == nil {
				mat = doc.NewMaterial(matName)
				mat.EnableNodes()
			}
			ob.Slots = append(ob.Slots, mat)
			if ob.ActiveMaterial == nil {
				ob.ActiveMaterial = mat
			}
		}
		doc.AddObject(ob)
	}
}
