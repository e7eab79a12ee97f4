package grabdoc

import (
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// MapKind is the closed set of bake map types.
type MapKind int

const (
	MapNormal MapKind = iota
	MapCurvature
	MapOcclusion
	MapHeight
	MapAlpha
	MapID
	MapColor
	MapEmissive
	MapRoughness
	MapMetallic
)

// AllMapKinds lists every kind in descriptor order.
var AllMapKinds = []MapKind{
	MapNormal,
	MapCurvature,
	MapOcclusion,
	MapHeight,
	MapAlpha,
	MapID,
	MapColor,
	MapEmissive,
	MapRoughness,
	MapMetallic,
}

// Node group names, one per recipe-bearing kind.
const (
	NormalNodeName    = "GD_Normal"
	CurvatureNodeName = "GD_Curvature"
	OcclusionNodeName = "GD_Occlusion"
	HeightNodeName    = "GD_Height"
	AlphaNodeName     = "GD_Alpha"
	ColorNodeName     = "GD_Color"
	EmissiveNodeName  = "GD_Emissive"
	RoughnessNodeName = "GD_Roughness"
	MetallicNodeName  = "GD_Metallic"
)

type mapDefaults struct {
	id                 string
	name               string
	treeName           string // empty when the map needs no node group
	colorSpace         string
	viewTransform      string
	marmosetCompatible bool
	engines            []Engine
}

var mapDefaultsTable = map[MapKind]mapDefaults{
	MapNormal: {
		id: "normals", name: "Normals", treeName: NormalNodeName,
		colorSpace: "sRGB", viewTransform: "Standard", marmosetCompatible: true,
		engines: []Engine{EngineEevee, EngineCycles},
	},
	MapCurvature: {
		// The curvature descriptor intentionally declares no node
		// group even though a curvature recipe exists; the Workbench
		// cavity shading does the work for this map.
		id: "curvature", name: "Curvature",
		colorSpace: "sRGB", viewTransform: "Standard", marmosetCompatible: true,
		engines: []Engine{EngineWorkbench},
	},
	MapOcclusion: {
		id: "occlusion", name: "Ambient Occlusion", treeName: OcclusionNodeName,
		colorSpace: "sRGB", viewTransform: "Standard", marmosetCompatible: true,
		engines: []Engine{EngineEevee, EngineCycles},
	},
	MapHeight: {
		id: "height", name: "Height", treeName: HeightNodeName,
		colorSpace: "sRGB", viewTransform: "Standard", marmosetCompatible: true,
		engines: []Engine{EngineEevee, EngineCycles},
	},
	MapAlpha: {
		id: "alpha", name: "Alpha", treeName: AlphaNodeName,
		colorSpace: "sRGB", viewTransform: "Standard", marmosetCompatible: true,
		engines: []Engine{EngineEevee, EngineCycles},
	},
	MapID: {
		id: "id", name: "Material ID",
		colorSpace: "sRGB", viewTransform: "Standard", marmosetCompatible: true,
		engines: []Engine{EngineWorkbench},
	},
	MapColor: {
		id: "color", name: "Base Color", treeName: ColorNodeName,
		colorSpace: "sRGB", viewTransform: "Standard",
		engines: []Engine{EngineEevee, EngineCycles},
	},
	MapEmissive: {
		id: "emissive", name: "Emissive", treeName: EmissiveNodeName,
		colorSpace: "sRGB", viewTransform: "Standard",
		engines: []Engine{EngineEevee, EngineCycles},
	},
	MapRoughness: {
		id: "roughness", name: "Roughness", treeName: RoughnessNodeName,
		colorSpace: "sRGB", viewTransform: "Standard",
		engines: []Engine{EngineEevee, EngineCycles},
	},
	MapMetallic: {
		id: "metalness", name: "Metalness", treeName: MetallicNodeName,
		colorSpace: "sRGB", viewTransform: "Standard",
		engines: []Engine{EngineEevee, EngineCycles},
	},
}

func (k MapKind) String() string {
	return mapDefaultsTable[k].id
}

// KindByID resolves a configured map id back to its kind.
func KindByID(id string) (MapKind, bool) {
	for _, kind := range AllMapKinds {
		if mapDefaultsTable[kind].id == id {
			return kind, true
		}
	}
	return 0, false
}

// BakeMap is one configurable bake map descriptor. Kind-specific
// parameter fields are meaningful only for the matching kind.
type BakeMap struct {
	Kind MapKind `json:"-"`

	Enabled    bool   `json:"enabled"`
	Visibility bool   `json:"visibility"`
	Reimport   bool   `json:"reimport"`
	Suffix     string `json:"suffix"`

	Engine           Engine `json:"engine"`
	SamplesEevee     int    `json:"samples_eevee"`
	SamplesCycles    int    `json:"samples_cycles"`
	SamplesWorkbench string `json:"samples_workbench"`
	Contrast         string `json:"contrast"`

	// Normal
	FlipY      bool `json:"flip_y,omitempty"`
	UseTexture bool `json:"use_texture,omitempty"`

	// Curvature
	Ridge  float32 `json:"ridge,omitempty"`
	Valley float32 `json:"valley,omitempty"`

	// Occlusion intensity (gamma curve) and AO ray distance; Distance
	// doubles as the manual 0-1 range for the height map.
	Gamma    float32 `json:"gamma,omitempty"`
	Distance float32 `json:"distance,omitempty"`

	// Height and alpha/roughness inversion
	Invert       bool   `json:"invert,omitempty"`
	HeightMethod string `json:"height_method,omitempty"` // "AUTO" or "MANUAL"

	// ID
	IDMethod string `json:"id_method,omitempty"` // "RANDOM", "MATERIAL", "VERTEX"

	// State saved by Setup, restored by Cleanup.
	savedCavityType            string
	savedCavityRidgeFactor     float32
	savedCavityValleyFactor    float32
	savedCurvatureRidgeFactor  float32
	savedCurvatureValleyFactor float32
	savedSSAODistance          float32
	savedSingleColor           mgl32.Vec3
	savedUseOverscan           bool
	savedOverscanSize          float32
}

func newBakeMap(kind MapKind) *BakeMap {
	defs := mapDefaultsTable[kind]
	m := &BakeMap{
		Kind:             kind,
		Enabled:          true,
		Visibility:       true,
		Suffix:           defs.id,
		Engine:           defs.engines[0],
		SamplesEevee:     128,
		SamplesCycles:    32,
		SamplesWorkbench: "16",
		Contrast:         "None",
	}
	switch kind {
	case MapNormal:
		m.UseTexture = true
	case MapCurvature:
		m.Ridge = 2
		m.Valley = 1.5
	case MapOcclusion:
		m.Gamma = 1
		m.Distance = 1
	case MapHeight:
		m.Distance = 1
		m.HeightMethod = "AUTO"
	case MapID:
		m.IDMethod = "RANDOM"
	}
	return m
}

func (m *BakeMap) defaults() mapDefaults {
	return mapDefaultsTable[m.Kind]
}

// ID returns the map's configured identity string.
func (m *BakeMap) ID() string {
	return m.defaults().id
}

// DisplayName returns the human-readable map name.
func (m *BakeMap) DisplayName() string {
	return m.defaults().name
}

// TreeName returns the name of the map's node group, or "" when the
// map bakes without shader manipulation.
func (m *BakeMap) TreeName() string {
	return m.defaults().treeName
}

// SupportedEngines returns the engines this map is meaningful under.
// Selecting an engine outside this set is not rejected here.
func (m *BakeMap) SupportedEngines() []Engine {
	return m.defaults().engines
}

// MarmosetCompatible reports whether the external baker bridge can
// produce this map without shader manipulation.
func (m *BakeMap) MarmosetCompatible() bool {
	return m.defaults().marmosetCompatible
}

// ApplyRenderSettings pushes the map's engine, sampling and contrast
// choice into the document render settings. Called both explicitly
// from Setup and from property-change callbacks during interactive
// preview.
//
// TODO: decide whether this should early-return outside of preview
// state; it currently always applies.
func (m *BakeMap) ApplyRenderSettings(doc *Document) {
	s := &doc.Settings
	s.Engine = m.Engine

	switch m.Engine {
	case EngineEevee:
		s.TAARenderSamples = m.SamplesEevee
		s.TAASamples = m.SamplesEevee
	case EngineCycles:
		s.CyclesSamples = m.SamplesCycles
		s.CyclesPreviewSamples = m.SamplesCycles
	case EngineWorkbench:
		s.RenderAA = m.SamplesWorkbench
		s.ViewportAA = m.SamplesWorkbench
	}

	defs := m.defaults()
	setColorManagement(s, defs.colorSpace, defs.viewTransform)
	s.Look = strings.ReplaceAll(m.Contrast, "_", " ")
}

// Setup applies the map's render configuration and any kind-specific
// scene state, saving whatever Cleanup must later revert.
func (m *BakeMap) Setup(doc *Document) error {
	m.ApplyRenderSettings(doc)

	switch m.Kind {
	case MapNormal:
		return m.rewireNormalRecipe(doc)

	case MapCurvature:
		shading := &doc.Shading
		shading.Light = "FLAT"
		shading.ColorType = "SINGLE"

		m.savedCavityType = shading.CavityType
		m.savedCavityRidgeFactor = shading.CavityRidgeFactor
		m.savedCurvatureRidgeFactor = shading.CurvatureRidgeFactor
		m.savedCavityValleyFactor = shading.CavityValleyFactor
		m.savedCurvatureValleyFactor = shading.CurvatureValleyFactor
		m.savedSSAODistance = shading.MatcapSSAODistance
		m.savedSingleColor = shading.SingleColor

		shading.ShowCavity = true
		shading.CavityType = "BOTH"
		shading.CavityRidgeFactor = m.Ridge
		shading.CurvatureRidgeFactor = m.Ridge
		shading.CurvatureValleyFactor = m.Valley
		shading.CavityValleyFactor = 0
		shading.SingleColor = mgl32.Vec3{.214041, .214041, .214041}
		shading.MatcapSSAODistance = .075

	case MapOcclusion:
		s := &doc.Settings
		m.savedUseOverscan = s.UseOverscan
		m.savedOverscanSize = s.OverscanSize
		if s.Engine == EngineEevee {
			s.UseGTAO = true
			// Overscan helps with screenspace effects.
			s.UseOverscan = true
			s.OverscanSize = 10
		}

	case MapHeight:
		if m.HeightMethod == "AUTO" {
			SetGuideHeight(doc, RenderedObjects(doc))
		}

	case MapID:
		if doc.Settings.Engine == EngineWorkbench {
			shading := &doc.Shading
			shading.ShowCavity = false
			shading.Light = "FLAT"
			shading.ColorType = m.IDMethod
		}
	}
	return nil
}

// Cleanup reverts the kind-specific state saved by Setup.
func (m *BakeMap) Cleanup(doc *Document) {
	switch m.Kind {
	case MapCurvature:
		shading := &doc.Shading
		shading.CavityRidgeFactor = m.savedCavityRidgeFactor
		shading.CurvatureRidgeFactor = m.savedCurvatureRidgeFactor
		shading.CavityValleyFactor = m.savedCavityValleyFactor
		shading.CurvatureValleyFactor = m.savedCurvatureValleyFactor
		shading.SingleColor = m.savedSingleColor
		shading.CavityType = m.savedCavityType
		shading.MatcapSSAODistance = m.savedSSAODistance

		if plane := doc.ObjectByName(BGPlaneName); plane != nil {
			plane.Color[3] = 1
		}

	case MapOcclusion:
		s := &doc.Settings
		s.UseOverscan = m.savedUseOverscan
		s.OverscanSize = m.savedOverscanSize
		s.UseGTAO = false
	}
}

// rewireNormalRecipe switches the normal recipe between texture
// normals (alpha-masked mix shader path) and plain geometry normals.
func (m *BakeMap) rewireNormalRecipe(doc *Document) error {
	recipe, ok := doc.recipes[MapNormal]
	if !ok {
		doc.Log.Debugf("normal recipe not built; skipping rewire")
		return nil
	}
	tree := recipe.Tree
	vecTransform := recipe.node("vectorTransform")
	groupOutput := recipe.node("groupOutput")

	if m.UseTexture {
		if _, err := tree.LinkSockets(recipe.node("bevel"), "Normal", vecTransform, "Vector"); err != nil {
			return err
		}
		if _, err := tree.LinkSockets(recipe.node("mixShader"), "Shader", groupOutput, "Shader"); err != nil {
			return err
		}
	} else {
		if _, err := tree.LinkSockets(recipe.node("bevelRounded"), "Normal", vecTransform, "Vector"); err != nil {
			return err
		}
		if _, err := tree.LinkSockets(recipe.node("add"), "Vector", groupOutput, "Shader"); err != nil {
			return err
		}
	}
	return nil
}

// SetFlipY flips the normal map Y axis, writing the recipe's multiply
// node in place so a live preview updates immediately.
func (m *BakeMap) SetFlipY(doc *Document, flip bool) {
	m.FlipY = flip
	recipe, ok := doc.recipes[MapNormal]
	if !ok {
		return
	}
	mult := recipe.node("multiply")
	y := float32(.5)
	if flip {
		y = -.5
	}
	mult.Inputs[1].Default.Vector[1] = y
}

// SetUseTexture toggles texture normals; the recipe is rewired only
// while a live preview is active.
func (m *BakeMap) SetUseTexture(doc *Document, use bool) error {
	m.UseTexture = use
	if !doc.Props.PreviewState {
		return nil
	}
	return m.rewireNormalRecipe(doc)
}

// SetRidge and SetValley update the curvature factors, pushing into
// the viewport shading while a live preview is active.
func (m *BakeMap) SetRidge(doc *Document, v float32) {
	m.Ridge = mgl32.Clamp(v, 0, 2)
	m.pushCurvature(doc)
}

func (m *BakeMap) SetValley(doc *Document, v float32) {
	m.Valley = mgl32.Clamp(v, 0, 2)
	m.pushCurvature(doc)
}

func (m *BakeMap) pushCurvature(doc *Document) {
	if !doc.Props.PreviewState {
		return
	}
	shading := &doc.Shading
	shading.CavityRidgeFactor = m.Ridge
	shading.CurvatureRidgeFactor = m.Ridge
	shading.CurvatureValleyFactor = m.Valley
}

// SetGamma sets the occlusion intensity, written straight into the
// recipe's gamma node.
func (m *BakeMap) SetGamma(doc *Document, v float32) {
	m.Gamma = mgl32.Clamp(v, .001, 10)
	recipe, ok := doc.recipes[MapOcclusion]
	if !ok {
		return
	}
	recipe.node("gamma").Inputs[1].Default = FloatValue(m.Gamma)
}

// SetOcclusionDistance sets how far AO rays travel.
func (m *BakeMap) SetOcclusionDistance(doc *Document, v float32) {
	m.Distance = max(v, 0)
	recipe, ok := doc.recipes[MapOcclusion]
	if !ok {
		return
	}
	recipe.node("ao").Inputs[1].Default = FloatValue(m.Distance)
}

// SetHeightMethod switches between automatic and manual height
// bounds. Switching to AUTO while previewing recomputes the bounds
// from scene geometry.
func (m *BakeMap) SetHeightMethod(doc *Document, method string) {
	m.HeightMethod = method
	if !doc.Props.PreviewState {
		return
	}
	if method == "AUTO" {
		SetGuideHeight(doc, RenderedObjects(doc))
	} else {
		m.UpdateGuide(doc)
	}
}

// SetHeightDistance sets the manual 0-1 height range.
func (m *BakeMap) SetHeightDistance(doc *Document, v float32) {
	m.Distance = mgl32.Clamp(v, .01, 100)
	m.UpdateGuide(doc)
}

// SetHeightInvert flips the height ramp.
func (m *BakeMap) SetHeightInvert(doc *Document, invert bool) {
	m.Invert = invert
	m.UpdateGuide(doc)
}

// UpdateGuide writes the height recipe's map range bounds and ramp
// colors from the camera position, guide distance and inversion flag.
func (m *BakeMap) UpdateGuide(doc *Document) {
	recipe, ok := doc.recipes[MapHeight]
	if !ok {
		return
	}
	cameraZ := doc.Camera.Location[2]

	mapRange := recipe.node("mapRange")
	mapRange.Inputs[1].Default = FloatValue(cameraZ - m.Distance)
	mapRange.Inputs[2].Default = FloatValue(cameraZ)

	ramp := recipe.node("ramp")
	if m.Invert {
		ramp.Ramp.Elements[0].Color = mgl32.Vec4{0, 0, 0, 1}
		ramp.Ramp.Elements[1].Color = mgl32.Vec4{1, 1, 1, 1}
	} else {
		ramp.Ramp.Elements[0].Color = mgl32.Vec4{1, 1, 1, 1}
		ramp.Ramp.Elements[1].Color = mgl32.Vec4{0, 0, 0, 1}
	}
}

// SetAlphaInvert flips the alpha mask and refreshes the recipe's
// camera-depth bounds.
func (m *BakeMap) SetAlphaInvert(doc *Document, invert bool) {
	m.Invert = invert
	recipe, ok := doc.recipes[MapAlpha]
	if !ok {
		return
	}
	cameraZ := doc.Camera.Location[2]

	mapRange := recipe.node("mapRange")
	mapRange.Inputs[1].Default = FloatValue(cameraZ - .00001)
	mapRange.Inputs[2].Default = FloatValue(cameraZ)

	fac := float32(1)
	if invert {
		fac = 0
	}
	recipe.node("invertMask").Inputs[0].Default = FloatValue(fac)
}

// SetRoughnessInvert flips roughness into glossiness.
func (m *BakeMap) SetRoughnessInvert(doc *Document, invert bool) {
	m.Invert = invert
	recipe, ok := doc.recipes[MapRoughness]
	if !ok {
		return
	}
	fac := float32(0)
	if invert {
		fac = 1
	}
	recipe.node("invert").Inputs[0].Default = FloatValue(fac)
}

// Bakers returns every configured bake map descriptor, in declaration
// order. A kind missing from the scene properties is skipped with a
// diagnostic rather than treated as fatal.
func Bakers(doc *Document) []*BakeMap {
	bakers := make([]*BakeMap, 0, len(AllMapKinds))
	for _, kind := range AllMapKinds {
		m, ok := doc.Props.Maps[kind]
		if !ok {
			doc.Log.Warnf("could not find baker %q", kind)
			continue
		}
		bakers = append(bakers, m)
	}
	return bakers
}

// BakeMaps returns the configured maps, filtered to those enabled and
// visible when enabledOnly is set.
func BakeMaps(doc *Document, enabledOnly bool) []*BakeMap {
	var maps []*BakeMap
	for _, m := range Bakers(doc) {
		if enabledOnly && !(m.Enabled && m.Visibility) {
			continue
		}
		maps = append(maps, m)
	}
	return maps
}
