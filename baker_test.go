package grabdoc

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestMapKindTable(t *testing.T) {
	doc := NewDocument()

	for _, kind := range AllMapKinds {
		m := doc.Props.Maps[kind]
		if m == nil {
			t.Fatalf("Missing descriptor for %v", kind)
		}
		if m.Kind != kind {
			t.Errorf("Descriptor %v carries kind %v", kind, m.Kind)
		}
		if m.Suffix != m.ID() {
			t.Errorf("Default suffix should match id %q, got %q", m.ID(), m.Suffix)
		}
		if !m.Enabled || !m.Visibility {
			t.Errorf("Map %q should start enabled and visible", m.ID())
		}

		back, ok := KindByID(m.ID())
		if !ok || back != kind {
			t.Errorf("KindByID(%q) = %v, %v", m.ID(), back, ok)
		}
	}

	if _, ok := KindByID("bogus"); ok {
		t.Error("Unknown id must not resolve")
	}

	// Curvature and id bake through viewport shading, no node group.
	if doc.Props.Maps[MapCurvature].TreeName() != "" {
		t.Error("Curvature descriptor should declare no tree")
	}
	if doc.Props.Maps[MapID].TreeName() != "" {
		t.Error("Id descriptor should declare no tree")
	}
	if doc.Props.Maps[MapColor].MarmosetCompatible() {
		t.Error("Color is not bakeable through the external bridge")
	}
	if !doc.Props.Maps[MapNormal].MarmosetCompatible() {
		t.Error("Normals are bakeable through the external bridge")
	}
}

func TestApplyRenderSettings(t *testing.T) {
	doc := NewDocument()
	m := doc.Props.Maps[MapOcclusion]

	m.Engine = EngineCycles
	m.SamplesCycles = 64
	m.Contrast = "Very_High_Contrast"
	m.ApplyRenderSettings(doc)

	s := &doc.Settings
	if s.Engine != EngineCycles {
		t.Errorf("Expected cycles engine, got %q", s.Engine)
	}
	if s.CyclesSamples != 64 || s.CyclesPreviewSamples != 64 {
		t.Errorf("Expected 64 cycles samples, got %d/%d", s.CyclesSamples, s.CyclesPreviewSamples)
	}
	if s.Look != "Very High Contrast" {
		t.Errorf("Expected contrast with spaces, got %q", s.Look)
	}
	if s.ViewTransform != "Standard" {
		t.Errorf("Occlusion bakes in standard view transform, got %q", s.ViewTransform)
	}

	m2 := doc.Props.Maps[MapID]
	m2.Engine = EngineWorkbench
	m2.SamplesWorkbench = "32"
	m2.ApplyRenderSettings(doc)
	if s.RenderAA != "32" || s.ViewportAA != "32" {
		t.Errorf("Expected workbench AA pushed, got %q/%q", s.RenderAA, s.ViewportAA)
	}
}

func TestCurvatureSetupCleanup(t *testing.T) {
	doc := NewDocument()
	LoadScene(doc, &SceneDef{BGPlane: true})
	m := doc.Props.Maps[MapCurvature]
	shading := &doc.Shading

	shading.SingleColor = mgl32.Vec3{1, 0, 0}
	shading.CavityType = "SCREEN"
	shading.MatcapSSAODistance = .5

	if err := m.Setup(doc); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	if shading.Light != "FLAT" || shading.ColorType != "SINGLE" {
		t.Error("Curvature bakes flat single-color shading")
	}
	if !shading.ShowCavity || shading.CavityType != "BOTH" {
		t.Error("Curvature bakes with both cavity modes")
	}
	if shading.CavityRidgeFactor != m.Ridge || shading.CurvatureValleyFactor != m.Valley {
		t.Error("Configured ridge/valley factors not applied")
	}
	if shading.SingleColor == (mgl32.Vec3{1, 0, 0}) {
		t.Error("Expected the mid-grey bake color applied")
	}

	m.Cleanup(doc)
	if shading.SingleColor != (mgl32.Vec3{1, 0, 0}) {
		t.Errorf("Single color not restored: %v", shading.SingleColor)
	}
	if shading.CavityType != "SCREEN" || shading.MatcapSSAODistance != .5 {
		t.Error("Cavity state not restored")
	}
	if plane := doc.ObjectByName(BGPlaneName); plane.Color[3] != 1 {
		t.Error("Plane alpha should be reset opaque")
	}
}

func TestOcclusionSetupCleanup(t *testing.T) {
	doc := NewDocument()
	if err := BuildNodeGraphs(doc); err != nil {
		t.Fatalf("BuildNodeGraphs failed: %v", err)
	}
	m := doc.Props.Maps[MapOcclusion]
	s := &doc.Settings
	s.UseOverscan = false
	s.OverscanSize = 3

	if err := m.Setup(doc); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	if !s.UseGTAO || !s.UseOverscan || s.OverscanSize != 10 {
		t.Error("Eevee occlusion bakes with GTAO and overscan")
	}

	m.Cleanup(doc)
	if s.UseGTAO {
		t.Error("GTAO must be off after cleanup")
	}
	if s.UseOverscan || s.OverscanSize != 3 {
		t.Error("Overscan state not restored")
	}
}

func TestHeightSetup_AutoGuide(t *testing.T) {
	doc := NewDocument()
	LoadScene(doc, &SceneDef{
		CameraZ: 10,
		Objects: []ObjectDef{
			{Name: "tall", BoundsMin: mgl32.Vec3{0, 0, -2}, BoundsMax: mgl32.Vec3{1, 1, 3}},
			{Name: "flat", BoundsMin: mgl32.Vec3{0, 0, 0}, BoundsMax: mgl32.Vec3{1, 1, 0}},
		},
	})
	if err := BuildNodeGraphs(doc); err != nil {
		t.Fatalf("BuildNodeGraphs failed: %v", err)
	}
	m := doc.Props.Maps[MapHeight]

	if err := m.Setup(doc); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	if m.Distance != 12 {
		t.Errorf("Expected guide distance 12 (camera 10 to lowest -2), got %v", m.Distance)
	}

	mapRange := doc.recipes[MapHeight].node("mapRange")
	if got := mapRange.Inputs[1].Default.Float; got != -2 {
		t.Errorf("Expected range floor at -2, got %v", got)
	}
	if got := mapRange.Inputs[2].Default.Float; got != 10 {
		t.Errorf("Expected range ceiling at camera depth, got %v", got)
	}
}

func TestHeightSetup_ManualKeepsDistance(t *testing.T) {
	doc := NewDocument()
	LoadScene(doc, &SceneDef{
		CameraZ: 10,
		Objects: []ObjectDef{{Name: "deep", BoundsMin: mgl32.Vec3{0, 0, -50}}},
	})
	if err := BuildNodeGraphs(doc); err != nil {
		t.Fatalf("BuildNodeGraphs failed: %v", err)
	}
	m := doc.Props.Maps[MapHeight]
	m.HeightMethod = "MANUAL"
	m.Distance = 4

	if err := m.Setup(doc); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	if m.Distance != 4 {
		t.Errorf("Manual mode must not recompute the distance, got %v", m.Distance)
	}
}

func TestIDSetup_WorkbenchShading(t *testing.T) {
	doc := NewDocument()
	m := doc.Props.Maps[MapID]
	m.Engine = EngineWorkbench
	m.IDMethod = "MATERIAL"

	if err := m.Setup(doc); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	if doc.Shading.ColorType != "MATERIAL" {
		t.Errorf("Expected id method pushed into shading, got %q", doc.Shading.ColorType)
	}
	if doc.Shading.Light != "FLAT" || doc.Shading.ShowCavity {
		t.Error("Id bakes flat and cavity-free")
	}
}

func TestSetterClamping(t *testing.T) {
	doc := NewDocument()
	if err := BuildNodeGraphs(doc); err != nil {
		t.Fatalf("BuildNodeGraphs failed: %v", err)
	}

	curvature := doc.Props.Maps[MapCurvature]
	curvature.SetRidge(doc, 5)
	if curvature.Ridge != 2 {
		t.Errorf("Ridge clamps at 2, got %v", curvature.Ridge)
	}
	curvature.SetValley(doc, -1)
	if curvature.Valley != 0 {
		t.Errorf("Valley clamps at 0, got %v", curvature.Valley)
	}

	occlusion := doc.Props.Maps[MapOcclusion]
	occlusion.SetGamma(doc, 0)
	if occlusion.Gamma != .001 {
		t.Errorf("Gamma clamps at .001, got %v", occlusion.Gamma)
	}
	occlusion.SetOcclusionDistance(doc, -3)
	if occlusion.Distance != 0 {
		t.Errorf("Occlusion distance clamps at 0, got %v", occlusion.Distance)
	}

	height := doc.Props.Maps[MapHeight]
	height.SetHeightDistance(doc, 0)
	if height.Distance != .01 {
		t.Errorf("Height distance clamps at .01, got %v", height.Distance)
	}
}

func TestSettersWriteRecipeNodes(t *testing.T) {
	doc := NewDocument()
	if err := BuildNodeGraphs(doc); err != nil {
		t.Fatalf("BuildNodeGraphs failed: %v", err)
	}

	normal := doc.Props.Maps[MapNormal]
	normal.SetFlipY(doc, true)
	mult := doc.recipes[MapNormal].node("multiply")
	if mult.Inputs[1].Default.Vector[1] != -.5 {
		t.Error("Flip should write the multiply node immediately")
	}
	normal.SetFlipY(doc, false)
	if mult.Inputs[1].Default.Vector[1] != .5 {
		t.Error("Unflip should write the multiply node immediately")
	}

	occlusion := doc.Props.Maps[MapOcclusion]
	occlusion.SetGamma(doc, 3)
	if got := doc.recipes[MapOcclusion].node("gamma").Inputs[1].Default.Float; got != 3 {
		t.Errorf("Expected gamma node at 3, got %v", got)
	}
	occlusion.SetOcclusionDistance(doc, 7)
	if got := doc.recipes[MapOcclusion].node("ao").Inputs[1].Default.Float; got != 7 {
		t.Errorf("Expected AO distance at 7, got %v", got)
	}

	roughness := doc.Props.Maps[MapRoughness]
	roughness.SetRoughnessInvert(doc, true)
	if got := doc.recipes[MapRoughness].node("invert").Inputs[0].Default.Float; got != 1 {
		t.Errorf("Expected invert factor 1, got %v", got)
	}

	alpha := doc.Props.Maps[MapAlpha]
	alpha.SetAlphaInvert(doc, true)
	if got := doc.recipes[MapAlpha].node("invertMask").Inputs[0].Default.Float; got != 0 {
		t.Errorf("Expected mask factor 0 when inverted, got %v", got)
	}
}

func TestHeightInvert_FlipsRamp(t *testing.T) {
	doc := NewDocument()
	if err := BuildNodeGraphs(doc); err != nil {
		t.Fatalf("BuildNodeGraphs failed: %v", err)
	}
	m := doc.Props.Maps[MapHeight]

	m.SetHeightInvert(doc, true)
	ramp := doc.recipes[MapHeight].node("ramp").Ramp
	if ramp.Elements[0].Color != (mgl32.Vec4{0, 0, 0, 1}) {
		t.Error("Inverted height should start black")
	}
	m.SetHeightInvert(doc, false)
	if ramp.Elements[0].Color != (mgl32.Vec4{1, 1, 1, 1}) {
		t.Error("Regular height should start white")
	}
}

func TestSetUseTexture_PreviewGated(t *testing.T) {
	doc := NewDocument()
	if err := BuildNodeGraphs(doc); err != nil {
		t.Fatalf("BuildNodeGraphs failed: %v", err)
	}
	recipe := doc.recipes[MapNormal]
	tree := recipe.Tree
	m := doc.Props.Maps[MapNormal]

	// Outside a live preview only the property changes.
	if err := m.SetUseTexture(doc, true); err != nil {
		t.Fatalf("SetUseTexture failed: %v", err)
	}
	link := tree.InputLink(recipe.node("groupOutput"), "Shader")
	if link.FromNode != recipe.node("add").ID {
		t.Error("Wiring must not change outside a preview")
	}

	doc.Props.PreviewState = true
	if err := m.SetUseTexture(doc, true); err != nil {
		t.Fatalf("SetUseTexture failed: %v", err)
	}
	link = tree.InputLink(recipe.node("groupOutput"), "Shader")
	if link.FromNode != recipe.node("mixShader").ID {
		t.Error("Expected the texture path wired during preview")
	}

	if err := m.SetUseTexture(doc, false); err != nil {
		t.Fatalf("SetUseTexture failed: %v", err)
	}
	link = tree.InputLink(recipe.node("groupOutput"), "Shader")
	if link.FromNode != recipe.node("add").ID {
		t.Error("Expected the plain vector path wired during preview")
	}
}

func TestSettersTolerateMissingRecipes(t *testing.T) {
	doc := NewDocument()

	// No recipes built: setters update the property and nothing else.
	m := doc.Props.Maps[MapOcclusion]
	m.SetGamma(doc, 5)
	if m.Gamma != 5 {
		t.Errorf("Expected the property updated, got %v", m.Gamma)
	}
	doc.Props.Maps[MapNormal].SetFlipY(doc, true)
	doc.Props.Maps[MapHeight].SetHeightInvert(doc, true)
	doc.Props.Maps[MapAlpha].SetAlphaInvert(doc, true)
	doc.Props.Maps[MapRoughness].SetRoughnessInvert(doc, true)
}

func TestBakeMaps_Filtering(t *testing.T) {
	doc := NewDocument()
	for _, m := range Bakers(doc) {
		m.Enabled = false
	}
	doc.Props.Maps[MapNormal].Enabled = true
	doc.Props.Maps[MapHeight].Enabled = true
	doc.Props.Maps[MapHeight].Visibility = false

	all := BakeMaps(doc, false)
	if len(all) != len(AllMapKinds) {
		t.Errorf("Unfiltered list should carry every map, got %d", len(all))
	}
	enabled := BakeMaps(doc, true)
	if len(enabled) != 1 || enabled[0].Kind != MapNormal {
		t.Errorf("Expected only the normal map enabled, got %+v", enabled)
	}
}
