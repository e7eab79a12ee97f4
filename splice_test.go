package grabdoc

import (
	"strings"
	"testing"
)

// testScene builds a document with recipes ready and one object per
// named material. Materials get the default BSDF wiring.
func testScene(t *testing.T, objects ...ObjectDef) *Document {
	t.Helper()
	doc := NewDocument()
	LoadScene(doc, &SceneDef{Objects: objects})
	if err := BuildNodeGraphs(doc); err != nil {
		t.Fatalf("BuildNodeGraphs failed: %v", err)
	}
	return doc
}

func countPrefixed(tree *NodeTree, prefix string) int {
	n := 0
	for _, node := range tree.Nodes() {
		if strings.HasPrefix(node.Name, prefix) {
			n++
		}
	}
	return n
}

func TestApplyNodeToObjects_SplicesPassthrough(t *testing.T) {
	doc := testScene(t, ObjectDef{Name: "cube", Materials: []string{"steel"}})
	ob := doc.ObjectByName("cube")

	result, err := ApplyNodeToObjects(doc, ColorNodeName, []*Object{ob})
	if err != nil {
		t.Fatalf("ApplyNodeToObjects failed: %v", err)
	}

	tree := doc.MaterialByName("steel").Tree
	passthrough := tree.NodeByName(ColorNodeName)
	if passthrough == nil {
		t.Fatal("Expected a passthrough group node in the material")
	}
	if passthrough.Group != doc.NodeGroup(ColorNodeName) {
		t.Error("Passthrough should point at the shared recipe group")
	}

	output := tree.NodeByName("Material Output")
	link := tree.InputLink(output, "Surface")
	if link == nil || link.FromNode != passthrough.ID {
		t.Error("Expected the passthrough driving the material output")
	}

	// The original surface source is rerouted onto the passthrough so
	// teardown can restore it.
	bsdf := tree.NodeByName("Principled BSDF")
	reroute := tree.InputLink(passthrough, "Surface")
	if reroute == nil || reroute.FromNode != bsdf.ID {
		t.Error("Expected the original BSDF captured on the passthrough")
	}

	// Base Color has no incoming link, so its value is copied and the
	// missing link is reported.
	if got := passthrough.Input("Base Color").Default; got != bsdf.Input("Base Color").Default {
		t.Errorf("Expected the BSDF base color copied onto the passthrough, got %+v", got)
	}
	if len(result.Misses) != 1 || result.Misses[0].Material != "steel" || result.Misses[0].Channel != "Base Color" {
		t.Errorf("Expected one Base Color miss for steel, got %+v", result.Misses)
	}
}

func TestApplyNodeToObjects_SharesChannelLink(t *testing.T) {
	doc := testScene(t, ObjectDef{Name: "cube", Materials: []string{"steel"}})
	tree := doc.MaterialByName("steel").Tree
	bsdf := tree.NodeByName("Principled BSDF")

	// Drive Base Color with a texture so the splice shares the link
	// instead of copying a value.
	tex, _ := tree.AddNode("ShaderNodeTexImage")
	tree.LinkSockets(tex, "Color", bsdf, "Base Color")

	result, err := ApplyNodeToObjects(doc, ColorNodeName, []*Object{doc.ObjectByName("cube")})
	if err != nil {
		t.Fatalf("ApplyNodeToObjects failed: %v", err)
	}
	if !result.OK() {
		t.Errorf("Expected no misses with a linked channel, got %+v", result.Misses)
	}

	passthrough := tree.NodeByName(ColorNodeName)
	link := tree.InputLink(passthrough, "Base Color")
	if link == nil || link.FromNode != tex.ID {
		t.Error("Expected the texture link shared into the passthrough")
	}
}

func TestApplyNodeToObjects_Idempotent(t *testing.T) {
	doc := testScene(t, ObjectDef{Name: "cube", Materials: []string{"steel"}})
	ob := doc.ObjectByName("cube")

	if _, err := ApplyNodeToObjects(doc, RoughnessNodeName, []*Object{ob}); err != nil {
		t.Fatalf("first splice failed: %v", err)
	}
	tree := doc.MaterialByName("steel").Tree
	before := len(tree.Nodes())

	if _, err := ApplyNodeToObjects(doc, RoughnessNodeName, []*Object{ob}); err != nil {
		t.Fatalf("second splice failed: %v", err)
	}
	if len(tree.Nodes()) != before {
		t.Errorf("Second splice must be a no-op: had %d nodes, now %d", before, len(tree.Nodes()))
	}
}

func TestApplyNodeToObjects_SharedMaterialSplicedOnce(t *testing.T) {
	doc := testScene(t,
		ObjectDef{Name: "a", Materials: []string{"shared"}},
		ObjectDef{Name: "b", Materials: []string{"shared"}},
	)
	objects := []*Object{doc.ObjectByName("a"), doc.ObjectByName("b")}

	if _, err := ApplyNodeToObjects(doc, MetallicNodeName, objects); err != nil {
		t.Fatalf("ApplyNodeToObjects failed: %v", err)
	}
	tree := doc.MaterialByName("shared").Tree
	if got := countPrefixed(tree, MetallicNodeName); got != 2 {
		// One passthrough plus its note frame.
		t.Errorf("Expected one passthrough and one frame, got %d prefixed nodes", got)
	}
}

func TestApplyNodeToObjects_EmptySlots(t *testing.T) {
	doc := testScene(t,
		ObjectDef{Name: "bare"},
		ObjectDef{Name: "masked", Materials: []string{"steel", ""}},
	)
	bare := doc.ObjectByName("bare")
	masked := doc.ObjectByName("masked")

	result, err := ApplyNodeToObjects(doc, EmissiveNodeName, []*Object{bare, masked})
	if err != nil {
		t.Fatalf("ApplyNodeToObjects failed: %v", err)
	}

	scratch := doc.MaterialByName(ScratchMaterialName)
	if scratch == nil {
		t.Fatal("Expected the scratch material to be created")
	}
	if len(bare.Slots) != 1 || bare.Slots[0] != scratch {
		t.Error("Slotless object should get the scratch material")
	}
	if len(masked.Slots) != 2 || masked.Slots[1] != scratch {
		t.Error("Empty slot should be filled with the scratch material, not removed")
	}

	// The scratch material renders black and never reports misses.
	bsdf := scratch.Tree.NodeByName("Principled BSDF")
	if got := bsdf.Input("Emission Color").Default; got != ColorValue(0, 0, 0, 1) {
		t.Errorf("Expected black scratch emission, got %+v", got)
	}
	for _, miss := range result.Misses {
		if miss.Material == ScratchMaterialName {
			t.Errorf("Scratch material must not report misses: %+v", miss)
		}
	}
}

func TestApplyNodeToObjects_AlphaSetsClipBlend(t *testing.T) {
	doc := testScene(t, ObjectDef{Name: "leaf", Materials: []string{"foliage"}})
	tree := doc.MaterialByName("foliage").Tree
	bsdf := tree.NodeByName("Principled BSDF")

	tex, _ := tree.AddNode("ShaderNodeTexImage")
	tree.LinkSockets(tex, "Alpha", bsdf, "Alpha")

	if _, err := ApplyNodeToObjects(doc, AlphaNodeName, []*Object{doc.ObjectByName("leaf")}); err != nil {
		t.Fatalf("ApplyNodeToObjects failed: %v", err)
	}
	if got := doc.MaterialByName("foliage").BlendMethod; got != "CLIP" {
		t.Errorf("Expected CLIP blending with a linked alpha, got %q", got)
	}
}

func TestApplyNodeToObjects_NormalExemptFromMisses(t *testing.T) {
	doc := testScene(t, ObjectDef{Name: "cube", Materials: []string{"steel"}})

	result, err := ApplyNodeToObjects(doc, NormalNodeName, []*Object{doc.ObjectByName("cube")})
	if err != nil {
		t.Fatalf("ApplyNodeToObjects failed: %v", err)
	}
	if !result.OK() {
		t.Errorf("Unlinked normals are expected and must not be reported, got %+v", result.Misses)
	}
}

func TestApplyNodeToObjects_UnknownGroup(t *testing.T) {
	doc := NewDocument()
	if _, err := ApplyNodeToObjects(doc, "GD_Nope", nil); err == nil {
		t.Error("Expected an error for a missing node group")
	}
}

func TestNodeCleanup_RestoresOriginalWiring(t *testing.T) {
	doc := testScene(t, ObjectDef{Name: "cube", Materials: []string{"steel"}})
	ob := doc.ObjectByName("cube")
	tree := doc.MaterialByName("steel").Tree
	before := len(tree.Nodes())

	if _, err := ApplyNodeToObjects(doc, ColorNodeName, []*Object{ob}); err != nil {
		t.Fatalf("splice failed: %v", err)
	}
	if err := NodeCleanup(doc, ColorNodeName); err != nil {
		t.Fatalf("NodeCleanup failed: %v", err)
	}

	if got := countPrefixed(tree, ColorNodeName); got != 0 {
		t.Errorf("Expected all passthrough nodes removed, got %d", got)
	}
	if len(tree.Nodes()) != before {
		t.Errorf("Expected node count restored to %d, got %d", before, len(tree.Nodes()))
	}

	output := tree.NodeByName("Material Output")
	bsdf := tree.NodeByName("Principled BSDF")
	link := tree.InputLink(output, "Surface")
	if link == nil || link.FromNode != bsdf.ID {
		t.Error("Expected the BSDF reconnected to the material output")
	}
}

func TestNodeCleanup_RestoresVolumeAndDisplacement(t *testing.T) {
	doc := testScene(t, ObjectDef{Name: "cube", Materials: []string{"steel"}})
	ob := doc.ObjectByName("cube")
	tree := doc.MaterialByName("steel").Tree
	output := tree.NodeByName("Material Output")

	volume, _ := tree.AddNode("ShaderNodeEmission")
	tree.SetNodeName(volume, "volume source")
	tree.LinkSockets(volume, "Emission", output, "Volume")

	if _, err := ApplyNodeToObjects(doc, OcclusionNodeName, []*Object{ob}); err != nil {
		t.Fatalf("splice failed: %v", err)
	}
	// Volume is dropped from the output while the bake runs.
	if tree.InputLink(output, "Volume") != nil {
		t.Error("Expected the volume link removed during the bake")
	}

	if err := NodeCleanup(doc, OcclusionNodeName); err != nil {
		t.Fatalf("NodeCleanup failed: %v", err)
	}
	link := tree.InputLink(output, "Volume")
	if link == nil || link.FromNode != volume.ID {
		t.Error("Expected the volume link restored after the bake")
	}
}

func TestNodeCleanup_RemovesScratchMaterial(t *testing.T) {
	doc := testScene(t, ObjectDef{Name: "bare"})
	ob := doc.ObjectByName("bare")

	if _, err := ApplyNodeToObjects(doc, HeightNodeName, []*Object{ob}); err != nil {
		t.Fatalf("splice failed: %v", err)
	}
	if doc.MaterialByName(ScratchMaterialName) == nil {
		t.Fatal("Expected the scratch material while spliced")
	}

	if err := NodeCleanup(doc, HeightNodeName); err != nil {
		t.Fatalf("NodeCleanup failed: %v", err)
	}
	if doc.MaterialByName(ScratchMaterialName) != nil {
		t.Error("Expected the scratch material deleted on cleanup")
	}
}

func TestNodeCleanup_NoTreeNameIsNoop(t *testing.T) {
	doc := NewDocument()
	if err := NodeCleanup(doc, ""); err != nil {
		t.Errorf("Cleanup of a treeless map should be a no-op, got %v", err)
	}
}
