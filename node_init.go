package grabdoc

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Recipe is a built node-group recipe: the shared tree plus handles to
// the parameter nodes that live updates write into.
type Recipe struct {
	Kind MapKind
	Tree *NodeTree

	handles map[string]NodeID
}

func newRecipe(kind MapKind, tree *NodeTree) *Recipe {
	return &Recipe{Kind: kind, Tree: tree, handles: make(map[string]NodeID)}
}

func (r *Recipe) register(role string, n *Node) {
	r.handles[role] = n.ID
}

func (r *Recipe) node(role string) *Node {
	return r.Tree.Node(r.handles[role])
}

type socketRef struct {
	Name string
	Type SocketType
}

// materialOutputInputs introspects the host's material-output node by
// instantiating one on a scratch tree and reading its input sockets.
// Thickness is skipped, matching the original interface.
func materialOutputInputs() ([]socketRef, error) {
	scratch := NewNodeTree("Material Output")
	output, err := scratch.AddNode("ShaderNodeOutputMaterial")
	if err != nil {
		return nil, err
	}
	var refs []socketRef
	for _, in := range output.Inputs {
		if in.Name == "Thickness" {
			continue
		}
		refs = append(refs, socketRef{Name: in.Name, Type: in.Type})
	}
	return refs, nil
}

// generateShaderInterface declares the passthrough interface on a
// recipe tree: one shader output plus inputs mirroring the material
// output's own sockets, so original output wiring can be rerouted
// through the group losslessly.
func generateShaderInterface(tree *NodeTree, inputs []socketRef) {
	tree.NewInterfaceOutput("Shader", SocketShader)
	for _, ref := range inputs {
		tree.NewInterfaceInput(ref.Name, ref.Type)
	}
}

// treeBuilder accumulates nodes and links with a sticky error, keeping
// recipe construction readable while still surfacing the first
// vocabulary lookup failure.
type treeBuilder struct {
	tree   *NodeTree
	recipe *Recipe
	err    error
}

func (b *treeBuilder) node(typeName, role string, x, y float32) *Node {
	if b.err != nil {
		return nil
	}
	n, err := b.tree.AddNode(typeName)
	if err != nil {
		b.err = err
		return nil
	}
	n.Location = mgl32.Vec2{x, y}
	if role != "" {
		b.recipe.register(role, n)
	}
	return n
}

func (b *treeBuilder) link(from *Node, fromSocket string, to *Node, toSocket string) {
	if b.err != nil || from == nil || to == nil {
		return
	}
	if _, err := b.tree.LinkSockets(from, fromSocket, to, toSocket); err != nil {
		b.err = err
	}
}

// BuildNodeGraphs ensures exactly one recipe tree exists per
// recipe-bearing map kind, constructing only the absent ones.
// Idempotent by tree-name lookup.
func BuildNodeGraphs(doc *Document) error {
	inputs, err := materialOutputInputs()
	if err != nil {
		return err
	}

	builders := map[MapKind]func(*Document, *treeBuilder){
		MapNormal:    buildNormalRecipe,
		MapCurvature: buildCurvatureRecipe,
		MapOcclusion: buildOcclusionRecipe,
		MapHeight:    buildHeightRecipe,
		MapAlpha:     buildAlphaRecipe,
		MapColor:     buildColorRecipe,
		MapEmissive:  buildEmissiveRecipe,
		MapRoughness: buildRoughnessRecipe,
		MapMetallic:  buildMetallicRecipe,
	}

	for _, kind := range AllMapKinds {
		treeName := recipeTreeName(kind)
		if treeName == "" {
			continue
		}
		if doc.NodeGroup(treeName) != nil {
			continue
		}
		tree := doc.NewNodeGroup(treeName)
		tree.FakeUser = true
		generateShaderInterface(tree, inputs)

		recipe := newRecipe(kind, tree)
		b := &treeBuilder{tree: tree, recipe: recipe}
		builders[kind](doc, b)
		if b.err != nil {
			doc.RemoveNodeGroup(treeName)
			return fmt.Errorf("building %s recipe: %w", treeName, b.err)
		}
		doc.recipes[kind] = recipe
	}
	return nil
}

// recipeTreeName maps a kind to its recipe tree; the curvature recipe
// exists for splice-based baking even though the curvature descriptor
// itself declares no tree.
func recipeTreeName(kind MapKind) string {
	if kind == MapCurvature {
		return CurvatureNodeName
	}
	return mapDefaultsTable[kind].treeName
}

func buildNormalRecipe(doc *Document, b *treeBuilder) {
	tree := b.tree
	alpha := tree.NewInterfaceInput("Alpha", SocketFloat)
	alpha.Default = FloatValue(1)
	tree.NewInterfaceInput("Normal", SocketVector)

	groupOutput := b.node("NodeGroupOutput", "groupOutput", 0, 0)
	groupInput := b.node("NodeGroupInput", "groupInput", -1400, 100)

	bevel := b.node("ShaderNodeBevel", "bevel", -1000, 0)
	bevelRounded := b.node("ShaderNodeBevel", "bevelRounded", -1000, -200)
	for _, n := range []*Node{bevel, bevelRounded} {
		if n != nil {
			n.Inputs[0].Default = FloatValue(0)
		}
	}

	vecTransform := b.node("ShaderNodeVectorTransform", "vectorTransform", -800, 0)
	if vecTransform != nil {
		vecTransform.VectorType = "NORMAL"
		vecTransform.ConvertTo = "CAMERA"
	}

	flipY := float32(.5)
	if doc.Props.Maps[MapNormal].FlipY {
		flipY = -.5
	}
	vecMult := b.node("ShaderNodeVectorMath", "multiply", -600, 0)
	if vecMult != nil {
		vecMult.Operation = "MULTIPLY"
		vecMult.Inputs[1].Default = VectorValue(.5, flipY, -.5)
	}

	vecAdd := b.node("ShaderNodeVectorMath", "add", -400, 0)
	if vecAdd != nil {
		vecAdd.Operation = "ADD"
		vecAdd.Inputs[1].Default = VectorValue(.5, .5, .5)
	}

	invert := b.node("ShaderNodeInvert", "invert", -1000, 200)

	subtract := b.node("ShaderNodeMixRGB", "subtract", -800, 300)
	if subtract != nil {
		subtract.Operation = "SUBTRACT"
		subtract.Inputs[0].Default = FloatValue(1)
		subtract.Inputs[1].Default = ColorValue(1, 1, 1, 1)
		tree.SetNodeName(subtract, "Subtract")
	}

	transparent := b.node("ShaderNodeBsdfTransparent", "transparent", -400, 200)
	mixShader := b.node("ShaderNodeMixShader", "mixShader", -200, 300)

	b.link(groupInput, "Normal", bevel, "Normal")
	b.link(bevelRounded, "Normal", vecTransform, "Vector")
	b.link(vecTransform, "Vector", vecMult, "Vector")
	b.link(vecMult, "Vector", vecAdd, "Vector")
	b.link(vecAdd, "Vector", groupOutput, "Shader")

	b.link(groupInput, "Alpha", invert, "Color")
	b.link(invert, "Color", subtract, "Color2")
	b.link(subtract, "Color", mixShader, "Fac")
	b.link(transparent, "BSDF", mixShader, "Shader")
	b.link(vecAdd, "Vector", mixShader, "Shader_001")
}

func buildCurvatureRecipe(doc *Document, b *treeBuilder) {
	groupOutput := b.node("NodeGroupOutput", "groupOutput", 0, 0)
	geometry := b.node("ShaderNodeNewGeometry", "geometry", -800, 0)

	ramp := b.node("ShaderNodeValToRGB", "ramp", -600, 0)
	if ramp != nil {
		ramp.Ramp.NewElement(.5)
		ramp.Ramp.Elements[0].Position = .49
		ramp.Ramp.Elements[2].Position = .51
	}

	emission := b.node("ShaderNodeEmission", "emission", -200, 0)

	b.link(geometry, "Pointiness", ramp, "Fac")
	b.link(ramp, "Color", emission, "Color")
	b.link(emission, "Emission", groupOutput, "Shader")
}

func buildOcclusionRecipe(doc *Document, b *treeBuilder) {
	tree := b.tree
	alpha := tree.NewInterfaceInput("Alpha", SocketFloat)
	alpha.Default = FloatValue(1)
	normal := tree.NewInterfaceInput("Normal", SocketVector)
	normal.Default = VectorValue(.5, .5, 1)

	groupInput := b.node("NodeGroupInput", "groupInput", -1000, 0)
	groupOutput := b.node("NodeGroupOutput", "groupOutput", 0, 0)

	ao := b.node("ShaderNodeAmbientOcclusion", "ao", -600, 0)
	if ao != nil {
		ao.Samples = 32
	}

	gamma := b.node("ShaderNodeGamma", "gamma", -400, 0)
	if gamma != nil {
		gamma.Inputs[1].Default = FloatValue(doc.Props.Maps[MapOcclusion].Gamma)
	}

	emission := b.node("ShaderNodeEmission", "emission", -200, 0)

	b.link(groupInput, "Normal", ao, "Normal")
	b.link(ao, "Color", gamma, "Color")
	b.link(gamma, "Color", emission, "Color")
	b.link(emission, "Emission", groupOutput, "Shader")
}

func buildHeightRecipe(doc *Document, b *treeBuilder) {
	groupOutput := b.node("NodeGroupOutput", "groupOutput", 0, 0)
	camera := b.node("ShaderNodeCameraData", "camera", -800, 0)

	// Map range bounds are written on map preview, not at build time.
	mapRange := b.node("ShaderNodeMapRange", "mapRange", -600, 0)

	ramp := b.node("ShaderNodeValToRGB", "ramp", -400, 0)
	if ramp != nil {
		ramp.Ramp.Elements[0].Color = mgl32.Vec4{1, 1, 1, 1}
		ramp.Ramp.Elements[1].Color = mgl32.Vec4{0, 0, 0, 1}
	}

	b.link(camera, "View Z Depth", mapRange, "Value")
	b.link(mapRange, "Result", ramp, "Fac")
	b.link(ramp, "Color", groupOutput, "Shader")
}

func buildAlphaRecipe(doc *Document, b *treeBuilder) {
	tree := b.tree
	alpha := tree.NewInterfaceInput("Alpha", SocketFloat)
	alpha.Default = FloatValue(1)

	groupOutput := b.node("NodeGroupOutput", "groupOutput", 0, 0)
	groupInput := b.node("NodeGroupInput", "groupInput", -1000, 200)
	camera := b.node("ShaderNodeCameraData", "camera", -1000, 0)

	cameraZ := doc.Camera.Location[2]
	mapRange := b.node("ShaderNodeMapRange", "mapRange", -800, 0)
	if mapRange != nil {
		mapRange.Inputs[1].Default = FloatValue(cameraZ - .00001)
		mapRange.Inputs[2].Default = FloatValue(cameraZ)
	}

	invertMask := b.node("ShaderNodeInvert", "invertMask", -600, 200)
	if invertMask != nil {
		tree.SetNodeName(invertMask, "Invert Mask")
	}
	invertDepth := b.node("ShaderNodeInvert", "invertDepth", -600, 0)
	if invertDepth != nil {
		tree.SetNodeName(invertDepth, "Invert Depth")
	}

	mix := b.node("ShaderNodeMix", "mix", -400, 0)
	if mix != nil {
		mix.DataType = "RGBA"
		mix.Input("B").Default = ColorValue(0, 0, 0, 1)
	}

	emission := b.node("ShaderNodeEmission", "emission", -200, 0)

	b.link(groupInput, "Alpha", invertMask, "Color")
	b.link(invertMask, "Color", mix, "Factor")

	b.link(camera, "View Z Depth", mapRange, "Value")
	b.link(mapRange, "Result", invertDepth, "Color")
	b.link(invertDepth, "Color", mix, "A")

	b.link(mix, "Result", emission, "Color")
	b.link(emission, "Emission", groupOutput, "Shader")
}

func buildColorRecipe(doc *Document, b *treeBuilder) {
	b.tree.NewInterfaceInput("Base Color", SocketColor)

	groupOutput := b.node("NodeGroupOutput", "groupOutput", 0, 0)
	groupInput := b.node("NodeGroupInput", "groupInput", -400, 0)
	emission := b.node("ShaderNodeEmission", "emission", -200, 0)

	b.link(groupInput, "Base Color", emission, "Color")
	b.link(emission, "Emission", groupOutput, "Shader")
}

func buildEmissiveRecipe(doc *Document, b *treeBuilder) {
	emitColor := b.tree.NewInterfaceInput("Emission Color", SocketColor)
	emitColor.Default = ColorValue(0, 0, 0, 1)
	emitStrength := b.tree.NewInterfaceInput("Emission Strength", SocketFloat)
	emitStrength.Default = FloatValue(1)

	groupOutput := b.node("NodeGroupOutput", "groupOutput", 0, 0)
	groupInput := b.node("NodeGroupInput", "groupInput", -600, 0)
	emission := b.node("ShaderNodeEmission", "emission", -200, 0)

	b.link(groupInput, "Emission Color", emission, "Color")
	b.link(emission, "Emission", groupOutput, "Shader")
}

func buildRoughnessRecipe(doc *Document, b *treeBuilder) {
	b.tree.NewInterfaceInput("Roughness", SocketFloat)

	groupOutput := b.node("NodeGroupOutput", "groupOutput", 0, 0)
	groupInput := b.node("NodeGroupInput", "groupInput", -600, 0)

	invert := b.node("ShaderNodeInvert", "invert", -400, 0)
	if invert != nil {
		invert.Inputs[0].Default = FloatValue(0)
	}

	emission := b.node("ShaderNodeEmission", "emission", -200, 0)

	b.link(groupInput, "Roughness", invert, "Color")
	b.link(invert, "Color", emission, "Color")
	b.link(emission, "Emission", groupOutput, "Shader")
}

func buildMetallicRecipe(doc *Document, b *treeBuilder) {
	b.tree.NewInterfaceInput("Metallic", SocketFloat)

	groupOutput := b.node("NodeGroupOutput", "groupOutput", 0, 0)
	groupInput := b.node("NodeGroupInput", "groupInput", -400, 0)
	emission := b.node("ShaderNodeEmission", "emission", -200, 0)

	b.link(groupInput, "Metallic", emission, "Color")
	b.link(emission, "Emission", groupOutput, "Shader")
}
