package grabdoc

import "fmt"

// The shader node vocabulary: every node type the recipes and the
// splice protocol can instantiate, with its socket layout. Mirrors the
// host vocabulary; an unknown type name is a lookup error and fatal to
// the current operation.

type socketDef struct {
	name string
	typ  SocketType
	def  SocketValue
}

type nodeDef struct {
	label   string
	inputs  []socketDef
	outputs []socketDef
}

func fsock(name string, def float32) socketDef {
	return socketDef{name: name, typ: SocketFloat, def: FloatValue(def)}
}

func csock(name string, r, g, b, a float32) socketDef {
	return socketDef{name: name, typ: SocketColor, def: ColorValue(r, g, b, a)}
}

func vsock(name string) socketDef {
	return socketDef{name: name, typ: SocketVector, def: VectorValue(0, 0, 0)}
}

func ssock(name string) socketDef {
	return socketDef{name: name, typ: SocketShader}
}

var nodeVocabulary = map[string]nodeDef{
	"ShaderNodeOutputMaterial": {
		label: "Material Output",
		inputs: []socketDef{
			ssock("Surface"),
			ssock("Volume"),
			vsock("Displacement"),
			fsock("Thickness", 0),
		},
	},
	// Group instances take their sockets from the referenced tree.
	"ShaderNodeGroup": {label: "Group"},
	// Group boundary nodes snapshot the tree interface at creation
	// time, so the interface must be declared first.
	"NodeGroupInput":  {label: "Group Input"},
	"NodeGroupOutput": {label: "Group Output"},
	"ShaderNodeEmission": {
		label: "Emission",
		inputs: []socketDef{
			csock("Color", 1, 1, 1, 1),
			fsock("Strength", 1),
		},
		outputs: []socketDef{ssock("Emission")},
	},
	"ShaderNodeBsdfPrincipled": {
		label: "Principled BSDF",
		inputs: []socketDef{
			csock("Base Color", .8, .8, .8, 1),
			fsock("Metallic", 0),
			fsock("Roughness", .5),
			fsock("Alpha", 1),
			vsock("Normal"),
			csock("Emission Color", 1, 1, 1, 1),
			fsock("Emission Strength", 0),
		},
		outputs: []socketDef{ssock("BSDF")},
	},
	"ShaderNodeBsdfTransparent": {
		label:   "Transparent BSDF",
		inputs:  []socketDef{csock("Color", 1, 1, 1, 1)},
		outputs: []socketDef{ssock("BSDF")},
	},
	// Duplicate-named sockets carry their host identifiers so they
	// stay addressable by name as well as by index.
	"ShaderNodeMixShader": {
		label: "Mix Shader",
		inputs: []socketDef{
			fsock("Fac", .5),
			ssock("Shader"),
			ssock("Shader_001"),
		},
		outputs: []socketDef{ssock("Shader")},
	},
	"ShaderNodeMixRGB": {
		label: "Mix",
		inputs: []socketDef{
			fsock("Fac", .5),
			csock("Color1", .5, .5, .5, 1),
			csock("Color2", .5, .5, .5, 1),
		},
		outputs: []socketDef{csock("Color", 0, 0, 0, 1)},
	},
	"ShaderNodeMix": {
		label: "Mix",
		inputs: []socketDef{
			fsock("Factor", .5),
			csock("A", 0, 0, 0, 1),
			csock("B", 0, 0, 0, 1),
		},
		outputs: []socketDef{csock("Result", 0, 0, 0, 1)},
	},
	"ShaderNodeBevel": {
		label: "Bevel",
		inputs: []socketDef{
			fsock("Radius", .05),
			vsock("Normal"),
		},
		outputs: []socketDef{vsock("Normal")},
	},
	"ShaderNodeVectorTransform": {
		label:   "Vector Transform",
		inputs:  []socketDef{vsock("Vector")},
		outputs: []socketDef{vsock("Vector")},
	},
	"ShaderNodeVectorMath": {
		label: "Vector Math",
		inputs: []socketDef{
			vsock("Vector"),
			vsock("Vector_001"),
		},
		outputs: []socketDef{vsock("Vector")},
	},
	"ShaderNodeInvert": {
		label: "Invert",
		inputs: []socketDef{
			fsock("Fac", 1),
			csock("Color", 0, 0, 0, 1),
		},
		outputs: []socketDef{csock("Color", 0, 0, 0, 1)},
	},
	"ShaderNodeGamma": {
		label: "Gamma",
		inputs: []socketDef{
			csock("Color", 1, 1, 1, 1),
			fsock("Gamma", 1),
		},
		outputs: []socketDef{csock("Color", 0, 0, 0, 1)},
	},
	"ShaderNodeAmbientOcclusion": {
		label: "Ambient Occlusion",
		inputs: []socketDef{
			csock("Color", 1, 1, 1, 1),
			fsock("Distance", 1),
			vsock("Normal"),
		},
		outputs: []socketDef{
			csock("Color", 0, 0, 0, 1),
			fsock("AO", 0),
		},
	},
	"ShaderNodeMapRange": {
		label: "Map Range",
		inputs: []socketDef{
			fsock("Value", 1),
			fsock("From Min", 0),
			fsock("From Max", 1),
			fsock("To Min", 0),
			fsock("To Max", 1),
		},
		outputs: []socketDef{fsock("Result", 0)},
	},
	"ShaderNodeValToRGB": {
		label:   "Color Ramp",
		inputs:  []socketDef{fsock("Fac", .5)},
		outputs: []socketDef{csock("Color", 0, 0, 0, 1), fsock("Alpha", 0)},
	},
	"ShaderNodeCameraData": {
		label: "Camera Data",
		outputs: []socketDef{
			vsock("View Vector"),
			fsock("View Z Depth", 0),
			fsock("View Distance", 0),
		},
	},
	"ShaderNodeNewGeometry": {
		label: "Geometry",
		outputs: []socketDef{
			vsock("Position"),
			vsock("Normal"),
			vsock("Tangent"),
			vsock("True Normal"),
			vsock("Incoming"),
			vsock("Parametric"),
			fsock("Backfacing", 0),
			fsock("Pointiness", 0),
			fsock("Random Per Island", 0),
		},
	},
	"ShaderNodeTexImage": {
		label:  "Image Texture",
		inputs: []socketDef{vsock("Vector")},
		outputs: []socketDef{
			csock("Color", 0, 0, 0, 1),
			fsock("Alpha", 0),
		},
	},
	"NodeFrame": {label: "Frame"},
}

func lookupNodeDef(typeName string) (nodeDef, error) {
	def, ok := nodeVocabulary[typeName]
	if !ok {
		return nodeDef{}, fmt.Errorf("unknown shader node type %q", typeName)
	}
	return def, nil
}
