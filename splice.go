package grabdoc

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// ChannelMiss records one expected BSDF channel that could not be
// bridged into a passthrough while splicing.
type ChannelMiss struct {
	Material string
	Channel  string
}

// SpliceResult is the structured outcome of a splice pass. A non-empty
// miss list is a warning for the user, not a failed bake.
type SpliceResult struct {
	Misses []ChannelMiss
}

func (r *SpliceResult) OK() bool {
	return len(r.Misses) == 0
}

// shaderMapChannels names the BSDF channel each recipe bridges from
// the originating shader. Recipes absent here (height, curvature) read
// nothing from the material's own shader.
var shaderMapChannels = map[string]string{
	NormalNodeName:    "Normal",
	OcclusionNodeName: "Normal",
	ColorNodeName:     "Base Color",
	EmissiveNodeName:  "Emission Color",
	RoughnessNodeName: "Roughness",
	MetallicNodeName:  "Metallic",
	AlphaNodeName:     "Alpha",
}

// ensureScratchMaterial fetches or creates the default material
// assigned to objects that carry no usable slots. It renders black:
// the default emission color is zeroed.
func ensureScratchMaterial(doc *Document) *Material {
	if mat := doc.MaterialByName(ScratchMaterialName); mat != nil {
		return mat
	}
	mat := doc.NewMaterial(ScratchMaterialName)
	mat.EnableNodes()
	bsdf := mat.Tree.NodeByName("Principled BSDF")
	bsdf.Input("Emission Color").Default = ColorValue(0, 0, 0, 1)
	return mat
}

// ApplyNodeToObjects splices the named recipe into every material of
// the given objects as a passthrough ahead of each material output.
// Idempotent per material, so shared materials are spliced once.
func ApplyNodeToObjects(doc *Document, treeName string, objects []*Object) (*SpliceResult, error) {
	group := doc.NodeGroup(treeName)
	if group == nil {
		return nil, fmt.Errorf("node group %q not found", treeName)
	}

	result := &SpliceResult{}
	for _, ob := range objects {
		// Objects with no slots, or with empty slots, get the scratch
		// material. Empty slots are kept (they can be used for
		// geometry masking) and only filled in, never removed.
		if len(ob.Slots) == 0 || ob.HasEmptySlot() {
			mat := ensureScratchMaterial(doc)
			for i, slot := range ob.Slots {
				if slot == nil {
					ob.Slots[i] = mat
				}
			}
			if len(ob.Slots) == 0 {
				ob.Slots = append(ob.Slots, mat)
			}
			if ob.ActiveMaterial == nil {
				ob.ActiveMaterial = mat
			}
		}

		for _, material := range ob.Slots {
			material.EnableNodes()
			tree := material.Tree
			if tree.NodeByName(treeName) != nil {
				continue
			}

			var outputs []*Node
			for _, n := range tree.Nodes() {
				if n.Type == "ShaderNodeOutputMaterial" {
					outputs = append(outputs, n)
				}
			}
			if len(outputs) == 0 {
				out, err := tree.AddNode("ShaderNodeOutputMaterial")
				if err != nil {
					return result, err
				}
				outputs = append(outputs, out)
			}

			for _, output := range outputs {
				if err := spliceOutput(doc, material, tree, group, output, result); err != nil {
					return result, err
				}
			}
		}
	}
	return result, nil
}

func spliceOutput(doc *Document, material *Material, tree *NodeTree, group *NodeTree, output *Node, result *SpliceResult) error {
	passthrough, err := tree.AddNode("ShaderNodeGroup")
	if err != nil {
		return err
	}
	passthrough.SetGroup(group)
	tree.SetNodeName(passthrough, group.Name)
	passthrough.Location = mgl32.Vec2{output.Location[0], output.Location[1] - 160}
	passthrough.Hidden = true

	// Note frame next to the passthrough explaining what it is.
	text := doc.TextBlockByName(ngWarningTextName)
	text.Clear()
	text.Write(ngWarningText)

	frame, err := tree.AddNode("NodeFrame")
	if err != nil {
		return err
	}
	tree.SetNodeName(frame, group.Name)
	frame.Location = mgl32.Vec2{output.Location[0], output.Location[1] - 195}
	frame.Text = text
	frame.Width = 1000
	frame.Height = 150

	channel, bridges := shaderMapChannels[group.Name]

	for _, outIn := range output.Inputs {
		link := tree.InputLink(output, outIn.Name)
		if link == nil {
			continue
		}
		source := tree.Node(link.FromNode)

		// Store the original output connection on the passthrough so
		// teardown can put it back.
		if passthrough.Input(outIn.Name) != nil {
			if _, err := tree.LinkSockets(source, link.FromSocket, passthrough, outIn.Name); err != nil {
				return err
			}
		}

		if !bridges || !strings.Contains(source.Type, "Bsdf") {
			continue
		}

		found, err := createNodeLinks(tree, channel, passthrough, source)
		if err != nil {
			return err
		}
		if channel == "Alpha" && found && material.BlendMethod == "OPAQUE" {
			material.BlendMethod = "CLIP"
		}
		// Many materials legitimately lack explicit normal wiring, so
		// the normal recipe is exempt from failure accounting; so is
		// the scratch material.
		if !found && group.Name != NormalNodeName && material.Name != ScratchMaterialName {
			result.Misses = append(result.Misses, ChannelMiss{
				Material: material.Name,
				Channel:  channel,
			})
		}
	}

	// Volume and displacement are dropped from the output; their
	// sources survive on the passthrough inputs captured above.
	for _, name := range []string{"Volume", "Displacement"} {
		if l := tree.InputLink(output, name); l != nil {
			tree.RemoveLink(l)
		}
	}
	_, err = tree.LinkSockets(passthrough, "Shader", output, "Surface")
	return err
}

// createNodeLinks bridges one BSDF channel into the matching
// passthrough input: shared as a link when the channel is link-driven,
// otherwise value-copied with float/int coercion. Reports whether a
// link existed.
func createNodeLinks(tree *NodeTree, channel string, passthrough *Node, bsdf *Node) (bool, error) {
	in := bsdf.Input(channel)
	if in == nil {
		return false, nil
	}
	if link := tree.InputLink(bsdf, channel); link != nil {
		source := tree.Node(link.FromNode)
		if passthrough.Input(channel) == nil {
			return false, nil
		}
		if _, err := tree.LinkSockets(source, link.FromSocket, passthrough, channel); err != nil {
			return false, err
		}
		return true, nil
	}
	target := passthrough.Input(channel)
	if target == nil {
		return false, nil
	}
	if err := target.SetDefault(in.Default); err != nil {
		return false, err
	}
	return false, nil
}

// NodeCleanup removes every passthrough instance of the named recipe
// from every material and reconnects the original output wiring.
// The scratch material is deleted outright instead of un-spliced.
func NodeCleanup(doc *Document, treeName string) error {
	if treeName == "" {
		return nil
	}
	inputs, err := materialOutputInputs()
	if err != nil {
		return err
	}
	outputSockets := make(map[string]bool, len(inputs))
	for _, ref := range inputs {
		outputSockets[ref.Name] = true
	}

	materials := append([]*Material(nil), doc.Materials()...)
	for _, material := range materials {
		material.EnableNodes()
		if material.Name == ScratchMaterialName {
			doc.RemoveMaterial(material)
			// Deleting a material empties the slots that held it.
			for _, ob := range doc.Objects() {
				for i, slot := range ob.Slots {
					if slot == material {
						ob.Slots[i] = nil
					}
				}
				if ob.ActiveMaterial == material {
					ob.ActiveMaterial = nil
				}
			}
			continue
		}
		tree := material.Tree
		if tree.NodeByName(treeName) == nil {
			continue
		}

		var spliced []*Node
		for _, n := range tree.Nodes() {
			if strings.HasPrefix(n.Name, treeName) {
				spliced = append(spliced, n)
			}
		}
		for _, node := range spliced {
			outputNode := downstreamOutput(tree, node)
			if outputNode == nil {
				// Never actually wired to an output; just delete it.
				tree.RemoveNode(node.ID)
				continue
			}
			for _, in := range node.Inputs {
				if !outputSockets[in.Name] {
					continue
				}
				link := tree.InputLink(node, in.Name)
				if link == nil {
					continue
				}
				source := tree.Node(link.FromNode)
				if _, err := tree.LinkSockets(source, link.FromSocket, outputNode, in.Name); err != nil {
					return err
				}
			}
			tree.RemoveNode(node.ID)
		}
	}
	return nil
}

// downstreamOutput follows a node's outgoing links to the material
// output it drives, if any.
func downstreamOutput(tree *NodeTree, node *Node) *Node {
	for _, out := range node.Outputs {
		for _, link := range tree.OutputLinks(node, out.Name) {
			to := tree.Node(link.ToNode)
			if to != nil && to.Type == "ShaderNodeOutputMaterial" {
				return to
			}
		}
	}
	return nil
}
