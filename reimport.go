package grabdoc

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"golang.org/x/image/tiff"
)

// bsdfChannelForMap maps a bake map id to the Principled BSDF input a
// reimported texture plugs into. Maps without a direct channel return
// "" and stay unlinked.
func bsdfChannelForMap(id string) string {
	kind, ok := KindByID(id)
	if !ok {
		return ""
	}
	switch kind {
	case MapColor:
		return "Base Color"
	case MapRoughness:
		return "Roughness"
	case MapMetallic:
		return "Metallic"
	case MapAlpha:
		return "Alpha"
	case MapEmissive:
		return "Emission Color"
	case MapNormal:
		return "Normal"
	default:
		return ""
	}
}

// loadImage registers an image datablock for the file, decoding pixel
// dimensions where a decoder exists (PNG, TIFF); other formats are
// registered by path only.
func loadImage(doc *Document, name, path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("loading image %q: %w", path, err)
	}
	defer f.Close()

	img := &Image{Name: name, Filepath: path, Colorspace: "sRGB"}

	var cfg image.Config
	switch filepath.Ext(path) {
	case ".png":
		cfg, err = png.DecodeConfig(f)
	case ".tif", ".tiff":
		cfg, err = tiff.DecodeConfig(f)
	default:
		doc.Images[name] = img
		return img, nil
	}
	if err != nil {
		return nil, fmt.Errorf("decoding image %q: %w", path, err)
	}
	img.Width = cfg.Width
	img.Height = cfg.Height
	doc.Images[name] = img
	return img, nil
}

// ReimportAsMaterial wires exported bake map textures back into a
// document material so bakes can be inspected in place. Files that do
// not exist yet are skipped; socket matching into the BSDF is
// best-effort.
func ReimportAsMaterial(doc *Document, suffix string, mapNames []string) error {
	props := &doc.Props

	mat := doc.MaterialByName(ReimportMaterialName)
	if mat == nil {
		mat = doc.NewMaterial(ReimportMaterialName)
	}
	mat.EnableNodes()
	tree := mat.Tree

	bsdf := tree.NodeByName("Principled BSDF")
	if bsdf == nil {
		return fmt.Errorf("material %q has no Principled BSDF", mat.Name)
	}

	yOffset := float32(0)
	for _, name := range mapNames {
		imageName := gdPrefix + name
		delete(doc.Images, imageName)

		texNode := tree.NodeByName(imageName)
		if texNode == nil {
			var err error
			texNode, err = tree.AddNode("ShaderNodeTexImage")
			if err != nil {
				return err
			}
			tree.SetNodeName(texNode, imageName)
			texNode.Location[0] = -300
			texNode.Location[1] = yOffset
		}
		yOffset -= 200

		exportName := fmt.Sprintf("%s_%s", props.ExportName, suffix)
		exportPath := filepath.Join(props.ExportPath, exportName+FormatExtension(props.Format))
		if _, err := os.Stat(exportPath); err != nil {
			doc.Log.Debugf("reimport: %s not found, skipping", exportPath)
			continue
		}

		img, err := loadImage(doc, imageName, exportPath)
		if err != nil {
			doc.Log.Warnf("reimport: %v", err)
			continue
		}
		texNode.Image = img

		if kind, ok := KindByID(name); !ok || kind != MapColor {
			img.Colorspace = "Non-Color"
		}

		if channel := bsdfChannelForMap(name); channel != "" {
			if bsdf.Input(channel) != nil {
				if _, err := tree.LinkSockets(texNode, "Color", bsdf, channel); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
