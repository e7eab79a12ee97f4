package grabdoc

// SceneProps is the externally-configured bake schema: export
// destination, output format, and one BakeMap descriptor per kind.
type SceneProps struct {
	ExportPath string
	ExportName string

	Format         string // "PNG", "TIFF", "TARGA", "OPEN_EXR"
	Depth          string // "8" or "16", non-EXR formats
	EXRDepth       string // "16" or "32"
	PNGCompression int

	ResolutionX int
	ResolutionY int
	FilterWidth float32

	// PreviewState is true while a live map preview is active; live
	// node-parameter pushes only happen in that state.
	PreviewState bool

	// Background plane participation.
	CollVisible  bool
	CollRendered bool

	// Selected reference image name, if any.
	Reference string

	Maps map[MapKind]*BakeMap
}

func defaultSceneProps() SceneProps {
	props := SceneProps{
		ExportName:     "untitled",
		Format:         "PNG",
		Depth:          "8",
		EXRDepth:       "16",
		PNGCompression: 50,
		ResolutionX:    2048,
		ResolutionY:    2048,
		FilterWidth:    1.2,
		CollVisible:    true,
		CollRendered:   true,
		Maps:           make(map[MapKind]*BakeMap),
	}
	for _, kind := range AllMapKinds {
		props.Maps[kind] = newBakeMap(kind)
	}
	return props
}

// FormatExtension maps an output file format to its file extension,
// dot included.
func FormatExtension(format string) string {
	switch format {
	case "PNG":
		return ".png"
	case "TIFF":
		return ".tif"
	case "TARGA":
		return ".tga"
	case "OPEN_EXR":
		return ".exr"
	default:
		return ""
	}
}
