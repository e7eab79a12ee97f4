package grabdoc

import "github.com/go-gl/mathgl/mgl32"

// Engine identifies a render engine. Per-map engine restrictions are
// declared by the bake map defaults; selecting an unsupported engine is
// a caller (UI) responsibility and is not validated here.
type Engine string

const (
	EngineEevee     Engine = "blender_eevee"
	EngineCycles    Engine = "cycles"
	EngineWorkbench Engine = "blender_workbench"
)

// ImageSettings is the render output image configuration.
type ImageSettings struct {
	ColorMode   string // "BW", "RGB", "RGBA"
	FileFormat  string // "PNG", "TIFF", "TARGA", "OPEN_EXR"
	ColorDepth  string // "8", "16", "32"
	Compression int    // PNG only
}

// RenderSettings aggregates every document-wide render setting the
// bake process touches. It is passed by reference into snapshot, apply
// and restore paths so tests can run against a plain document.
type RenderSettings struct {
	Engine Engine

	// Eevee
	TAARenderSamples int
	TAASamples       int
	UseBloom         bool
	UseGTAO          bool
	GTAODistance     float32
	GTAOQuality      float32
	UseOverscan      bool
	OverscanSize     float32

	// Cycles
	CyclesSamples        int
	CyclesPreviewSamples int
	CyclesFilterWidth    float32
	CyclesPixelFilter    string // "BOX", "GAUSSIAN", "BLACKMAN_HARRIS"

	// Workbench anti-aliasing
	RenderAA   string // "OFF", "FXAA", "5", "8", "11", "16", "32"
	ViewportAA string

	// Color management
	DisplayDevice string
	ViewTransform string
	Look          string
	Exposure      float32
	Gamma         float32

	// Film and performance
	FilmTransparent       bool
	UseHighQualityNormals bool
	FilterSize            float32

	// Dimensions
	ResolutionX          int
	ResolutionY          int
	ResolutionPercentage int

	ImageSettings ImageSettings

	// Post processing
	UseSequencer    bool
	UseCompositing  bool
	DitherIntensity float32

	UseSingleLayer bool
}

func defaultRenderSettings() RenderSettings {
	return RenderSettings{
		Engine:               EngineEevee,
		TAARenderSamples:     64,
		TAASamples:           16,
		GTAODistance:         .2,
		GTAOQuality:          .25,
		OverscanSize:         3,
		CyclesSamples:        4096,
		CyclesPreviewSamples: 1024,
		CyclesFilterWidth:    1.5,
		CyclesPixelFilter:    "BLACKMAN_HARRIS",
		RenderAA:             "8",
		ViewportAA:           "FXAA",
		DisplayDevice:        "sRGB",
		ViewTransform:        "Filmic",
		Look:                 "None",
		Gamma:                1,
		FilterSize:           1.5,
		ResolutionX:          1920,
		ResolutionY:          1080,
		ResolutionPercentage: 100,
		ImageSettings: ImageSettings{
			ColorMode:   "RGBA",
			FileFormat:  "PNG",
			ColorDepth:  "8",
			Compression: 15,
		},
		UseSequencer:    true,
		UseCompositing:  true,
		DitherIntensity: 1,
	}
}

// SceneShading is the viewport shading state used by the Workbench
// style maps (curvature, ID).
type SceneShading struct {
	Light     string // "STUDIO", "FLAT", "MATCAP"
	ColorType string // "MATERIAL", "SINGLE", "OBJECT", "RANDOM", "VERTEX", "TEXTURE"

	SingleColor mgl32.Vec3

	ShowCavity            bool
	CavityType            string // "WORLD", "SCREEN", "BOTH"
	CavityRidgeFactor     float32
	CavityValleyFactor    float32
	CurvatureRidgeFactor  float32
	CurvatureValleyFactor float32
	MatcapSSAODistance    float32

	ShowBackfaceCulling   bool
	ShowXray              bool
	ShowShadows           bool
	ShowObjectOutline     bool
	ShowSpecularHighlight bool
	UseDOF                bool
}

func defaultSceneShading() SceneShading {
	return SceneShading{
		Light:                 "STUDIO",
		ColorType:             "MATERIAL",
		SingleColor:           mgl32.Vec3{.8, .8, .8},
		CavityType:            "SCREEN",
		CavityRidgeFactor:     1,
		CavityValleyFactor:    1,
		CurvatureRidgeFactor:  1,
		CurvatureValleyFactor: 1,
		MatcapSSAODistance:    .2,
		ShowObjectOutline:     true,
		ShowSpecularHighlight: true,
	}
}

// setColorManagement applies a color management profile, resetting the
// look/exposure/gamma triple so per-map contrast starts from a known
// state. Incompatible custom profiles are simply overwritten.
func setColorManagement(s *RenderSettings, displayDevice, viewTransform string) {
	s.DisplayDevice = displayDevice
	s.ViewTransform = viewTransform
	s.Look = "None"
	s.Exposure = 0
	s.Gamma = 1
}
