package grabdoc

// Snapshot captures every document setting the bake process overrides,
// scoped to one bake operation. Every field captured by BakerInit is
// restored exactly once by BakerCleanup, including when a map in the
// middle of the run failed.
type Snapshot struct {
	viewLayerUse   bool
	useSingleLayer bool

	engine Engine

	workbenchAA        string
	workbenchViewAA    string
	eeveeRenderSamples int
	eeveeSamples       int
	cyclesSamples      int
	cyclesPreview      int

	useBloom bool

	useGTAO      bool
	gtaoDistance float32
	gtaoQuality  float32

	displayDevice string
	viewTransform string
	look          string
	exposure      float32
	gamma         float32

	filmTransparent    bool
	highQualityNormals bool

	filterSize        float32
	cyclesFilterWidth float32
	cyclesPixelFilter string

	colorMode  string
	fileFormat string
	colorDepth string

	useSequencer    bool
	useCompositing  bool
	ditherIntensity float32

	shadingLight     string
	shadingColorType string
	showBackface     bool
	showXray         bool
	showShadows      bool
	showCavity       bool
	useDOF           bool
	showOutline      bool
	showSpecular     bool

	reference string
}

// BakerInit records the current document state and applies the
// bake-global overrides shared by every map. Per-map overrides are
// layered on top by each map's Setup and reverted by its Cleanup,
// nested inside this snapshot.
//
// TODO: preserve and restore the previously active camera.
func BakerInit(doc *Document) *Snapshot {
	s := &doc.Settings
	props := &doc.Props
	snap := &Snapshot{}

	// View layer
	snap.viewLayerUse = doc.ViewLayerUse
	snap.useSingleLayer = s.UseSingleLayer
	doc.ViewLayerUse = true
	s.UseSingleLayer = true

	if doc.World != nil {
		doc.World.UseNodes = false
	}

	// Render engine and sampling, applied per bake map later.
	snap.engine = s.Engine
	snap.workbenchAA = s.RenderAA
	snap.workbenchViewAA = s.ViewportAA
	snap.eeveeRenderSamples = s.TAARenderSamples
	snap.eeveeSamples = s.TAASamples
	snap.cyclesPreview = s.CyclesPreviewSamples
	snap.cyclesSamples = s.CyclesSamples

	// Bloom
	snap.useBloom = s.UseBloom
	s.UseBloom = false

	// Ambient occlusion, disabled unless an occlusion bake turns it on.
	snap.useGTAO = s.UseGTAO
	snap.gtaoDistance = s.GTAODistance
	snap.gtaoQuality = s.GTAOQuality
	s.UseGTAO = false
	s.GTAODistance = .2
	s.GTAOQuality = .5

	// Color management
	snap.displayDevice = s.DisplayDevice
	snap.viewTransform = s.ViewTransform
	snap.look = s.Look
	snap.exposure = s.Exposure
	snap.gamma = s.Gamma
	snap.filmTransparent = s.FilmTransparent

	// Performance
	snap.highQualityNormals = s.UseHighQualityNormals
	s.UseHighQualityNormals = true

	// Film
	snap.filterSize = s.FilterSize
	snap.cyclesFilterWidth = s.CyclesFilterWidth
	snap.cyclesPixelFilter = s.CyclesPixelFilter
	s.FilterSize = props.FilterWidth
	s.CyclesFilterWidth = props.FilterWidth
	s.CyclesPixelFilter = "BLACKMAN_HARRIS"

	// Dimensions, deliberately not snapshotted.
	s.ResolutionX = props.ResolutionX
	s.ResolutionY = props.ResolutionY
	s.ResolutionPercentage = 100

	// Output
	img := &s.ImageSettings
	snap.colorMode = img.ColorMode
	snap.fileFormat = img.FileFormat
	snap.colorDepth = img.ColorDepth

	// If the background plane is not rendered, bake an alpha channel.
	if !props.CollRendered {
		s.FilmTransparent = true
		img.ColorMode = "RGBA"
	} else {
		img.ColorMode = "RGB"
	}

	img.FileFormat = props.Format
	switch props.Format {
	case "OPEN_EXR":
		img.ColorDepth = props.EXRDepth
	case "TARGA":
		// Targa is 8-bit only; leave the depth alone.
	default:
		img.ColorDepth = props.Depth
	}
	if props.Format == "PNG" {
		img.Compression = props.PNGCompression
	}

	// Post processing
	snap.useSequencer = s.UseSequencer
	snap.useCompositing = s.UseCompositing
	snap.ditherIntensity = s.DitherIntensity
	s.UseSequencer = false
	s.UseCompositing = false
	s.DitherIntensity = 0

	// Viewport shading
	shading := &doc.Shading
	snap.shadingLight = shading.Light
	snap.shadingColorType = shading.ColorType
	snap.showBackface = shading.ShowBackfaceCulling
	snap.showXray = shading.ShowXray
	snap.showShadows = shading.ShowShadows
	snap.showCavity = shading.ShowCavity
	snap.useDOF = shading.UseDOF
	snap.showOutline = shading.ShowObjectOutline
	snap.showSpecular = shading.ShowSpecularHighlight
	shading.ShowBackfaceCulling = false
	shading.ShowXray = false
	shading.ShowShadows = false
	shading.ShowCavity = false
	shading.UseDOF = false
	shading.ShowObjectOutline = false
	shading.ShowSpecularHighlight = false

	// Reference
	snap.reference = props.Reference

	// Background plane participation
	if plane := doc.ObjectByName(BGPlaneName); plane != nil {
		plane.HideViewport = !props.CollVisible
		plane.HideRender = !props.CollRendered
	}

	return snap
}

// BakerCleanup restores every setting captured by BakerInit,
// unconditionally.
func BakerCleanup(doc *Document, snap *Snapshot) {
	s := &doc.Settings
	props := &doc.Props

	// View layer
	doc.ViewLayerUse = snap.viewLayerUse
	s.UseSingleLayer = snap.useSingleLayer

	if doc.World != nil {
		doc.World.UseNodes = true
	}

	// Render engine
	s.Engine = snap.engine

	// Sampling
	s.RenderAA = snap.workbenchAA
	s.ViewportAA = snap.workbenchViewAA
	s.TAARenderSamples = snap.eeveeRenderSamples
	s.TAASamples = snap.eeveeSamples
	s.CyclesPreviewSamples = snap.cyclesPreview
	s.CyclesSamples = snap.cyclesSamples

	// Bloom
	s.UseBloom = snap.useBloom

	// Ambient occlusion
	s.UseGTAO = snap.useGTAO
	s.GTAODistance = snap.gtaoDistance
	s.GTAOQuality = snap.gtaoQuality

	// Color management
	s.Look = snap.look
	s.DisplayDevice = snap.displayDevice
	s.ViewTransform = snap.viewTransform
	s.Exposure = snap.exposure
	s.Gamma = snap.gamma
	s.FilmTransparent = snap.filmTransparent

	// Performance
	s.UseHighQualityNormals = snap.highQualityNormals

	// Film
	s.FilterSize = snap.filterSize
	s.CyclesFilterWidth = snap.cyclesFilterWidth
	s.CyclesPixelFilter = snap.cyclesPixelFilter

	// Output
	img := &s.ImageSettings
	img.ColorDepth = snap.colorDepth
	img.ColorMode = snap.colorMode
	img.FileFormat = snap.fileFormat

	// Post processing
	s.UseSequencer = snap.useSequencer
	s.UseCompositing = snap.useCompositing
	s.DitherIntensity = snap.ditherIntensity

	// Viewport shading
	shading := &doc.Shading
	shading.ShowCavity = snap.showCavity
	shading.ColorType = snap.shadingColorType
	shading.ShowBackfaceCulling = snap.showBackface
	shading.ShowXray = snap.showXray
	shading.ShowShadows = snap.showShadows
	shading.UseDOF = snap.useDOF
	shading.ShowObjectOutline = snap.showOutline
	shading.ShowSpecularHighlight = snap.showSpecular
	shading.Light = snap.shadingLight

	if snap.reference != "" {
		props.Reference = snap.reference
	}
}
