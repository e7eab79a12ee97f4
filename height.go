package grabdoc

// RenderedObjects returns the objects participating in the render:
// everything not hidden from render, excluding the trim camera and,
// when the background plane is excluded from rendering, the plane.
func RenderedObjects(doc *Document) []*Object {
	var out []*Object
	for _, ob := range doc.Objects() {
		if ob.HideRender || ob == doc.Camera {
			continue
		}
		if ob.Name == BGPlaneName && !doc.Props.CollRendered {
			continue
		}
		out = append(out, ob)
	}
	return out
}

// SetGuideHeight recomputes the height map's 0-1 range from scene
// geometry: the guide spans from the lowest rendered point up to the
// trim camera, so the whole visible depth lands inside the ramp.
func SetGuideHeight(doc *Document, objects []*Object) {
	m, ok := doc.Props.Maps[MapHeight]
	if !ok {
		return
	}
	cameraZ := doc.Camera.Location[2]

	lowest := cameraZ
	found := false
	for _, ob := range objects {
		if ob.BoundsMin[2] < lowest {
			lowest = ob.BoundsMin[2]
			found = true
		}
	}
	if found {
		m.Distance = max(cameraZ-lowest, .01)
	}
	m.UpdateGuide(doc)
}
