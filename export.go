package grabdoc

import (
	"fmt"
	"path/filepath"
)

// Renderer is the host render invocation. A call blocks until the
// renderer has produced the output file; cancellation and timeouts are
// whatever the implementation provides.
type Renderer interface {
	Render(doc *Document, outputPath string) error
}

// ExportReport summarizes one export run.
type ExportReport struct {
	Rendered []string
	Warnings []ChannelMiss
}

// RunExport bakes every enabled map: global snapshot, then per map
// setup -> splice -> render -> un-splice -> cleanup, then global
// restore. The restore runs even when a map fails, so document
// settings never leak out of a broken bake.
func RunExport(doc *Document, renderer Renderer) (*ExportReport, error) {
	if err := BuildNodeGraphs(doc); err != nil {
		return nil, err
	}

	report := &ExportReport{}
	maps := BakeMaps(doc, true)

	snap := BakerInit(doc)
	defer BakerCleanup(doc, snap)

	for _, m := range maps {
		if err := m.Setup(doc); err != nil {
			return report, fmt.Errorf("setting up %s: %w", m.ID(), err)
		}

		treeName := m.TreeName()
		if treeName != "" {
			result, err := ApplyNodeToObjects(doc, treeName, RenderedObjects(doc))
			if err != nil {
				m.Cleanup(doc)
				return report, fmt.Errorf("splicing %s: %w", m.ID(), err)
			}
			if !result.OK() {
				report.Warnings = append(report.Warnings, result.Misses...)
				for _, miss := range result.Misses {
					doc.Log.Warnf("%s: material %q has no %s link", m.ID(), miss.Material, miss.Channel)
				}
			}
		}

		outputPath := filepath.Join(
			doc.Props.ExportPath,
			fmt.Sprintf("%s_%s%s", doc.Props.ExportName, m.Suffix, FormatExtension(doc.Props.Format)),
		)
		renderErr := renderer.Render(doc, outputPath)

		// Un-splice and revert the map's state before surfacing any
		// render failure, so the document is never left mid-bake.
		if treeName != "" {
			if err := NodeCleanup(doc, treeName); err != nil {
				m.Cleanup(doc)
				return report, fmt.Errorf("un-splicing %s: %w", m.ID(), err)
			}
		}
		m.Cleanup(doc)

		if renderErr != nil {
			return report, fmt.Errorf("rendering %s: %w", m.ID(), renderErr)
		}
		report.Rendered = append(report.Rendered, outputPath)

		if m.Reimport {
			if err := ReimportAsMaterial(doc, m.Suffix, []string{m.ID()}); err != nil {
				doc.Log.Warnf("reimporting %s: %v", m.ID(), err)
			}
		}
	}
	return report, nil
}
