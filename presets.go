package grabdoc

import (
	"encoding/json"
	"fmt"
	"os"
)

// PresetData is the on-disk shape of saved bake settings. Maps are
// keyed by their id string so presets stay readable and stable across
// kind reordering.
type PresetData struct {
	ExportName     string                     `json:"export_name"`
	Format         string                     `json:"format"`
	Depth          string                     `json:"depth"`
	EXRDepth       string                     `json:"exr_depth"`
	PNGCompression int                        `json:"png_compression"`
	ResolutionX    int                        `json:"resolution_x"`
	ResolutionY    int                        `json:"resolution_y"`
	FilterWidth    float32                    `json:"filter_width"`
	CollVisible    bool                       `json:"coll_visible"`
	CollRendered   bool                       `json:"coll_rendered"`
	Maps           map[string]json.RawMessage `json:"maps"`
}

// SavePreset writes the document's bake settings to a JSON file.
// Export paths are machine-specific and deliberately excluded.
func SavePreset(doc *Document, filename string) error {
	props := &doc.Props
	preset := PresetData{
		ExportName:     props.ExportName,
		Format:         props.Format,
		Depth:          props.Depth,
		EXRDepth:       props.EXRDepth,
		PNGCompression: props.PNGCompression,
		ResolutionX:    props.ResolutionX,
		ResolutionY:    props.ResolutionY,
		FilterWidth:    props.FilterWidth,
		CollVisible:    props.CollVisible,
		CollRendered:   props.CollRendered,
		Maps:           make(map[string]json.RawMessage, len(props.Maps)),
	}
	for kind, m := range props.Maps {
		encoded, err := json.Marshal(m)
		if err != nil {
			return err
		}
		preset.Maps[kind.String()] = encoded
	}

	bytes, err := json.MarshalIndent(preset, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filename, bytes, 0644)
}

// LoadPreset applies a saved preset onto the document's existing bake
// maps. Preset entries with an unknown id are skipped with a
// diagnostic; maps absent from the preset keep their current settings.
func LoadPreset(doc *Document, filename string) error {
	bytes, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	var preset PresetData
	if err := json.Unmarshal(bytes, &preset); err != nil {
		return fmt.Errorf("parsing preset %q: %w", filename, err)
	}

	props := &doc.Props
	props.ExportName = preset.ExportName
	props.Format = preset.Format
	props.Depth = preset.Depth
	props.EXRDepth = preset.EXRDepth
	props.PNGCompression = preset.PNGCompression
	props.ResolutionX = preset.ResolutionX
	props.ResolutionY = preset.ResolutionY
	props.FilterWidth = preset.FilterWidth
	props.CollVisible = preset.CollVisible
	props.CollRendered = preset.CollRendered

	for id, raw := range preset.Maps {
		kind, ok := KindByID(id)
		if !ok {
			doc.Log.Warnf("preset references unknown map id %q", id)
			continue
		}
		current, ok := props.Maps[kind]
		if !ok {
			continue
		}
		// Decoding in place keeps unexported setup state intact.
		if err := json.Unmarshal(raw, current); err != nil {
			return fmt.Errorf("parsing preset map %q: %w", id, err)
		}
	}
	return nil
}
