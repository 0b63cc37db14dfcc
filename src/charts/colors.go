package charts

import "github.com/elee1766/naochat/src/schema"

// Palette is the fallback series palette, resolved by the client theme.
var Palette = []string{
	"var(--chart-1)",
	"var(--chart-2)",
	"var(--chart-3)",
	"var(--chart-4)",
	"var(--chart-5)",
}

// PaletteColor returns the palette entry for position idx.
func PaletteColor(idx int) string {
	if idx < 0 {
		idx = -idx
	}
	return Palette[idx%len(Palette)]
}

// SeriesColor returns the explicit series color, or the palette color for its
// position.
func SeriesColor(s schema.SeriesConfig, idx int) string {
	if s.Color != "" {
		return s.Color
	}
	return PaletteColor(idx)
}

// Slice is one pie category.
type Slice struct {
	Key   int64  `json:"key"`
	Value string `json:"value"`
	Label string `json:"label"`
	Color string `json:"color"`
}

// PieSlices assigns palette colors to the distinct x values in first-seen order.
func PieSlices(data []map[string]any, xKey string) []Slice {
	seen := make(map[string]bool)
	var out []Slice
	for _, rec := range data {
		v := stringify(rec[xKey])
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, Slice{
			Key:   ToKey(v),
			Value: v,
			Label: Labelize(v),
			Color: PaletteColor(len(out)),
		})
	}
	return out
}
