package theme

// Identifiers for the two built-in themes.
const (
	Light = "light"
	Dark  = "dark"
)

// Definition describes one visual variant of the dashboard. Only styling
// hangs off a Definition; nothing here changes which data is shown.
type Definition struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Icon        string `json:"icon"`

	// ChartTemplate names the Plotly template applied to every chart.
	ChartTemplate string `json:"chartTemplate"`
	// GridClass is the AG Grid theme CSS class.
	GridClass string `json:"gridClass"`
	// Stylesheet is the Bootstrap theme applied to the page chrome.
	Stylesheet string `json:"stylesheet"`

	Background string   `json:"background"`
	Foreground string   `json:"foreground"`
	GridLine   string   `json:"gridLine"`
	Palette    []string `json:"palette"`
}

var registry = map[string]Definition{
	Light: {
		ID:            Light,
		Label:         "Light",
		Description:   "Minty page chrome with white plot backgrounds.",
		Icon:          "fa fa-sun",
		ChartTemplate: "plotly_white",
		GridClass:     "ag-theme-alpine",
		Stylesheet:    "https://cdn.jsdelivr.net/npm/bootswatch@5.3.3/dist/minty/bootstrap.min.css",
		Background:    "#FFFFFF",
		Foreground:    "#2A3F5F",
		GridLine:      "#EBF0F8",
		Palette: []string{
			"#636EFA", "#EF553B", "#00CC96", "#AB63FA", "#FFA15A",
			"#19D3F3", "#FF6692", "#B6E880", "#FF97FF", "#FECB52",
		},
	},
	Dark: {
		ID:            Dark,
		Label:         "Dark",
		Description:   "Darkly page chrome with near-black plot backgrounds.",
		Icon:          "fa fa-moon",
		ChartTemplate: "plotly_dark",
		GridClass:     "ag-theme-alpine-dark",
		Stylesheet:    "https://cdn.jsdelivr.net/npm/bootswatch@5.3.3/dist/darkly/bootstrap.min.css",
		Background:    "#111111",
		Foreground:    "#F2F5FA",
		GridLine:      "#283442",
		Palette: []string{
			"#636EFA", "#EF553B", "#00CC96", "#AB63FA", "#FFA15A",
			"#19D3F3", "#FF6692", "#B6E880", "#FF97FF", "#FECB52",
		},
	},
}

// ForFlag maps the dashboard's boolean theme switch to a definition.
func ForFlag(dark bool) Definition {
	if dark {
		return registry[Dark]
	}
	return registry[Light]
}

// ByID returns the definition for id, falling back to the light theme.
func ByID(id string) Definition {
	if def, ok := registry[id]; ok {
		return def
	}
	return registry[Light]
}

// Options lists all definitions with the light theme first, matching the
// switch layout (sun on the left, moon on the right).
func Options() []Definition {
	options := make([]Definition, 0, len(switchOrder))
	for _, id := range switchOrder {
		options = append(options, registry[id])
	}
	return options
}

var switchOrder = []string{Light, Dark}

// Color returns the palette entry for the i-th series, cycling.
func (d Definition) Color(i int) string {
	if len(d.Palette) == 0 {
		return d.Foreground
	}
	return d.Palette[i%len(d.Palette)]
}
