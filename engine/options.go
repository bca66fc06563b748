package engine

// ============================================================================
// ENGINE OPTIONS - Functional options for Build()
// ============================================================================

// Defaults matching the charting conventions the page is drawn with.
const (
	DefaultHistogramBins = 20
	DefaultMaxMarkerSize = 20.0
)

// Option configures engine behavior via functional options pattern.
type Option func(*config)

type config struct {
	HistogramBins int      // number of equal-width Stock bins
	MaxMarkerSize float64  // scatter marker diameter for the largest Stock
	Palette       []string // overrides the theme palette when set
}

// WithHistogramBins sets the number of histogram bins. Values below 1 are ignored.
func WithHistogramBins(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.HistogramBins = n
		}
	}
}

// WithMaxMarkerSize sets the scatter marker diameter, in pixels, given to
// the row with the largest Stock.
func WithMaxMarkerSize(px float64) Option {
	return func(c *config) {
		if px > 0 {
			c.MaxMarkerSize = px
		}
	}
}

// WithPalette replaces the theme's series colors.
func WithPalette(colors []string) Option {
	return func(c *config) {
		c.Palette = colors
	}
}

// applyOptions creates a config from functional options.
func applyOptions(opts []Option) *config {
	cfg := &config{
		HistogramBins: DefaultHistogramBins,
		MaxMarkerSize: DefaultMaxMarkerSize,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
