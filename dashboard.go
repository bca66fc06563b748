// Package dashboard serves an interactive product catalog dashboard.
//
// A product CSV is loaded once at startup. Every request builds a view
// model from it for one category selection and theme:
//
//	ds, err := dataset.Load("products-100.csv")
//	vm := engine.Build(ds, engine.Selection{Categories: []string{"Electronics"}})
//
// The view model carries five charts (sunburst, bar, pie, scatter,
// histogram), the grid rows and the theme identifiers. The server package
// exposes it over HTTP together with the page and server-rendered images.
// Nothing is written back to the dataset; all computation is local.
package dashboard

// Version is reported by the CLI and shown in the page footer.
const Version = "0.1.0"
