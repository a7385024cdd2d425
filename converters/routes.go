package converters

import (
	"fmt"

	"github.com/darianmavgo/tabconv/converters/common"
)

// Route pairs a source format with a target format and the policy the
// conversion runs with. Source and Target are registry format names.
type Route struct {
	Source string
	Target string
	Config common.ConversionConfig
	// Archive bundles the encoder's artifacts into one zip file.
	Archive bool
}

// Name is the route's public name, e.g. "csv-to-sql".
func (r Route) Name() string {
	return r.Source + "-to-" + r.Target
}

// spreadsheetTargets are shared by every source decoding to a workbook.
func spreadsheetTargets(source string) []Route {
	return []Route{
		{Source: source, Target: "csv", Config: common.ConversionConfig{PerSheet: true}, Archive: true},
		{Source: source, Target: "json"},
		{Source: source, Target: "sql", Config: common.ConversionConfig{SQLQuote: common.QuoteBacktick}},
		{Source: source, Target: "xml", Config: common.ConversionConfig{XMLStrategy: common.XMLTabular}},
		{Source: source, Target: "sqlite"},
	}
}

var routes = buildRoutes()

func buildRoutes() []Route {
	var list []Route
	list = append(list, spreadsheetTargets("excel")...)

	list = append(list,
		Route{Source: "csv", Target: "excel"},
		// The JSON path has always split lines naively.
		Route{Source: "csv", Target: "json", Config: common.ConversionConfig{CSVMode: common.CSVNaive}},
		Route{Source: "csv", Target: "sql", Config: common.ConversionConfig{SQLCreateTable: true}},
		Route{Source: "csv", Target: "xml", Config: common.ConversionConfig{XMLStrategy: common.XMLFlat}},
		Route{Source: "csv", Target: "sqlite"},

		Route{Source: "json", Target: "excel"},
		Route{Source: "json", Target: "csv"},
		Route{Source: "json", Target: "sql"},
		Route{Source: "json", Target: "xml", Config: common.ConversionConfig{XMLStrategy: common.XMLNested}},
		Route{Source: "json", Target: "sqlite"},
	)

	list = append(list, spreadsheetTargets("html")...)
	list = append(list, Route{Source: "html", Target: "excel"})
	return list
}

// Routes returns every supported conversion in a stable order.
func Routes() []Route {
	out := make([]Route, len(routes))
	copy(out, routes)
	return out
}

// LookupRoute finds the route converting source into target.
func LookupRoute(source, target string) (Route, error) {
	for _, r := range routes {
		if r.Source == source && r.Target == target {
			return r, nil
		}
	}
	return Route{}, fmt.Errorf("converters: no route from %q to %q", source, target)
}
