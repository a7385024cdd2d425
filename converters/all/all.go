package all

import (
	// Import all the converters so they register themselves
	_ "github.com/darianmavgo/tabconv/converters/csv"
	_ "github.com/darianmavgo/tabconv/converters/excel"
	_ "github.com/darianmavgo/tabconv/converters/html"
	_ "github.com/darianmavgo/tabconv/converters/json"
	_ "github.com/darianmavgo/tabconv/converters/sqlite"
	_ "github.com/darianmavgo/tabconv/converters/sqlscript"
	_ "github.com/darianmavgo/tabconv/converters/xml"
)
