package common

// CSVParseMode selects how delimited text is split into fields.
type CSVParseMode int

const (
	// CSVStrict honors quoted fields, embedded delimiters and newlines.
	CSVStrict CSVParseMode = iota
	// CSVNaive splits lines on '\n' and fields on the delimiter with no quote handling.
	CSVNaive
)

func (m CSVParseMode) String() string {
	if m == CSVNaive {
		return "naive"
	}
	return "strict"
}

// IdentQuote selects how SQL identifiers are written.
type IdentQuote int

const (
	QuoteNone IdentQuote = iota
	QuoteBacktick
)

// XMLStrategy selects the XML layout.
type XMLStrategy int

const (
	// XMLTabular writes <sheet name=".."><row><col>v</col></row></sheet>, unescaped.
	XMLTabular XMLStrategy = iota
	// XMLNested walks an arbitrary JSON value with sanitized tag names, unescaped.
	XMLNested
	// XMLFlat writes <root><item><col>v</col></item></root>, escaped.
	XMLFlat
)

// ConversionConfig stores configuration options for one conversion.
type ConversionConfig struct {
	Name        string       // Base name of the source file; default sheet, table and root name
	CSVMode     CSVParseMode // CSV decode behavior
	Delimiter   rune         // Delimiter for CSV decode; 0 means ','
	DetectDelim bool         // Guess the delimiter from the header line (strict mode)

	SQLQuote       IdentQuote // Identifier quoting for SQL output
	SQLCreateTable bool       // Emit CREATE TABLE before the inserts

	XMLStrategy XMLStrategy

	PerSheet bool // Encode every sheet into its own artifact

	WorkDir   string // Scratch directory for encoders that need a file; "" means os.TempDir()
	BatchSize int    // Rows per transaction for database targets; 0 means DefaultBatchSize
}

// DefaultBatchSize is the number of rows inserted before a commit.
const DefaultBatchSize = 1000

// Comma returns the configured delimiter or ','.
func (c *ConversionConfig) Comma() rune {
	if c == nil || c.Delimiter == 0 {
		return ','
	}
	return c.Delimiter
}
