package common

// Shape classifies what a decoder produced.
type Shape int

const (
	// ShapeTable is a single sheet decoded from an array of records or a CSV file.
	ShapeTable Shape = iota
	// ShapeWorkbook is a set of named sheets.
	ShapeWorkbook
	// ShapeTree is an arbitrary JSON value that is not tabular.
	ShapeTree
)

func (s Shape) String() string {
	switch s {
	case ShapeTable:
		return "table"
	case ShapeWorkbook:
		return "workbook"
	case ShapeTree:
		return "tree"
	}
	return "unknown"
}

// Dataset is the decoded form of one uploaded file.
type Dataset struct {
	Shape    Shape
	Workbook *Workbook
	// Tree holds the raw decoded value for JSON sources, whatever the shape.
	Tree interface{}
}

// Decoder turns source bytes into a Dataset.
type Decoder interface {
	Decode(src []byte, config *ConversionConfig) (*Dataset, error)
}

// Encoder turns a Dataset into one or more artifacts.
type Encoder interface {
	Encode(ds *Dataset, config *ConversionConfig) ([]Artifact, error)
}
