package xml

import (
	"bytes"
	"encoding/xml"
	"strings"
)

const indent = "  "

// Builder writes indented XML elements. When escape is false, text and
// attribute values are written exactly as given.
type Builder struct {
	buf    bytes.Buffer
	escape bool
	depth  int
}

// NewBuilder starts a document with an XML declaration.
func NewBuilder(escape bool) *Builder {
	b := &Builder{escape: escape}
	b.buf.WriteString(xml.Header)
	return b
}

// Attr is one element attribute.
type Attr struct {
	Name, Value string
}

// Open writes a start tag and increases the depth.
func (b *Builder) Open(tag string, attrs ...Attr) {
	b.pad()
	b.startTag(tag, attrs)
	b.buf.WriteByte('\n')
	b.depth++
}

// Close writes an end tag and decreases the depth.
func (b *Builder) Close(tag string) {
	b.depth--
	b.pad()
	b.buf.WriteString("</" + tag + ">\n")
}

// Leaf writes an element holding only text.
func (b *Builder) Leaf(tag, text string) {
	b.pad()
	b.startTag(tag, nil)
	b.text(text)
	b.buf.WriteString("</" + tag + ">\n")
}

// String returns the document written so far.
func (b *Builder) String() string {
	return b.buf.String()
}

func (b *Builder) startTag(tag string, attrs []Attr) {
	b.buf.WriteString("<" + tag)
	for _, a := range attrs {
		b.buf.WriteString(" " + a.Name + `="`)
		b.text(a.Value)
		b.buf.WriteByte('"')
	}
	b.buf.WriteByte('>')
}

func (b *Builder) text(s string) {
	if !b.escape {
		b.buf.WriteString(s)
		return
	}
	// EscapeText only fails when the writer does.
	_ = xml.EscapeText(&b.buf, []byte(s))
}

func (b *Builder) pad() {
	b.buf.WriteString(strings.Repeat(indent, b.depth))
}
