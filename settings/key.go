package settings

import (
	"fmt"
	"strings"
)

// Setting groups
const (
	GroupDB                = "db"
	GroupSyntaxHighlighter = "syntaxhighlighter"
	GroupMainWindow        = "MainWindow"
	GroupSQLLogDock        = "SQLLogDock"
	GroupGeneral           = "General"
)

// Setting names
const (
	NameDefaultEncoding = "defaultencoding"
	NameDefaultLocation = "defaultlocation"
	NameForeignKeys     = "foreignkeys"
	NameGeometry        = "geometry"
	NameWindowState     = "windowState"
	NameLog             = "Log"
	NameRecentFileList  = "recentFileList"
)

// Key identifies one persisted setting
type Key struct {
	Group string
	Name  string
}

// NewKey builds a Key
func NewKey(group, name string) Key {
	return Key{Group: group, Name: name}
}

// Path returns the hierarchical "group/name" form used by stores
func (k Key) Path() string {
	return k.Group + "/" + k.Name
}

func (k Key) String() string {
	return k.Path()
}

// ParseKey splits "group/name". The group is everything before the first slash.
func ParseKey(path string) (Key, error) {
	group, name, ok := strings.Cut(path, "/")
	if !ok || group == "" || name == "" {
		return Key{}, fmt.Errorf("invalid setting key %q, expected group/name", path)
	}
	return Key{Group: group, Name: name}, nil
}

// Element is a syntax element with its own highlighting rule
type Element int

const (
	ElementKeyword Element = iota
	ElementTable
	ElementComment
	ElementIdentifier
	ElementString
)

var elementNames = map[Element]string{
	ElementKeyword:    "keyword",
	ElementTable:      "table",
	ElementComment:    "comment",
	ElementIdentifier: "identifier",
	ElementString:     "string",
}

// Elements returns all elements in display order
func Elements() []Element {
	return []Element{ElementKeyword, ElementTable, ElementComment, ElementIdentifier, ElementString}
}

func (e Element) String() string {
	if name, ok := elementNames[e]; ok {
		return name
	}
	return fmt.Sprintf("element(%d)", int(e))
}

// Title is the label shown in the preferences dialog
func (e Element) Title() string {
	name := e.String()
	return strings.ToUpper(name[:1]) + name[1:]
}

// Attribute is one column of the highlighting table
type Attribute int

const (
	AttributeColour Attribute = iota
	AttributeBold
	AttributeItalic
	AttributeUnderline
)

func (a Attribute) String() string {
	switch a {
	case AttributeColour:
		return "colour"
	case AttributeBold:
		return "bold"
	case AttributeItalic:
		return "italic"
	case AttributeUnderline:
		return "underline"
	}
	return fmt.Sprintf("attribute(%d)", int(a))
}

// Attributes returns all highlighting attributes in column order
func Attributes() []Attribute {
	return []Attribute{AttributeColour, AttributeBold, AttributeItalic, AttributeUnderline}
}

// HighlightKey returns the key storing attribute a of element e,
// e.g. syntaxhighlighter/keyword_bold
func HighlightKey(e Element, a Attribute) Key {
	return Key{Group: GroupSyntaxHighlighter, Name: e.String() + "_" + a.String()}
}

// HighlightRule is the style applied to one syntax element
type HighlightRule struct {
	Colour    string
	Bold      bool
	Italic    bool
	Underline bool
}
