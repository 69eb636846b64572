package settings

import (
	"strings"

	"github.com/mitchellh/go-homedir"
)

// Default highlighting colours
const (
	DefaultKeywordColour    = "#000080"
	DefaultTableColour      = "#008080"
	DefaultCommentColour    = "#008000"
	DefaultIdentifierColour = "#800080"
	DefaultStringColour     = "#ff0000"
)

var defaultColours = map[string]string{
	"keyword_colour":    DefaultKeywordColour,
	"table_colour":      DefaultTableColour,
	"comment_colour":    DefaultCommentColour,
	"identifier_colour": DefaultIdentifierColour,
	"string_colour":     DefaultStringColour,
}

// HomeDir returns the user's home directory, or "" if it cannot be determined
func HomeDir() string {
	home, err := homedir.Dir()
	if err != nil {
		return ""
	}
	return home
}

// Default returns the value used when group/name has never been stored.
// Unknown keys yield Invalid.
func Default(group, name string) Value {
	switch group {
	case GroupDB:
		switch name {
		case NameDefaultEncoding:
			return String("UTF-8")
		case NameDefaultLocation:
			return String(HomeDir())
		case NameForeignKeys:
			return Bool(true)
		}

	case GroupMainWindow:
		if name == NameGeometry || name == NameWindowState {
			return String("")
		}

	case GroupSQLLogDock:
		if name == NameLog {
			return String("Application")
		}

	case GroupGeneral:
		if name == NameRecentFileList {
			return StringList(nil)
		}

	case GroupSyntaxHighlighter:
		return defaultHighlight(name)
	}

	return Invalid()
}

// defaultHighlight matches on the attribute suffix: only keywords and tables
// are bold, nothing is italic or underlined.
func defaultHighlight(name string) Value {
	switch {
	case strings.HasSuffix(name, "bold"):
		return Bool(name == "keyword_bold" || name == "table_bold")
	case strings.HasSuffix(name, "italic"):
		return Bool(false)
	case strings.HasSuffix(name, "underline"):
		return Bool(false)
	case strings.HasSuffix(name, "colour"):
		if c, ok := defaultColours[name]; ok {
			return String(c)
		}
	}
	return Invalid()
}

// KnownKeys lists every key the default table covers
func KnownKeys() []Key {
	keys := []Key{
		{GroupDB, NameDefaultEncoding},
		{GroupDB, NameDefaultLocation},
		{GroupDB, NameForeignKeys},
		{GroupMainWindow, NameGeometry},
		{GroupMainWindow, NameWindowState},
		{GroupSQLLogDock, NameLog},
		{GroupGeneral, NameRecentFileList},
	}
	for _, e := range Elements() {
		for _, a := range Attributes() {
			keys = append(keys, HighlightKey(e, a))
		}
	}
	return keys
}
