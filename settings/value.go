package settings

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies which variant a Value holds
type Kind int

const (
	KindInvalid Kind = iota
	KindString
	KindBool
	KindStringList
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindStringList:
		return "stringlist"
	default:
		return "invalid"
	}
}

// ParseKind is the inverse of Kind.String
func ParseKind(s string) (Kind, error) {
	switch s {
	case "string":
		return KindString, nil
	case "bool":
		return KindBool, nil
	case "stringlist", "list":
		return KindStringList, nil
	}
	return KindInvalid, fmt.Errorf("unknown setting kind %q", s)
}

// Value is a setting value. The zero Value is Invalid, the "no value" result
// for keys without a default.
type Value struct {
	kind Kind
	str  string
	b    bool
	list []string
}

// String returns a string Value
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// Bool returns a boolean Value
func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// StringList returns a list Value. A nil list is stored as an empty one.
func StringList(list []string) Value {
	cp := make([]string, len(list))
	copy(cp, list)
	return Value{kind: KindStringList, list: cp}
}

// Invalid returns the "no value" sentinel
func Invalid() Value {
	return Value{}
}

func (v Value) Kind() Kind {
	return v.kind
}

func (v Value) IsValid() bool {
	return v.kind != KindInvalid
}

// AsString converts the value to a string. Lists are joined with commas.
func (v Value) AsString() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindStringList:
		return strings.Join(v.list, ",")
	}
	return ""
}

// AsBool converts the value to a bool. Strings are false when empty, "0" or
// "false" (case-insensitive) and true otherwise.
func (v Value) AsBool() bool {
	switch v.kind {
	case KindBool:
		return v.b
	case KindString:
		s := strings.ToLower(strings.TrimSpace(v.str))
		return s != "" && s != "0" && s != "false"
	}
	return false
}

// AsStringList converts the value to a list. A non-empty string becomes a
// one-element list.
func (v Value) AsStringList() []string {
	switch v.kind {
	case KindStringList:
		cp := make([]string, len(v.list))
		copy(cp, v.list)
		return cp
	case KindString:
		if v.str != "" {
			return []string{v.str}
		}
	case KindBool:
		return []string{strconv.FormatBool(v.b)}
	}
	return []string{}
}

// Equal reports whether both values have the same kind and contents
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == o.str
	case KindBool:
		return v.b == o.b
	case KindStringList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if v.list[i] != o.list[i] {
				return false
			}
		}
	}
	return true
}

func (v Value) String() string {
	if v.kind == KindStringList {
		return "[" + v.AsString() + "]"
	}
	if v.kind == KindInvalid {
		return "<invalid>"
	}
	return v.AsString()
}

// Interface returns the value as a plain Go value (string, bool, []string or nil)
func (v Value) Interface() interface{} {
	switch v.kind {
	case KindString:
		return v.str
	case KindBool:
		return v.b
	case KindStringList:
		return v.AsStringList()
	}
	return nil
}

// FromInterface converts a decoded JSON/YAML/TOML value into a Value
func FromInterface(x interface{}) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Invalid(), nil
	case string:
		return String(t), nil
	case bool:
		return Bool(t), nil
	case []string:
		return StringList(t), nil
	case []interface{}:
		list := make([]string, 0, len(t))
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return Invalid(), fmt.Errorf("list item %v is not a string", item)
			}
			list = append(list, s)
		}
		return StringList(list), nil
	}
	return Invalid(), fmt.Errorf("unsupported setting value type %T", x)
}

// ParseValue parses text given on a command line or typed by a user
func ParseValue(kind Kind, text string) (Value, error) {
	switch kind {
	case KindString:
		return String(text), nil
	case KindBool:
		b, err := strconv.ParseBool(strings.TrimSpace(text))
		if err != nil {
			return Invalid(), fmt.Errorf("invalid bool %q: %w", text, err)
		}
		return Bool(b), nil
	case KindStringList:
		if strings.TrimSpace(text) == "" {
			return StringList(nil), nil
		}
		parts := strings.Split(text, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return StringList(parts), nil
	}
	return Invalid(), fmt.Errorf("cannot parse a value of kind %s", kind)
}

// encode returns the kind name and textual payload used by text-based stores
func encode(v Value) (string, string, error) {
	switch v.kind {
	case KindString:
		return v.kind.String(), v.str, nil
	case KindBool:
		return v.kind.String(), strconv.FormatBool(v.b), nil
	case KindStringList:
		data, err := json.Marshal(v.AsStringList())
		if err != nil {
			return "", "", fmt.Errorf("failed to encode list: %w", err)
		}
		return v.kind.String(), string(data), nil
	}
	return "", "", fmt.Errorf("cannot store an invalid value")
}

func decode(kind, payload string) (Value, error) {
	k, err := ParseKind(kind)
	if err != nil {
		return Invalid(), err
	}
	switch k {
	case KindString:
		return String(payload), nil
	case KindBool:
		b, err := strconv.ParseBool(payload)
		if err != nil {
			return Invalid(), fmt.Errorf("failed to decode bool: %w", err)
		}
		return Bool(b), nil
	default:
		var list []string
		if err := json.Unmarshal([]byte(payload), &list); err != nil {
			return Invalid(), fmt.Errorf("failed to decode list: %w", err)
		}
		return StringList(list), nil
	}
}
