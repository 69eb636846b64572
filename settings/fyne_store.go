package settings

import (
	"fmt"

	"fyne.io/fyne/v2"
)

const (
	// kindSuffix marks the companion key recording which variant is stored
	kindSuffix = "#kind"
	// indexKey lists the paths of all stored settings
	indexKey = "#keys"
)

// PreferencesStore persists settings through fyne's per-application
// preferences, so the app ID plays the role of the organization identity.
type PreferencesStore struct {
	prefs fyne.Preferences
}

// NewPreferencesStore wraps the preferences of a fyne app
func NewPreferencesStore(prefs fyne.Preferences) *PreferencesStore {
	return &PreferencesStore{prefs: prefs}
}

func (p *PreferencesStore) Load(key Key) (Value, bool, error) {
	path := key.Path()
	kindName := p.prefs.StringWithFallback(path+kindSuffix, "")
	if kindName == "" {
		return Invalid(), false, nil
	}

	kind, err := ParseKind(kindName)
	if err != nil {
		return Invalid(), false, fmt.Errorf("setting %s: %w", key, err)
	}

	switch kind {
	case KindString:
		return String(p.prefs.String(path)), true, nil
	case KindBool:
		return Bool(p.prefs.Bool(path)), true, nil
	default:
		return StringList(p.prefs.StringList(path)), true, nil
	}
}

func (p *PreferencesStore) Save(key Key, v Value) error {
	path := key.Path()
	switch v.Kind() {
	case KindString:
		p.prefs.SetString(path, v.AsString())
	case KindBool:
		p.prefs.SetBool(path, v.AsBool())
	case KindStringList:
		p.prefs.SetStringList(path, v.AsStringList())
	default:
		return fmt.Errorf("cannot store an invalid value under %s", key)
	}
	p.prefs.SetString(path+kindSuffix, v.Kind().String())

	index := p.prefs.StringList(indexKey)
	for _, existing := range index {
		if existing == path {
			return nil
		}
	}
	p.prefs.SetStringList(indexKey, append(index, path))
	return nil
}

func (p *PreferencesStore) Delete(key Key) error {
	path := key.Path()
	p.prefs.RemoveValue(path)
	p.prefs.RemoveValue(path + kindSuffix)

	index := p.prefs.StringList(indexKey)
	kept := make([]string, 0, len(index))
	for _, existing := range index {
		if existing != path {
			kept = append(kept, existing)
		}
	}
	p.prefs.SetStringList(indexKey, kept)
	return nil
}

func (p *PreferencesStore) Keys() ([]Key, error) {
	index := p.prefs.StringList(indexKey)
	keys := make([]Key, 0, len(index))
	for _, path := range index {
		key, err := ParseKey(path)
		if err != nil {
			return nil, fmt.Errorf("settings index: %w", err)
		}
		keys = append(keys, key)
	}
	sortKeys(keys)
	return keys, nil
}
