package settings

import (
	"dbbrowser/utils"
)

// Service reads and writes preferences through a Store and caches every
// value it has seen. The cache is only ever updated by reads of uncached
// keys and by successful writes, so it stays coherent with the store as long
// as nothing else writes to the store. Not safe for concurrent use; it is
// driven from the UI event loop.
type Service struct {
	store  Store
	logger *utils.Logger
	cache  map[Key]Value
}

// NewService creates a Service over store
func NewService(store Store, logger *utils.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
		cache:  make(map[Key]Value),
	}
}

// Value returns the setting group/name: the cached value if any, else the
// stored value, else the default. Unknown keys without a stored value are
// Invalid.
func (s *Service) Value(group, name string) (Value, error) {
	key := NewKey(group, name)
	if v, ok := s.cache[key]; ok {
		return v, nil
	}

	v, found, err := s.store.Load(key)
	if err != nil {
		return Invalid(), utils.WrapError(err, "failed to read setting "+key.Path())
	}
	if !found {
		v = Default(group, name)
		s.logger.Debug("Setting %s not stored, using default %s", key, v)
	}

	s.cache[key] = v
	return v, nil
}

// SetValue stores v under group/name and updates the cache
func (s *Service) SetValue(group, name string, v Value) error {
	key := NewKey(group, name)
	if err := s.store.Save(key, v); err != nil {
		return utils.WrapError(err, "failed to write setting "+key.Path())
	}
	s.cache[key] = v
	s.logger.Debug("Setting %s = %s", key, v)
	return nil
}

// Default returns the built-in default for group/name
func (s *Service) Default(group, name string) Value {
	return Default(group, name)
}

// Reset stores the default value for group/name. A key without a default is
// removed from the store instead; ErrUnknownSetting is returned if nothing
// was stored under it.
func (s *Service) Reset(group, name string) error {
	key := NewKey(group, name)
	if def := s.Default(group, name); def.IsValid() {
		return s.SetValue(group, name, def)
	}

	_, found, err := s.store.Load(key)
	if err != nil {
		return utils.WrapError(err, "failed to read setting "+key.Path())
	}
	if !found {
		return utils.WrapError(ErrUnknownSetting, key.Path())
	}
	if err := s.store.Delete(key); err != nil {
		return utils.WrapError(err, "failed to delete setting "+key.Path())
	}
	delete(s.cache, key)
	s.logger.Debug("Setting %s removed", key)
	return nil
}

// Keys returns every known key followed by the other stored keys
func (s *Service) Keys() ([]Key, error) {
	keys := KnownKeys()
	known := make(map[Key]bool, len(keys))
	for _, k := range keys {
		known[k] = true
	}

	stored, err := s.store.Keys()
	if err != nil {
		return nil, utils.WrapError(err, "failed to list settings")
	}
	for _, k := range stored {
		if !known[k] {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

// HighlightRule returns the style configured for one syntax element
func (s *Service) HighlightRule(e Element) (HighlightRule, error) {
	var rule HighlightRule
	for _, a := range Attributes() {
		key := HighlightKey(e, a)
		v, err := s.Value(key.Group, key.Name)
		if err != nil {
			return HighlightRule{}, err
		}
		switch a {
		case AttributeColour:
			rule.Colour = v.AsString()
		case AttributeBold:
			rule.Bold = v.AsBool()
		case AttributeItalic:
			rule.Italic = v.AsBool()
		case AttributeUnderline:
			rule.Underline = v.AsBool()
		}
	}
	return rule, nil
}

// SetHighlightRule stores all four attributes of an element's rule
func (s *Service) SetHighlightRule(e Element, rule HighlightRule) error {
	values := map[Attribute]Value{
		AttributeColour:    String(rule.Colour),
		AttributeBold:      Bool(rule.Bold),
		AttributeItalic:    Bool(rule.Italic),
		AttributeUnderline: Bool(rule.Underline),
	}
	for _, a := range Attributes() {
		key := HighlightKey(e, a)
		if err := s.SetValue(key.Group, key.Name, values[a]); err != nil {
			return err
		}
	}
	return nil
}

// RecentFiles returns the recently opened databases, most recent first
func (s *Service) RecentFiles() ([]string, error) {
	v, err := s.Value(GroupGeneral, NameRecentFileList)
	if err != nil {
		return nil, err
	}
	return v.AsStringList(), nil
}

// AddRecentFile moves path to the front of the recent file list, keeping at
// most max entries. max <= 0 means unlimited.
func (s *Service) AddRecentFile(path string, max int) ([]string, error) {
	current, err := s.RecentFiles()
	if err != nil {
		return nil, err
	}
	updated := PushRecent(current, path, max)
	if err := s.SetValue(GroupGeneral, NameRecentFileList, StringList(updated)); err != nil {
		return nil, err
	}
	return updated, nil
}

// PushRecent returns list with path moved (or added) to the front
func PushRecent(list []string, path string, max int) []string {
	out := make([]string, 0, len(list)+1)
	out = append(out, path)
	for _, p := range list {
		if p != path {
			out = append(out, p)
		}
	}
	if max > 0 && len(out) > max {
		out = out[:max]
	}
	return out
}
