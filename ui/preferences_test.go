package ui

import (
	"errors"
	"image/color"
	"io"
	"testing"

	"dbbrowser/settings"
	"dbbrowser/utils"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePickers answers immediately with canned results
type fakePickers struct {
	directory    string
	colour       color.Color
	dirStarts    []string
	colourStarts []color.Color
}

func (f *fakePickers) ChooseDirectory(_ fyne.Window, start string, onChosen func(string)) {
	f.dirStarts = append(f.dirStarts, start)
	onChosen(f.directory)
}

func (f *fakePickers) ChooseColour(_ fyne.Window, start color.Color, onChosen func(color.Color)) {
	f.colourStarts = append(f.colourStarts, start)
	onChosen(f.colour)
}

// failingStore rejects every write
type failingStore struct {
	*settings.MemoryStore
	err error
}

func (f *failingStore) Save(settings.Key, settings.Value) error {
	return f.err
}

func assertNothingStored(t *testing.T, store settings.Store) {
	t.Helper()
	keys, err := store.Keys()
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func dialogKeys() []settings.Key {
	keys := []settings.Key{
		settings.NewKey(settings.GroupDB, settings.NameDefaultEncoding),
		settings.NewKey(settings.GroupDB, settings.NameDefaultLocation),
		settings.NewKey(settings.GroupDB, settings.NameForeignKeys),
	}
	for _, e := range settings.Elements() {
		for _, a := range settings.Attributes() {
			keys = append(keys, settings.HighlightKey(e, a))
		}
	}
	return keys
}

func newTestDialog(t *testing.T, store settings.Store) (*PreferencesDialog, *settings.Service, *fakePickers) {
	t.Helper()
	test.NewTempApp(t)

	logger := utils.NewWriterLogger(io.Discard)
	svc := settings.NewService(store, logger)
	pickers := &fakePickers{}
	return NewPreferencesDialog(svc, logger, pickers), svc, pickers
}

func TestPreferencesDialog_OpenLoadsDefaults(t *testing.T) {
	d, _, _ := newTestDialog(t, settings.NewMemoryStore())

	require.NoError(t, d.Open())
	assert.Equal(t, DialogOpen, d.State())

	assert.Equal(t, "UTF-8", d.encodingSelect.Selected)
	assert.Equal(t, settings.HomeDir(), d.locationEntry.Text)
	assert.True(t, d.foreignKeysCheck.Checked)

	keyword := d.rows[settings.ElementKeyword]
	assert.Equal(t, "#000080", keyword.colourText())
	assert.True(t, keyword.boldCheck.Checked)
	assert.False(t, keyword.italicCheck.Checked)
	assert.False(t, keyword.underlineCheck.Checked)

	comment := d.rows[settings.ElementComment]
	assert.Equal(t, "#008000", comment.colourText())
	assert.False(t, comment.boldCheck.Checked)
	assert.True(t, comment.preview.Color != nil)
}

func TestPreferencesDialog_OpenTwiceFails(t *testing.T) {
	d, _, _ := newTestDialog(t, settings.NewMemoryStore())

	require.NoError(t, d.Open())
	assert.Error(t, d.Open())
}

func TestPreferencesDialog_LoadSaveRoundTrip(t *testing.T) {
	store := settings.NewMemoryStore()
	seed := []struct {
		key   settings.Key
		value settings.Value
	}{
		{settings.NewKey(settings.GroupDB, settings.NameDefaultEncoding), settings.String("UTF-16be")},
		{settings.NewKey(settings.GroupDB, settings.NameDefaultLocation), settings.String("/srv/data")},
		{settings.NewKey(settings.GroupDB, settings.NameForeignKeys), settings.Bool(false)},
		{settings.HighlightKey(settings.ElementString, settings.AttributeColour), settings.String("#123456")},
		{settings.HighlightKey(settings.ElementString, settings.AttributeItalic), settings.Bool(true)},
		{settings.HighlightKey(settings.ElementTable, settings.AttributeBold), settings.Bool(false)},
		{settings.HighlightKey(settings.ElementIdentifier, settings.AttributeColour), settings.String("plain")},
	}
	for _, s := range seed {
		require.NoError(t, store.Save(s.key, s.value))
	}

	d, svc, _ := newTestDialog(t, store)

	before := make(map[settings.Key]settings.Value)
	for _, k := range dialogKeys() {
		v, err := svc.Value(k.Group, k.Name)
		require.NoError(t, err)
		before[k] = v
	}

	require.NoError(t, d.Open())
	require.NoError(t, d.Save())
	assert.Equal(t, DialogAccepted, d.State())

	for _, k := range dialogKeys() {
		stored, found, err := store.Load(k)
		require.NoError(t, err)
		require.True(t, found, k.Path())
		assert.True(t, before[k].Equal(stored), "%s: want %s, got %s", k, before[k], stored)
	}
}

func TestPreferencesDialog_SaveWritesEditedFields(t *testing.T) {
	store := settings.NewMemoryStore()
	d, svc, _ := newTestDialog(t, store)

	require.NoError(t, d.Open())
	d.encodingSelect.SetSelected("UTF-16le")
	d.locationEntry.SetText("/home/me/dbs")
	d.foreignKeysCheck.SetChecked(false)
	d.rows[settings.ElementComment].underlineCheck.SetChecked(true)

	require.NoError(t, d.Save())

	v, err := svc.Value(settings.GroupDB, settings.NameDefaultEncoding)
	require.NoError(t, err)
	assert.Equal(t, "UTF-16le", v.AsString())

	v, err = svc.Value(settings.GroupDB, settings.NameDefaultLocation)
	require.NoError(t, err)
	assert.Equal(t, "/home/me/dbs", v.AsString())

	stored, _, err := store.Load(settings.NewKey(settings.GroupDB, settings.NameForeignKeys))
	require.NoError(t, err)
	assert.True(t, stored.Equal(settings.Bool(false)))

	rule, err := svc.HighlightRule(settings.ElementComment)
	require.NoError(t, err)
	assert.Equal(t, settings.HighlightRule{Colour: "#008000", Underline: true}, rule)
}

func TestPreferencesDialog_SaveRequiresOpen(t *testing.T) {
	store := settings.NewMemoryStore()
	d, _, _ := newTestDialog(t, store)

	assert.ErrorIs(t, d.Save(), ErrDialogNotOpen)
	assertNothingStored(t, store)

	require.NoError(t, d.Open())
	require.NoError(t, d.Save())
	assert.ErrorIs(t, d.Save(), ErrDialogNotOpen)

	d.Cancel()
	assert.Equal(t, DialogAccepted, d.State())
}

func TestPreferencesDialog_CancelDiscards(t *testing.T) {
	store := settings.NewMemoryStore()
	d, _, _ := newTestDialog(t, store)

	var closed []DialogState
	d.OnClosed = func(state DialogState) { closed = append(closed, state) }

	require.NoError(t, d.Open())
	d.locationEntry.SetText("/elsewhere")
	d.Cancel()
	d.Cancel()

	assert.Equal(t, DialogCancelled, d.State())
	assert.Equal(t, []DialogState{DialogCancelled}, closed)
	assertNothingStored(t, store)
	assert.ErrorIs(t, d.Save(), ErrDialogNotOpen)
}

func TestPreferencesDialog_SaveErrorKeepsDialogOpen(t *testing.T) {
	store := &failingStore{MemoryStore: settings.NewMemoryStore(), err: errors.New("read-only store")}
	d, _, _ := newTestDialog(t, store)

	require.NoError(t, d.Open())
	err := d.Save()
	assert.ErrorIs(t, err, store.err)
	assert.Equal(t, DialogOpen, d.State())
}

func TestPreferencesDialog_ChooseLocation(t *testing.T) {
	store := settings.NewMemoryStore()
	d, svc, pickers := newTestDialog(t, store)
	require.NoError(t, svc.SetValue(settings.GroupDB, settings.NameDefaultLocation, settings.String("/stored")))

	require.NoError(t, d.Open())
	d.locationEntry.SetText("/typed")

	pickers.directory = "/picked"
	d.ChooseLocation()

	assert.Equal(t, []string{"/stored"}, pickers.dirStarts)
	assert.Equal(t, "/picked", d.locationEntry.Text)

	// Not persisted until Save
	v, _, err := store.Load(settings.NewKey(settings.GroupDB, settings.NameDefaultLocation))
	require.NoError(t, err)
	assert.Equal(t, "/stored", v.AsString())

	pickers.directory = ""
	d.ChooseLocation()
	assert.Equal(t, "/picked", d.locationEntry.Text)
}

func TestPreferencesDialog_EditColour(t *testing.T) {
	d, _, pickers := newTestDialog(t, settings.NewMemoryStore())
	require.NoError(t, d.Open())

	pickers.colour = color.RGBA{R: 0xAA, G: 0x10, B: 0x0F, A: 0xFF}
	d.EditColour(settings.ElementTable)

	require.Len(t, pickers.colourStarts, 1)
	start, ok := settings.ColourName(pickers.colourStarts[0])
	require.True(t, ok)
	assert.Equal(t, "#008080", start)
	assert.Equal(t, "#aa100f", d.rows[settings.ElementTable].colourText())

	// Cancelled pick
	pickers.colour = nil
	d.EditColour(settings.ElementTable)
	assert.Equal(t, "#aa100f", d.rows[settings.ElementTable].colourText())
}

func TestPreferencesDialog_EditColourIgnoresNonColourCells(t *testing.T) {
	store := settings.NewMemoryStore()
	require.NoError(t, store.Save(settings.HighlightKey(settings.ElementKeyword, settings.AttributeColour), settings.String("navy")))
	d, _, pickers := newTestDialog(t, store)
	require.NoError(t, d.Open())

	pickers.colour = color.RGBA{R: 1, G: 2, B: 3, A: 0xFF}
	d.EditColour(settings.ElementKeyword)

	assert.Empty(t, pickers.colourStarts)
	assert.Equal(t, "navy", d.rows[settings.ElementKeyword].colourText())
}

func TestPreferencesDialog_EncodingMatching(t *testing.T) {
	store := settings.NewMemoryStore()
	require.NoError(t, store.Save(settings.NewKey(settings.GroupDB, settings.NameDefaultEncoding), settings.String("utf-16LE")))
	d, _, _ := newTestDialog(t, store)

	require.NoError(t, d.Open())
	assert.Equal(t, "UTF-16le", d.encodingSelect.Selected)
}

func TestPreferencesDialog_UnknownEncodingSurvivesSave(t *testing.T) {
	store := settings.NewMemoryStore()
	key := settings.NewKey(settings.GroupDB, settings.NameDefaultEncoding)
	require.NoError(t, store.Save(key, settings.String("latin1")))
	d, _, _ := newTestDialog(t, store)

	require.NoError(t, d.Open())
	assert.Equal(t, "latin1", d.encodingSelect.Selected)
	assert.Contains(t, d.encodingSelect.Options, "latin1")

	require.NoError(t, d.Save())
	v, _, err := store.Load(key)
	require.NoError(t, err)
	assert.Equal(t, "latin1", v.AsString())
}

func TestPreferencesDialog_ShowAndCloseWindow(t *testing.T) {
	app := test.NewTempApp(t)
	logger := utils.NewWriterLogger(io.Discard)
	store := settings.NewMemoryStore()
	d := NewPreferencesDialog(settings.NewService(store, logger), logger, &fakePickers{})

	var closed []DialogState
	d.OnClosed = func(state DialogState) { closed = append(closed, state) }

	require.NoError(t, d.Show(app))
	require.NotNil(t, d.window)
	assert.Equal(t, DialogOpen, d.State())

	d.window.Close()
	assert.Equal(t, DialogCancelled, d.State())
	assert.Equal(t, []DialogState{DialogCancelled}, closed)
	assert.Nil(t, d.window)
	assertNothingStored(t, store)
}

func TestPreferencesDialog_SaveClosesWindow(t *testing.T) {
	app := test.NewTempApp(t)
	logger := utils.NewWriterLogger(io.Discard)
	d := NewPreferencesDialog(settings.NewService(settings.NewMemoryStore(), logger), logger, &fakePickers{})

	var closed []DialogState
	d.OnClosed = func(state DialogState) { closed = append(closed, state) }

	require.NoError(t, d.Show(app))
	require.NoError(t, d.Save())

	assert.Nil(t, d.window)
	assert.Equal(t, []DialogState{DialogAccepted}, closed)
}
