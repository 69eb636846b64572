package cmd

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"dbbrowser/settings"
	"dbbrowser/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runSettings executes the settings command against svc and returns stdout
func runSettings(t *testing.T, svc *settings.Service, args ...string) (string, error) {
	t.Helper()

	open := func() (*settings.Service, func(), error) {
		return svc, func() {}, nil
	}
	cmd := newSettingsCmd(open)

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func newService(store settings.Store) *settings.Service {
	return settings.NewService(store, utils.NewWriterLogger(io.Discard))
}

func TestSettingsGet_Default(t *testing.T) {
	svc := newService(settings.NewMemoryStore())

	out, err := runSettings(t, svc, "get", "db/defaultencoding")
	require.NoError(t, err)
	assert.Equal(t, "UTF-8\n", out)

	out, err = runSettings(t, svc, "get", "syntaxhighlighter/keyword_colour")
	require.NoError(t, err)
	assert.Equal(t, "#000080\n", out)
}

func TestSettingsGet_Unknown(t *testing.T) {
	svc := newService(settings.NewMemoryStore())

	_, err := runSettings(t, svc, "get", "nowhere/nothing")
	assert.ErrorIs(t, err, settings.ErrUnknownSetting)

	_, err = runSettings(t, svc, "get", "missing-slash")
	assert.Error(t, err)
}

func TestSettingsSet_UsesDefaultKind(t *testing.T) {
	store := settings.NewMemoryStore()
	svc := newService(store)

	_, err := runSettings(t, svc, "set", "db/foreignkeys", "false")
	require.NoError(t, err)

	v, found, err := store.Load(settings.NewKey(settings.GroupDB, settings.NameForeignKeys))
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, v.Equal(settings.Bool(false)))

	_, err = runSettings(t, svc, "set", "db/foreignkeys", "maybe")
	assert.Error(t, err)
}

func TestSettingsSet_ExplicitKind(t *testing.T) {
	store := settings.NewMemoryStore()
	svc := newService(store)

	_, err := runSettings(t, svc, "set", "--kind", "stringlist", "custom/paths", "a, b")
	require.NoError(t, err)

	v, found, err := store.Load(settings.NewKey("custom", "paths"))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []string{"a", "b"}, v.AsStringList())

	_, err = runSettings(t, svc, "set", "--kind", "number", "custom/n", "1")
	assert.Error(t, err)
}

func TestSettingsList(t *testing.T) {
	svc := newService(settings.NewMemoryStore())
	require.NoError(t, svc.SetValue(settings.GroupDB, settings.NameDefaultLocation, settings.String("/data")))

	out, err := runSettings(t, svc, "list")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, len(settings.KnownKeys()))
	assert.Contains(t, out, "db/defaultlocation")
	assert.Contains(t, out, "/data")
	assert.Contains(t, out, "syntaxhighlighter/string_underline")
}

func TestSettingsList_IncludesStoredExtras(t *testing.T) {
	svc := newService(settings.NewMemoryStore())

	_, err := runSettings(t, svc, "set", "--kind", "string", "custom/x", "v")
	require.NoError(t, err)

	out, err := runSettings(t, svc, "list")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, len(settings.KnownKeys())+1)
	assert.Equal(t, []string{"custom/x", "string", "v"}, strings.Fields(lines[len(lines)-1]))
}

func TestSettingsReset(t *testing.T) {
	svc := newService(settings.NewMemoryStore())
	require.NoError(t, svc.SetValue(settings.GroupDB, settings.NameDefaultEncoding, settings.String("UTF-16")))

	_, err := runSettings(t, svc, "reset", "db/defaultencoding")
	require.NoError(t, err)

	v, err := svc.Value(settings.GroupDB, settings.NameDefaultEncoding)
	require.NoError(t, err)
	assert.Equal(t, "UTF-8", v.AsString())

	_, err = runSettings(t, svc, "reset", "custom/thing")
	assert.ErrorIs(t, err, settings.ErrUnknownSetting)
}

func TestSettingsReset_RemovesKeyWithoutDefault(t *testing.T) {
	store := settings.NewMemoryStore()
	svc := newService(store)

	_, err := runSettings(t, svc, "set", "custom/x", "v")
	require.NoError(t, err)
	_, err = runSettings(t, svc, "reset", "custom/x")
	require.NoError(t, err)

	keys, err := store.Keys()
	require.NoError(t, err)
	assert.Empty(t, keys)

	_, err = runSettings(t, svc, "get", "custom/x")
	assert.ErrorIs(t, err, settings.ErrUnknownSetting)
}

func TestSettingsExportImport(t *testing.T) {
	source := newService(settings.NewMemoryStore())
	require.NoError(t, source.SetValue(settings.GroupDB, settings.NameDefaultEncoding, settings.String("UTF-16be")))

	path := filepath.Join(t.TempDir(), "prefs.yaml")
	out, err := runSettings(t, source, "export", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	target := newService(settings.NewMemoryStore())
	out, err = runSettings(t, target, "import", path)
	require.NoError(t, err)
	assert.Equal(t, "Imported 27 settings\n", out)

	v, err := target.Value(settings.GroupDB, settings.NameDefaultEncoding)
	require.NoError(t, err)
	assert.Equal(t, "UTF-16be", v.AsString())
}

func TestValueKind(t *testing.T) {
	kind, err := valueKind(settings.NewKey(settings.GroupGeneral, settings.NameRecentFileList), "")
	require.NoError(t, err)
	assert.Equal(t, settings.KindStringList, kind)

	kind, err = valueKind(settings.NewKey("custom", "x"), "")
	require.NoError(t, err)
	assert.Equal(t, settings.KindString, kind)
}
