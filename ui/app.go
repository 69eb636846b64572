package ui

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"dbbrowser/db"
	"dbbrowser/settings"
	"dbbrowser/utils"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
)

const windowStateFullScreen = "fullscreen"

// ErrNoDatabase is returned by actions that need an open database
var ErrNoDatabase = errors.New("no database open")

var defaultWindowSize = fyne.NewSize(1000, 700)

// App represents the main application window
type App struct {
	fyneApp    fyne.App
	window     fyne.Window
	config     *utils.Config
	configPath string
	settings   *settings.Service
	logger     *utils.Logger
	pickers    Pickers

	current     *db.UserDB
	recentFiles []string
	tables      []db.TableInfo

	// UI components
	recentList  *widget.List
	tablesList  *widget.List
	statusLabel *widget.Label
	preferences *PreferencesDialog
}

// NewApp creates the main window. fyneApp is created by the caller because
// the preferences backend may depend on it.
func NewApp(fyneApp fyne.App, config *utils.Config, configPath string, svc *settings.Service, logger *utils.Logger) *App {
	application := &App{
		fyneApp:    fyneApp,
		window:     fyneApp.NewWindow("DB Browser"),
		config:     config,
		configPath: configPath,
		settings:   svc,
		logger:     logger,
		pickers:    NewDialogPickers(),
	}

	application.applyThemeFromConfig()
	application.restoreGeometry()

	application.window.SetOnClosed(func() {
		application.saveGeometry()
	})

	application.buildUI()
	application.refreshRecentFiles()

	return application
}

// buildUI builds the main UI
func (a *App) buildUI() {
	openButton := widget.NewButton("Open Database", utils.Guard(a.logger, "open database", a.showOpenDialog))
	openButton.Importance = widget.HighImportance

	newButton := widget.NewButton("New Database", utils.Guard(a.logger, "new database", a.showCreateDialog))

	compactButton := widget.NewButton("Compact Database", utils.Guard(a.logger, "compact database", func() {
		if err := a.compactDatabase(); err != nil {
			a.showError(err.Error())
		}
	}))

	preferencesButton := widget.NewButton("Preferences", utils.Guard(a.logger, "preferences", a.showPreferences))

	a.recentList = widget.NewList(
		func() int {
			return len(a.recentFiles)
		},
		func() fyne.CanvasObject {
			return widget.NewLabel("recent.db")
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if id < len(a.recentFiles) {
				obj.(*widget.Label).SetText(filepath.Base(a.recentFiles[id]))
			}
		},
	)
	a.recentList.OnSelected = func(id widget.ListItemID) {
		defer utils.RecoverFromPanic(a.logger, "open recent")
		a.recentList.UnselectAll()
		if id < len(a.recentFiles) {
			a.openDatabase(a.recentFiles[id])
		}
	}

	a.tablesList = widget.NewList(
		func() int {
			return len(a.tables)
		},
		func() fyne.CanvasObject {
			return container.NewHBox(widget.NewLabel("table"), widget.NewLabel(""))
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if id < len(a.tables) {
				box := obj.(*fyne.Container)
				box.Objects[0].(*widget.Label).SetText(a.tables[id].Name)
				box.Objects[1].(*widget.Label).SetText("[" + a.tables[id].Type + "]")
			}
		},
	)

	a.statusLabel = widget.NewLabel("No database open")

	sidebar := container.NewBorder(
		widget.NewLabel("Recent databases"),
		container.NewVBox(openButton, newButton, compactButton, preferencesButton),
		nil,
		nil,
		a.recentList,
	)

	tablesPane := container.NewBorder(
		widget.NewLabel("Tables"),
		a.statusLabel,
		nil,
		nil,
		a.tablesList,
	)

	split := container.NewHSplit(sidebar, tablesPane)
	split.SetOffset(0.3)

	a.window.SetContent(split)

	a.setupKeyboardShortcuts()
}

// setupKeyboardShortcuts sets up global keyboard shortcuts
func (a *App) setupKeyboardShortcuts() {
	// Ctrl+O: Open database
	a.window.Canvas().AddShortcut(&desktop.CustomShortcut{
		KeyName:  fyne.KeyO,
		Modifier: fyne.KeyModifierShortcutDefault,
	}, guardShortcut(a.logger, "open database shortcut", a.showOpenDialog))

	// Ctrl+N: New database
	a.window.Canvas().AddShortcut(&desktop.CustomShortcut{
		KeyName:  fyne.KeyN,
		Modifier: fyne.KeyModifierShortcutDefault,
	}, guardShortcut(a.logger, "new database shortcut", a.showCreateDialog))

	// Ctrl+P: Preferences
	a.window.Canvas().AddShortcut(&desktop.CustomShortcut{
		KeyName:  fyne.KeyP,
		Modifier: fyne.KeyModifierShortcutDefault,
	}, guardShortcut(a.logger, "preferences shortcut", a.showPreferences))
}

// guardShortcut adapts fn to a shortcut callback recovering from panics
func guardShortcut(logger *utils.Logger, context string, fn func()) func(fyne.Shortcut) {
	guarded := utils.Guard(logger, context, fn)
	return func(fyne.Shortcut) {
		guarded()
	}
}

// showPreferences opens the preferences window, or focuses it if already open
func (a *App) showPreferences() {
	if a.preferences != nil && a.preferences.State() == DialogOpen {
		if a.preferences.window != nil {
			a.preferences.window.RequestFocus()
		}
		return
	}

	a.preferences = NewPreferencesDialog(a.settings, a.logger, a.pickers)
	a.preferences.OnClosed = func(state DialogState) {
		a.logger.Info("Preferences dialog %s", state)
		if state == DialogAccepted {
			a.refreshStatus()
		}
	}
	if err := a.preferences.Show(a.fyneApp); err != nil {
		a.logger.Error("Failed to open preferences: %v", err)
		a.showError("Failed to open preferences: " + err.Error())
	}
}

// userDBOptions reads the preferences applied to opened and created databases
func (a *App) userDBOptions() (db.UserDBOptions, error) {
	encoding, err := a.settings.Value(settings.GroupDB, settings.NameDefaultEncoding)
	if err != nil {
		return db.UserDBOptions{}, err
	}
	foreignKeys, err := a.settings.Value(settings.GroupDB, settings.NameForeignKeys)
	if err != nil {
		return db.UserDBOptions{}, err
	}
	return db.UserDBOptions{
		Encoding:    encoding.AsString(),
		ForeignKeys: foreignKeys.AsBool(),
	}, nil
}

// defaultLocation returns the folder file dialogs start in
func (a *App) defaultLocation() fyne.ListableURI {
	v, err := a.settings.Value(settings.GroupDB, settings.NameDefaultLocation)
	if err != nil {
		a.logger.Warn("Failed to read default location: %v", err)
		return nil
	}
	return listerFor(v.AsString())
}

// showOpenDialog shows a dialog to pick an existing database
func (a *App) showOpenDialog() {
	fileDialog := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			a.showError("Failed to open file: " + err.Error())
			return
		}
		if reader == nil {
			return // User cancelled
		}
		path := reader.URI().Path()
		reader.Close()

		a.openDatabase(path)
	}, a.window)

	fileDialog.SetFilter(storage.NewExtensionFileFilter([]string{".db", ".sqlite", ".sqlite3", ".db3"}))
	if location := a.defaultLocation(); location != nil {
		fileDialog.SetLocation(location)
	}
	fileDialog.Show()
}

// showCreateDialog shows a dialog to create a new database
func (a *App) showCreateDialog() {
	fileDialog := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			a.showError("Failed to create file: " + err.Error())
			return
		}
		if writer == nil {
			return // User cancelled
		}
		path := writer.URI().Path()
		// The dialog leaves an empty file behind, which SQLite accepts as a new database
		writer.Close()

		a.createDatabase(path)
	}, a.window)

	fileDialog.SetFileName("new.db")
	if location := a.defaultLocation(); location != nil {
		fileDialog.SetLocation(location)
	}
	fileDialog.Show()
}

// openDatabase opens path with the current preferences
func (a *App) openDatabase(path string) {
	opts, err := a.userDBOptions()
	if err != nil {
		a.showError(err.Error())
		return
	}

	userDB, err := db.OpenUserDB(path, opts)
	if err != nil {
		a.logger.Error("Failed to open %s: %v", path, err)
		a.showError("Failed to open database: " + err.Error())
		return
	}

	a.logger.Info("Opened database %s (foreign keys: %v)", path, opts.ForeignKeys)
	a.setCurrent(userDB)
}

// createDatabase creates path with the preferred encoding
func (a *App) createDatabase(path string) {
	opts, err := a.userDBOptions()
	if err != nil {
		a.showError(err.Error())
		return
	}

	userDB, err := db.CreateUserDB(path, opts)
	if err != nil {
		a.logger.Error("Failed to create %s: %v", path, err)
		a.showError("Failed to create database: " + err.Error())
		return
	}

	a.logger.Info("Created database %s with encoding %s", path, opts.Encoding)
	a.setCurrent(userDB)
}

func (a *App) setCurrent(userDB *db.UserDB) {
	if a.current != nil {
		if err := a.current.Close(); err != nil {
			a.logger.Warn("Failed to close %s: %v", a.current.Path(), err)
		}
	}
	a.current = userDB

	tables, err := userDB.Tables()
	if err != nil {
		a.logger.Error("Failed to list tables: %v", err)
	}
	a.tables = tables
	if a.tablesList != nil {
		a.tablesList.Refresh()
	}

	if _, err := a.settings.AddRecentFile(userDB.Path(), a.config.UI.MaxRecentFiles); err != nil {
		a.logger.Error("Failed to update recent files: %v", err)
	}
	a.refreshRecentFiles()
	a.refreshStatus()
	a.window.SetTitle("DB Browser - " + filepath.Base(userDB.Path()))
}

// compactDatabase vacuums the open database
func (a *App) compactDatabase() error {
	if a.current == nil {
		return ErrNoDatabase
	}

	before, _ := a.current.GetStats()
	if err := a.current.Vacuum(); err != nil {
		a.logger.Error("Failed to compact %s: %v", a.current.Path(), err)
		return err
	}
	if after, err := a.current.GetStats(); err == nil && before != nil {
		a.logger.Info("Compacted %s: %d -> %d bytes", a.current.Path(), before.DBSizeBytes, after.DBSizeBytes)
	}

	a.refreshStatus()
	return nil
}

// refreshRecentFiles reloads the recent file list from the settings
func (a *App) refreshRecentFiles() {
	files, err := a.settings.RecentFiles()
	if err != nil {
		a.logger.Error("Failed to read recent files: %v", err)
		return
	}
	a.recentFiles = files
	if a.recentList != nil {
		a.recentList.Refresh()
	}
}

// refreshStatus describes the open database in the status bar
func (a *App) refreshStatus() {
	if a.statusLabel == nil {
		return
	}
	if a.current == nil {
		a.statusLabel.SetText("No database open")
		return
	}

	parts := []string{a.current.Path()}
	if enc, err := a.current.Encoding(); err == nil {
		parts = append(parts, enc)
	}
	if fk, err := a.current.ForeignKeys(); err == nil {
		parts = append(parts, fmt.Sprintf("foreign keys %s", onOff(fk)))
	}
	if stats, err := a.current.GetStats(); err == nil {
		parts = append(parts, fmt.Sprintf("%d tables, %.1f KB", stats.TableCount, float64(stats.DBSizeBytes)/1024))
	}
	a.statusLabel.SetText(strings.Join(parts, " | "))
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// restoreGeometry applies the window size and state saved on last exit
func (a *App) restoreGeometry() {
	size := defaultWindowSize
	if v, err := a.settings.Value(settings.GroupMainWindow, settings.NameGeometry); err != nil {
		a.logger.Warn("Failed to read window geometry: %v", err)
	} else if saved, ok := parseGeometry(v.AsString()); ok {
		size = saved
	}
	a.window.Resize(size)

	if v, err := a.settings.Value(settings.GroupMainWindow, settings.NameWindowState); err == nil {
		a.window.SetFullScreen(v.AsString() == windowStateFullScreen)
	}
}

// saveGeometry persists the window size and state
func (a *App) saveGeometry() {
	size := a.window.Canvas().Size()
	if err := a.settings.SetValue(settings.GroupMainWindow, settings.NameGeometry, settings.String(formatGeometry(size))); err != nil {
		a.logger.Error("Failed to save window geometry: %v", err)
	}

	state := ""
	if a.window.FullScreen() {
		state = windowStateFullScreen
	}
	if err := a.settings.SetValue(settings.GroupMainWindow, settings.NameWindowState, settings.String(state)); err != nil {
		a.logger.Error("Failed to save window state: %v", err)
	}
	a.logger.Info("Window geometry saved: %s", formatGeometry(size))
}

// parseGeometry parses "WIDTHxHEIGHT"
func parseGeometry(s string) (fyne.Size, bool) {
	var w, h int
	if _, err := fmt.Sscanf(strings.TrimSpace(s), "%dx%d", &w, &h); err != nil {
		return fyne.Size{}, false
	}
	if w <= 0 || h <= 0 {
		return fyne.Size{}, false
	}
	return fyne.NewSize(float32(w), float32(h)), true
}

func formatGeometry(size fyne.Size) string {
	return fmt.Sprintf("%dx%d", int(size.Width), int(size.Height))
}

// applyThemeFromConfig applies the theme from config
func (a *App) applyThemeFromConfig() {
	isDark := a.config.UI.Theme == "dark"
	a.fyneApp.Settings().SetTheme(newBrowserTheme(a.config.UI.FontSize, isDark))
	a.logger.Debug("Applied %s theme with font size %d", a.config.UI.Theme, a.config.UI.FontSize)
}

// Run starts the application
func (a *App) Run() {
	a.window.ShowAndRun()
}

// showError shows an error popup on the main window
func (a *App) showError(message string) {
	showErrorPopup(a.window.Canvas(), message)
}

// showErrorPopup shows a modal error message on canvas
func showErrorPopup(canvas fyne.Canvas, message string) {
	var popup *widget.PopUp
	popup = widget.NewModalPopUp(
		container.NewVBox(
			widget.NewLabel("Error"),
			widget.NewLabel(message),
			widget.NewButton("OK", func() {
				popup.Hide()
			}),
		),
		canvas,
	)
	popup.Show()
}

// Cleanup performs cleanup before exit
func (a *App) Cleanup() {
	if a.current != nil {
		if err := a.current.Close(); err != nil {
			a.logger.Warn("Failed to close database: %v", err)
		}
		a.current = nil
	}
}
