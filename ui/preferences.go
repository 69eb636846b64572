package ui

import (
	"errors"
	"fmt"
	"image/color"
	"strings"

	"dbbrowser/db"
	"dbbrowser/settings"
	"dbbrowser/utils"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// ErrDialogNotOpen is returned by Save when the dialog is not in the open state
var ErrDialogNotOpen = errors.New("preferences dialog is not open")

// DialogState is the lifecycle of a PreferencesDialog. Accepted and
// cancelled are terminal.
type DialogState int

const (
	DialogClosed DialogState = iota
	DialogOpen
	DialogAccepted
	DialogCancelled
)

func (s DialogState) String() string {
	switch s {
	case DialogClosed:
		return "closed"
	case DialogOpen:
		return "open"
	case DialogAccepted:
		return "accepted"
	case DialogCancelled:
		return "cancelled"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// highlightRow holds the widgets of one syntax element
type highlightRow struct {
	element        settings.Element
	colourButton   *widget.Button
	boldCheck      *widget.Check
	italicCheck    *widget.Check
	underlineCheck *widget.Check
	preview        *canvas.Text
}

func (r *highlightRow) colourText() string {
	return r.colourButton.Text
}

func (r *highlightRow) setColourText(text string) {
	r.colourButton.SetText(text)
	r.refreshPreview()
}

func (r *highlightRow) refreshPreview() {
	r.preview.Color = theme.Color(theme.ColorNameForeground)
	if settings.IsColourText(r.colourText()) {
		if c, err := settings.ParseColour(r.colourText()); err == nil {
			r.preview.Color = c
		}
	}
	r.preview.TextStyle = fyne.TextStyle{
		Bold:   r.boldCheck.Checked,
		Italic: r.italicCheck.Checked,
	}
	r.preview.Refresh()
}

// PreferencesDialog edits the database and syntax highlighting preferences
type PreferencesDialog struct {
	settings *settings.Service
	logger   *utils.Logger
	pickers  Pickers
	window   fyne.Window
	state    DialogState

	// OnClosed is called once when the dialog is accepted or cancelled
	OnClosed func(state DialogState)

	encodingSelect   *widget.Select
	locationEntry    *widget.Entry
	foreignKeysCheck *widget.Check
	rows             map[settings.Element]*highlightRow
}

// NewPreferencesDialog creates the dialog and its widgets. Nothing is read
// from the settings until Open.
func NewPreferencesDialog(svc *settings.Service, logger *utils.Logger, pickers Pickers) *PreferencesDialog {
	d := &PreferencesDialog{
		settings: svc,
		logger:   logger,
		pickers:  pickers,
		rows:     make(map[settings.Element]*highlightRow),
	}

	d.encodingSelect = widget.NewSelect(db.Encodings(), nil)
	d.locationEntry = widget.NewEntry()
	d.locationEntry.SetPlaceHolder("Folder used when opening and creating databases")
	d.foreignKeysCheck = widget.NewCheck("Enforce foreign keys", nil)

	for _, e := range settings.Elements() {
		row := &highlightRow{element: e}
		element := e
		row.colourButton = widget.NewButton("", utils.Guard(logger, "edit colour", func() {
			d.EditColour(element)
		}))
		row.boldCheck = widget.NewCheck("", func(bool) { row.refreshPreview() })
		row.italicCheck = widget.NewCheck("", func(bool) { row.refreshPreview() })
		row.underlineCheck = widget.NewCheck("", nil)
		row.preview = canvas.NewText(e.Title(), theme.Color(theme.ColorNameForeground))
		d.rows[e] = row
	}

	return d
}

// State returns the current lifecycle state
func (d *PreferencesDialog) State() DialogState {
	return d.state
}

// Open loads the current settings into the form
func (d *PreferencesDialog) Open() error {
	if d.state != DialogClosed {
		return fmt.Errorf("preferences dialog already %s", d.state)
	}
	if err := d.Load(); err != nil {
		return err
	}
	d.state = DialogOpen
	return nil
}

// Show opens the dialog in its own window
func (d *PreferencesDialog) Show(app fyne.App) error {
	if err := d.Open(); err != nil {
		return err
	}

	w := app.NewWindow("Preferences")
	d.window = w
	w.SetContent(d.Build())
	w.Resize(fyne.NewSize(640, 520))
	w.SetOnClosed(func() {
		// Closed by the window manager
		if d.state == DialogOpen {
			d.window = nil
			d.finish(DialogCancelled)
		}
	})
	w.Show()
	return nil
}

// Load assigns every setting to its form field
func (d *PreferencesDialog) Load() error {
	encoding, err := d.settings.Value(settings.GroupDB, settings.NameDefaultEncoding)
	if err != nil {
		return err
	}
	d.selectEncoding(encoding.AsString())

	location, err := d.settings.Value(settings.GroupDB, settings.NameDefaultLocation)
	if err != nil {
		return err
	}
	d.locationEntry.SetText(location.AsString())

	foreignKeys, err := d.settings.Value(settings.GroupDB, settings.NameForeignKeys)
	if err != nil {
		return err
	}
	d.foreignKeysCheck.SetChecked(foreignKeys.AsBool())

	for _, e := range settings.Elements() {
		rule, err := d.settings.HighlightRule(e)
		if err != nil {
			return err
		}
		row := d.rows[e]
		row.boldCheck.SetChecked(rule.Bold)
		row.italicCheck.SetChecked(rule.Italic)
		row.underlineCheck.SetChecked(rule.Underline)
		row.setColourText(rule.Colour)
	}

	d.logger.Debug("Preferences loaded into dialog")
	return nil
}

// selectEncoding picks the option matching enc case-insensitively. Values not
// in the list are added so that saving an untouched form writes them back.
func (d *PreferencesDialog) selectEncoding(enc string) {
	for _, opt := range d.encodingSelect.Options {
		if strings.EqualFold(opt, enc) {
			d.encodingSelect.SetSelected(opt)
			return
		}
	}
	if enc == "" {
		d.encodingSelect.ClearSelected()
		return
	}
	d.encodingSelect.Options = append(d.encodingSelect.Options, enc)
	d.encodingSelect.Refresh()
	d.encodingSelect.SetSelected(enc)
}

// Save writes every form field back and accepts the dialog. On a write
// error the dialog stays open; values written before the failure are kept.
func (d *PreferencesDialog) Save() error {
	if d.state != DialogOpen {
		return ErrDialogNotOpen
	}

	writes := []struct {
		key   settings.Key
		value settings.Value
	}{
		{settings.NewKey(settings.GroupDB, settings.NameDefaultEncoding), settings.String(d.encodingSelect.Selected)},
		{settings.NewKey(settings.GroupDB, settings.NameDefaultLocation), settings.String(d.locationEntry.Text)},
		{settings.NewKey(settings.GroupDB, settings.NameForeignKeys), settings.Bool(d.foreignKeysCheck.Checked)},
	}

	for _, w := range writes {
		if err := d.settings.SetValue(w.key.Group, w.key.Name, w.value); err != nil {
			d.logger.Error("Failed to save preferences: %v", err)
			return err
		}
	}

	for _, e := range settings.Elements() {
		row := d.rows[e]
		rule := settings.HighlightRule{
			Colour:    row.colourText(),
			Bold:      row.boldCheck.Checked,
			Italic:    row.italicCheck.Checked,
			Underline: row.underlineCheck.Checked,
		}
		if err := d.settings.SetHighlightRule(e, rule); err != nil {
			d.logger.Error("Failed to save preferences: %v", err)
			return err
		}
	}

	d.logger.Info("Preferences saved")
	d.finish(DialogAccepted)
	return nil
}

// Cancel discards the form
func (d *PreferencesDialog) Cancel() {
	if d.state != DialogOpen {
		return
	}
	d.logger.Info("Preferences dialog cancelled")
	d.finish(DialogCancelled)
}

func (d *PreferencesDialog) finish(state DialogState) {
	d.state = state
	if d.window != nil {
		w := d.window
		d.window = nil
		w.Close()
	}
	if d.OnClosed != nil {
		d.OnClosed(state)
	}
}

// ChooseLocation asks for a directory, starting at the stored default
// location. The choice only reaches the store on Save.
func (d *PreferencesDialog) ChooseLocation() {
	start := d.locationEntry.Text
	if v, err := d.settings.Value(settings.GroupDB, settings.NameDefaultLocation); err != nil {
		d.logger.Warn("Failed to read default location: %v", err)
	} else {
		start = v.AsString()
	}

	d.pickers.ChooseDirectory(d.window, start, func(path string) {
		defer utils.RecoverFromPanic(d.logger, "choose location")
		if path == "" {
			return
		}
		d.locationEntry.SetText(path)
	})
}

// EditColour lets the user pick a new colour for element. Cells that do not
// hold a "#" colour are left alone.
func (d *PreferencesDialog) EditColour(element settings.Element) {
	row, ok := d.rows[element]
	if !ok || !settings.IsColourText(row.colourText()) {
		return
	}

	var start color.Color
	if c, err := settings.ParseColour(row.colourText()); err == nil {
		start = c
	}

	d.pickers.ChooseColour(d.window, start, func(c color.Color) {
		defer utils.RecoverFromPanic(d.logger, "edit colour")
		name, ok := settings.ColourName(c)
		if !ok {
			return
		}
		row.setColourText(name)
	})
}

// Build lays out the dialog content
func (d *PreferencesDialog) Build() fyne.CanvasObject {
	browseButton := widget.NewButtonWithIcon("", theme.FolderOpenIcon(), utils.Guard(d.logger, "choose location", d.ChooseLocation))

	databaseForm := widget.NewForm(
		widget.NewFormItem("Default encoding", d.encodingSelect),
		widget.NewFormItem("Default location", container.NewBorder(nil, nil, nil, browseButton, d.locationEntry)),
		widget.NewFormItem("", d.foreignKeysCheck),
	)

	grid := container.NewGridWithColumns(6,
		widget.NewLabelWithStyle("Element", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewLabelWithStyle("Colour", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewLabelWithStyle("Bold", fyne.TextAlignCenter, fyne.TextStyle{Bold: true}),
		widget.NewLabelWithStyle("Italic", fyne.TextAlignCenter, fyne.TextStyle{Bold: true}),
		widget.NewLabelWithStyle("Underline", fyne.TextAlignCenter, fyne.TextStyle{Bold: true}),
		widget.NewLabelWithStyle("Preview", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
	)
	for _, e := range settings.Elements() {
		row := d.rows[e]
		grid.Add(widget.NewLabel(e.Title()))
		grid.Add(row.colourButton)
		grid.Add(row.boldCheck)
		grid.Add(row.italicCheck)
		grid.Add(row.underlineCheck)
		grid.Add(row.preview)
	}

	tabs := container.NewAppTabs(
		container.NewTabItem("Database", container.NewVBox(databaseForm)),
		container.NewTabItem("SQL", container.NewVScroll(container.NewVBox(
			widget.NewLabel("Syntax highlighting"),
			widget.NewSeparator(),
			grid,
		))),
	)

	saveButton := widget.NewButton("OK", func() {
		defer utils.RecoverFromPanic(d.logger, "save preferences")
		if err := d.Save(); err != nil && d.window != nil {
			showErrorPopup(d.window.Canvas(), "Failed to save preferences: "+err.Error())
		}
	})
	saveButton.Importance = widget.HighImportance

	cancelButton := widget.NewButton("Cancel", utils.Guard(d.logger, "cancel preferences", d.Cancel))

	return container.NewBorder(
		nil,
		container.NewHBox(layout.NewSpacer(), cancelButton, saveButton),
		nil,
		nil,
		tabs,
	)
}
