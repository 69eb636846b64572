package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
)

// Pickers opens the modal choosers used by the preferences dialog. Callbacks
// receive "" or nil when the user cancels.
type Pickers interface {
	ChooseDirectory(parent fyne.Window, start string, onChosen func(path string))
	ChooseColour(parent fyne.Window, start color.Color, onChosen func(c color.Color))
}

// dialogPickers implements Pickers with fyne's built-in dialogs
type dialogPickers struct{}

// NewDialogPickers returns the fyne-dialog based Pickers
func NewDialogPickers() Pickers {
	return dialogPickers{}
}

func (dialogPickers) ChooseDirectory(parent fyne.Window, start string, onChosen func(path string)) {
	folderDialog := dialog.NewFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil || uri == nil {
			onChosen("")
			return
		}
		onChosen(uri.Path())
	}, parent)

	if lister := listerFor(start); lister != nil {
		folderDialog.SetLocation(lister)
	}
	folderDialog.Show()
}

func (dialogPickers) ChooseColour(parent fyne.Window, start color.Color, onChosen func(c color.Color)) {
	picker := dialog.NewColorPicker("Choose a colour", "", func(c color.Color) {
		onChosen(c)
	}, parent)
	picker.Advanced = true
	if start != nil {
		picker.SetColor(start)
	}
	picker.Show()
}

// listerFor returns a ListableURI for dir, or nil if dir is not a directory
func listerFor(dir string) fyne.ListableURI {
	if dir == "" {
		return nil
	}
	lister, err := storage.ListerForURI(storage.NewFileURI(dir))
	if err != nil {
		return nil
	}
	return lister
}
