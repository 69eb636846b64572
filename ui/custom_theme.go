package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

const (
	minFontSize     = 10
	defaultFontSize = 14
)

// browserTheme forces a light or dark variant and scales text sizes from a
// configured base font size
type browserTheme struct {
	fontSize float32
	variant  fyne.ThemeVariant
}

func newBrowserTheme(fontSize int, isDark bool) fyne.Theme {
	if fontSize < minFontSize {
		fontSize = defaultFontSize
	}
	variant := theme.VariantLight
	if isDark {
		variant = theme.VariantDark
	}
	return &browserTheme{fontSize: float32(fontSize), variant: variant}
}

func (t *browserTheme) Color(name fyne.ThemeColorName, _ fyne.ThemeVariant) color.Color {
	return theme.DefaultTheme().Color(name, t.variant)
}

func (t *browserTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (t *browserTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (t *browserTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNameText:
		return t.fontSize
	case theme.SizeNameHeadingText:
		return t.fontSize * 1.5
	case theme.SizeNameSubHeadingText:
		return t.fontSize * 1.2
	case theme.SizeNameCaptionText:
		return t.fontSize * 0.85
	}
	return theme.DefaultTheme().Size(name)
}
