// Package plotview shows rendered error plots in a desktop window.
package plotview

import (
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"github.com/dixieflatline76/getnative/config"
)

// Plot is one rendered curve.
type Plot struct {
	Title string
	Image image.Image
}

// Show opens a window with one tab per plot and blocks until it is closed.
// A fyne app can only run once per process, so all plots of a batch are
// shown together.
func Show(plots []Plot) {
	if len(plots) == 0 {
		return
	}
	a := app.NewWithID(config.AppID)
	w := a.NewWindow(config.AppName)
	w.SetContent(content(plots))
	w.Resize(fyne.NewSize(1200, 640))
	w.ShowAndRun()
}

func content(plots []Plot) fyne.CanvasObject {
	if len(plots) == 1 {
		return imageFor(plots[0])
	}
	tabs := container.NewAppTabs()
	for _, p := range plots {
		tabs.Append(container.NewTabItem(p.Title, imageFor(p)))
	}
	tabs.SetTabLocation(container.TabLocationLeading)
	return tabs
}

func imageFor(p Plot) *canvas.Image {
	img := canvas.NewImageFromImage(p.Image)
	img.FillMode = canvas.ImageFillContain
	img.SetMinSize(fyne.NewSize(600, 300))
	return img
}
