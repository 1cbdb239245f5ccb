package shell

import (
	"fmt"
	"image/color"
	"path"
	"strings"

	"appshell/internal/appctx"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

func (a *App) createWindow(cfg appctx.WindowConfig, master bool) error {
	content, err := a.windowContent(cfg)
	if err != nil {
		return err
	}

	win := a.fyne.NewWindow(cfg.Title)
	win.SetContent(content)
	win.Resize(fyne.NewSize(float32(cfg.Width), float32(cfg.Height)))
	win.SetFixedSize(!cfg.IsResizable())
	if cfg.Fullscreen {
		win.SetFullScreen(true)
	}
	if cfg.Center {
		win.CenterOnScreen()
	}
	if master {
		win.SetMaster()
	}

	label := cfg.Label
	win.SetOnClosed(func() {
		a.mu.Lock()
		delete(a.windows, label)
		for i, l := range a.order {
			if l == label {
				a.order = append(a.order[:i:i], a.order[i+1:]...)
				break
			}
		}
		a.mu.Unlock()
		a.Emit(EventWindowClosed, map[string]interface{}{"label": label})
	})

	a.mu.Lock()
	a.windows[label] = win
	a.order = append(a.order, label)
	a.mu.Unlock()

	if cfg.IsVisible() {
		win.Show()
	}

	a.Emit(EventWindowCreated, map[string]interface{}{
		"label":   label,
		"title":   cfg.Title,
		"visible": cfg.IsVisible(),
	})
	return nil
}

// windowContent renders the window's asset. Markdown gets rich text, anything
// else is shown as plain text. The minimum size is enforced through a
// transparent spacer since the toolkit has no per-window minimum.
func (a *App) windowContent(cfg appctx.WindowConfig) (fyne.CanvasObject, error) {
	var body fyne.CanvasObject = widget.NewLabel("")
	if cfg.URL != "" {
		data, err := a.ctx.Asset(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("load %q: %w", cfg.URL, err)
		}

		switch strings.ToLower(path.Ext(cfg.URL)) {
		case ".md", ".markdown":
			rt := widget.NewRichTextFromMarkdown(string(data))
			rt.Wrapping = fyne.TextWrapWord
			body = container.NewVScroll(rt)
		default:
			l := widget.NewLabel(string(data))
			l.Wrapping = fyne.TextWrapWord
			body = container.NewVScroll(l)
		}
	}

	if cfg.MinWidth <= 0 && cfg.MinHeight <= 0 {
		return body, nil
	}
	spacer := canvas.NewRectangle(color.Transparent)
	spacer.SetMinSize(fyne.NewSize(float32(cfg.MinWidth), float32(cfg.MinHeight)))
	return container.NewStack(spacer, body), nil
}
