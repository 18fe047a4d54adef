package tui

import (
	"fmt"

	goerrors "github.com/go-errors/errors"
	"github.com/jesseduffield/gocui"
)

func (u *UI) layoutDashboard(gui *gocui.Gui, maxX, y0, y1 int) error {
	view, err := gui.SetView(viewDashboard, 0, y0, maxX-1, y1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	view.Title = "Dashboard"
	view.Wrap = true
	applyViewStyle(view, !u.inputActive(), false)
	view.Clear()

	switch {
	case u.stats != nil:
		renderDashboard(view, *u.stats, maxX)
	case u.statsLoading:
		fmt.Fprint(view, "Loading statistics...")
	case u.statsErr != nil:
		fmt.Fprintln(view, "Could not load statistics.")
		fmt.Fprint(view, "Press r to retry.")
	default:
		fmt.Fprint(view, "No statistics yet.")
	}
	return nil
}
