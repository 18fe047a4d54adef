package tui

import (
	"github.com/Joseda-hg/lazytareas/internal/model"
	"github.com/jesseduffield/gocui"
)

type binding struct {
	view    string
	key     any
	handler func(*gocui.Gui, *gocui.View) error
}

func (u *UI) bindings() []binding {
	list := []binding{
		{"", gocui.KeyCtrlC, u.quit},
		{"", 'q', u.quitKey},
		{"", '?', u.toggleHelp},
		{"", gocui.KeyTab, u.switchScreen},
		{"", 'r', u.reload},
		{"", 'L', u.logout},
		{"", 'x', u.dismissToast},

		{"", 'j', u.moveDown},
		{"", gocui.KeyArrowDown, u.moveDown},
		{"", 'k', u.moveUp},
		{"", gocui.KeyArrowUp, u.moveUp},
		{"", 'a', u.addTask},
		{"", 'e', u.editTask},
		{"", 'd', u.deleteTask},
		{"", 'f', u.openFilter},
		{"", '/', u.startSearch},
		{"", 'g', u.clearFilters},
		{"", 'o', u.cycleSort},
		{"", 'O', u.toggleDirection},
		{"", 'w', u.saveView},
		{"", 'V', u.nextView},
		{"", 'm', u.pickUp},
		{viewTasks, gocui.KeyEsc, u.cancelMove},

		{viewConfirm, 'y', u.confirmDelete},
		{viewConfirm, gocui.KeyEnter, u.confirmDelete},
		{viewConfirm, 'n', u.cancelDelete},
		{viewConfirm, gocui.KeyEsc, u.cancelDelete},

		{viewForm, gocui.KeyEnter, u.submitForm},
		{viewForm, gocui.KeyTab, u.nextFormField},
		{viewForm, gocui.KeyArrowDown, u.nextFormField},
		{viewForm, gocui.KeyBacktab, u.prevFormField},
		{viewForm, gocui.KeyArrowUp, u.prevFormField},
		{viewForm, gocui.KeyEsc, u.cancelForm},
		{viewForm, gocui.KeyCtrlR, u.gotoRegister},
		{viewForm, gocui.KeyCtrlL, u.gotoLogin},

		{viewHelp, gocui.KeyEsc, u.closeHelp},
		{viewHelp, 'q', u.closeHelp},
		{viewHelp, '?', u.closeHelp},

		{"", gocui.MouseRelease, u.releaseElsewhere},
	}
	for i, status := range model.Statuses {
		list = append(list,
			binding{"", rune('1' + i), u.dropKey(status)},
			binding{zoneView(status), gocui.MouseRelease, u.zoneRelease(status)},
		)
	}
	return list
}

func (u *UI) bindKeys(gui *gocui.Gui) error {
	for _, b := range u.bindings() {
		if err := gui.SetKeybinding(b.view, b.key, gocui.ModNone, b.handler); err != nil {
			return err
		}
	}
	if err := gui.SetViewClickBinding(&gocui.ViewMouseBinding{ViewName: viewTasks, Key: gocui.MouseLeft, Handler: func(opts gocui.ViewMouseBindingOpts) error {
		return u.onTaskPress(gui, opts)
	}}); err != nil {
		return err
	}
	for _, name := range []string{viewTasks, viewDetail, viewDashboard, viewHelp} {
		if err := gui.SetKeybinding(name, gocui.MouseWheelUp, gocui.ModNone, u.scrollUp); err != nil {
			return err
		}
		if err := gui.SetKeybinding(name, gocui.MouseWheelDown, gocui.ModNone, u.scrollDown); err != nil {
			return err
		}
	}
	return nil
}

func (u *UI) quitKey(gui *gocui.Gui, view *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	return u.quit(gui, view)
}

func (u *UI) scrollUp(gui *gocui.Gui, view *gocui.View) error {
	if view == nil {
		view = gui.CurrentView()
	}
	if view == nil {
		return nil
	}
	view.ScrollUp(1)
	return nil
}

func (u *UI) scrollDown(gui *gocui.Gui, view *gocui.View) error {
	if view == nil {
		view = gui.CurrentView()
	}
	if view == nil {
		return nil
	}
	view.ScrollDown(1)
	return nil
}
