package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/Joseda-hg/lazytareas/internal/model"
	"github.com/Joseda-hg/lazytareas/internal/route"
	"github.com/Joseda-hg/lazytareas/internal/tasks"
	goerrors "github.com/go-errors/errors"
	"github.com/jesseduffield/gocui"
)

func zoneView(status model.Status) string {
	return zonePrefix + string(status)
}

func (u *UI) layoutTasks(gui *gocui.Gui, maxX, y0, y1 int) error {
	snap := u.ctrl.Snapshot()
	listX1 := max(maxX*3/5, 30)
	if listX1 >= maxX-10 {
		listX1 = maxX - 1
	}

	listView, err := gui.SetView(viewTasks, 0, y0, listX1, y1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	listView.Title = fmt.Sprintf("Tasks (%d)", len(snap.Tasks))
	if snap.Loading {
		listView.Title += " loading..."
	}
	focused := !u.inputActive()
	applyViewStyle(listView, focused, true)
	u.renderTaskList(listView, snap)

	if listX1 < maxX-1 {
		detailView, err := gui.SetView(viewDetail, listX1+1, y0, maxX-1, y1, 0)
		if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
			return err
		}
		detailView.Title = "Detail"
		detailView.Wrap = true
		applyViewStyle(detailView, false, false)
		detailView.Clear()
		if task, ok := u.selectedTask(); ok {
			renderTaskDetail(detailView, task, u.now())
		} else {
			fmt.Fprint(detailView, "No task selected")
		}
	} else {
		_ = gui.DeleteView(viewDetail)
	}

	if snap.Drag == tasks.DragVisible {
		return u.showZones(gui, maxX, y1, snap)
	}
	u.deleteZones(gui)
	return nil
}

func (u *UI) renderTaskList(view *gocui.View, snap tasks.Snapshot) {
	view.Clear()
	switch {
	case snap.Err != nil && len(snap.Tasks) == 0:
		fmt.Fprintln(view, "Could not load tasks.")
		fmt.Fprint(view, "Press r to retry.")
		return
	case !snap.Loaded && snap.Loading:
		fmt.Fprint(view, "Loading tasks...")
		return
	case snap.Empty():
		fmt.Fprint(view, snap.EmptyHint())
		return
	}

	now := u.now()
	for i, task := range snap.Tasks {
		prefix := " "
		if i == u.selected {
			prefix = ">"
		}
		if snap.Dragged != nil && snap.Dragged.ID == task.ID {
			prefix = "*"
		}
		fmt.Fprintf(view, "%s %s\n", prefix, formatTaskSummary(task, now))
	}
	view.SetCursor(0, min(u.selected, len(snap.Tasks)-1))
}

// showZones lays one drop zone per status along the bottom of the body.
func (u *UI) showZones(gui *gocui.Gui, maxX, bottom int, snap tasks.Snapshot) error {
	count := len(model.Statuses)
	width := max(maxX/count, 8)
	y0 := max(bottom-3, 1)
	for i, status := range model.Statuses {
		x0 := i * width
		x1 := x0 + width - 1
		if i == count-1 {
			x1 = maxX - 1
		}
		view, err := gui.SetView(zoneView(status), x0, y0, x1, bottom, 0)
		if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
			return err
		}
		view.Title = fmt.Sprintf("%d", i+1)
		view.Frame = true
		view.FrameColor = gocui.ColorGreen
		if snap.Dragged != nil && snap.Dragged.Status == status {
			view.FrameColor = gocui.ColorDefault | gocui.AttrDim
		}
		view.Clear()
		fmt.Fprintf(view, " %s %s", statusMarker(status), status.Label())
		_, _ = gui.SetViewOnTop(view.Name())
	}
	return nil
}

func (u *UI) deleteZones(gui *gocui.Gui) {
	for _, status := range model.Statuses {
		_ = gui.DeleteView(zoneView(status))
	}
}

func (u *UI) showConfirm(gui *gocui.Gui, pending model.Task) error {
	maxX, maxY := gui.Size()
	width := min(max(50, maxX/3), maxX-2)
	height := 5
	x0 := (maxX - width) / 2
	y0 := (maxY - height) / 2

	view, err := gui.SetView(viewConfirm, x0, y0, x0+width, y0+height, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	view.Title = "Delete task"
	view.Wrap = true
	view.FrameColor = gocui.ColorRed
	view.Clear()
	fmt.Fprint(view, confirmText(pending))
	_, _ = gui.SetViewOnTop(viewConfirm)
	return nil
}

func confirmText(task model.Task) string {
	return strings.Join([]string{
		fmt.Sprintf("Delete %q?", task.Name),
		"This cannot be undone.",
		"",
		"y/enter delete | n/esc keep",
	}, "\n")
}

func (u *UI) onTasksScreen() bool {
	return u.screen == route.Tasks && !u.inputActive()
}

func (u *UI) moveDown(_ *gocui.Gui, _ *gocui.View) error {
	if !u.onTasksScreen() {
		return nil
	}
	if u.selected < len(u.ctrl.Tasks())-1 {
		u.selected++
	}
	return nil
}

func (u *UI) moveUp(_ *gocui.Gui, _ *gocui.View) error {
	if !u.onTasksScreen() {
		return nil
	}
	if u.selected > 0 {
		u.selected--
	}
	return nil
}

func (u *UI) reload(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	switch u.screen {
	case route.Tasks:
		u.loadTasks()
	case route.Dashboard:
		u.loadStats()
	}
	return nil
}

func (u *UI) addTask(_ *gocui.Gui, _ *gocui.View) error {
	if !u.onTasksScreen() {
		return nil
	}
	u.openForm(formCreate, "New Task", draftFields(u.ctrl.Draft()))
	return nil
}

func (u *UI) editTask(_ *gocui.Gui, _ *gocui.View) error {
	if !u.onTasksScreen() {
		return nil
	}
	task, ok := u.selectedTask()
	if !ok {
		return nil
	}
	u.openForm(formEdit, "Edit Task", editFields(task))
	u.form.task = task
	return nil
}

func (u *UI) deleteTask(_ *gocui.Gui, _ *gocui.View) error {
	if !u.onTasksScreen() {
		return nil
	}
	if task, ok := u.selectedTask(); ok {
		u.ctrl.RequestDelete(task)
	}
	return nil
}

func (u *UI) confirmDelete(_ *gocui.Gui, _ *gocui.View) error {
	if _, ok := u.ctrl.Pending(); !ok {
		return nil
	}
	u.async(func(ctx context.Context) func() {
		_ = u.ctrl.ConfirmDelete(ctx)
		return u.clampSelection
	})
	return nil
}

func (u *UI) cancelDelete(_ *gocui.Gui, _ *gocui.View) error {
	u.ctrl.CancelDelete()
	return nil
}

func (u *UI) openFilter(_ *gocui.Gui, _ *gocui.View) error {
	if !u.onTasksScreen() {
		return nil
	}
	u.ctrl.OpenFilterPanel()
	spec := u.ctrl.Filter()
	title := "Filters"
	if count := spec.ActiveCount(); count > 0 {
		title = fmt.Sprintf("Filters (%d active)", count)
	}
	u.openForm(formFilter, title, filterFields(spec))
	return nil
}

func (u *UI) startSearch(_ *gocui.Gui, _ *gocui.View) error {
	if !u.onTasksScreen() {
		return nil
	}
	u.openForm(formSearch, "Search", []formField{{Label: "Search", Value: u.ctrl.Filter().Search}})
	return nil
}

func (u *UI) clearFilters(_ *gocui.Gui, _ *gocui.View) error {
	if !u.onTasksScreen() {
		return nil
	}
	u.activeView = ""
	u.async(func(ctx context.Context) func() {
		_ = u.ctrl.ClearFilters(ctx)
		return u.clampSelection
	})
	return nil
}

func (u *UI) applyFilter(spec model.FilterSpec) {
	u.async(func(ctx context.Context) func() {
		_ = u.ctrl.ApplyFilters(ctx, spec)
		return u.clampSelection
	})
}

func (u *UI) cycleSort(_ *gocui.Gui, _ *gocui.View) error {
	if !u.onTasksScreen() {
		return nil
	}
	spec := u.ctrl.Filter()
	field := formField{Kind: fieldSelect, Options: sortOptions(), Value: string(spec.SortBy)}
	field.cycle(1)
	spec.SortBy = model.SortKey(field.Value)
	u.applyFilter(spec)
	return nil
}

func (u *UI) toggleDirection(_ *gocui.Gui, _ *gocui.View) error {
	if !u.onTasksScreen() {
		return nil
	}
	spec := u.ctrl.Filter()
	if spec.Direction == model.Descending {
		spec.Direction = model.Ascending
	} else {
		spec.Direction = model.Descending
	}
	u.applyFilter(spec)
	return nil
}

func (u *UI) saveView(_ *gocui.Gui, _ *gocui.View) error {
	if !u.onTasksScreen() {
		return nil
	}
	u.openForm(formSaveView, "Save view", []formField{{Label: "Name", Value: u.activeView}})
	return nil
}

func (u *UI) nextView(_ *gocui.Gui, _ *gocui.View) error {
	if !u.onTasksScreen() {
		return nil
	}
	current := u.activeView
	u.async(func(ctx context.Context) func() {
		name, err := u.ctrl.NextView(ctx, current)
		if err != nil {
			return nil
		}
		return func() {
			u.activeView = name
			u.clampSelection()
		}
	})
	return nil
}

// pickUp starts a keyboard move of the selected task.
func (u *UI) pickUp(_ *gocui.Gui, _ *gocui.View) error {
	if !u.onTasksScreen() {
		return nil
	}
	if task, ok := u.selectedTask(); ok {
		u.ctrl.BeginDrag(task)
	}
	return nil
}

func (u *UI) cancelMove(_ *gocui.Gui, _ *gocui.View) error {
	u.ctrl.CancelDrag()
	return nil
}

func (u *UI) dropOn(status model.Status) {
	u.async(func(ctx context.Context) func() {
		_ = u.ctrl.Drop(ctx, status)
		return u.clampSelection
	})
}

func (u *UI) dropKey(status model.Status) func(*gocui.Gui, *gocui.View) error {
	return func(_ *gocui.Gui, _ *gocui.View) error {
		if !u.onTasksScreen() || u.ctrl.Snapshot().Drag == tasks.DragIdle {
			return nil
		}
		u.dropOn(status)
		return nil
	}
}

// onTaskPress selects the row under the pointer and starts dragging it.
func (u *UI) onTaskPress(gui *gocui.Gui, opts gocui.ViewMouseBindingOpts) error {
	if !u.onTasksScreen() {
		return nil
	}
	view, err := gui.View(viewTasks)
	if err != nil {
		return nil
	}
	_, y0, _, _ := view.Dimensions()
	_, oy := view.Origin()
	row := opts.Y - y0 - 1 + oy
	return u.pressRow(row)
}

func (u *UI) pressRow(row int) error {
	list := u.ctrl.Tasks()
	if row < 0 || row >= len(list) {
		return nil
	}
	u.selected = row
	u.ctrl.BeginDrag(list[row])
	return nil
}

func (u *UI) zoneRelease(status model.Status) func(*gocui.Gui, *gocui.View) error {
	return func(_ *gocui.Gui, _ *gocui.View) error {
		u.dropOn(status)
		return nil
	}
}

// releaseElsewhere ends a pointer drag that did not land on a zone.
func (u *UI) releaseElsewhere(_ *gocui.Gui, _ *gocui.View) error {
	if u.ctrl.Snapshot().Drag != tasks.DragIdle {
		u.ctrl.CancelDrag()
	}
	return nil
}

func (u *UI) switchScreen(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	switch u.screen {
	case route.Tasks:
		u.navigate(route.Dashboard)
	case route.Dashboard:
		u.navigate(route.Tasks)
	}
	return nil
}

func (u *UI) logout(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() || !u.session.Authenticated() {
		return nil
	}
	u.async(func(ctx context.Context) func() {
		if err := u.session.Logout(ctx); err != nil {
			return func() { u.toasts.Error("Could not sign out: " + err.Error()) }
		}
		return nil
	})
	return nil
}

func (u *UI) dismissToast(_ *gocui.Gui, _ *gocui.View) error {
	if u.form != nil {
		return nil
	}
	u.toasts.CloseLatest()
	return nil
}

func (u *UI) toggleHelp(_ *gocui.Gui, _ *gocui.View) error {
	if u.form != nil {
		return nil
	}
	u.helpActive = !u.helpActive
	return nil
}

func (u *UI) closeHelp(_ *gocui.Gui, _ *gocui.View) error {
	u.helpActive = false
	return nil
}
