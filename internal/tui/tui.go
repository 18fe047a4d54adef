package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Joseda-hg/lazytareas/internal/api"
	"github.com/Joseda-hg/lazytareas/internal/model"
	"github.com/Joseda-hg/lazytareas/internal/notify"
	"github.com/Joseda-hg/lazytareas/internal/route"
	"github.com/Joseda-hg/lazytareas/internal/session"
	"github.com/Joseda-hg/lazytareas/internal/tasks"
	goerrors "github.com/go-errors/errors"
	"github.com/jesseduffield/gocui"
	"go.uber.org/zap"
)

const (
	viewHeader    = "header"
	viewFooter    = "footer"
	viewWelcome   = "welcome"
	viewTasks     = "tasks"
	viewDetail    = "detail"
	viewDashboard = "dashboard"
	viewForm      = "form"
	viewConfirm   = "confirm"
	viewToasts    = "toasts"
	viewHelp      = "help"
	zonePrefix    = "zone-"
)

// Deps are the shared services the UI drives.
type Deps struct {
	Session *session.Store
	Client  *api.Client
	Tasks   *tasks.Controller
	Toasts  *notify.Bus
	Logger  *zap.Logger
}

type UI struct {
	session *session.Store
	client  *api.Client
	ctrl    *tasks.Controller
	toasts  *notify.Bus
	logger  *zap.Logger
	gui     *gocui.Gui
	ctx     context.Context
	now     func() time.Time

	screen     route.Route
	selected   int
	activeView string
	form       *formState
	formEditor *formEditor
	helpActive bool
	notice     string
	lastEmail  string

	stats        *model.Stats
	statsErr     error
	statsLoading bool
}

type formState struct {
	kind   formKind
	title  string
	task   model.Task
	fields []formField
	index  int
	err    string
	busy   bool
}

func newUI(ctx context.Context, deps Deps) *UI {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ui := &UI{
		session: deps.Session,
		client:  deps.Client,
		ctrl:    deps.Tasks,
		toasts:  deps.Toasts,
		logger:  logger.Named("tui"),
		ctx:     ctx,
		now:     time.Now,
	}
	ui.formEditor = &formEditor{ui: ui}
	return ui
}

// Run shows the UI until the user quits. start is resolved through the
// route guards before anything is drawn.
func Run(ctx context.Context, deps Deps, start route.Route) error {
	gui, err := gocui.NewGui(gocui.NewGuiOpts{OutputMode: gocui.OutputNormal})
	if err != nil {
		return err
	}
	defer gui.Close()

	ui := newUI(ctx, deps)
	ui.gui = gui
	gui.Mouse = true

	gui.SetManagerFunc(ui.layout)
	if err := ui.bindKeys(gui); err != nil {
		return err
	}
	unsubscribe := ui.subscribe()
	defer unsubscribe()

	ui.navigate(start)

	if err := gui.MainLoop(); err != nil && !goerrors.Is(err, gocui.ErrQuit) {
		return err
	}
	return nil
}

func (u *UI) subscribe() func() {
	u.ctrl.Subscribe(u.redraw)
	u.toasts.Subscribe(u.redraw)
	return u.session.Subscribe(func(event session.Event) {
		u.onMain(func() { u.onSession(event) })
	})
}

// onMain runs fn on the UI goroutine. Without a gui it runs inline.
func (u *UI) onMain(fn func()) {
	if u.gui == nil {
		fn()
		return
	}
	u.gui.Update(func(*gocui.Gui) error {
		fn()
		return nil
	})
}

func (u *UI) redraw() {
	if u.gui == nil {
		return
	}
	u.gui.Update(func(*gocui.Gui) error { return nil })
}

// async runs work off the UI goroutine and applies the returned func back on
// it. Without a gui both halves run inline.
func (u *UI) async(work func(ctx context.Context) func()) {
	if u.gui == nil {
		if apply := work(u.ctx); apply != nil {
			apply()
		}
		return
	}
	go func() {
		apply := work(u.ctx)
		if apply != nil {
			u.onMain(apply)
		}
	}()
}

func (u *UI) onSession(event session.Event) {
	u.logger.Debug("session event", zap.Stringer("reason", event.Reason), zap.Bool("authenticated", event.Authenticated))
	if event.Authenticated {
		u.notice = ""
		u.navigate(route.Tasks)
		return
	}

	u.ctrl.Reset()
	u.stats = nil
	u.statsErr = nil
	u.selected = 0
	u.activeView = ""
	switch event.Reason {
	case session.ReasonExpired:
		u.notice = "Your session expired. Sign in again."
	case session.ReasonExternal:
		u.notice = "Signed out from another window."
	default:
		u.notice = "Signed out."
	}
	u.navigate(route.Login)
}

// navigate moves to target after applying the route guards.
func (u *UI) navigate(target route.Route) {
	next := route.Resolve(target, u.session.Authenticated())
	previous := u.screen
	u.screen = next
	if next != previous {
		u.form = nil
		u.helpActive = false
		u.ctrl.CancelDrag()
		u.logger.Debug("navigate", zap.String("from", string(previous)), zap.String("to", string(next)))
	}

	switch next {
	case route.Login:
		if u.form == nil || u.form.kind != formLogin {
			u.openForm(formLogin, "Sign in", loginFields(u.lastEmail))
		}
	case route.Register:
		if u.form == nil || u.form.kind != formRegister {
			u.openForm(formRegister, "Create account", registerFields())
		}
	case route.Tasks:
		if next != previous {
			u.loadTasks()
		}
	case route.Dashboard:
		if next != previous {
			u.loadStats()
		}
	}
}

func (u *UI) openForm(kind formKind, title string, fields []formField) {
	u.form = &formState{kind: kind, title: title, fields: fields}
}

func (u *UI) loadTasks() {
	u.async(func(ctx context.Context) func() {
		_ = u.ctrl.Refresh(ctx)
		return u.clampSelection
	})
}

func (u *UI) loadStats() {
	u.statsLoading = true
	u.async(func(ctx context.Context) func() {
		stats, err := u.client.Stats(ctx)
		return func() {
			u.statsLoading = false
			if err != nil {
				u.statsErr = err
				if message, show := api.Describe(err, "Could not load statistics"); show {
					u.toasts.Error(message)
				}
				return
			}
			u.stats = &stats
			u.statsErr = nil
		}
	})
}

func (u *UI) clampSelection() {
	count := len(u.ctrl.Tasks())
	if u.selected >= count {
		u.selected = count - 1
	}
	if u.selected < 0 {
		u.selected = 0
	}
}

func (u *UI) selectedTask() (model.Task, bool) {
	list := u.ctrl.Tasks()
	if u.selected < 0 || u.selected >= len(list) {
		return model.Task{}, false
	}
	return list[u.selected], true
}

// inputActive reports an overlay that owns the keyboard.
func (u *UI) inputActive() bool {
	if u.form != nil || u.helpActive {
		return true
	}
	_, pending := u.ctrl.Pending()
	return pending
}

func (u *UI) layout(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	if maxX <= 0 || maxY <= 0 {
		return nil
	}

	headerView, err := gui.SetView(viewHeader, 0, 0, maxX-1, 0, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	headerView.Frame = false
	headerView.Wrap = true
	headerView.FgColor = gocui.ColorDefault
	headerView.Clear()
	fmt.Fprint(headerView, u.headerText())

	footerY1 := max(maxY-2, 1)
	footerY0 := max(footerY1-2, 1)
	footerView, err := gui.SetView(viewFooter, 0, footerY0, maxX-1, footerY1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	footerView.Frame = false
	footerView.Wrap = true
	footerView.FgColor = gocui.ColorDefault | gocui.AttrDim
	footerView.BgColor = gocui.ColorDefault
	footerView.Clear()
	fmt.Fprint(footerView, u.footerText())

	bodyTop := 1
	bodyBottom := footerY0 - 1
	if bodyBottom <= bodyTop {
		return nil
	}

	var main string
	switch u.screen {
	case route.Tasks:
		main = viewTasks
		deleteViews(gui, viewWelcome, viewDashboard)
		if err := u.layoutTasks(gui, maxX, bodyTop, bodyBottom); err != nil {
			return err
		}
	case route.Dashboard:
		main = viewDashboard
		deleteViews(gui, viewWelcome, viewTasks, viewDetail, viewConfirm)
		u.deleteZones(gui)
		if err := u.layoutDashboard(gui, maxX, bodyTop, bodyBottom); err != nil {
			return err
		}
	default:
		main = viewWelcome
		deleteViews(gui, viewTasks, viewDetail, viewDashboard, viewConfirm)
		u.deleteZones(gui)
		if err := u.layoutWelcome(gui, maxX, bodyTop, bodyBottom); err != nil {
			return err
		}
	}

	_, _ = gui.SetViewOnTop(viewHeader)
	_, _ = gui.SetViewOnTop(viewFooter)

	if err := u.layoutToasts(gui, maxX); err != nil {
		return err
	}

	focus := main
	if u.screen == route.Tasks {
		if pending, ok := u.ctrl.Pending(); ok {
			if err := u.showConfirm(gui, pending); err != nil {
				return err
			}
			focus = viewConfirm
		} else {
			_ = gui.DeleteView(viewConfirm)
		}
	}

	if u.helpActive {
		if err := u.showHelp(gui); err != nil {
			return err
		}
		focus = viewHelp
	} else {
		_ = gui.DeleteView(viewHelp)
	}

	if u.form != nil {
		if err := u.showForm(gui); err != nil {
			return err
		}
		focus = viewForm
	} else {
		_ = gui.DeleteView(viewForm)
	}

	if current := gui.CurrentView(); current == nil || current.Name() != focus {
		_, _ = gui.SetCurrentView(focus)
	}
	gui.Cursor = u.form != nil
	return nil
}

func deleteViews(gui *gocui.Gui, names ...string) {
	for _, name := range names {
		_ = gui.DeleteView(name)
	}
}

func (u *UI) layoutWelcome(gui *gocui.Gui, maxX, y0, y1 int) error {
	view, err := gui.SetView(viewWelcome, 0, y0, maxX-1, y1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	view.Title = "lazytareas"
	view.Wrap = true
	view.Clear()
	fmt.Fprintln(view, "Manage your tasks from the terminal.")
	if u.notice != "" {
		fmt.Fprintln(view)
		fmt.Fprintln(view, u.notice)
	}
	return nil
}

func (u *UI) layoutToasts(gui *gocui.Gui, maxX int) error {
	items := u.toasts.Items()
	if len(items) == 0 {
		_ = gui.DeleteView(viewToasts)
		return nil
	}
	width := min(max(maxX/3, 30), maxX-1)
	x0 := maxX - 1 - width
	view, err := gui.SetView(viewToasts, x0, 1, maxX-1, len(items)+2, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	view.Title = "Notifications"
	view.Wrap = true
	view.FrameColor = gocui.ColorYellow
	if items[len(items)-1].Severity == notify.SeverityError {
		view.FrameColor = gocui.ColorRed
	}
	view.Clear()
	renderToasts(view, items)
	_, _ = gui.SetViewOnTop(viewToasts)
	return nil
}

func (u *UI) headerText() string {
	parts := []string{"lazytareas", u.screen.Title()}
	if claims, ok := u.session.Claims(); ok && claims.Email != "" {
		parts = append(parts, claims.Email)
	}
	if u.screen == route.Tasks {
		filter := u.ctrl.Filter()
		label := "Filters"
		if count := filter.ActiveCount(); count > 0 {
			label = fmt.Sprintf("Filters (%d)", count)
		}
		parts = append(parts, label+": "+renderFilterSummary(filter), "Sort: "+filter.OrderingLabel())
		if u.activeView != "" {
			parts = append(parts, "View: "+u.activeView)
		}
	}
	return strings.Join(parts, " | ")
}

func (u *UI) footerText() string {
	var lines []string
	switch u.screen {
	case route.Tasks:
		snap := u.ctrl.Snapshot()
		if snap.Drag != tasks.DragIdle {
			lines = append(lines, "1 Pending | 2 In progress | 3 Completed | 4 Cancelled | esc cancel move")
		} else {
			lines = append(lines, "a add | e edit | d delete | m move | f filter | / search | g clear | o sort | O direction")
		}
		lines = append(lines, "w save view | V next view | tab dashboard | r reload | L logout | ? help | q quit")
	case route.Dashboard:
		lines = append(lines, "tab tasks | r reload | L logout | ? help | q quit")
	case route.Register:
		lines = append(lines, "enter create account | tab next field | ctrl+l sign in instead | ctrl+c quit")
	default:
		lines = append(lines, "enter sign in | tab next field | ctrl+r create an account | ctrl+c quit")
	}
	return strings.Join(lines, "\n")
}

func (u *UI) showHelp(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	width := min(max(60, maxX/2), maxX-2)
	height := min(20, maxY-2)
	x0 := (maxX - width) / 2
	y0 := (maxY - height) / 2

	view, err := gui.SetView(viewHelp, x0, y0, x0+width, y0+height, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		view.Title = "Help"
		view.Wrap = true
	}
	view.Clear()
	fmt.Fprint(view, helpText())
	return nil
}

func helpText() string {
	return strings.Join([]string{
		"Tasks:",
		"  j/k or arrows move selection",
		"  a add | e edit | d delete (asks first)",
		"  m pick up the selected task, then 1-4 to drop it on a status",
		"  drag a row with the mouse and release it on a status zone",
		"",
		"Filters:",
		"  f filter panel | / search | g clear filters",
		"  o cycle sort key | O toggle direction",
		"  w save current filters as a view | V next saved view",
		"",
		"Forms:",
		"  tab/arrows move between fields | space/left/right change a choice",
		"  enter submit | esc cancel | ctrl+u clear field",
		"",
		"Other:",
		"  tab switch tasks/dashboard | r reload | x dismiss notification",
		"  L logout | ? help | q quit",
	}, "\n")
}

func applyViewStyle(view *gocui.View, focused bool, highlight bool) {
	view.Frame = true
	view.Highlight = focused && highlight
	view.HighlightInactive = false
	view.SelBgColor = gocui.ColorBlue
	view.SelFgColor = gocui.ColorBlack
	view.InactiveViewSelBgColor = gocui.ColorDefault
	if focused {
		view.FrameColor = gocui.ColorCyan
		view.TitleColor = gocui.ColorCyan
	} else {
		view.FrameColor = gocui.ColorDefault
	}
}

func (u *UI) quit(_ *gocui.Gui, _ *gocui.View) error {
	return gocui.ErrQuit
}
