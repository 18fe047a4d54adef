package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Joseda-hg/lazytareas/internal/api"
	"github.com/Joseda-hg/lazytareas/internal/model"
	"github.com/Joseda-hg/lazytareas/internal/route"
	goerrors "github.com/go-errors/errors"
	"github.com/jesseduffield/gocui"
)

type formEditor struct {
	ui *UI
}

func (u *UI) showForm(gui *gocui.Gui) error {
	if u.form == nil {
		return nil
	}

	maxX, maxY := gui.Size()
	width := min(max(60, maxX/2), maxX-2)
	height := min(len(u.form.fields)+4, maxY-2)
	x0 := (maxX - width) / 2
	y0 := (maxY - height) / 2

	view, err := gui.SetView(viewForm, x0, y0, x0+width, y0+height, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	view.Title = u.form.title
	view.Wrap = true
	view.Editable = true
	view.KeybindOnEdit = true
	view.Editor = u.formEditor
	u.renderForm(view)
	_, _ = gui.SetViewOnTop(viewForm)
	return nil
}

func (u *UI) renderForm(view *gocui.View) {
	if u.form == nil || view == nil {
		return
	}
	view.Clear()
	for index, field := range u.form.fields {
		prefix := "  "
		if index == u.form.index {
			prefix = "> "
		}
		fmt.Fprintf(view, "%s%s: %s\n", prefix, field.Label, field.display())
	}
	switch {
	case u.form.busy:
		fmt.Fprint(view, "\nWorking...")
	case u.form.err != "":
		fmt.Fprint(view, "\n"+u.form.err)
	}
	field := u.form.fields[u.form.index]
	cursorX := len([]rune(field.Label+": ")) + len([]rune(field.display())) + 2
	view.SetCursor(cursorX, u.form.index)
}

func (e *formEditor) Edit(view *gocui.View, key gocui.Key, ch rune, mod gocui.Modifier) bool {
	ui := e.ui
	if ui == nil || ui.form == nil || view == nil || ui.form.busy {
		return false
	}
	ui.editField(&ui.form.fields[ui.form.index], key, ch, mod)
	ui.renderForm(view)
	return true
}

func (u *UI) editField(field *formField, key gocui.Key, ch rune, mod gocui.Modifier) {
	switch field.Kind {
	case fieldSelect:
		switch key {
		case gocui.KeyArrowRight, gocui.KeySpace:
			field.cycle(1)
		case gocui.KeyArrowLeft:
			field.cycle(-1)
		}
		return
	case fieldToggle:
		if key == gocui.KeySpace || ch == ' ' {
			field.toggle()
		}
		return
	}

	switch key {
	case gocui.KeyBackspace, gocui.KeyBackspace2:
		runes := []rune(field.Value)
		if len(runes) > 0 {
			field.Value = string(runes[:len(runes)-1])
		}
	case gocui.KeySpace:
		field.Value += " "
	case gocui.KeyCtrlU:
		field.Value = ""
	}

	if ch != 0 && ch != '\n' && ch != '\r' && mod == 0 {
		field.Value += string(ch)
	}
}

func (u *UI) nextFormField(_ *gocui.Gui, view *gocui.View) error {
	if u.form == nil {
		return nil
	}
	if u.form.index < len(u.form.fields)-1 {
		u.form.index++
	}
	u.renderForm(view)
	return nil
}

func (u *UI) prevFormField(_ *gocui.Gui, view *gocui.View) error {
	if u.form == nil {
		return nil
	}
	if u.form.index > 0 {
		u.form.index--
	}
	u.renderForm(view)
	return nil
}

// cancelForm closes the overlay. The sign-in and sign-up forms are the
// whole screen and stay open.
func (u *UI) cancelForm(_ *gocui.Gui, _ *gocui.View) error {
	if u.form == nil || u.form.kind == formLogin || u.form.kind == formRegister {
		return nil
	}
	if u.form.kind == formFilter {
		u.ctrl.CloseFilterPanel()
	}
	u.form = nil
	return nil
}

func (u *UI) gotoRegister(_ *gocui.Gui, _ *gocui.View) error {
	if u.screen == route.Login {
		u.navigate(route.Register)
	}
	return nil
}

func (u *UI) gotoLogin(_ *gocui.Gui, _ *gocui.View) error {
	if u.screen == route.Register {
		u.navigate(route.Login)
	}
	return nil
}

func (u *UI) submitForm(_ *gocui.Gui, view *gocui.View) error {
	form := u.form
	if form == nil || form.busy {
		return nil
	}
	form.err = ""

	switch form.kind {
	case formLogin:
		u.submitLogin(form)
	case formRegister:
		u.submitRegister(form)
	case formCreate:
		draft, err := parseDraft(form.fields)
		if err != nil {
			form.err = err.Error()
			break
		}
		u.submitWork(form, "Could not create the task", func(ctx context.Context) error {
			_, err := u.ctrl.Create(ctx, draft)
			return err
		}, nil)
	case formEdit:
		update, err := parseEdit(form.fields, form.task)
		if err != nil {
			form.err = err.Error()
			break
		}
		u.submitWork(form, "Could not update the task", func(ctx context.Context) error {
			_, err := u.ctrl.Update(ctx, form.task.ID, update)
			return err
		}, nil)
	case formFilter:
		spec, err := parseFilter(form.fields)
		if err != nil {
			form.err = err.Error()
			break
		}
		u.form = nil
		u.activeView = ""
		u.applyFilter(spec)
	case formSearch:
		spec := u.ctrl.Filter()
		spec.Search = strings.TrimSpace(form.fields[0].Value)
		u.form = nil
		u.applyFilter(spec)
	case formSaveView:
		name := strings.TrimSpace(form.fields[0].Value)
		if name == "" {
			form.err = "name is required"
			break
		}
		u.submitWork(form, "Could not save the view", func(ctx context.Context) error {
			_, err := u.ctrl.SaveView(ctx, name)
			return err
		}, func() { u.activeView = name })
	}

	u.renderForm(view)
	return nil
}

// submitWork runs work for form off the UI goroutine. The form closes on
// success and shows the failure otherwise.
func (u *UI) submitWork(form *formState, fallback string, work func(ctx context.Context) error, done func()) {
	form.busy = true
	u.async(func(ctx context.Context) func() {
		err := work(ctx)
		return func() {
			form.busy = false
			if err != nil {
				form.err = formError(err, fallback)
				return
			}
			if u.form == form {
				u.form = nil
			}
			if done != nil {
				done()
			}
			u.clampSelection()
		}
	})
}

func (u *UI) submitLogin(form *formState) {
	creds := parseCredentials(form.fields)
	if err := model.ValidateCredentials(creds); err != nil {
		form.err = err.Error()
		return
	}
	u.lastEmail = creds.Email
	form.busy = true
	u.async(func(ctx context.Context) func() {
		token, err := u.client.Login(ctx, creds)
		if err == nil {
			err = u.session.Login(ctx, token)
		}
		return func() {
			form.busy = false
			if err != nil {
				u.logger.Sugar().Infow("sign in failed", "email", creds.Email, "error", err)
				form.err = formError(err, "Could not sign in")
			}
		}
	})
}

func (u *UI) submitRegister(form *formState) {
	reg := parseRegistration(form.fields)
	if err := model.ValidateRegistration(reg); err != nil {
		form.err = err.Error()
		return
	}
	form.busy = true
	u.async(func(ctx context.Context) func() {
		err := u.client.Register(ctx, reg)
		return func() {
			form.busy = false
			if err != nil {
				form.err = formError(err, "Could not create the account")
				return
			}
			u.lastEmail = reg.Email
			u.toasts.Success("Account created. Sign in to continue")
			u.navigate(route.Login)
		}
	})
}

func formError(err error, fallback string) string {
	var invalid *model.ValidationError
	if errors.As(err, &invalid) {
		return invalid.Error()
	}
	if message, show := api.Describe(err, fallback); show {
		return message
	}
	return api.UserMessage(err, fallback)
}
