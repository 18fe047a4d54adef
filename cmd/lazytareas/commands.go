package main

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/Joseda-hg/lazytareas/internal/model"
	"github.com/Joseda-hg/lazytareas/internal/notify"
	"github.com/Joseda-hg/lazytareas/internal/route"
	"github.com/Joseda-hg/lazytareas/internal/tasks"
	"github.com/Joseda-hg/lazytareas/internal/tui"
	"go.uber.org/zap"
)

type TUICmd struct {
	Start string `arg:"" optional:"" default:"home" enum:"home,login,register,tareas,dashboard" help:"Screen to open."`
}

func (c *TUICmd) Run(ctx context.Context, app *App) error {
	start, err := route.Parse(c.Start)
	if err != nil {
		return err
	}

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go app.session.Watch(watchCtx, app.cfg.SessionPollInterval.Std())

	bus := notify.NewBus(app.cfg.ToastDuration.Std())
	defer bus.Stop()

	ctrl := tasks.New(app.client, bus,
		tasks.WithLogger(app.logger.Named("tasks")),
		tasks.WithViews(app.store),
		tasks.WithRevealDelay(app.cfg.DragRevealDelay.Std()),
	)
	return tui.Run(ctx, tui.Deps{
		Session: app.session,
		Client:  app.client,
		Tasks:   ctrl,
		Toasts:  bus,
		Logger:  app.logger,
	}, start)
}

type LoginCmd struct {
	Email    string `required:"" help:"Account email."`
	Password string `required:"" help:"Account password." env:"LAZYTAREAS_PASSWORD"`
}

func (c *LoginCmd) Run(ctx context.Context, app *App) error {
	creds := model.Credentials{Email: strings.TrimSpace(c.Email), Password: c.Password}
	if err := model.ValidateCredentials(creds); err != nil {
		return err
	}
	token, err := app.client.Login(ctx, creds)
	if err != nil {
		return err
	}
	if err := app.session.Login(ctx, token); err != nil {
		return err
	}
	fmt.Fprintf(app.out, "Signed in as %s\n", creds.Email)
	return nil
}

type LogoutCmd struct{}

func (c *LogoutCmd) Run(ctx context.Context, app *App) error {
	if err := app.session.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(app.out, "Signed out")
	return nil
}

type RegisterCmd struct {
	FirstName string `required:"" help:"First name."`
	LastName  string `required:"" help:"Last name."`
	Email     string `required:"" help:"Account email."`
	Password  string `required:"" help:"Password, 6 to 10 characters." env:"LAZYTAREAS_PASSWORD"`
}

func (c *RegisterCmd) Run(ctx context.Context, app *App) error {
	reg := model.Registration{
		FirstName: strings.TrimSpace(c.FirstName),
		LastName:  strings.TrimSpace(c.LastName),
		Email:     strings.TrimSpace(c.Email),
		Password:  c.Password,
	}
	if err := model.ValidateRegistration(reg); err != nil {
		return err
	}
	if err := app.client.Register(ctx, reg); err != nil {
		return err
	}
	fmt.Fprintf(app.out, "Account created for %s. Run lazytareas login to sign in.\n", reg.Email)
	return nil
}

type ListCmd struct {
	Estado      string `help:"Only tasks with this status: PENDIENTE, EN_PROGRESO, COMPLETADA or CANCELADA."`
	Importancia string `help:"Only tasks with this importance: BAJA, MEDIA or ALTA."`
	Buscar      string `help:"Search in name and description."`
	Vencidas    bool   `help:"Only overdue tasks."`
	Ordenar     string `help:"Sort key: fechaVencimiento, fechaCreacion, importancia or nombre."`
	Desc        bool   `help:"Sort descending."`
}

func (c *ListCmd) Validate() error {
	if c.Estado != "" && !slices.Contains(model.Statuses, model.Status(c.Estado)) {
		return fmt.Errorf("unknown status %q", c.Estado)
	}
	if c.Importancia != "" && !slices.Contains(model.Importances, model.Importance(c.Importancia)) {
		return fmt.Errorf("unknown importance %q", c.Importancia)
	}
	if !slices.Contains(model.SortKeys, model.SortKey(c.Ordenar)) {
		return fmt.Errorf("unknown sort key %q", c.Ordenar)
	}
	return nil
}

func (c *ListCmd) spec() model.FilterSpec {
	spec := model.DefaultFilter()
	spec.Status = model.Status(c.Estado)
	spec.Importance = model.Importance(c.Importancia)
	spec.Search = strings.TrimSpace(c.Buscar)
	spec.OverdueOnly = c.Vencidas
	spec.SortBy = model.SortKey(c.Ordenar)
	if c.Desc {
		spec.Direction = model.Descending
	}
	return spec
}

func (c *ListCmd) Run(ctx context.Context, app *App) error {
	if err := app.requireSession(); err != nil {
		return err
	}
	list, err := app.client.FilterTasks(ctx, tasks.BuildQuery(c.spec()))
	if err != nil {
		return err
	}
	app.logger.Debug("listed tasks", zap.Int("count", len(list)))
	tui.WriteTasks(app.out, list, time.Now())
	return nil
}

type StatsCmd struct{}

func (c *StatsCmd) Run(ctx context.Context, app *App) error {
	if err := app.requireSession(); err != nil {
		return err
	}
	stats, err := app.client.Stats(ctx)
	if err != nil {
		return err
	}
	tui.WriteStats(app.out, stats)
	return nil
}

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Fprintln(os.Stdout, Version())
	return nil
}
