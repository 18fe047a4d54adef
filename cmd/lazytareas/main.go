package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
)

type CLI struct {
	Config       string `help:"Config file path." type:"path" env:"LAZYTAREAS_CONFIG"`
	API          string `help:"Backend base URL." name:"api" env:"LAZYTAREAS_API_URL"`
	DB           string `help:"SQLite database path." name:"db" type:"path" env:"LAZYTAREAS_DB"`
	LogLevel     string `help:"Log level (debug, info, warn, error)." env:"LAZYTAREAS_LOG_LEVEL"`
	OTLPEndpoint string `help:"OTLP gRPC endpoint for traces and metrics." name:"otlp-endpoint" env:"LAZYTAREAS_OTLP_ENDPOINT"`

	TUI      TUICmd      `cmd:"" name:"tui" default:"withargs" help:"Open the terminal UI."`
	Login    LoginCmd    `cmd:"" help:"Sign in and store the session token."`
	Logout   LogoutCmd   `cmd:"" help:"Forget the stored session token."`
	Register RegisterCmd `cmd:"" help:"Create an account."`
	List     ListCmd     `cmd:"" help:"Print tasks matching the given filters."`
	Stats    StatsCmd    `cmd:"" help:"Print task statistics."`
	Version  VersionCmd  `cmd:"" help:"Print version information."`
}

func main() {
	cli := &CLI{}
	kctx := kong.Parse(cli,
		kong.Name("lazytareas"),
		kong.Description("Terminal client for the tareas task service."),
		kong.UsageOnError(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if kctx.Command() == "version" {
		kctx.FatalIfErrorf(kctx.Run())
		return
	}

	app, err := newApp(ctx, cli)
	kctx.FatalIfErrorf(err)
	kctx.BindTo(ctx, (*context.Context)(nil))
	err = kctx.Run(app)
	app.Close()
	kctx.FatalIfErrorf(err)
}
