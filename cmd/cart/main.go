package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/alecthomas/kong"

	"github.com/gabrielrom/gomarketplace/internal/cart/app"
	"github.com/gabrielrom/gomarketplace/pkg/config"
	"github.com/gabrielrom/gomarketplace/pkg/logger"
	"github.com/gabrielrom/gomarketplace/pkg/shutdown"
	"github.com/gabrielrom/gomarketplace/pkg/telemetry"
)

const version = "v0.1.0"

type cartCLI struct {
	List  listCmd  `cmd:"" default:"1" help:"Show the cart."`
	Add   addCmd   `cmd:"" help:"Add a product, or bump its quantity when already in the cart."`
	Inc   incCmd   `cmd:"" help:"Increase the quantity of a cart item by one."`
	Dec   decCmd   `cmd:"" help:"Decrease the quantity of a cart item by one, removing it at zero."`
	Reset resetCmd `cmd:"" help:"Discard the stored cart, including an unreadable one."`
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], config.Load(), os.Stdout, os.Stderr))
}

// run executes one CLI invocation and returns the process exit code. Every
// deferred cleanup, including the trace flush, has run by the time it
// returns.
func run(parent context.Context, args []string, cfg config.Config, stdout, stderr io.Writer) int {
	var cli cartCLI
	parser, err := kong.New(&cli,
		kong.Name("cart"),
		kong.Description("GoMarketplace shopping cart."),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
	)
	if err != nil {
		fmt.Fprintf(stderr, "cart: %v\n", err)
		return 2
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		fmt.Fprintf(stderr, "cart: error: %v\n", err)
		return 2
	}

	log := logger.New(logger.Options{
		Service:   "cart",
		Env:       cfg.AppEnv,
		Level:     cfg.LogLevel,
		AddSource: true,
		Output:    stderr,
	})

	ctx, cancel := shutdown.WithSignals(parent, log)
	defer cancel()

	stopTracing, err := telemetry.Init(ctx, telemetry.Options{
		Service:  "cart",
		Version:  version,
		Endpoint: cfg.OTLPEndpoint,
	})
	if err != nil {
		log.Error("telemetry init failed", slog.Any("err", err))
		return 1
	}
	defer func() {
		flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer flushCancel()
		if err := stopTracing(flushCtx); err != nil {
			log.Warn("telemetry shutdown failed", slog.Any("err", err))
		}
	}()

	bridge, closeBridge, err := newBridge(ctx, cfg, log)
	if err != nil {
		log.Error("cart storage unavailable", slog.Any("err", err), slog.String("backend", cfg.Backend))
		return 1
	}
	defer closeBridge()

	svc := app.NewService(bridge,
		app.WithLogger(log),
		app.WithStorageKey(cfg.StorageKey),
	)

	if err := svc.Hydrate(ctx); err != nil && kctx.Command() != "reset" {
		if errors.Is(err, app.ErrDeserialization) {
			fmt.Fprintln(stderr, "stored cart is unreadable; run `cart reset` to start over")
		}
		return 1
	}

	kctx.BindTo(ctx, (*context.Context)(nil))
	kctx.BindTo(stdout, (*io.Writer)(nil))
	if err := kctx.Run(svc); err != nil {
		log.Error("command failed", slog.String("command", kctx.Command()), slog.Any("err", err))
		return 1
	}
	return 0
}
