package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/gabrielrom/gomarketplace/internal/cart/app"
	"github.com/gabrielrom/gomarketplace/internal/cart/domain"
	"github.com/gabrielrom/gomarketplace/internal/cart/infra/file"
	"github.com/gabrielrom/gomarketplace/internal/cart/infra/memory"
	"github.com/gabrielrom/gomarketplace/internal/cart/infra/redis"
	"github.com/gabrielrom/gomarketplace/pkg/config"
)

type listCmd struct{}

func (c *listCmd) Run(svc *app.Service, out io.Writer) error {
	return writeCart(out, svc.Products())
}

type addCmd struct {
	ID       string  `arg:"" help:"Product id."`
	Title    string  `help:"Product title."`
	ImageURL string  `name:"image-url" help:"Product image URL."`
	Price    float64 `help:"Unit price." default:"0"`
}

func (c *addCmd) Run(ctx context.Context, svc *app.Service, out io.Writer) error {
	state, err := svc.AddToCart(ctx, domain.Product{
		ID:       c.ID,
		Title:    c.Title,
		ImageURL: c.ImageURL,
		Price:    c.Price,
	})
	if err != nil {
		return err
	}
	return writeCart(out, state)
}

type incCmd struct {
	ID string `arg:"" help:"Cart item id."`
}

func (c *incCmd) Run(ctx context.Context, svc *app.Service, out io.Writer) error {
	state, err := svc.Increment(ctx, c.ID)
	if err != nil {
		return err
	}
	return writeCart(out, state)
}

type decCmd struct {
	ID string `arg:"" help:"Cart item id."`
}

func (c *decCmd) Run(ctx context.Context, svc *app.Service, out io.Writer) error {
	state, err := svc.Decrement(ctx, c.ID)
	if err != nil {
		return err
	}
	return writeCart(out, state)
}

type resetCmd struct{}

func (c *resetCmd) Run(ctx context.Context, svc *app.Service, out io.Writer) error {
	if err := svc.Reset(ctx); err != nil {
		return err
	}
	return writeCart(out, svc.Products())
}

func writeCart(w io.Writer, state domain.State) error {
	if len(state) == 0 {
		_, err := fmt.Fprintln(w, "cart is empty")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tPRICE\tQTY\tSUBTOTAL")
	for _, item := range state {
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%d\t%.2f\n",
			item.ID, item.Title, item.Price, item.Quantity, item.Price*float64(item.Quantity))
	}
	fmt.Fprintf(tw, "\t\t\t%d\t%.2f\n", state.Count(), state.Total())
	return tw.Flush()
}

func newBridge(ctx context.Context, cfg config.Config, log *slog.Logger) (app.Bridge, func(), error) {
	switch cfg.Backend {
	case "file":
		store, err := file.NewStore(cfg.Dir)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	case "memory":
		return memory.NewStore(), func() {}, nil
	case "redis":
		store := redis.NewStore(cfg.RedisAddr, log)
		if err := store.Initialize(ctx, cfg.RedisConnectAttempts); err != nil {
			store.Close()
			return nil, nil, err
		}
		return store, func() {
			if err := store.Close(); err != nil {
				log.Warn("redis close failed", slog.Any("err", err))
			}
		}, nil
	default:
		return nil, nil, fmt.Errorf("unknown cart backend %q", cfg.Backend)
	}
}
