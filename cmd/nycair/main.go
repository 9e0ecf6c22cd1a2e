package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/lox/nycair/internal/api"
	"github.com/lox/nycair/internal/chart"
	"github.com/lox/nycair/internal/config"
	"github.com/lox/nycair/internal/models"
	"github.com/lox/nycair/internal/scene"
)

type CLI struct {
	config.Config `embed:""`

	Serve  ServeCmd  `cmd:"" default:"1" help:"Serve the narrative over HTTP."`
	Render RenderCmd `cmd:"" help:"Render one scene to a file."`
	Scenes ScenesCmd `cmd:"" help:"Print the narrative of every scene."`
}

type ServeCmd struct {
	Addr       string        `help:"Listen address." default:":8080" env:"NYCAIR_ADDR"`
	OGCacheTTL time.Duration `name:"og-cache-ttl" help:"How long preview cards are cached." default:"10m"`
}

func (c *ServeCmd) Run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	loader, err := cfg.Loader(logger)
	if err != nil {
		return err
	}
	// A failed load is retried by the next request.
	if _, err := loader.Load(ctx); err != nil {
		logger.Warn("initial dataset load failed", "error", err)
	}

	controller := scene.NewController(loader, scene.DefaultNarratives(), logger)
	srv := api.NewServer(controller, loader, logger, api.Options{Addr: c.Addr, OGCacheTTL: c.OGCacheTTL})
	return srv.Run(ctx)
}

type RenderCmd struct {
	Scene    int    `arg:"" help:"Scene index (0-2)."`
	Format   string `help:"Output format." enum:"svg,png,pdf,json,text" default:"svg"`
	Output   string `short:"o" help:"Output file; stdout when empty." type:"path"`
	Location string `help:"Drill-down location."`
	From     int    `help:"Drill-down first year."`
	To       int    `help:"Drill-down last year."`
}

func (c *RenderCmd) Run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	narrative, ok := scene.DefaultNarratives().Get(c.Scene)
	if !ok {
		return fmt.Errorf("%w: %d", scene.ErrUnknownScene, c.Scene)
	}
	loader, err := cfg.Loader(logger)
	if err != nil {
		return err
	}
	ms, err := loader.Load(ctx)
	if err != nil {
		return err
	}
	elems, err := scene.Render(ms, c.Scene, c.filter(ms))
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if c.Output != "" {
		f, err := os.Create(c.Output)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	switch c.Format {
	case "png":
		err = chart.WritePNG(w, elems)
	case "pdf":
		err = chart.WritePDF(w, elems, chart.Report{Title: narrative.Title, Body: narrative.Body})
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(struct {
			Narrative scene.Narrative   `json:"narrative"`
			Elements  []chart.Described `json:"elements"`
		}{narrative, chart.Describe(elems)})
	case "text":
		_, err = fmt.Fprintln(w, narrative.Text())
	default:
		err = chart.WriteSVG(w, elems)
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", c.Format, err)
	}
	logger.Info("scene rendered", "scene", c.Scene, "format", c.Format, "elements", len(elems))
	return nil
}

// filter returns the drill-down state from the flags, or nil to use the
// default state.
func (c *RenderCmd) filter(ms []models.Measurement) *models.FilterState {
	if c.Scene != scene.DrilldownIndex || (c.Location == "" && c.From == 0 && c.To == 0) {
		return nil
	}
	state := scene.NewDrill(ms).DefaultState()
	if c.Location != "" {
		state.Location = c.Location
	}
	if c.From != 0 {
		state.FromYear = c.From
	}
	if c.To != 0 {
		state.ToYear = c.To
	}
	return &state
}

type ScenesCmd struct{}

func (c *ScenesCmd) Run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	for i, n := range scene.DefaultNarratives() {
		fmt.Printf("[%d] %s\n\n", i, n.Text())
	}
	return nil
}

func main() {
	if err := config.LoadDotenv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("nycair"),
		kong.Description("A three-scene narrative of nitrogen dioxide levels in New York City."),
		kong.UsageOnError(),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)
	kctx.FatalIfErrorf(cli.Config.Validate())

	logger := cli.Config.Logger(os.Stderr)
	slog.SetDefault(logger)

	kctx.FatalIfErrorf(kctx.Run(&cli.Config, logger))
}
