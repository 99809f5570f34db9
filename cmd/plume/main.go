// Command plume serves, builds and publishes a flat-file blog.
package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/obsoleter/plume"
)

// version is set at build time via ldflags.
var version = "dev"

// CLI is the root command line. Flags given explicitly, or through the
// PLUME_* environment, override plume.toml.
type CLI struct {
	Config  string `short:"c" help:"Site configuration file" default:"plume.toml" env:"PLUME_CONFIG" type:"path"`
	Verbose bool   `short:"v" help:"Enable debug logging" env:"PLUME_VERBOSE"`

	ContentDir string `name:"content" help:"Content directory" env:"PLUME_CONTENT_DIR"`
	OutputDir  string `name:"output" short:"o" help:"Output directory of the static build" env:"PLUME_OUTPUT_DIR"`
	URL        string `name:"url" help:"Canonical site URL" env:"PLUME_URL"`

	Serve   ServeCmd   `cmd:"" help:"Serve the site with live content reloading"`
	Build   BuildCmd   `cmd:"" help:"Freeze the site into the output directory"`
	Post    PostCmd    `cmd:"" help:"Create a new post and open it in the editor"`
	Page    PageCmd    `cmd:"" help:"Create a new page and open it in the editor"`
	History HistoryCmd `cmd:"" help:"List recent builds"`
	Publish PublishCmd `cmd:"" help:"Publish the built site"`
	Version VersionCmd `cmd:"" help:"Print the plume version"`
}

// Globals is shared with every command.
type Globals struct {
	Logger *slog.Logger
	Stdout io.Writer
	Stderr io.Writer
}

// AfterApply sets up logging once flags are parsed.
func (c *CLI) AfterApply(g *Globals) error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	g.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(g.Logger)
	return nil
}

// siteConfig loads plume.toml and applies the command line overrides.
func (c *CLI) siteConfig() (plume.SiteConfig, error) {
	cfg, err := plume.LoadConfig(c.Config)
	if err != nil {
		return cfg, err
	}
	if c.ContentDir != "" {
		cfg.ContentDir = c.ContentDir
	}
	if c.OutputDir != "" {
		cfg.OutputDir = c.OutputDir
	}
	if c.URL != "" {
		cfg.URL = c.URL
	}
	return cfg, nil
}

// app builds the plume.App for a command. configure, if set, adjusts the
// loaded configuration first.
func (c *CLI) app(g *Globals, configure func(*plume.SiteConfig), opts ...plume.Option) (*plume.App, error) {
	cfg, err := c.siteConfig()
	if err != nil {
		return nil, err
	}
	if configure != nil {
		configure(&cfg)
	}
	opts = append([]plume.Option{plume.WithLogger(g.Logger)}, opts...)
	return plume.New(cfg, opts...)
}

func newRegistry() *prom.Registry {
	reg := prom.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	var cli CLI
	globals := &Globals{Logger: slog.Default(), Stdout: os.Stdout, Stderr: os.Stderr}
	ctx := kong.Parse(&cli,
		kong.Name("plume"),
		kong.Description("A flat-file blog engine."),
		kong.UsageOnError(),
		kong.Bind(globals),
	)
	if err := ctx.Run(globals, &cli); err != nil {
		globals.Logger.Error("command failed", "command", ctx.Command(), "err", err)
		os.Exit(1)
	}
}
