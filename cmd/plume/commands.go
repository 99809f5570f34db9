package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/obsoleter/plume"
	"github.com/obsoleter/plume/publish"
	"github.com/obsoleter/plume/scaffold"
)

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// ServeCmd implements 'serve'.
type ServeCmd struct {
	Addr     string        `short:"a" help:"Listen address" env:"PLUME_ADDR"`
	Watch    bool          `short:"w" help:"Reload content as soon as a file changes"`
	Interval time.Duration `help:"Polling interval of --watch" default:"500ms"`
	Metrics  bool          `help:"Expose Prometheus metrics on /metrics" env:"PLUME_METRICS"`
}

func (s *ServeCmd) Run(g *Globals, root *CLI) error {
	opts := []plume.Option{}
	if s.Metrics {
		opts = append(opts, plume.WithRegistry(newRegistry()))
	}
	app, err := root.app(g, func(cfg *plume.SiteConfig) {
		if s.Addr != "" {
			cfg.Addr = s.Addr
		}
		// Without the watcher every request checks for changed files.
		if !s.Watch {
			cfg.AutoReload = true
		}
	}, opts...)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, stop := signalContext()
	defer stop()

	if s.Watch {
		go func() {
			if err := app.Watch(ctx, s.Interval); err != nil {
				g.Logger.Error("watcher stopped", "err", err)
			}
		}()
	}
	return app.Serve(ctx)
}

// BuildCmd implements 'build'.
type BuildCmd struct {
	NoHistory bool `help:"Do not record the build in the history database"`
}

func (b *BuildCmd) Run(g *Globals, root *CLI) error {
	var opts []plume.Option
	if !b.NoHistory {
		opts = append(opts, plume.WithHistory())
	}
	app, err := root.app(g, nil, opts...)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, stop := signalContext()
	defer stop()

	res, err := app.Build(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Built %d files (%d bytes) into %s\n", len(res.Files), res.Bytes(), app.Config.OutputDir)
	return nil
}

// PostCmd implements 'post <name>'.
type PostCmd struct {
	Name   string `arg:"" help:"Title of the new post"`
	Editor string `help:"Editor command line" env:"PLUME_EDITOR"`
}

func (p *PostCmd) Run(g *Globals, root *CLI) error {
	cfg, err := root.siteConfig()
	if err != nil {
		return err
	}
	return scaffoldAndEdit(g, cfg, p.Editor, func(a *scaffold.Author) (string, error) {
		return a.NewPost(p.Name)
	})
}

// PageCmd implements 'page <name>'.
type PageCmd struct {
	Name   string `arg:"" help:"Title of the new page"`
	Editor string `help:"Editor command line" env:"PLUME_EDITOR"`
}

func (p *PageCmd) Run(g *Globals, root *CLI) error {
	cfg, err := root.siteConfig()
	if err != nil {
		return err
	}
	return scaffoldAndEdit(g, cfg, p.Editor, func(a *scaffold.Author) (string, error) {
		return a.NewPage(p.Name)
	})
}

func scaffoldAndEdit(g *Globals, cfg plume.SiteConfig, editor string, create func(*scaffold.Author) (string, error)) error {
	if editor == "" {
		editor = scaffold.DefaultEditor()
	}
	author := &scaffold.Author{
		Root:    cfg.ContentDir,
		PostDir: cfg.PostDir,
		PageDir: cfg.PageDir,
		Editor:  editor,
		Logger:  g.Logger,
	}
	if author.Root == "" {
		author.Root = "content"
	}
	file, err := create(author)
	if err != nil {
		return err
	}
	fmt.Fprintln(g.Stdout, file)

	err = author.Edit(context.Background(), file)
	if errors.Is(err, scaffold.ErrEditorNotFound) {
		fmt.Fprintln(g.Stderr, err)
		return nil
	}
	return err
}

// HistoryCmd implements 'history'.
type HistoryCmd struct {
	Limit int    `short:"n" help:"Number of builds to list" default:"10"`
	Files string `help:"List the files written by the build with this id"`
}

func (h *HistoryCmd) Run(g *Globals, root *CLI) error {
	cfg, err := root.siteConfig()
	if err != nil {
		return err
	}
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = "data/plume.db"
	}
	hist, err := plume.OpenHistory(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer hist.Close()

	ctx := context.Background()
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer tw.Flush()

	if h.Files != "" {
		files, err := hist.Files(ctx, h.Files)
		if err != nil {
			return err
		}
		fmt.Fprintln(tw, "PATH\tSIZE\tSHA256")
		for _, f := range files {
			fmt.Fprintf(tw, "%s\t%d\t%s\n", f.Path, f.Size, f.SHA256)
		}
		return nil
	}

	builds, err := hist.List(ctx, h.Limit)
	if err != nil {
		return err
	}
	fmt.Fprintln(tw, "ID\tSTARTED\tDURATION\tFILES\tBYTES\tERROR")
	for _, b := range builds {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n", b.ID, b.Started.Local().Format(time.DateTime),
			b.Duration().Round(time.Millisecond), b.Files, b.Bytes, b.Err)
	}
	return nil
}

// PublishCmd groups the publish targets.
type PublishCmd struct {
	Build bool `help:"Build the site before publishing"`

	S3  PublishS3Cmd  `cmd:"" name:"s3" help:"Upload the output directory to an S3 bucket"`
	Git PublishGitCmd `cmd:"" help:"Commit the output directory to its git repository"`
}

// PublishS3Cmd implements 'publish s3'.
type PublishS3Cmd struct {
	Bucket    string `required:"" help:"Destination bucket" env:"PLUME_S3_BUCKET"`
	Prefix    string `help:"Key prefix inside the bucket" env:"PLUME_S3_PREFIX"`
	Region    string `help:"AWS region" env:"AWS_REGION"`
	Endpoint  string `help:"Endpoint of an S3-compatible store" env:"PLUME_S3_ENDPOINT"`
	PathStyle bool   `help:"Use path-style bucket addressing" env:"PLUME_S3_PATH_STYLE"`
}

func (p *PublishS3Cmd) Run(g *Globals, root *CLI, parent *PublishCmd) error {
	ctx, stop := signalContext()
	defer stop()

	client, err := publish.NewS3Client(ctx, publish.S3Config{
		Region:    p.Region,
		Endpoint:  p.Endpoint,
		PathStyle: p.PathStyle,
	})
	if err != nil {
		return err
	}
	return runPublish(ctx, g, root, parent, "s3", publish.NewS3(client, p.Bucket, p.Prefix, g.Logger))
}

// PublishGitCmd implements 'publish git'.
type PublishGitCmd struct {
	Name    string `help:"Commit author name" env:"PLUME_GIT_NAME"`
	Email   string `help:"Commit author email" env:"PLUME_GIT_EMAIL"`
	Message string `short:"m" help:"Commit message"`
	Remote  string `help:"Remote to push to after committing"`
}

func (p *PublishGitCmd) Run(g *Globals, root *CLI, parent *PublishCmd) error {
	ctx, stop := signalContext()
	defer stop()

	return runPublish(ctx, g, root, parent, "git", &publish.Git{
		Name:    p.Name,
		Email:   p.Email,
		Message: p.Message,
		Remote:  p.Remote,
		Logger:  g.Logger,
	})
}

func runPublish(ctx context.Context, g *Globals, root *CLI, parent *PublishCmd, target string, p publish.Publisher) error {
	var opts []plume.Option
	if parent.Build {
		opts = append(opts, plume.WithHistory())
	}
	app, err := root.app(g, nil, opts...)
	if err != nil {
		return err
	}
	defer app.Close()

	if parent.Build {
		if _, err := app.Build(ctx); err != nil {
			return err
		}
	}
	rep, err := app.Publish(ctx, target, p)
	if err != nil {
		return err
	}
	fmt.Printf("Published %d files to %s\n", rep.Files, rep.Target)
	return nil
}

// VersionCmd implements 'version'.
type VersionCmd struct{}

func (VersionCmd) Run() error {
	fmt.Printf("plume %s\n", version)
	return nil
}
