package scaffold

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"golang.org/x/mod/module"

	"github.com/kxue43/compact-react/tui"
)

type (
	// Cmd is the compact-react command line.
	Cmd struct {
		rootDir        string
		stdin          io.Reader
		stdout         io.Writer
		Args           []string         `arg:"" optional:"" name:"project-name" help:"Name of the project directory to create."`
		Config         string           `name:"config" type:"existingfile" help:"TOML or YAML file overriding the template and dependency versions."`
		Template       string           `name:"template" placeholder:"OWNER/REPO[#REF]" help:"GitHub template to start from."`
		Clone          bool             `name:"clone" help:"Fetch the template with a shallow git clone instead of the zip archive."`
		TUI            bool             `name:"tui" help:"Ask the customization questions in a terminal UI."`
		YesAll         bool             `name:"yes-all" xor:"answers" help:"Answer yes to every customization question."`
		NoPrompt       bool             `name:"no-prompt" xor:"answers" help:"Answer no to every customization question."`
		TimeoutSeconds int              `name:"timeout-seconds" default:"5" help:"Timeout NPM registry lookups after this many seconds."`
		Version        kong.VersionFlag `name:"version" help:"Show version information and quit."`
	}

	// Project is the directory being generated.
	Project struct {
		Name string
		Path string
	}

	// Generator runs the generation steps for one project.
	Generator struct {
		Console   *Console
		Fetcher   Fetcher
		Prompter  Prompter
		Template  TemplateRef
		Questions []Question
	}
)

var (
	ErrUsage     = errors.New("invalid usage")
	ErrConfig    = errors.New("invalid configuration")
	ErrRegistry  = errors.New("NPM registry lookup failure")
	ErrFetch     = errors.New("template fetch failure")
	ErrManifest  = errors.New("invalid package.json")
	ErrFileWrite = errors.New("file write failure")
)

// WriteToFile creates or truncates the file dir/name and lets hook fill it.
// Non-nil returned error wraps [ErrFileWrite].
func WriteToFile(dir, name string, hook func(io.Writer) error) (err error) {
	fd, err := os.Create(filepath.Clean(filepath.Join(dir, name)))
	if err != nil {
		return fmt.Errorf("%w: failed to create %q file: %w", ErrFileWrite, name, err)
	}

	err = hook(fd)
	if err != nil {
		_ = fd.Close()

		return fmt.Errorf("%w: failed to write to %q: %w", ErrFileWrite, name, err)
	}

	err = fd.Close()
	if err != nil {
		return fmt.Errorf("%w: failed to close %q after writing: %w", ErrFileWrite, name, err)
	}

	return nil
}

// ProjectFromArgs validates the positional arguments and places the project under rootDir.
// It touches nothing on disk. Non-nil returned error wraps [ErrUsage].
func ProjectFromArgs(rootDir string, args []string) (Project, error) {
	if len(args) > 1 {
		return Project{}, fmt.Errorf("%w: please only enter 1 argument for project name", ErrUsage)
	}

	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return Project{}, fmt.Errorf("%w: please specify a project name as the only command line argument", ErrUsage)
	}

	name := strings.TrimSpace(args[0])

	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return Project{}, fmt.Errorf("%w: project name %q must be a single directory name", ErrUsage, name)
	}

	if err := module.CheckFilePath(name); err != nil {
		return Project{}, fmt.Errorf("%w: project name %q is not a safe directory name: %w", ErrUsage, name, err)
	}

	root, err := filepath.Abs(rootDir)
	if err != nil {
		return Project{}, fmt.Errorf("failed to resolve %q: %w", rootDir, err)
	}

	return Project{Name: name, Path: filepath.Join(root, name)}, nil
}

// provision creates the project directory. An existing directory is reused as is.
func (g *Generator) provision(p Project) error {
	info, err := os.Stat(p.Path)

	switch {
	case err == nil && info.IsDir():
		g.Console.Warnf("Folder with a name of %s already found", p.Name)

		return nil
	case err == nil:
		return fmt.Errorf("%w: %q exists and is not a directory", ErrFileWrite, p.Path)
	case !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: failed to inspect %q: %w", ErrFileWrite, p.Path, err)
	}

	g.Console.Println("Folder not found, creating")

	if err = os.MkdirAll(p.Path, 0750); err != nil {
		return fmt.Errorf("%w: failed to create %q: %w", ErrFileWrite, p.Path, err)
	}

	g.Console.Println("Folder created")

	return nil
}

// rewriteManifest names the package after the project and clears its description.
func (g *Generator) rewriteManifest(p Project) error {
	g.Console.Printf("package.json path: %s", filepath.Join(p.Path, ManifestFile))

	m, err := ReadManifest(p.Path)
	if err != nil {
		return err
	}

	m.SetString("name", p.Name)
	m.SetString("description", "")

	if err = m.Write(p.Path); err != nil {
		return err
	}

	g.Console.Println("Updates to package.json complete.")

	return nil
}

// Generate runs every step for p. A failure stops the run and leaves what was already written on disk.
func (g *Generator) Generate(ctx context.Context, p Project) (err error) {
	g.Console.Printf("Project will be created in %s", p.Path)

	if err = g.provision(p); err != nil {
		return err
	}

	g.Console.Printf("Downloading template project from Github... (%s)", g.Template)

	if err = g.Fetcher.Fetch(ctx, g.Template, p.Path); err != nil {
		return err
	}

	if err = g.rewriteManifest(p); err != nil {
		g.Console.Failf("Error updating package.json")

		return err
	}

	if err = Customize(p.Path, g.Prompter, g.Questions); err != nil {
		if errors.Is(err, ErrManifest) || errors.Is(err, ErrFileWrite) {
			g.Console.Failf("Error updating package.json")
		} else {
			g.Console.Failf("Error customizing the project")
		}

		return err
	}

	g.Console.Banner(
		"*****************************",
		"*** SUCCESS! Happy Coding ***",
		"*****************************",
	)

	return nil
}

func (c *Cmd) AfterApply() (err error) {
	c.rootDir, err = os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current working directory: %w", err)
	}

	if c.stdin == nil {
		c.stdin = os.Stdin
	}

	if c.stdout == nil {
		c.stdout = os.Stdout
	}

	return nil
}

func (c *Cmd) prompter(console *Console) Prompter {
	switch {
	case c.YesAll:
		return FixedAnswer("y")
	case c.NoPrompt:
		return FixedAnswer("n")
	case c.TUI:
		return tui.Prompter{In: c.stdin, Out: c.stdout}
	default:
		return NewLinePrompter(console, c.stdin)
	}
}

func (c *Cmd) fetcher(cfg *Config) Fetcher {
	if c.Clone || cfg.Template.UseClone() {
		return GitFetcher{BaseURL: cfg.Template.BaseURL, Depth: 1}
	}

	return ArchiveFetcher{BaseURL: cfg.Template.BaseURL}
}

func (c *Cmd) generator(ctx context.Context, console *Console) (*Generator, error) {
	cfg, err := LoadConfig(c.Config)
	if err != nil {
		return nil, err
	}

	if c.Template != "" {
		cfg.Template.Source = c.Template
	}

	ref, err := ParseTemplateRef(cfg.Template.Source)
	if err != nil {
		return nil, err
	}

	lookupCtx, cancelFunc := context.WithTimeout(ctx, time.Duration(c.TimeoutSeconds)*time.Second)

	defer cancelFunc()

	if err = ResolveLatest(lookupCtx, cfg); err != nil {
		return nil, err
	}

	return &Generator{
		Console:   console,
		Fetcher:   c.fetcher(cfg),
		Prompter:  c.prompter(console),
		Template:  ref,
		Questions: Questions(cfg),
	}, nil
}

func (c *Cmd) Run() error {
	console := NewConsole(c.stdout)

	console.Println("Welcome to compact-react")

	project, err := ProjectFromArgs(c.rootDir, c.Args)
	if err != nil {
		console.Warnf("%s", err.Error())

		return err
	}

	console.Printf("*** Creating a tiny project by the name of: %s ***", project.Name)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	defer stop()

	g, err := c.generator(ctx, console)
	if err != nil {
		return err
	}

	return g.Generate(ctx, project)
}
