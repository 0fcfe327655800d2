package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/davecgh/go-spew/spew"
	"github.com/mcncl/pollinate/internal/compiler"
	"github.com/mcncl/pollinate/internal/config"
	"github.com/mcncl/pollinate/internal/errors"
	"github.com/mcncl/pollinate/internal/formatter"
	"github.com/mcncl/pollinate/internal/generator"
	"github.com/mcncl/pollinate/internal/logging"
	"github.com/mcncl/pollinate/internal/parser"
	"github.com/mcncl/pollinate/internal/watch"
	"github.com/sirupsen/logrus"
)

// CLI defines the command-line interface
var CLI struct {
	Input           string  `help:"Path to the schema file (JSON, YAML or TOML)." short:"i" type:"path"`
	Output          string  `help:"Path to the output file. If not specified, writes to stdout." short:"o" type:"path"`
	Count           *int    `help:"Number of documents to generate (default 1)." short:"c"`
	Seed            *uint64 `help:"Random seed; the same seed and schema give the same documents. 0 picks a random seed."`
	Workers         *int    `help:"Number of documents sampled concurrently."`
	Format          *string `help:"Output format: json or yaml. Defaults to the output file extension."`
	Indent          *int    `help:"Indentation width; 0 writes compact JSON."`
	Permissive      *bool   `help:"Skip object fields whose type is unknown instead of failing."`
	ReferenceBounds *bool   `help:"Treat integer maximum as exclusive and add one element to every array."`
	MaxDepth        *int    `help:"Maximum schema nesting depth."`
	FieldCase       *string `help:"Rewrite document keys: snake, camel, lower_camel or kebab."`
	Config          string  `help:"Path to a config file. If not specified, .pollinate.yml is searched for upwards." type:"path"`
	Watch           bool    `help:"Regenerate whenever the schema file changes."`
	ConfigSchema    bool    `help:"Print the JSON Schema of the config file and exit."`
	Debug           bool    `help:"Enable debug logging." short:"d"`
	Version         bool    `help:"Show version information." short:"v"`
}

// Context holds the runtime context
type Context struct {
	Debug  bool
	Config *config.Config
}

// Version information
const (
	Version = "0.1.0"
)

func main() {
	parser := kong.Must(&CLI,
		kong.Name("pollinate"),
		kong.Description("Generate synthetic JSON documents from a schema"),
		kong.UsageOnError(),
	)

	_, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	if CLI.Version {
		fmt.Printf("pollinate version %s\n", Version)
		return
	}

	if CLI.ConfigSchema {
		data, err := config.GenerateSchema()
		if err != nil {
			fail(errors.NewConfigError("failed to generate config schema", err))
		}
		fmt.Println(string(data))
		return
	}

	cfg, err := loadConfig()
	if err != nil {
		fail(err)
	}
	logging.Configure(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	app := &Context{Debug: CLI.Debug, Config: cfg}

	if CLI.Watch {
		err = watchAndRun(ctx, app)
	} else {
		err = run(ctx, app)
	}
	stop()

	if err != nil {
		fail(err)
	}
}

// fail prints a user-friendly error and exits
func fail(err error) {
	fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
	fmt.Fprintf(os.Stderr, "\nFor help, run: pollinate --help\n")
	os.Exit(1)
}

// loadConfig merges the config file, if any, with command-line flags
func loadConfig() (*config.Config, error) {
	path := CLI.Config
	if path == "" {
		path = config.FindConfigFile()
	}

	cfg, err := config.LoadConfigWithCLI(path, config.CLIOverrides{
		Count:           CLI.Count,
		Seed:            CLI.Seed,
		Workers:         CLI.Workers,
		Permissive:      CLI.Permissive,
		ReferenceBounds: CLI.ReferenceBounds,
		MaxDepth:        CLI.MaxDepth,
		FieldCase:       CLI.FieldCase,
		Format:          CLI.Format,
		Indent:          CLI.Indent,
		Debug:           CLI.Debug,
	})
	if err != nil {
		return nil, errors.NewConfigError("failed to load configuration", err)
	}
	return cfg, nil
}

// run executes the main program logic
func run(ctx context.Context, app *Context) error {
	log := logging.NewLogger("main")

	// 1. Load the schema
	doc, err := parser.LoadSchema(CLI.Input)
	if err != nil {
		return err
	}

	// 2. Compile it into a producer tree
	root, err := compiler.NewCompilerWithConfig(app.Config).CompileDocument(doc)
	if err != nil {
		return errors.NewSchemaError("failed to compile schema", err)
	}
	if log.Logger.IsLevelEnabled(logrus.DebugLevel) {
		log.Debugf("Compiled producer tree:\n%s", spew.Sdump(root))
	}

	// 3. Sample documents
	gen := generator.NewGeneratorWithConfig(root, app.Config)
	log.WithFields(logrus.Fields{
		"schema": doc.Source,
		"count":  app.Config.Count,
		"seed":   gen.Seed(),
	}).Debug("Sampling documents")

	out, err := gen.Output(ctx, app.Config.Count)
	if err != nil {
		return err
	}

	// 4. Encode
	data, err := formatter.NewFormatterWithConfig(app.Config.Output, CLI.Output).Encode(out)
	if err != nil {
		return err
	}

	// 5. Output the result
	if err := writeOutput(CLI.Output, data); err != nil {
		return err
	}
	if CLI.Output != "" {
		log.WithField("seed", gen.Seed()).Infof("Wrote %d document(s) to %s", app.Config.Count, CLI.Output)
	}
	return nil
}

// watchAndRun runs once, then again on every change to the schema file
func watchAndRun(ctx context.Context, app *Context) error {
	log := logging.NewLogger("main")
	if CLI.Input == "" {
		return errors.NewInputError("watch mode needs a schema file", errors.ErrNoInput)
	}

	w, err := watch.New(CLI.Input, watch.DefaultDebounce)
	if err != nil {
		return err
	}

	if err := run(ctx, app); err != nil {
		log.Error(errors.UserFriendlyError(err))
	}
	return w.Run(ctx, func(string) {
		if err := run(ctx, app); err != nil {
			log.Error(errors.UserFriendlyError(err))
		}
	})
}

// writeOutput writes data to stdout, or atomically to path: a failed run
// never leaves a partial output file behind.
func writeOutput(path string, data []byte) error {
	if path == "" {
		if _, err := os.Stdout.Write(data); err != nil {
			return errors.NewOutputError("failed to write to stdout", err)
		}
		return nil
	}

	tempFile, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return errors.NewOutputError(fmt.Sprintf("failed to create output file in '%s'", filepath.Dir(path)), err)
	}

	successful := false
	defer func() {
		if !successful {
			_ = os.Remove(tempFile.Name())
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", path), err)
	}
	if err := tempFile.Close(); err != nil {
		return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", path), err)
	}
	if err := os.Chmod(tempFile.Name(), 0644); err != nil {
		return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", path), err)
	}
	if err := os.Rename(tempFile.Name(), path); err != nil {
		return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", path), err)
	}

	successful = true
	return nil
}
