package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"

	"github.com/goliatone/go-dispenser/pkg/config"
	"github.com/goliatone/go-dispenser/pkg/dispenser"
	"github.com/goliatone/go-dispenser/pkg/domain"
	"github.com/goliatone/go-dispenser/pkg/interfaces/logger"
	"github.com/goliatone/go-dispenser/pkg/interfaces/platform"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		var reported reportedError
		if errors.As(err, &reported) {
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

var errUsage = errors.New("usage")

type options struct {
	configPath string
	envFile    string
	driver     string
	dir        string
	dsn        string
	route      string
	locale     string
	logLevel   string
	inputFile  string
	limit      int
	actor      domain.Actor
	help       bool
}

func (o *options) register(flags *pflag.FlagSet) {
	flags.StringVarP(&o.configPath, "config", "c", "", "YAML or JSON configuration file")
	flags.StringVar(&o.envFile, "env-file", "", "dotenv file to load (default: .env when present)")
	flags.StringVar(&o.driver, "driver", "", "storage driver: file, sqlite or memory")
	flags.StringVar(&o.dir, "dir", "", "directory for the file storage driver")
	flags.StringVar(&o.dsn, "dsn", "", "sqlite DSN for the sqlite storage driver")
	flags.StringVar(&o.route, "route", "", "delivery route, e.g. dm:console or dm:discord")
	flags.StringVar(&o.locale, "locale", "", "locale for rendered notices")
	flags.StringVar(&o.logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	flags.StringVarP(&o.inputFile, "file", "f", "", "read records for add from this file instead of stdin")
	flags.IntVar(&o.limit, "limit", 20, "entries shown by log")
	flags.StringVar(&o.actor.ID, "user-id", "local", "id of the acting user")
	flags.StringVar(&o.actor.Name, "user-name", "", "display name of the acting user")
	flags.Int64Var(&o.actor.ChannelID, "from-channel", 0, "channel the request comes from (0 skips the channel check)")
	flags.BoolVarP(&o.help, "help", "h", false, "show help")
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var opts options
	flags := pflag.NewFlagSet("dispenser", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	opts.register(flags)

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(stderr, flags)
			return nil
		}
		return err
	}
	if opts.help || flags.NArg() == 0 {
		printHelp(stderr, flags)
		if opts.help {
			return nil
		}
		return errUsage
	}

	if err := loadEnv(opts.envFile); err != nil {
		return err
	}

	cfg, err := config.LoadFile(opts.configPath, config.WithEnv(os.Getenv))
	if err != nil {
		return err
	}
	opts.apply(&cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	lgr := logger.New(stderr, logger.ParseLevel(opts.logLevel))
	// The local operator is trusted with the admin commands.
	module, err := dispenser.NewModule(dispenser.ModuleOptions{Config: cfg, Logger: lgr, Authorizer: platform.AllowAll{}})
	if err != nil {
		return err
	}
	defer module.Close()

	if err := module.Start(ctx); err != nil {
		lgr.Warn("starting with defaults", logger.F("error", err))
	}

	opts.actor.Locale = cfg.Localization.DefaultLocale
	cli := &cli{module: module, opts: opts, stdin: stdin, out: stdout}
	return cli.dispatch(ctx, flags.Args())
}

func (o options) apply(cfg *config.Config) {
	if o.driver != "" {
		cfg.Storage.Driver = o.driver
	}
	if o.dir != "" {
		cfg.Storage.Dir = o.dir
	}
	if o.dsn != "" {
		cfg.Storage.DSN = o.dsn
	}
	if o.route != "" {
		cfg.Delivery.Route = o.route
	}
	if o.locale != "" {
		cfg.Localization.DefaultLocale = o.locale
	}
}

func loadEnv(path string) error {
	if path != "" {
		return godotenv.Load(path)
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func printHelp(w io.Writer, flags *pflag.FlagSet) {
	fmt.Fprint(w, `dispenser hands out pooled account credentials one at a time.

Usage:
  dispenser [flags] <command> [args]

Commands:
  issue [category]          deliver one record privately to --user-id
  add <category>            append records read from --file or stdin
  stock                     list categories with remaining records
  set-cooldown <minutes>    change the per-user cooldown
  set-channel <id>          restrict generation to one channel
  set-admin-role <id>       change the admin role
  log                       print the most recent audit entries

Flags:
`)
	fmt.Fprint(w, flags.FlagUsages())
}
