// Command pintctl runs the data maintenance jobs against the same config,
// storage and database as the server.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/multierr"

	"puzzled_pint_map/internal/config"
	"puzzled_pint_map/internal/geocode"
	"puzzled_pint_map/internal/logger"
	"puzzled_pint_map/internal/repository"
	"puzzled_pint_map/internal/repository/db"
	"puzzled_pint_map/internal/service"
	"puzzled_pint_map/internal/storage"
)

const usage = `usage: pintctl [flags] <command> [args]

commands:
  import-locations <event-id>...  fetch, geocode and write locations_<id>.geojson
  import-cities <file|->          rebuild cities.json from the city list HTML
  reset-cities                    clear the event id lists of every city
  history                         list recent imports

flags:
`

var errUsage = errors.New("invalid usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "pintctl:", err)
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// newFlags declares the command line flags; every flag but --config
// overrides the config key of the same dotted name.
func newFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("pintctl", pflag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		fs.PrintDefaults()
	}
	fs.StringP("config", "c", "", "config file (default configs/config.yml)")
	fs.String("log.level", logger.InfoLevel, "log level")
	fs.String("storage.dir", "data", "data directory for the file driver")
	fs.String("geocoder.provider", "google", "geocoder: google | nominatim")
	fs.Bool("importer.include_remote", true, "place remote entries at their city")
	fs.String("kind", "", "history: import kind filter")
	fs.Int("limit", 20, "history: max runs")
	return fs
}

// bindFlags loads the configuration with the explicitly set flags layered on top.
func bindFlags(fs *pflag.FlagSet) (*viper.Viper, error) {
	file, _ := fs.GetString("config")
	v := config.New(file)
	var err error
	fs.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "config", "kind", "limit":
			return
		}
		err = multierr.Append(err, v.BindPFlag(f.Name, f))
	})
	return v, err
}

func run(ctx context.Context, args []string, out io.Writer) error {
	fs := newFlags()
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errUsage
	}
	cmd, cmdArgs := fs.Arg(0), fs.Args()[1:]
	if err := checkArgs(cmd, cmdArgs); err != nil {
		return err
	}

	v, err := bindFlags(fs)
	if err != nil {
		return err
	}
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	log := logger.Get(cfg.Log.Level, cfg.Log.Format)
	defer func() { _ = log.Sync() }()

	conn, err := db.InitDB(cfg.DB.Path)
	if err != nil {
		return fmt.Errorf("init sqlite: %w", err)
	}
	defer func() { _ = conn.Close() }()

	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	geo, err := geocode.New(cfg.Geocoder)
	if err != nil && cmd != "reset-cities" && cmd != "history" {
		return fmt.Errorf("init geocoder: %w", err)
	}

	services := service.NewService(repository.NewRepository(conn), service.Deps{
		Config:   cfg,
		Store:    store,
		Geocoder: geo,
		Log:      log,
	})

	switch cmd {
	case "import-locations":
		ids, _ := parseEventIDs(cmdArgs)
		var errs error
		for _, id := range ids {
			rep, err := services.ImportLocations(ctx, id)
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("event %d: %w", id, err))
				continue
			}
			errs = multierr.Append(errs, writeJSON(out, rep))
		}
		return errs
	case "import-cities":
		r, closeFn, err := openInput(cmdArgs[0])
		if err != nil {
			return err
		}
		defer closeFn()
		rep, err := services.ImportCities(ctx, r)
		if err != nil {
			return err
		}
		return writeJSON(out, rep)
	case "reset-cities":
		rep, err := services.ResetCities(ctx)
		if err != nil {
			return err
		}
		return writeJSON(out, rep)
	default: // history
		kind, _ := fs.GetString("kind")
		limit, _ := fs.GetInt("limit")
		runs, err := services.History(ctx, kind, limit)
		if err != nil {
			return err
		}
		return writeJSON(out, runs)
	}
}

// checkArgs validates the command and its positional arguments before any
// resource is opened.
func checkArgs(cmd string, args []string) error {
	switch cmd {
	case "import-locations":
		if len(args) == 0 {
			return fmt.Errorf("%w: import-locations needs at least one event id", errUsage)
		}
		_, err := parseEventIDs(args)
		return err
	case "import-cities":
		if len(args) != 1 {
			return fmt.Errorf("%w: import-cities needs exactly one file", errUsage)
		}
	case "reset-cities", "history":
		if len(args) != 0 {
			return fmt.Errorf("%w: %s takes no arguments", errUsage, cmd)
		}
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
	return nil
}

func parseEventIDs(args []string) ([]int, error) {
	ids := make([]int, 0, len(args))
	for _, a := range args {
		id, err := strconv.Atoi(a)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("%w: invalid event id %q", errUsage, a)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// openInput opens path, or stdin for "-".
func openInput(path string) (io.Reader, func(), error) {
	if path == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open city list: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
