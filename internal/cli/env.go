package cli

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/lotas/ticketdeck/internal/applog"
	"github.com/lotas/ticketdeck/internal/config"
	"github.com/lotas/ticketdeck/internal/deck"
	"github.com/lotas/ticketdeck/internal/storage"
	"github.com/lotas/ticketdeck/internal/types"
)

var (
	errTicketMissing = errors.New("ticket not in cache")
	errUsage         = errors.New("usage")
)

// env is what a command needs: the loaded config, the cache and a deck.
type env struct {
	cfg     config.Config
	cfgPath string
	db      *sql.DB
	store   *storage.TicketStore
	deck    *deck.Deck
}

// configPath resolves --config, then $TICKETDECK_CONFIG, then the default.
func configPath(opts *GlobalOptions) (string, error) {
	if opts.ConfigPath != "" {
		return opts.ConfigPath, nil
	}
	return config.DefaultPath()
}

// dbPath resolves --db, then $TICKETDECK_DB, then the default.
func dbPath(opts *GlobalOptions) (string, error) {
	if opts.DBPath != "" {
		return opts.DBPath, nil
	}
	if p := os.Getenv("TICKETDECK_DB"); p != "" {
		return p, nil
	}
	return storage.DefaultDBPath()
}

// loadConfig reads the config. A corrupt file is reported on stderr and
// replaced by defaults in memory.
func loadConfig(opts *GlobalOptions, stderr io.Writer) (config.Config, string, error) {
	path, err := configPath(opts)
	if err != nil {
		return config.Config{}, "", err
	}
	cfg, err := config.Load(path)
	if err != nil {
		applog.Error("cli.config.load", err, "path", path)
		fmt.Fprintf(stderr, "warning: %v (using defaults)\n", err)
	}
	return cfg, path, nil
}

// openEnv loads config, opens the cache and builds a deck reporting to sink.
// A nil sink only logs.
func openEnv(opts *GlobalOptions, stderr io.Writer, sink deck.ViewSink) (*env, error) {
	cfg, cfgPath, err := loadConfig(opts, stderr)
	if err != nil {
		return nil, err
	}
	path, err := dbPath(opts)
	if err != nil {
		return nil, err
	}
	db, err := storage.OpenDB(path)
	if err != nil {
		return nil, err
	}
	if sink == nil {
		sink = logSink{}
	}
	store := storage.NewTicketStore(db)
	return &env{
		cfg:     cfg,
		cfgPath: cfgPath,
		db:      db,
		store:   store,
		deck: deck.New(deck.Options{
			Config:     cfg,
			ConfigPath: cfgPath,
			Store:      store,
			Sink:       sink,
		}),
	}, nil
}

func (e *env) Close() error { return e.db.Close() }

// logSink is the sink for one-shot commands. Errors also come back as
// return values, which the command prints once.
type logSink struct{}

func (logSink) OnPageReady(int, []types.Ticket) {}
func (logSink) OnSearchProgress(int)            {}
func (logSink) OnError(msg string)              { applog.Info("cli.deck.error", "msg", msg) }
