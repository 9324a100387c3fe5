package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"

	"github.com/stackit/stackit-tui/internal/api"
	"github.com/stackit/stackit-tui/internal/app"
	"github.com/stackit/stackit-tui/internal/credential"
	"github.com/stackit/stackit-tui/internal/logging"
	"github.com/stackit/stackit-tui/internal/model"
	"github.com/stackit/stackit-tui/internal/notify"
	"github.com/stackit/stackit-tui/internal/session"
	"github.com/stackit/stackit-tui/internal/store"
	appsync "github.com/stackit/stackit-tui/internal/sync"
)

const usage = `Usage:
  stackit [--config path]                     run the terminal client
  stackit session login|logout|status         manage the session flag
  stackit config init                         write the default config file
`

func main() {
	configPath := flag.String("config", model.DefaultConfigPath(), "path for the YAML config file")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := run(*configPath, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "stackit: %s\n", err)
		os.Exit(1)
	}
}

func run(configPath string, args []string) error {
	cfg, err := model.LoadConfig(configPath)
	if err != nil {
		return err
	}

	if len(args) > 0 && args[0] == "config" {
		return configCommand(configPath, cfg, args[1:])
	}

	logCloser := logging.Setup(logging.SetupParams{
		LogFileName:   cfg.Log.File,
		LogLevel:      cfg.Log.Level,
		LogFormatJSON: cfg.Log.JSON,
	})
	defer logCloser.Close()

	log.Debugf("using config [%s], api [%s]", configPath, cfg.API.BaseURL)

	if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	db, err := store.NewSQLiteStore(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer db.Close()

	flags, err := sessionFlags(cfg.Session, db)
	if err != nil {
		return err
	}
	sess := session.New(flags)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err = sess.Load(ctx)
	cancel()
	if err != nil {
		return fmt.Errorf("loading session: %w", err)
	}

	if len(args) > 0 {
		switch args[0] {
		case "session":
			return sessionCommand(sess, args[1:])
		default:
			return fmt.Errorf("unknown command %q\n%s", args[0], usage)
		}
	}

	client := api.NewClient(cfg.API.BaseURL, api.Options{
		Timeout:            cfg.API.Timeout(),
		BreakerMaxFailures: cfg.API.BreakerMaxFailures,
		BreakerTimeout:     time.Duration(cfg.API.BreakerTimeoutSec) * time.Second,
	})
	fetcher := notify.NewFetcher(client, db, cfg.API.RetryMaxElapsed())
	watcher := appsync.NewWatcher(sess, cfg.Session.PollInterval())
	defer watcher.Stop()

	root := app.New(app.Deps{
		Session: sess,
		Fetcher: fetcher,
		Signup:  client,
		Watcher: watcher,
	})

	p := tea.NewProgram(root, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// sessionFlags picks where the logged-in flag is persisted.
func sessionFlags(cfg model.SessionConfig, db store.Store) (session.FlagStore, error) {
	switch cfg.Backend {
	case model.SessionBackendKeyring:
		vault, err := credential.Open(cfg.KeyringDir)
		if err != nil {
			return nil, fmt.Errorf("opening keyring: %w", err)
		}
		return session.NewVaultFlags(vault), nil
	default:
		return session.NewStoreFlags(db), nil
	}
}

func sessionCommand(sess *session.Store, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("expected one of login, logout, status\n%s", usage)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	switch args[0] {
	case "login":
		if err := sess.Login(ctx); err != nil {
			return err
		}
		fmt.Println("logged in")
	case "logout":
		if err := sess.Logout(ctx); err != nil {
			return err
		}
		fmt.Println("logged out")
	case "status":
		if sess.LoggedIn() {
			fmt.Println("logged in")
		} else {
			fmt.Println("logged out")
		}
	default:
		return fmt.Errorf("unknown session command %q", args[0])
	}
	return nil
}

func configCommand(path string, cfg *model.AppConfig, args []string) error {
	if len(args) != 1 || args[0] != "init" {
		return fmt.Errorf("expected: config init\n%s", usage)
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config %s already exists", path)
	}
	if err := model.SaveConfig(path, cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}
