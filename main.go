package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"notes-api/auth"
	"notes-api/config"
	"notes-api/db"
	"notes-api/handlers"

	"github.com/oliverisaac/goli"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

func main() {
	err := run()
	if err != nil {
		logrus.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "loading config from env")
	}

	flag.StringVar(&cfg.Port, "port", cfg.Port, "HTTP port")
	flag.StringVar(&cfg.DatabaseURI, "db", cfg.DatabaseURI, "MongoDB connection string or SQL DSN")
	dbType := flag.String("db-type", string(cfg.DatabaseType), "Database backend [mongodb|mysql|sqlite]")
	flag.Parse()

	cfg.SwitchDatabase(config.DatabaseType(*dbType), flagSet("db"))

	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid config")
	}

	goli.InitLogrus(cfg.LogLevel)

	ctx := context.Background()
	store, err := db.Open(ctx, cfg)
	if err != nil {
		return errors.Wrapf(err, "connecting to %s", cfg.DatabaseType)
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			logrus.Error(errors.Wrap(err, "closing database"))
		}
	}()

	tokens := auth.NewTokenService(cfg.Secret, cfg.TokenTTL)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handlers.NewRouter(store, tokens, cfg.UserIDPolicy),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logrus.Infof("Server running on port %s", cfg.Port)
		serveErr <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "serving http")
		}
		return nil
	case sig := <-stop:
		logrus.Infof("Received %v, shutting down", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutting down server")
	}
	return nil
}

func flagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
