// notes-dump prints every stored note.
//
//	notes-dump [-db-type mongodb|mysql|sqlite] [-db-name noteApp] <connection string>
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"notes-api/config"
	"notes-api/db"

	"github.com/oliverisaac/goli"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

func init() {
	goli.InitLogrus(logrus.InfoLevel)
}

func main() {
	err := run()
	if err != nil {
		logrus.Fatal(err)
	}
}

func run() error {
	cfg := &config.Config{}
	dbType := flag.String("db-type", string(config.MongoDB), "Database backend [mongodb|mysql|sqlite]")
	flag.StringVar(&cfg.DatabaseName, "db-name", "noteApp", "MongoDB database name")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Please provide the connection string as an argument: notes-dump <connection string>")
		os.Exit(1)
	}
	cfg.DatabaseType = config.DatabaseType(*dbType)
	cfg.DatabaseURI = flag.Arg(0)
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := db.Open(ctx, cfg)
	if err != nil {
		return errors.Wrap(err, "connecting")
	}
	defer store.Close(context.Background())
	logrus.Info("connected")

	notes, err := store.Notes.FindAll(ctx)
	if err != nil {
		return errors.Wrap(err, "listing notes")
	}
	for _, n := range notes {
		owner := "-"
		if n.User != nil {
			owner = n.User.Username
		}
		fmt.Printf("%s\t%s\timportant=%t\t%s\t%s\n", n.ID.Hex(), n.Date.Format(time.RFC3339), n.Important, owner, n.Content)
	}
	logrus.Infof("all %d notes collected", len(notes))
	return nil
}
