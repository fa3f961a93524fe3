// hakari-seed loads the card catalog into the document store from JSON
// files, so a fresh deployment has references to draw from.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hakari-tcg/hakari/internal/config"
	"github.com/hakari-tcg/hakari/internal/data"
	"github.com/hakari-tcg/hakari/internal/model"
	"github.com/hakari-tcg/hakari/internal/store"
)

func main() {
	var configPath string

	root := &cobra.Command{
		Use:   "hakari-seed",
		Short: "Load catalog data into the document store",
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file")

	root.AddCommand(&cobra.Command{
		Use:   "cards <file.json>",
		Short: "Insert card references from a JSON array",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return seedCards(cmd.Context(), configPath, args[0])
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "characters <file.json>",
		Short: "Insert character references from a JSON array",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return seedCharacters(cmd.Context(), configPath, args[0])
		},
	})

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func open(ctx context.Context, configPath string) (*data.Service, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	db, err := store.DialMongo(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() { _ = db.Close(context.Background()) }
	return data.NewService(db), cleanup, nil
}

func readJSON(path string, out interface{}) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "reading seed file")
	}
	return errors.Wrap(json.Unmarshal(raw, out), "parsing seed file")
}

func seedCards(ctx context.Context, configPath, path string) error {
	log, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer log.Sync()

	var refs []model.CardReference
	if err := readJSON(path, &refs); err != nil {
		return err
	}

	svc, cleanup, err := open(ctx, configPath)
	if err != nil {
		return err
	}
	defer cleanup()

	for i := range refs {
		if refs[i].UUID == "" {
			refs[i].UUID = uuid.NewString()
		}
		if _, err := svc.CardReferences.InsertOne(ctx, refs[i]); err != nil {
			return errors.Wrapf(err, "inserting card %q", refs[i].Name)
		}
	}
	log.Info("card references seeded", zap.Int("count", len(refs)))
	return nil
}

func seedCharacters(ctx context.Context, configPath, path string) error {
	log, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer log.Sync()

	var chars []model.CharacterReference
	if err := readJSON(path, &chars); err != nil {
		return err
	}

	svc, cleanup, err := open(ctx, configPath)
	if err != nil {
		return err
	}
	defer cleanup()

	for i := range chars {
		if chars[i].UUID == "" {
			chars[i].UUID = uuid.NewString()
		}
		if _, err := svc.CharacterReferences.InsertOne(ctx, chars[i]); err != nil {
			return errors.Wrapf(err, "inserting character %q", chars[i].Name)
		}
	}
	log.Info("character references seeded", zap.Int("count", len(chars)))
	return nil
}
