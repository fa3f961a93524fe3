// hakarid is the game server: HTTP surface, game transport, chat-command
// surface and the worker pool, all sharing one data service.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hakari-tcg/hakari/internal/auth"
	"github.com/hakari-tcg/hakari/internal/bot"
	"github.com/hakari-tcg/hakari/internal/config"
	"github.com/hakari-tcg/hakari/internal/data"
	"github.com/hakari-tcg/hakari/internal/store"
	"github.com/hakari-tcg/hakari/internal/task"
	"github.com/hakari-tcg/hakari/internal/transport"
	"github.com/hakari-tcg/hakari/internal/web"
)

func main() {
	var configPath string

	root := &cobra.Command{
		Use:   "hakarid",
		Short: "Hakari card-game server",
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(configPath)
		},
	})

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serve(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := newLogger(cfg.Log.Dev)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openDatabase(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer db.Close(context.Background())

	svc := data.NewService(db)
	authn := auth.NewAuthenticator(cfg.Auth.JWTSecret)

	tasks := task.NewManager(cfg.Tasks.Workers, log.Named("tasks"))
	tasks.Start(ctx)
	defer tasks.Shutdown()

	// The command surface runs against whatever gateway adapter is plugged
	// in as its Cluster; without one, interaction responses land in the log.
	botLog := log.Named("bot")
	bot.NewSurface(newGatewayCluster(cfg.Discord.Token, botLog), svc, tasks, cfg.Image.BaseURL, botLog)

	hub := transport.NewHub(svc, authn, tasks, nil, log.Named("transport"))
	go hub.Run()

	apiServer := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: web.NewServer(svc, authn, cfg.Image.BaseURL, log.Named("web")),
	}
	transportServer := &http.Server{
		Addr:    cfg.Transport.Addr,
		Handler: hub,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("http surface listening", zap.String("addr", cfg.HTTP.Addr))
		if err := apiServer.ListenAndServe(); err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		log.Info("transport listening", zap.String("addr", cfg.Transport.Addr))
		if err := transportServer.ListenAndServe(); err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = apiServer.Shutdown(shutdownCtx)
		_ = transportServer.Shutdown(shutdownCtx)
		hub.Stop()
		return nil
	})

	return g.Wait()
}

// newGatewayCluster builds the command surface's gateway handle. No
// gateway client is linked in yet, so the credential is carried but
// responses are log-only.
func newGatewayCluster(token string, log *zap.Logger) bot.Cluster {
	if token == "" {
		log.Warn("discord.token not set, interaction responses are log-only")
	}
	return &logCluster{token: token, log: log}
}

// logCluster is the stand-in gateway handle: interaction responses are
// logged instead of delivered.
type logCluster struct {
	token string
	log   *zap.Logger
}

func (c *logCluster) InteractionResponseEdit(interactionToken string, msg bot.Message) {
	c.log.Info("interaction response",
		zap.String("token", interactionToken),
		zap.String("content", msg.Content),
		zap.Int("embeds", len(msg.Embeds)))
}

func newLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func openDatabase(ctx context.Context, cfg *config.Config, log *zap.Logger) (store.Database, error) {
	if cfg.Store.Driver == "memory" {
		log.Warn("using in-memory store, data will not survive restarts")
		return store.NewMemoryDatabase(), nil
	}
	log.Info("connecting to mongodb", zap.String("database", cfg.Mongo.Database))
	return store.DialMongo(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
}
