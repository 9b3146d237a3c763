package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/hh-interviewer/internal/api"
	"github.com/spigell/hh-interviewer/internal/logger"
)

const defaultListen = ":8080"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the assessment engine over HTTP",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("listen", "l", "", "address to listen on (default "+defaultListen+")")

	viper.BindPFlag("server.listen", serveCmd.Flags().Lookup("listen"))
}

func serve() {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the hh-interviewer api", zap.String("version", version))

	jobs, err := loadCatalog(config)
	if err != nil {
		logger.Fatal("loading catalog", zap.Error(err))
	}
	logger.Info("job catalog loaded", zap.Int("jobs", jobs.Len()))

	e := newEngine(ctx, config, logger)

	deps := api.Deps{
		Jobs:      jobs,
		Matcher:   e.matcher,
		Generator: e.generator,
		Scorer:    e.scorer,
		Composer:  e.composer,
		Logger:    logger.Named("api"),
	}

	store, err := openStore(config, logger)
	if err != nil {
		logger.Fatal("opening score store", zap.Error(err))
	}
	if store != nil {
		deps.Scores = store
	} else {
		logger.Warn("scores will not be saved", zap.String("reason", "database is not configured"))
	}

	app := api.New(deps)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Info("shutting down the server")

		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(ctx); err != nil {
			logger.Error("server forced to shutdown", zap.Error(err))
		}
	}()

	addr := defaultListen
	if config.Server != nil && strings.TrimSpace(config.Server.Listen) != "" {
		addr = config.Server.Listen
	}

	logger.Info("listening", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		logger.Fatal("starting the server", zap.Error(err))
	}
}
