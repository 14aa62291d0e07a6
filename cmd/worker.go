package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"yuzu/internal/notify"
	"yuzu/internal/pkg/cache"
	"yuzu/internal/pkg/ffmpeg"
	"yuzu/internal/pkg/mongodb"
	"yuzu/internal/pkg/storagefactory"
	"yuzu/internal/provider"
	"yuzu/internal/queue"
	genrepo "yuzu/internal/repository/generation"
	"yuzu/internal/server"
	"yuzu/internal/service/generation"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start the generation worker",
	Long: `Start the generation worker: consumes job, story and merge tasks
from the Redis queue and serves health probes on the ops port.`,
	RunE: runWorker,
}

func init() {
	rootCmd.AddCommand(workerCmd)

	flags := workerCmd.Flags()

	flags.StringP("host", "H", "0.0.0.0", "ops server host")
	flags.IntP("port", "p", 8080, "ops server port")
	flags.String("mode", "release", "server mode (debug/release/test)")

	flags.Int("concurrency", 5, "number of concurrent generation tasks")

	flags.String("log-level", "info", "log level (trace/debug/info/warn/error/fatal)")
	flags.String("log-format", "console", "log format (json/console)")

	_ = viper.BindPFlag("server.host", flags.Lookup("host"))
	_ = viper.BindPFlag("server.port", flags.Lookup("port"))
	_ = viper.BindPFlag("server.mode", flags.Lookup("mode"))
	_ = viper.BindPFlag("worker.concurrency", flags.Lookup("concurrency"))
	_ = viper.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = viper.BindPFlag("log.format", flags.Lookup("log-format"))
}

func runWorker(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// MongoDB
	mongoClient, err := mongodb.New(&cfg.Mongo)
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	defer func() {
		if err := mongoClient.Close(context.Background()); err != nil {
			log.Error().Err(err).Msg("failed to close MongoDB connection")
		}
	}()
	log.Info().Str("database", cfg.Mongo.Database).Msg("connected to MongoDB")

	if err := mongodb.EnsureIndexes(mongoClient.Database()); err != nil {
		log.Warn().Err(err).Msg("failed to ensure indexes")
	}

	// Redis
	redisCache, err := cache.NewRedisCache(&cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	defer func() {
		if err := redisCache.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close Redis connection")
		}
	}()
	log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to Redis")

	// 对象存储
	store, err := storagefactory.NewStorage(ctx, &cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to init storage: %w", err)
	}
	log.Info().Str("type", cfg.Storage.Type).Msg("storage initialized")

	// 生成服务
	db := mongoClient.Database()
	svc := generation.NewService(generation.Deps{
		Jobs:      genrepo.NewJobRepo(db),
		Stories:   genrepo.NewStoryRepo(db),
		Scenes:    genrepo.NewSceneRepo(db),
		Videos:    genrepo.NewVideoRepo(db),
		Providers: provider.NewFactory(&cfg.Providers, &cfg.Storage),
		Storage:   store,
		Media:     ffmpeg.NewClient(),
		Notifier:  notify.NewRedisNotifier(redisCache.Client()),
		Cache:     redisCache,
		Worker:    &cfg.Worker,
		Merge:     &cfg.Merge,
	})

	// 任务队列
	qsrv := queue.NewServer(&cfg.Redis, &cfg.Worker, svc)
	if err := qsrv.Start(); err != nil {
		return fmt.Errorf("failed to start queue server: %w", err)
	}

	// 运维服务器
	srv := server.New(cfg, mongoClient, redisCache)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
		qsrv.Shutdown()
		cancel()
	}()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Info().
		Str("addr", addr).
		Int("concurrency", cfg.Worker.Concurrency).
		Msg("starting worker")

	return srv.Run(ctx, addr)
}
