package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	https_server "QuillLink/api/http"
	"QuillLink/internal/config"
	"QuillLink/internal/metrics"
	"QuillLink/internal/modules/rewrite/application/service"
	"QuillLink/internal/modules/rewrite/domain/preset"
	"QuillLink/internal/modules/rewrite/infrastructure/llm"
	"QuillLink/internal/modules/rewrite/infrastructure/pipeline"
	"QuillLink/internal/modules/rewrite/infrastructure/plugins"
	rewriteHandler "QuillLink/internal/modules/rewrite/interface/http"
	"QuillLink/pkg/zlog"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

var rootCmd = &cobra.Command{
	Use:   "QuillLink",
	Short: "Text rewrite backend for the QuillLink browser extension",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env 不存在时忽略
		_ = godotenv.Load()
		return nil
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		return run(cmd)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", config.DefaultConfigPath, "path to the toml config file")
	rootCmd.PersistentFlags().String("host", "", "listen host, overrides config and HOST")
	rootCmd.PersistentFlags().Int("port", 0, "listen port, overrides config and PORT")
	rootCmd.PersistentFlags().String("mode", "", `prompt template mode: "rewrite", "prompt" or "agent_task"`)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command) error {
	// 1. 加载配置
	configPath, _ := cmd.Flags().GetString("config")
	conf, err := config.Load(configPath)
	if err != nil {
		if errors.Is(err, config.ErrMissingAPIKey) {
			zlog.Fatal("missing upstream API key", zap.Error(err))
		}
		return fmt.Errorf("load config: %w", err)
	}
	applyFlags(cmd, conf)

	zlog.Init(zlog.Options{
		Level:      conf.LogConfig.Level,
		LogPath:    conf.LogConfig.LogPath,
		MaxSizeMB:  conf.LogConfig.MaxSizeMB,
		MaxBackups: conf.LogConfig.MaxBackups,
		MaxAgeDays: conf.LogConfig.MaxAgeDays,
	})
	defer zlog.Sync()
	gin.SetMode(gin.ReleaseMode)

	// 2. 组装依赖
	ctx := context.Background()
	generator, meta, err := llm.NewGeneratorFromConfig(ctx, conf)
	if err != nil {
		return fmt.Errorf("init chat model: %w", err)
	}

	template, err := plugins.NewRegistry().Get(conf.RewriteConfig.Mode)
	if err != nil {
		return err
	}

	exporter := metrics.NewExporter(metrics.DefaultConfig())
	caller := pipeline.NewRewritePipeline(generator, pipeline.Options{
		Timeout:        conf.RequestTimeout(),
		MaxAttempts:    conf.AIConfig.ChatModel.MaxRetries,
		MaxConcurrency: conf.AIConfig.ChatModel.MaxConcurrency,
		BackoffBase:    conf.BackoffBase(),
		BackoffJitter:  conf.BackoffJitter(),
		Recorder:       exporter,
	})
	svc := service.NewRewriteService(service.Options{
		Catalog:       preset.Builtin(),
		Template:      template,
		Caller:        caller,
		ModelName:     meta.Model,
		MaxTextLength: conf.RewriteConfig.MaxTextLength,
		Metrics:       exporter,
	})

	GE, err := https_server.NewEngine(conf, rewriteHandler.NewRewriteHandler(svc, conf.RewriteConfig.MaxTextLength), exporter)
	if err != nil {
		return err
	}

	// 3. 启动 HTTP 服务
	worstCase := conf.WorstCaseLatency()
	addr := fmt.Sprintf("%s:%d", conf.MainConfig.Host, conf.MainConfig.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           GE,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      worstCase + 5*time.Second,
	}

	zlog.Info("server starting",
		zap.String("addr", addr),
		zap.String("provider", meta.Provider),
		zap.String("model", meta.Model),
		zap.String("mode", template.GetMode()),
		zap.Int("max_attempts", conf.AIConfig.ChatModel.MaxRetries),
		zap.Duration("attempt_timeout", conf.RequestTimeout()),
		zap.Duration("worst_case_latency", worstCase))

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// 4. 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		zlog.Error("server failed", zap.Error(err))
		return err
	case sig := <-quit:
		zlog.Info("shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Warn("forced shutdown", zap.Error(err))
		return err
	}

	zlog.Info("server stopped")
	return nil
}

// applyFlags 命令行参数优先级最高
func applyFlags(cmd *cobra.Command, conf *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("host") {
		conf.MainConfig.Host, _ = flags.GetString("host")
	}
	if flags.Changed("port") {
		conf.MainConfig.Port, _ = flags.GetInt("port")
	}
	if flags.Changed("mode") {
		conf.RewriteConfig.Mode, _ = flags.GetString("mode")
	}
}
