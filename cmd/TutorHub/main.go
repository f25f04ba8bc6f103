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

	httpServer "TutorHub/api/http"
	"TutorHub/internal/config"
	"TutorHub/internal/initial"
	"TutorHub/pkg/mq/kafka"
	"TutorHub/pkg/zlog"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string

	rootCmd = &cobra.Command{
		Use:   "TutorHub",
		Short: "教研助手后端服务",
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := setup()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), conf)
		},
	}

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "自动建表",
		RunE: func(_ *cobra.Command, _ []string) error {
			conf, err := setup()
			if err != nil {
				return err
			}
			db, err := initial.NewGormDB(conf.MysqlConfig)
			if err != nil {
				return fmt.Errorf("open mysql: %w", err)
			}
			if err := initial.AutoMigrate(db); err != nil {
				return fmt.Errorf("auto migrate: %w", err)
			}
			zlog.Info("数据表迁移完成")
			return nil
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "toml 配置文件路径")
	rootCmd.AddCommand(migrateCmd)
}

// setup 加载配置并初始化日志
func setup() (*config.Config, error) {
	conf, err := config.Init(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := zlog.Init(zlog.Options{
		LogPath:    conf.LogConfig.LogPath,
		Level:      conf.LogConfig.Level,
		MaxSizeMB:  conf.LogConfig.MaxSizeMB,
		MaxBackups: conf.LogConfig.MaxBackups,
		MaxAgeDays: conf.LogConfig.MaxAgeDays,
	}); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return conf, nil
}

func serve(ctx context.Context, conf *config.Config) error {
	db, err := initial.NewGormDB(conf.MysqlConfig)
	if err != nil {
		return fmt.Errorf("open mysql: %w", err)
	}
	if err := initial.AutoMigrate(db); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	publisher, err := kafka.NewPublisher(kafka.PublisherConfig{
		Brokers:  conf.KafkaConfig.Brokers,
		ClientID: conf.KafkaConfig.ClientID,
	})
	if err != nil {
		return fmt.Errorf("init kafka publisher: %w", err)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			zlog.Warn("关闭 kafka publisher 失败", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf("%s:%d", conf.MainConfig.Host, conf.MainConfig.Port)
	srv := &http.Server{
		Addr: addr,
		Handler: httpServer.NewRouter(httpServer.Deps{
			Config:    conf,
			DB:        db,
			Publisher: publisher,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zlog.Info("服务器正在启动", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		return fmt.Errorf("服务器启动失败: %w", err)
	case <-ctx.Done():
	}

	zlog.Info("正在关闭服务器...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("服务器关闭超时", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	zlog.Info("服务器已关闭")
	return nil
}

func main() {
	defer func() { _ = zlog.Sync() }()
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		zlog.Error(err.Error())
		os.Exit(1)
	}
}
