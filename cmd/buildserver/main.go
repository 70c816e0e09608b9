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

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"rastiv/internal/config"
	"rastiv/internal/handlers/buildserver"
	"rastiv/internal/logging"
	"rastiv/internal/storage"
)

func main() {
	// 1. 加载 .env (可选)
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "无法加载 .env: %v\n", err)
	}

	fs := pflag.NewFlagSet("buildserver", pflag.ExitOnError)
	configPath := fs.StringP("config", "c", "", "配置文件路径")
	fs.String("addr-host", "", "监听地址 (默认 BUILD_SERVER.HOST)")
	fs.String("addr-port", "", "监听端口 (默认 BUILD_SERVER.PORT)")
	fs.String("log-level", "", "日志级别: debug, info, warn, error")
	_ = fs.Parse(os.Args[1:])

	// 2. 加载配置
	cfg, err := config.LoadConfig(*configPath, fs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法加载配置: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stderr, cfg.LogLevel, "buildserver")
	level.Info(logger).Log("msg", "构建服务配置加载成功", "version", cfg.AppVersion)

	// 3. 初始化上传暂存目录
	spool, err := storage.NewUploadSpool(cfg.BuildServer.TempPath)
	if err != nil {
		level.Error(logger).Log("msg", "无法初始化上传暂存目录", "err", err)
		os.Exit(1)
	}
	level.Info(logger).Log("msg", "上传暂存目录就绪", "dir", spool.Dir())

	// 4. 路由
	buildHandler := buildserver.NewBuildHandler(spool, cfg.BuildServer, log.With(logger, "component", "BuildHandler"))
	handler := buildserver.Wrap(buildserver.NewRouter(buildHandler), cfg.BuildServer.CORS, os.Stderr)

	// 5. 启动 HTTP 服务器并实现优雅关闭
	serverAddr := fmt.Sprintf("%s:%s", cfg.BuildServer.Host, cfg.BuildServer.Port)
	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  cfg.BuildServer.ReadTimeout,
		WriteTimeout: cfg.BuildServer.WriteTimeout,
		IdleTimeout:  time.Second * 60,
	}

	go func() {
		level.Info(logger).Log("msg", "构建服务启动", "addr", serverAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			level.Error(logger).Log("msg", "构建服务启动失败", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	level.Info(logger).Log("msg", "收到关闭信号，正在关闭构建服务...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		level.Error(logger).Log("msg", "构建服务强制关闭", "err", err)
	}

	// 系统临时目录下自动创建的暂存目录随进程清理
	if cfg.BuildServer.TempPath == "" {
		if err := os.RemoveAll(spool.Dir()); err != nil {
			level.Warn(logger).Log("msg", "无法清理暂存目录", "dir", spool.Dir(), "err", err)
		}
	}

	level.Info(logger).Log("msg", "构建服务已成功关闭")
}
