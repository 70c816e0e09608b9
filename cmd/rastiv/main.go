package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"rastiv/internal/buildtypes"
	"rastiv/internal/client"
	"rastiv/internal/config"
	"rastiv/internal/logging"
	"rastiv/internal/services"
	"rastiv/internal/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	// 1. 加载 .env (可选)
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(stderr, "无法加载 .env: %v\n", err)
	}

	fs := pflag.NewFlagSet("rastiv", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "用法: rastiv --mode ras|tiv [flags] FILE.xlsx [FILE.xlsx ...]")
		fs.PrintDefaults()
	}
	configPath := fs.StringP("config", "c", "", "配置文件路径")
	modeFlag := fs.StringP("mode", "m", "", "构建模式: ras 或 tiv")
	fs.StringP("server", "s", "", "构建服务地址 (默认 CLIENT.BASE_URL)")
	fs.Duration("timeout", 0, "请求超时 (默认 CLIENT.TIMEOUT)")
	fs.StringP("out-dir", "o", "", "输出目录 (默认写在源文件旁边)")
	fs.String("storage", "", "输出存储: local 或 s3")
	fs.String("log-level", "", "日志级别: debug, info, warn, error")
	showVersion := fs.Bool("version", false, "显示版本")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	// 2. 加载配置
	cfg, err := config.LoadConfig(*configPath, fs)
	if err != nil {
		fmt.Fprintf(stderr, "无法加载配置: %v\n", err)
		return 1
	}
	if *showVersion {
		fmt.Fprintf(stdout, "%s %s\n", cfg.AppName, cfg.AppVersion)
		return 0
	}

	logger := logging.New(stderr, cfg.LogLevel, cfg.AppName)

	mode, err := buildtypes.ParseMode(*modeFlag)
	if err != nil {
		fmt.Fprintln(stderr, describeError(err))
		fs.Usage()
		return 2
	}
	files := fs.Args()
	if len(files) == 0 {
		fmt.Fprintln(stderr, "请先选择一个 .xlsx 文件")
		fs.Usage()
		return 2
	}

	// 3. 初始化输出存储
	store, err := newOutputStore(ctx, cfg.Storage)
	if err != nil {
		level.Error(logger).Log("msg", "无法初始化输出存储", "type", cfg.Storage.Type, "err", err)
		return 1
	}

	// 4. 初始化构建服务
	var svc services.BuildService
	{
		stageLogger := log.With(logger, "component", "BuildService")
		svc = services.NewBuildService(
			client.New(client.WithTimeout(cfg.Client.Timeout)),
			services.WithStageObserver(func(req buildtypes.UploadRequest, stage services.Stage) {
				level.Debug(stageLogger).Log("source", req.SourcePath, "stage", stage)
			}),
		)
		svc = services.LoggingMiddleware(stageLogger)(svc)
	}

	// 5. 逐个提交
	failed := 0
	for _, file := range files {
		saved, err := services.SubmitAndSave(ctx, svc, store, buildtypes.UploadRequest{
			ServerBaseURL: cfg.Client.BaseURL,
			Mode:          mode,
			SourcePath:    file,
		})
		if err != nil {
			failed++
			fmt.Fprintf(stderr, "%s: %s\n", file, describeError(err))
			continue
		}
		fmt.Fprintf(stdout, "Saved:\n%s\n", saved.Location)
	}

	if failed > 0 {
		return 1
	}
	return 0
}

func newOutputStore(ctx context.Context, cfg config.StorageConfig) (buildtypes.OutputStore, error) {
	switch cfg.Type {
	case "", "local":
		return storage.NewLocalOutputStore(cfg)
	case "s3":
		return storage.NewS3OutputStore(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("不支持的存储类型: %s", cfg.Type)
	}
}
