package services

import (
	"context"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"rastiv/internal/buildtypes"
)

// Middleware describes a BuildService middleware.
type Middleware func(BuildService) BuildService

// LoggingMiddleware 记录每次提交的参数、耗时和结果。
func LoggingMiddleware(logger log.Logger) Middleware {
	return func(next BuildService) BuildService {
		return &loggingMiddleware{next: next, logger: logger}
	}
}

type loggingMiddleware struct {
	next   BuildService
	logger log.Logger
}

func (mw *loggingMiddleware) Submit(ctx context.Context, req buildtypes.UploadRequest) (result *buildtypes.UploadResult, err error) {
	defer func(begin time.Time) {
		kv := []interface{}{
			"method", "Submit",
			"mode", req.Mode,
			"source", req.SourcePath,
			"server", req.ServerBaseURL,
			"took", time.Since(begin),
		}
		if err != nil {
			level.Error(mw.logger).Log(append(kv, "err", err)...)
			return
		}
		level.Info(mw.logger).Log(append(kv, "output", result.OutputFilename, "bytes", len(result.OutputBytes))...)
	}(time.Now())

	return mw.next.Submit(ctx, req)
}
