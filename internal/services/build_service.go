package services

import (
	"context"
	"fmt"

	"rastiv/internal/buildtypes"
	"rastiv/internal/client"
	"rastiv/internal/formdata"
)

// Stage 表示一次提交所处的阶段。
type Stage int

const (
	StageIdle Stage = iota
	StageEncoding
	StageSending
	StageSucceeded
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageEncoding:
		return "encoding"
	case StageSending:
		return "sending"
	case StageSucceeded:
		return "succeeded"
	case StageFailed:
		return "failed"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// StageObserver 在每次阶段变化时被同步调用。
type StageObserver func(req buildtypes.UploadRequest, stage Stage)

// Exchanger 执行与构建服务的网络交换，*client.Client 实现了它。
type Exchanger interface {
	Build(ctx context.Context, serverBaseURL string, mode buildtypes.Mode, body *formdata.Body) (*buildtypes.UploadResult, error)
}

// BuildService 定义了提交构建请求的服务接口。
type BuildService interface {
	// Submit 编码源文件并发送到构建服务，返回结果或一个类型化的错误。
	Submit(ctx context.Context, req buildtypes.UploadRequest) (*buildtypes.UploadResult, error)
}

// buildService 是 BuildService 的实现。它不持有任何可变状态。
type buildService struct {
	exchanger Exchanger
	observer  StageObserver
}

// ServiceOption configures NewBuildService.
type ServiceOption func(*buildService)

// WithStageObserver registers fn to be told about stage transitions.
func WithStageObserver(fn StageObserver) ServiceOption {
	return func(s *buildService) {
		s.observer = fn
	}
}

// NewBuildService 创建一个新的 BuildService 实例。
func NewBuildService(exchanger Exchanger, opts ...ServiceOption) BuildService {
	s := &buildService{exchanger: exchanger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit 按 Idle → Encoding → Sending → Succeeded/Failed 的顺序处理一次提交。
// 服务器地址在读取文件和任何网络操作之前校验。
func (s *buildService) Submit(ctx context.Context, req buildtypes.UploadRequest) (result *buildtypes.UploadResult, err error) {
	s.notify(req, StageIdle)
	defer func() {
		if err != nil {
			s.notify(req, StageFailed)
			return
		}
		s.notify(req, StageSucceeded)
	}()

	if _, err := client.BuildURL(req.ServerBaseURL); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	s.notify(req, StageEncoding)
	body, err := formdata.EncodeFile(req.SourcePath)
	if err != nil {
		return nil, err
	}

	s.notify(req, StageSending)
	return s.exchanger.Build(ctx, req.ServerBaseURL, req.Mode, body)
}

func (s *buildService) notify(req buildtypes.UploadRequest, stage Stage) {
	if s.observer != nil {
		s.observer(req, stage)
	}
}

// SubmitAndSave 提交请求并把结果交给 store 持久化。
// 提交失败时不会写入任何文件。
func SubmitAndSave(ctx context.Context, svc BuildService, store buildtypes.OutputStore, req buildtypes.UploadRequest) (*buildtypes.SavedFile, error) {
	result, err := svc.Submit(ctx, req)
	if err != nil {
		return nil, err
	}
	saved, err := store.Save(ctx, req.SourcePath, result)
	if err != nil {
		return nil, fmt.Errorf("保存构建结果失败: %w", err)
	}
	return saved, nil
}
