package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"rastiv/internal/buildtypes"
	"rastiv/internal/config"
)

// LocalOutputStore 实现了 buildtypes.OutputStore 接口，把结果写到本地文件系统。
type LocalOutputStore struct {
	basePath string // 输出目录；为空时写在源文件旁边
}

// NewLocalOutputStore 创建一个新的 LocalOutputStore 实例。
// cfg.LocalPath 为空表示沿用源文件所在目录。
func NewLocalOutputStore(cfg config.StorageConfig) (*LocalOutputStore, error) {
	if cfg.LocalPath != "" {
		// 确保 basePath 存在
		if err := os.MkdirAll(cfg.LocalPath, 0755); err != nil {
			return nil, fmt.Errorf("创建本地输出目录失败 '%s': %w", cfg.LocalPath, err)
		}
	}
	return &LocalOutputStore{basePath: cfg.LocalPath}, nil
}

// Save 将构建结果写入输出目录，同名文件会被覆盖。
func (s *LocalOutputStore) Save(ctx context.Context, sourcePath string, result *buildtypes.UploadResult) (*buildtypes.SavedFile, error) {
	dir := s.basePath
	if dir == "" {
		dir = filepath.Dir(sourcePath)
	}
	fileName := SafeFileName(result.OutputFilename)

	dstPath, err := filepath.Abs(filepath.Join(dir, fileName))
	if err != nil {
		return nil, fmt.Errorf("解析输出路径失败: %w", err)
	}

	dst, err := os.Create(dstPath)
	if err != nil {
		return nil, fmt.Errorf("创建目标文件失败 '%s': %w", dstPath, err)
	}

	written, err := io.Copy(dst, bytes.NewReader(result.OutputBytes))
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		// 如果写入出错，尝试删除已创建的文件
		os.Remove(dstPath)
		return nil, fmt.Errorf("写入文件失败: %w", err)
	}

	return &buildtypes.SavedFile{
		Location: dstPath,
		FileName: fileName,
		Size:     written,
	}, nil
}
