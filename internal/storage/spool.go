package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// SpooledFile 描述暂存到本地磁盘的上传文件。
type SpooledFile struct {
	Path     string // 暂存路径
	FileName string // 原始文件名
	Size     int64
}

// UploadSpool 把构建服务收到的上传文件暂存到本地目录。
type UploadSpool struct {
	basePath string
}

// NewUploadSpool 创建暂存目录。basePath 为空时使用系统临时目录下的新目录。
func NewUploadSpool(basePath string) (*UploadSpool, error) {
	if basePath == "" {
		dir, err := os.MkdirTemp("", "rastiv-spool-*")
		if err != nil {
			return nil, fmt.Errorf("创建暂存目录失败: %w", err)
		}
		return &UploadSpool{basePath: dir}, nil
	}
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("创建暂存目录失败 '%s': %w", basePath, err)
	}
	return &UploadSpool{basePath: basePath}, nil
}

// Dir returns the spool directory.
func (s *UploadSpool) Dir() string {
	return s.basePath
}

// Put 将 reader 的内容写入一个唯一命名的文件，保留原始扩展名。
// fileSize 为负数时不校验写入长度。
func (s *UploadSpool) Put(ctx context.Context, reader io.Reader, fileSize int64, fileName string) (*SpooledFile, error) {
	uniqueFileName := uuid.New().String() + filepath.Ext(fileName)
	dstPath := filepath.Join(s.basePath, uniqueFileName)

	dst, err := os.Create(dstPath)
	if err != nil {
		return nil, fmt.Errorf("创建暂存文件失败 '%s': %w", dstPath, err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, reader)
	if err != nil {
		os.Remove(dstPath)
		return nil, fmt.Errorf("写入暂存文件失败: %w", err)
	}
	if fileSize >= 0 && written != fileSize {
		os.Remove(dstPath)
		return nil, fmt.Errorf("文件大小不匹配: 预期 %d, 实际写入 %d", fileSize, written)
	}

	return &SpooledFile{Path: dstPath, FileName: fileName, Size: written}, nil
}

// Remove 删除暂存文件。
func (s *UploadSpool) Remove(f *SpooledFile) error {
	if err := os.Remove(f.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("删除暂存文件失败 '%s': %w", f.Path, err)
	}
	return nil
}
