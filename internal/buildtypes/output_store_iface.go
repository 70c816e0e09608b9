// internal/buildtypes/output_store_iface.go
package buildtypes

import "context"

// OutputStore 定义了构建结果的持久化接口。
// 接口放在 buildtypes 中，避免 storage 和 services 之间的循环依赖。
type OutputStore interface {
	// Save 持久化 result。sourcePath 是提交时的源文件路径，
	// 本地实现在未配置输出目录时把结果写在源文件旁边。
	Save(ctx context.Context, sourcePath string, result *UploadResult) (*SavedFile, error)
}
