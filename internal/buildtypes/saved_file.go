// internal/buildtypes/saved_file.go
package buildtypes

// SavedFile 包含已持久化的输出文件信息。
type SavedFile struct {
	Location string `json:"location"` // 本地路径或 s3:// URI
	FileName string `json:"fileName"` // 实际使用的文件名
	Size     int64  `json:"size"`     // 文件大小 (字节)
}
