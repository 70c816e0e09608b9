// internal/buildtypes/upload.go
package buildtypes

import (
	"errors"
	"os"

	"rastiv/internal/formdata"
)

// DefaultOutputFilename 在响应没有给出文件名时使用。
const DefaultOutputFilename = "Output.xlsx"

// UploadRequest 描述一次提交：服务器地址、模式和本地源文件。
// 每次提交创建一个新的 UploadRequest，不在提交之间共享。
type UploadRequest struct {
	ServerBaseURL string
	Mode          Mode
	SourcePath    string
}

// ErrNotRegularFile is wrapped in a FileReadError when SourcePath is a directory or device.
var ErrNotRegularFile = errors.New("不是普通文件")

// Validate 检查模式是否合法以及源文件是否存在且为普通文件。
// 服务器地址的校验由 client 包负责。
func (r UploadRequest) Validate() error {
	if !r.Mode.Valid() {
		return &UnknownModeError{Mode: string(r.Mode)}
	}
	info, err := os.Stat(r.SourcePath)
	if err != nil {
		return &formdata.FileReadError{Path: r.SourcePath, Err: err}
	}
	if !info.Mode().IsRegular() {
		return &formdata.FileReadError{Path: r.SourcePath, Err: ErrNotRegularFile}
	}
	return nil
}

// UploadResult 是远端返回的构建结果，所有权交给调用方。
type UploadResult struct {
	OutputFilename string
	OutputBytes    []byte
}
