package storage

import (
	"path/filepath"
	"strings"

	"rastiv/internal/buildtypes"
)

// SafeFileName 把服务器建议的文件名限制为单个路径分量。
// 目录部分被丢弃，无法使用的名字退回到 buildtypes.DefaultOutputFilename。
func SafeFileName(name string) string {
	name = strings.ReplaceAll(strings.TrimSpace(name), "\\", "/")
	base := filepath.Base(filepath.FromSlash(name))
	switch base {
	case "", ".", "..", string(filepath.Separator):
		return buildtypes.DefaultOutputFilename
	}
	return base
}
