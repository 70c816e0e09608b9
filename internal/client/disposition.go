// internal/client/disposition.go
package client

import (
	"mime"
	"strings"

	"rastiv/internal/buildtypes"
)

const filenameMarker = "filename="

// FilenameFromDisposition 从 Content-Disposition 响应头中取出建议的文件名。
// 先按参数语法解析；解析失败时退回到查找 "filename=" 并取其后的全部内容。
// 找不到文件名时返回 buildtypes.DefaultOutputFilename。
func FilenameFromDisposition(header string) string {
	if strings.TrimSpace(header) == "" {
		return buildtypes.DefaultOutputFilename
	}

	if _, params, err := mime.ParseMediaType(header); err == nil {
		if name := cleanFilename(params["filename"]); name != "" {
			return name
		}
	}

	idx := strings.Index(header, filenameMarker)
	if idx < 0 {
		return buildtypes.DefaultOutputFilename
	}
	if name := cleanFilename(header[idx+len(filenameMarker):]); name != "" {
		return name
	}
	return buildtypes.DefaultOutputFilename
}

func cleanFilename(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, `"`, ""))
}
