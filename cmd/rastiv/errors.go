package main

import (
	"errors"
	"fmt"

	"rastiv/internal/buildtypes"
	"rastiv/internal/client"
	"rastiv/internal/formdata"
)

// describeError 把错误转换成给用户看的一行说明，前面带上错误类别。
func describeError(err error) string {
	var (
		urlErr       *client.InvalidServerURLError
		readErr      *formdata.FileReadError
		modeErr      *buildtypes.UnknownModeError
		transportErr *client.TransportError
		rejected     *client.ServerRejectedRequestError
	)
	switch {
	case errors.As(err, &urlErr):
		return fmt.Sprintf("服务器地址无效: %s (%s)", urlErr.URL, urlErr.Reason)
	case errors.As(err, &readErr):
		return fmt.Sprintf("无法读取文件: %v", readErr.Err)
	case errors.As(err, &modeErr):
		return fmt.Sprintf("模式无效: %q, 可选 ras 或 tiv", modeErr.Mode)
	case errors.As(err, &transportErr) && transportErr.Timeout:
		return fmt.Sprintf("请求超时: %v", transportErr.Err)
	case errors.As(err, &transportErr):
		return fmt.Sprintf("网络错误: %v", transportErr.Err)
	case errors.As(err, &rejected):
		return fmt.Sprintf("Server error: %d\n%s", rejected.StatusCode, rejected.Detail())
	default:
		return fmt.Sprintf("Failed: %v", err)
	}
}
