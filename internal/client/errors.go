// internal/client/errors.go
package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNilBody is returned when Build is called without an encoded body.
var ErrNilBody = errors.New("缺少请求体")

// InvalidServerURLError 表示服务器地址不是合法的绝对 http(s) URL。
// 在任何网络操作之前返回。
type InvalidServerURLError struct {
	URL    string
	Reason string
}

func (e *InvalidServerURLError) Error() string {
	return fmt.Sprintf("无效的服务器地址 %q: %s", e.URL, e.Reason)
}

// TransportError 涵盖连接失败、DNS/TLS 错误、超时和读取响应失败。
type TransportError struct {
	Op      string // "send" or "read"
	Timeout bool
	Err     error
}

func (e *TransportError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("请求超时 (%s): %v", e.Op, e.Err)
	}
	return fmt.Sprintf("网络错误 (%s): %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ServerRejectedRequestError 表示服务器返回了非 200 状态码。
// Body 是原始响应体，通常是一段简短的说明。
type ServerRejectedRequestError struct {
	StatusCode int
	Body       string
}

func (e *ServerRejectedRequestError) Error() string {
	return fmt.Sprintf("服务器错误: %d %s", e.StatusCode, e.Detail())
}

// Detail 返回可以展示给用户的说明。
// FastAPI 风格的 {"detail": "..."} 会被解开，其余情况返回去掉首尾空白的原始响应体。
func (e *ServerRejectedRequestError) Detail() string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal([]byte(e.Body), &payload); err == nil && len(payload.Detail) > 0 {
		var s string
		if err := json.Unmarshal(payload.Detail, &s); err == nil {
			return s
		}
	}
	return strings.TrimSpace(e.Body)
}

// InvalidRequestTypeError is returned by the transport encoder when the
// endpoint is invoked with something other than a buildRequest.
type InvalidRequestTypeError struct {
	Expected string
	Actual   interface{}
}

func (e *InvalidRequestTypeError) Error() string {
	return fmt.Sprintf("invalid request type: expected %s, got %T", e.Expected, e.Actual)
}
