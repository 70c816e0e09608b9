// internal/client/client.go
package client

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	httptransport "github.com/go-kit/kit/transport/http"

	"rastiv/internal/buildtypes"
	"rastiv/internal/formdata"
)

const buildPath = "/build"

// HTTPClient abstracts HTTP request execution. *http.Client satisfies it.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client 负责与远端构建服务的一次交换：发送请求、校验状态码、解析文件名。
// Client 只持有不可变配置，可以被多个 goroutine 同时使用。
type Client struct {
	http    HTTPClient
	timeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c HTTPClient) Option {
	return func(cl *Client) {
		cl.http = c
	}
}

// WithTimeout bounds the whole exchange. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		cl.timeout = d
	}
}

// New 创建一个新的 Client。
func New(opts ...Option) *Client {
	c := &Client{http: http.DefaultClient}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type buildRequest struct {
	Mode buildtypes.Mode
	Body *formdata.Body
}

// Build 把 body 以 POST {serverBaseURL}/build?mode={mode} 发送出去，
// 成功时返回文件名和完整的响应体。调用要么完全成功，要么返回一个错误。
func (c *Client) Build(ctx context.Context, serverBaseURL string, mode buildtypes.Mode, body *formdata.Body) (*buildtypes.UploadResult, error) {
	target, err := BuildURL(serverBaseURL)
	if err != nil {
		return nil, err
	}
	if !mode.Valid() {
		return nil, &buildtypes.UnknownModeError{Mode: string(mode)}
	}
	if body == nil {
		return nil, ErrNilBody
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	ep := httptransport.NewClient(
		http.MethodPost,
		target,
		encodeBuildRequest,
		decodeBuildResponse,
		httptransport.SetClient(c.http),
	).Endpoint()

	resp, err := ep(ctx, buildRequest{Mode: mode, Body: body})
	if err != nil {
		return nil, classify(ctx, err)
	}
	return resp.(*buildtypes.UploadResult), nil
}

// BuildURL 校验服务器地址并拼出 /build 目标地址。
func BuildURL(serverBaseURL string) (*url.URL, error) {
	raw := strings.TrimSpace(serverBaseURL)
	if raw == "" {
		return nil, &InvalidServerURLError{URL: serverBaseURL, Reason: "地址为空"}
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, &InvalidServerURLError{URL: serverBaseURL, Reason: err.Error()}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, &InvalidServerURLError{URL: serverBaseURL, Reason: "协议必须是 http 或 https"}
	}
	if u.Host == "" {
		return nil, &InvalidServerURLError{URL: serverBaseURL, Reason: "缺少主机名"}
	}

	u.Path = strings.TrimRight(u.Path, "/") + buildPath
	u.RawPath = ""
	u.Fragment = ""
	return u, nil
}

func encodeBuildRequest(_ context.Context, r *http.Request, request interface{}) error {
	req, ok := request.(buildRequest)
	if !ok {
		return &InvalidRequestTypeError{Expected: "buildRequest", Actual: request}
	}

	q := r.URL.Query()
	q.Set("mode", req.Mode.String())
	r.URL.RawQuery = q.Encode()

	r.Header.Set("Content-Type", req.Body.ContentType())
	r.ContentLength = int64(req.Body.Len())
	r.Body = io.NopCloser(req.Body.Reader())
	r.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(req.Body.Reader()), nil
	}
	return nil
}

func decodeBuildResponse(ctx context.Context, r *http.Response) (interface{}, error) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, &TransportError{Op: "read", Timeout: isTimeout(ctx, err), Err: err}
	}
	if r.StatusCode != http.StatusOK {
		return nil, &ServerRejectedRequestError{StatusCode: r.StatusCode, Body: string(data)}
	}
	return &buildtypes.UploadResult{
		OutputFilename: FilenameFromDisposition(r.Header.Get("Content-Disposition")),
		OutputBytes:    data,
	}, nil
}

func classify(ctx context.Context, err error) error {
	var rejected *ServerRejectedRequestError
	if errors.As(err, &rejected) {
		return err
	}
	var transport *TransportError
	if errors.As(err, &transport) {
		return err
	}
	return &TransportError{Op: "send", Timeout: isTimeout(ctx, err), Err: err}
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
