package client_test

import (
	"context"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rastiv/internal/buildtypes"
	"rastiv/internal/client"
	"rastiv/internal/formdata"
)

// countingClient records Do calls and never touches the network.
type countingClient struct {
	calls atomic.Int32
}

func (c *countingClient) Do(*http.Request) (*http.Response, error) {
	c.calls.Add(1)
	return nil, io.ErrUnexpectedEOF
}

func encodeTestFile(t *testing.T, content string) *formdata.Body {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.xlsx")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	body, err := formdata.EncodeFile(path)
	require.NoError(t, err)
	return body
}

func TestBuildSuccess(t *testing.T) {
	var (
		gotMethod, gotPath, gotMode string
		gotFile                     []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotMode = r.URL.Query().Get("mode")

		_, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		part, err := multipart.NewReader(r.Body, params["boundary"]).NextPart()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		gotFile, _ = io.ReadAll(part)

		w.Header().Set("Content-Disposition", `form-data; name="file"; filename="report.xlsx"`)
		w.Write([]byte("matrix-bytes"))
	}))
	defer srv.Close()

	body := encodeTestFile(t, "workbook")
	result, err := client.New().Build(context.Background(), srv.URL, buildtypes.ModeRAS, body)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/build", gotPath)
	assert.Equal(t, "ras", gotMode)
	assert.Equal(t, []byte("workbook"), gotFile)
	assert.Equal(t, "report.xlsx", result.OutputFilename)
	assert.Equal(t, []byte("matrix-bytes"), result.OutputBytes)
}

func TestBuildWithoutDispositionUsesDefault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("out"))
	}))
	defer srv.Close()

	result, err := client.New().Build(context.Background(), srv.URL, buildtypes.ModeTIV, encodeTestFile(t, "x"))
	require.NoError(t, err)
	assert.Equal(t, "Output.xlsx", result.OutputFilename)
	assert.Equal(t, []byte("out"), result.OutputBytes)
}

func TestBuildServerRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte("bad mode"))
	}))
	defer srv.Close()

	result, err := client.New().Build(context.Background(), srv.URL, buildtypes.ModeRAS, encodeTestFile(t, "x"))
	assert.Nil(t, result)

	var rejected *client.ServerRejectedRequestError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, http.StatusUnprocessableEntity, rejected.StatusCode)
	assert.Equal(t, "bad mode", rejected.Body)
	assert.Equal(t, "bad mode", rejected.Detail())
}

func TestBuildInvalidServerURLMakesNoRequest(t *testing.T) {
	for _, raw := range []string{"not a url", "", "   ", "ftp://example.com", "http://", "127.0.0.1:8000", "://missing-scheme"} {
		t.Run(raw, func(t *testing.T) {
			hc := &countingClient{}
			c := client.New(client.WithHTTPClient(hc))

			_, err := c.Build(context.Background(), raw, buildtypes.ModeRAS, encodeTestFile(t, "x"))
			var urlErr *client.InvalidServerURLError
			require.ErrorAs(t, err, &urlErr)
			assert.Equal(t, raw, urlErr.URL)
			assert.Zero(t, hc.calls.Load())
		})
	}
}

func TestBuildUnknownModeMakesNoRequest(t *testing.T) {
	hc := &countingClient{}
	c := client.New(client.WithHTTPClient(hc))

	_, err := c.Build(context.Background(), "http://127.0.0.1:8000", buildtypes.Mode("coi"), encodeTestFile(t, "x"))
	var modeErr *buildtypes.UnknownModeError
	require.ErrorAs(t, err, &modeErr)
	assert.Zero(t, hc.calls.Load())
}

func TestBuildNilBody(t *testing.T) {
	hc := &countingClient{}
	_, err := client.New(client.WithHTTPClient(hc)).Build(context.Background(), "http://127.0.0.1:8000", buildtypes.ModeRAS, nil)
	assert.ErrorIs(t, err, client.ErrNilBody)
	assert.Zero(t, hc.calls.Load())
}

func TestBuildTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer srv.Close()

	c := client.New(client.WithTimeout(50 * time.Millisecond))
	_, err := c.Build(context.Background(), srv.URL, buildtypes.ModeRAS, encodeTestFile(t, "x"))

	var transportErr *client.TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.True(t, transportErr.Timeout)
}

func TestBuildConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	_, err := client.New().Build(context.Background(), addr, buildtypes.ModeRAS, encodeTestFile(t, "x"))
	var transportErr *client.TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.False(t, transportErr.Timeout)
	assert.Equal(t, "send", transportErr.Op)
}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{"http://127.0.0.1:8000", "http://127.0.0.1:8000/build"},
		{"http://127.0.0.1:8000/", "http://127.0.0.1:8000/build"},
		{"  https://builder.example.com/api/v1/  ", "https://builder.example.com/api/v1/build"},
		{"HTTP://host", "http://host/build"},
	}
	for _, tt := range tests {
		t.Run(tt.base, func(t *testing.T) {
			u, err := client.BuildURL(tt.base)
			require.NoError(t, err)
			assert.Equal(t, tt.want, u.String())
		})
	}
}

func TestBuildKeepsBasePath(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	_, err := client.New().Build(context.Background(), srv.URL+"/api/", buildtypes.ModeTIV, encodeTestFile(t, "x"))
	require.NoError(t, err)
	assert.Equal(t, "/api/build", gotPath)
}

func TestServerRejectedDetail(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{`{"detail":"mode must be 'ras' or 'tiv'"}`, "mode must be 'ras' or 'tiv'"},
		{`{"detail":[{"loc":["query","mode"]}]}`, `{"detail":[{"loc":["query","mode"]}]}`},
		{"Upload must be .xlsx\n", "Upload must be .xlsx"},
		{"", ""},
	}
	for _, tt := range tests {
		e := &client.ServerRejectedRequestError{StatusCode: http.StatusBadRequest, Body: tt.body}
		assert.Equal(t, tt.want, e.Detail())
		assert.Contains(t, e.Error(), "400")
	}
}
