package formdata_test

import (
	"bytes"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rastiv/internal/formdata"
)

func writeFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func TestEncodeLayout(t *testing.T) {
	content := []byte("PK\x03\x04 workbook bytes")
	path := writeFile(t, "input.xlsx", content)

	body, err := formdata.EncodeFile(path)
	require.NoError(t, err)

	want := "--" + body.Boundary + "\r\n" +
		"Content-Disposition: form-data; name=\"file\"; filename=\"input.xlsx\"\r\n" +
		"Content-Type: application/vnd.openxmlformats-officedocument.spreadsheetml.sheet\r\n\r\n" +
		string(content) +
		"\r\n--" + body.Boundary + "--\r\n"
	assert.Equal(t, want, string(body.Bytes()))
	assert.Equal(t, len(want), body.Len())
	assert.Equal(t, "multipart/form-data; boundary="+body.Boundary, body.ContentType())
	assert.True(t, strings.HasPrefix(body.Boundary, "----"))
}

func TestEncodeRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
	}{
		{"text", []byte("hello")},
		{"crlf is kept", []byte("line one\r\nline two\n\r\n")},
		{"binary", []byte{0x00, 0xff, 0x0d, 0x0a, 0x2d, 0x2d, 0x50, 0x4b}},
		{"leading dashes", []byte("--\r\n--not-a-boundary--\r\n")},
		{"large", bytes.Repeat([]byte("0123456789abcdef"), 64*1024)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "book.xlsx", tt.content)
			body, err := formdata.EncodeFile(path)
			require.NoError(t, err)

			_, params, err := mime.ParseMediaType(body.ContentType())
			require.NoError(t, err)
			require.Equal(t, body.Boundary, params["boundary"])

			mr := multipart.NewReader(body.Reader(), params["boundary"])
			part, err := mr.NextPart()
			require.NoError(t, err)
			assert.Equal(t, "file", part.FormName())
			assert.Equal(t, "book.xlsx", part.FileName())
			assert.Equal(t, formdata.SpreadsheetContentType, part.Header.Get("Content-Type"))

			got, err := io.ReadAll(part)
			require.NoError(t, err)
			assert.Equal(t, tt.content, got)

			_, err = mr.NextPart()
			assert.ErrorIs(t, err, io.EOF, "exactly one part expected")
		})
	}
}

func TestBoundaryDiffersFromProbeContent(t *testing.T) {
	fake := "------" + "3f2b9c1e-0d4a-4f8e-9b6a-2c7d5e1f0a9b"
	content := []byte("prefix\r\n--" + fake + "\r\nsuffix --" + fake + "--\r\n")
	path := writeFile(t, "probe.xlsx", content)

	for i := 0; i < 50; i++ {
		body, err := formdata.EncodeFile(path)
		require.NoError(t, err)
		assert.NotEqual(t, fake, body.Boundary)
		assert.False(t, bytes.Contains(content, []byte(body.Boundary)))
	}
}

func TestBoundariesAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		b := formdata.NewBoundary()
		require.False(t, seen[b], "duplicate boundary %s", b)
		seen[b] = true
	}
}

func TestEncodeFileReadError(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.xlsx")

	_, err := formdata.EncodeFile(missing)
	var readErr *formdata.FileReadError
	require.ErrorAs(t, err, &readErr)
	assert.Equal(t, missing, readErr.Path)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestEncodeDirectoryIsReadError(t *testing.T) {
	_, err := formdata.EncodeFile(t.TempDir())
	var readErr *formdata.FileReadError
	assert.ErrorAs(t, err, &readErr)
}

func TestEncodeInvalidFieldName(t *testing.T) {
	path := writeFile(t, "input.xlsx", []byte("x"))

	for _, name := range []string{"", `fi"le`, "fi\r\nle", `a\b`, "tab\tname"} {
		_, err := formdata.Encode(path, name)
		var fieldErr *formdata.InvalidFieldNameError
		assert.ErrorAs(t, err, &fieldErr, "field name %q", name)
	}

	body, err := formdata.Encode(path, "upload")
	require.NoError(t, err)
	assert.Contains(t, string(body.Bytes()), `name="upload"`)
}

func TestEncodeEscapesQuotedFilename(t *testing.T) {
	path := writeFile(t, `q"uote.xlsx`, []byte("x"))

	body, err := formdata.EncodeFile(path)
	require.NoError(t, err)

	mr := multipart.NewReader(body.Reader(), body.Boundary)
	part, err := mr.NextPart()
	require.NoError(t, err)
	assert.Equal(t, `q"uote.xlsx`, part.FileName())
}

func TestBytesReturnsCopy(t *testing.T) {
	path := writeFile(t, "input.xlsx", []byte("abc"))
	body, err := formdata.EncodeFile(path)
	require.NoError(t, err)

	b := body.Bytes()
	b[0] = 'X'
	assert.Equal(t, byte('-'), body.Bytes()[0])
}
