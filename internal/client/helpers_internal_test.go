package client

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"rastiv/internal/formdata"
)

func testBody(t *testing.T) *formdata.Body {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	body, err := formdata.EncodeFile(path)
	require.NoError(t, err)
	return body
}
