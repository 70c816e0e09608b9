package client_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"rastiv/internal/client"
)

func TestFilenameFromDisposition(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"form-data header", `form-data; name="file"; filename="report.xlsx"`, "report.xlsx"},
		{"attachment", `attachment; filename="RAS_ALG_Output(1).xlsx"`, "RAS_ALG_Output(1).xlsx"},
		{"unquoted", `attachment; filename=TIV.xlsx`, "TIV.xlsx"},
		{"trailing params", `attachment; filename="a.xlsx"; size=10`, "a.xlsx"},
		{"rfc 5987", `attachment; filename*=UTF-8''%E6%8A%A5%E5%91%8A.xlsx`, "报告.xlsx"},
		{"malformed falls back to literal", `attachment; filename="sp ace.xlsx" ;;`, "sp ace.xlsx ;;"},
		{"padded literal", `bogus filename=  "x.xlsx"  `, "x.xlsx"},
		{"absent", "", "Output.xlsx"},
		{"no marker", `attachment`, "Output.xlsx"},
		{"empty filename", `attachment; filename=""`, "Output.xlsx"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, client.FilenameFromDisposition(tt.header))
		})
	}
}
