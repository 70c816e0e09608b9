// internal/formdata/encoder.go
package formdata

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	// FileFieldName 是构建服务期望的表单字段名。
	FileFieldName = "file"

	// SpreadsheetContentType 是文件部分的 MIME 类型。
	SpreadsheetContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	boundaryPrefix = "----"
)

// FileReadError 表示源文件无法打开或读取。
type FileReadError struct {
	Path string
	Err  error
}

func (e *FileReadError) Error() string {
	return fmt.Sprintf("读取源文件 '%s' 失败: %v", e.Path, e.Err)
}

func (e *FileReadError) Unwrap() error { return e.Err }

// InvalidFieldNameError 表示字段名不能放进 Content-Disposition 的引号参数中。
type InvalidFieldNameError struct {
	Name string
}

func (e *InvalidFieldNameError) Error() string {
	return fmt.Sprintf("非法的表单字段名 %q", e.Name)
}

// Body 是编码完成的 multipart/form-data 请求体。
// 创建后不可修改，只属于创建它的那次请求。
type Body struct {
	Boundary string
	payload  []byte
}

// Bytes 返回请求体的副本。
func (b *Body) Bytes() []byte {
	return bytes.Clone(b.payload)
}

// Len returns the payload length in bytes.
func (b *Body) Len() int {
	return len(b.payload)
}

// Reader returns a fresh reader over the payload.
func (b *Body) Reader() *bytes.Reader {
	return bytes.NewReader(b.payload)
}

// ContentType 返回与请求体匹配的 Content-Type 头。
func (b *Body) ContentType() string {
	return "multipart/form-data; boundary=" + b.Boundary
}

// EncodeFile 使用固定字段名 "file" 编码源文件。
func EncodeFile(path string) (*Body, error) {
	return Encode(path, FileFieldName)
}

// Encode 读取 path 指向的文件，生成只有一个文件部分的 multipart 请求体。
// 文件内容原样写入，不做换行转换。
func Encode(path, fieldName string) (*Body, error) {
	if !validFieldName(fieldName) {
		return nil, &InvalidFieldNameError{Name: fieldName}
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &FileReadError{Path: path, Err: err}
	}

	boundary := NewBoundary()
	for bytes.Contains(content, []byte(boundary)) {
		boundary = NewBoundary()
	}

	var buf bytes.Buffer
	buf.Grow(len(content) + 256)
	buf.WriteString("--" + boundary + "\r\n")
	fmt.Fprintf(&buf, "Content-Disposition: form-data; name=\"%s\"; filename=\"%s\"\r\n",
		fieldName, escapeQuotes(filepath.Base(path)))
	buf.WriteString("Content-Type: " + SpreadsheetContentType + "\r\n\r\n")
	buf.Write(content)
	buf.WriteString("\r\n--" + boundary + "--\r\n")

	return &Body{Boundary: boundary, payload: buf.Bytes()}, nil
}

// NewBoundary 生成一个随机边界，形如 "----" + UUIDv4。
func NewBoundary() string {
	return boundaryPrefix + uuid.NewString()
}

func validFieldName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c < 0x20 || c == 0x7f || c == '"' || c == '\\' {
			return false
		}
	}
	return true
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
