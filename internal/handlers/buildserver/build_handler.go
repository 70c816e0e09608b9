// internal/handlers/buildserver/build_handler.go
package buildserver

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"rastiv/internal/buildtypes"
	"rastiv/internal/config"
	"rastiv/internal/formdata"
	"rastiv/internal/middleware"
	"rastiv/internal/storage"
)

const (
	defaultMaxMemory = 32 << 20 // 32 MB default max memory for multipart forms
)

// OutputFileName 返回构建服务为每种模式建议的输出文件名。
func OutputFileName(mode buildtypes.Mode) string {
	switch mode {
	case buildtypes.ModeRAS:
		return "RAS_ALG_Output.xlsx"
	case buildtypes.ModeTIV:
		return "TIV_Weighted_Matrix.xlsx"
	default:
		return buildtypes.DefaultOutputFilename
	}
}

// BuildHandler 实现了 POST /build 的线路协议。
// 工作簿原样返回，不做 RAS/TIV 计算，用于本地联调和测试客户端。
type BuildHandler struct {
	spool  *storage.UploadSpool
	cfg    config.BuildServerConfig
	logger log.Logger
}

// NewBuildHandler 创建一个新的 BuildHandler 实例。
func NewBuildHandler(spool *storage.UploadSpool, cfg config.BuildServerConfig, logger log.Logger) *BuildHandler {
	return &BuildHandler{
		spool:  spool,
		cfg:    cfg,
		logger: logger,
	}
}

// Build 处理构建请求。
func (h *BuildHandler) Build(w http.ResponseWriter, r *http.Request) {
	logger := h.logger
	if id, ok := middleware.GetRequestIDFromContext(r.Context()); ok {
		logger = log.With(logger, "request_id", id)
	}

	// 1. 校验模式
	mode, err := buildtypes.ParseMode(r.URL.Query().Get("mode"))
	if err != nil {
		writeJSONError(w, "mode must be 'ras' or 'tiv'", http.StatusBadRequest)
		return
	}

	// 2. 限制请求体大小
	maxUploadSize := h.cfg.MaxFileSizeMB << 20
	if maxUploadSize <= 0 {
		maxUploadSize = defaultMaxMemory
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	// 3. 解析 multipart form
	if err := r.ParseMultipartForm(defaultMaxMemory); err != nil {
		if isBodyTooLarge(err) {
			msg := fmt.Sprintf("Upload exceeds %d MB", maxUploadSize>>20)
			writeJSONError(w, msg, http.StatusRequestEntityTooLarge)
		} else {
			writeJSONError(w, fmt.Sprintf("Invalid multipart form: %v", err), http.StatusBadRequest)
		}
		return
	}
	defer r.MultipartForm.RemoveAll()

	// 4. 获取文件 "file"
	file, header, err := r.FormFile(formdata.FileFieldName)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			writeJSONError(w, "Field 'file' is required", http.StatusBadRequest)
		} else {
			writeJSONError(w, fmt.Sprintf("Invalid file field: %v", err), http.StatusBadRequest)
		}
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".xlsx") {
		writeJSONError(w, "Upload must be .xlsx", http.StatusBadRequest)
		return
	}

	// 5. 暂存上传文件
	spooled, err := h.spool.Put(r.Context(), file, header.Size, header.Filename)
	if err != nil {
		level.Error(logger).Log("method", "Build", "stage", "spool", "err", err)
		writeJSONError(w, "Failed to store upload", http.StatusInternalServerError)
		return
	}
	defer func() {
		if err := h.spool.Remove(spooled); err != nil {
			level.Warn(logger).Log("method", "Build", "stage", "cleanup", "err", err)
		}
	}()

	detected := "unknown"
	if mt, err := mimetype.DetectFile(spooled.Path); err == nil {
		detected = mt.String()
	}

	out, err := os.ReadFile(spooled.Path)
	if err != nil {
		level.Error(logger).Log("method", "Build", "stage", "read", "err", err)
		writeJSONError(w, "Failed to read upload", http.StatusInternalServerError)
		return
	}

	outName := OutputFileName(mode)
	level.Info(logger).Log("method", "Build", "mode", mode, "file", header.Filename,
		"size", spooled.Size, "detected", detected, "output", outName)

	// 6. 返回工作簿
	w.Header().Set("Content-Type", formdata.SpreadsheetContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": outName}))
	w.Header().Set("Content-Length", strconv.Itoa(len(out)))
	w.WriteHeader(http.StatusOK)
	w.Write(out)
}

// Health 用于存活探测。
func (h *BuildHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return true
	}
	return strings.Contains(err.Error(), "http: request body too large")
}
