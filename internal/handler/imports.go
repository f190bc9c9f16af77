package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/taskee-dev/taskee/backend/internal/importer"
)

const maxImportSize = 1 << 20 // 1 MB

// ImportAvailability 接收 multipart 表单中的 file 字段，或者直接以请求体上传的 CSV
func (h *Handler) ImportAvailability(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxImportSize)

	var src io.Reader = r.Body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, _, err := r.FormFile("file")
		if err != nil {
			h.errorResponse(w, r, "请上传 CSV 文件")
			return
		}
		defer file.Close()
		src = file
	}

	result, err := importer.ImportAvailability(r.Context(), h.repository, actor.OrganizationID, src)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxBytesErr):
			h.errorResponse(w, r, "文件过大")
		case errors.Is(err, importer.ErrInvalidFile):
			h.errorResponse(w, r, err.Error())
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "导入空闲时间成功", result)
}
