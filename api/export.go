package api

import (
	"bytes"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"budget/middleware"
	"budget/service"

	"github.com/gin-gonic/gin"
)

// ExportHandler 导出处理器
type ExportHandler struct {
	exports *service.ExportService
}

// NewExportHandler 创建导出处理器
func NewExportHandler(exports *service.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

func (h *ExportHandler) statement(c *gin.Context) (*service.Statement, bool) {
	id, ok := pathID(c, "id")
	if !ok {
		return nil, false
	}
	st, err := h.exports.Statement(c.Request.Context(), middleware.GetCurrentUserID(c), id)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return st, true
}

func exportFilename(st *service.Statement, ext string) string {
	return fmt.Sprintf("%s_%s.%s", st.Account.Name, time.Now().Format("20060102"), ext)
}

// ExportCSV 导出账户流水为 CSV
// @Summary 导出账户流水（CSV）
// @Tags 导出
// @Produce text/csv
// @Security BearerAuth
// @Param id path int true "账户ID"
// @Success 200 {file} file "CSV 文件"
// @Failure 403 {object} Response "不是该家庭成员"
// @Failure 404 {object} Response "账户不存在"
// @Router /api/v1/accounts/{id}/export/csv [get]
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	st, ok := h.statement(c)
	if !ok {
		return
	}
	buf := new(bytes.Buffer)
	if err := service.WriteCSV(buf, st); err != nil {
		InternalError(c, "生成 CSV 失败")
		return
	}

	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(exportFilename(st, "csv")))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ExportExcel 导出账户流水为 Excel
// @Summary 导出账户流水（Excel）
// @Tags 导出
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param id path int true "账户ID"
// @Success 200 {file} file "xlsx 文件"
// @Failure 403 {object} Response "不是该家庭成员"
// @Failure 404 {object} Response "账户不存在"
// @Router /api/v1/accounts/{id}/export/excel [get]
func (h *ExportHandler) ExportExcel(c *gin.Context) {
	st, ok := h.statement(c)
	if !ok {
		return
	}
	buf := new(bytes.Buffer)
	if err := service.WriteExcel(buf, st); err != nil {
		InternalError(c, "生成 Excel 失败")
		return
	}

	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(exportFilename(st, "xlsx")))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
