package handler

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sakif/fittrack/internal/export"
	"github.com/sakif/fittrack/internal/service"
)

// ExportHandler streams the PDF and Excel reports.
type ExportHandler struct {
	users   *service.AuthService
	reports *service.ReportService
	logger  *slog.Logger
}

func NewExportHandler(users *service.AuthService, reports *service.ReportService, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{users: users, reports: reports, logger: logger}
}

// HandlePDF sends the last week as a PDF.
//
// HTTP: GET /api/export/pdf
func (h *ExportHandler) HandlePDF(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, service.PDFReportDays, "pdf", export.ContentTypePDF, export.WritePDF)
}

// HandleExcel sends the last month as a workbook.
//
// HTTP: GET /api/export/excel
func (h *ExportHandler) HandleExcel(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, service.ExcelReportDays, "xlsx", export.ContentTypeExcel, export.WriteExcel)
}

// serve renders into a buffer first so a rendering failure can still be
// reported as a JSON error instead of a truncated download.
func (h *ExportHandler) serve(
	w http.ResponseWriter,
	r *http.Request,
	days int,
	ext, contentType string,
	render func(io.Writer, *export.Report) error,
) {
	user, err := currentUser(r, h.users)
	if err != nil {
		writeError(w, err)
		return
	}

	report, err := h.reports.Build(r.Context(), user, days)
	if err != nil {
		writeError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := render(&buf, report); err != nil {
		h.logger.Error("rendering report failed",
			slog.String("format", ext),
			slog.String("userID", user.ID),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+report.Filename(ext)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn("writing report failed", slog.String("error", err.Error()))
	}
}
