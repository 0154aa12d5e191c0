package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/dmo-api/internal/api/shared"
	"github.com/phrazzld/dmo-api/internal/platform/logger"
	"github.com/phrazzld/dmo-api/internal/service"
)

// ReportBuilder computes productivity reports. *service.ReportService
// implements it.
type ReportBuilder interface {
	GetReport(ctx context.Context, userID uuid.UUID, filter service.ReportFilter) (*service.Report, error)
}

// ReportHandler serves GET /api/reports.
type ReportHandler struct {
	reports ReportBuilder
	logger  *slog.Logger
}

// NewReportHandler creates a ReportHandler.
func NewReportHandler(reports ReportBuilder, logger *slog.Logger) *ReportHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportHandler{reports: reports, logger: logger.With(slog.String("component", "report_handler"))}
}

// GetReport handles GET /api/reports?filter=today|week|month|year. Unknown
// filters report the current week.
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}
	filter := service.ParseReportFilter(r.URL.Query().Get("filter"))
	report, err := h.reports.GetReport(r.Context(), userID, filter)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to build report")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, report)
}
