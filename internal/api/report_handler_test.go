package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/dmo-api/internal/service"
	"github.com/stretchr/testify/assert"
)

type fakeReports struct {
	filter service.ReportFilter
}

func (f *fakeReports) GetReport(_ context.Context, _ uuid.UUID, filter service.ReportFilter) (*service.Report, error) {
	f.filter = filter
	return &service.Report{Filter: filter, Focus: service.NoFocus}, nil
}

func TestReportHandlerFilter(t *testing.T) {
	tests := []struct {
		query    string
		expected service.ReportFilter
	}{
		{"", service.ReportWeek},
		{"?filter=today", service.ReportToday},
		{"?filter=month", service.ReportMonth},
		{"?filter=year", service.ReportYear},
		{"?filter=decade", service.ReportWeek},
	}

	for _, tc := range tests {
		t.Run(string(tc.expected)+tc.query, func(t *testing.T) {
			reports := &fakeReports{}
			rr := httptest.NewRecorder()

			NewReportHandler(reports, nil).GetReport(rr, newRequest(t, http.MethodGet, "/api/reports"+tc.query, nil, uuid.New(), nil))

			assert.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, tc.expected, reports.filter)
			assert.Contains(t, rr.Body.String(), `"focus":"--"`)
		})
	}

	rr := httptest.NewRecorder()
	NewReportHandler(&fakeReports{}, nil).GetReport(rr, newRequest(t, http.MethodGet, "/api/reports", nil, uuid.Nil, nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
