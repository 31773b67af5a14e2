package service

import (
	"context"
	"time"

	"github.com/sakif/fittrack/internal/apperror"
	"github.com/sakif/fittrack/internal/export"
	"github.com/sakif/fittrack/internal/model"
	"github.com/sakif/fittrack/internal/repository"
)

// Report windows: the PDF is a weekly printout, the workbook a monthly
// data dump.
const (
	PDFReportDays   = 7
	ExcelReportDays = 30
)

// ReportService gathers the data behind the export files.
type ReportService struct {
	logs repository.LogRepository
	now  func() time.Time
}

func NewReportService(logs repository.LogRepository) *ReportService {
	return &ReportService{logs: logs, now: time.Now}
}

// Build collects the last days days of logs for user.
func (s *ReportService) Build(ctx context.Context, user *model.User, days int) (*export.Report, error) {
	now := s.now()
	r := repository.TimeRange{From: now.AddDate(0, 0, -days), To: now.Add(time.Second)}

	meals, err := s.logs.ListMeals(ctx, user.ID, r)
	if err != nil {
		return nil, apperror.Persistence("loading meals for report", err)
	}
	workouts, err := s.logs.ListWorkouts(ctx, user.ID, r)
	if err != nil {
		return nil, apperror.Persistence("loading workouts for report", err)
	}
	weights, err := s.logs.ListWeights(ctx, user.ID, r)
	if err != nil {
		return nil, apperror.Persistence("loading weights for report", err)
	}

	return &export.Report{
		User:        *user,
		Meals:       meals,
		Workouts:    workouts,
		Weights:     weights,
		GeneratedAt: now,
	}, nil
}
