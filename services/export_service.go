package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/tournament-stats/models"
	"github.com/Dosada05/tournament-stats/storage"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

const (
	XLSXContentType     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	snapshotContentType = "application/json"
	leaderboardSheet    = "Leaderboard"
)

var leaderboardHeader = []interface{}{
	"Rank", "ID", "Name", "Points", "Matches Won", "Tournaments Won", "Win Rate", "Total Earnings", "Last Active",
}

// ExportService renders spreadsheets and stores dashboard snapshots.
type ExportService interface {
	// LeaderboardWorkbook renders one leaderboard page as an xlsx file.
	LeaderboardWorkbook(ctx context.Context, query models.LeaderboardQuery) ([]byte, string, error)
	// CreateDashboardSnapshot fails with ErrSnapshotStorageDisabled when no
	// uploader is configured.
	CreateDashboardSnapshot(ctx context.Context) (*models.DashboardSnapshot, error)
	SnapshotsEnabled() bool
}

type exportService struct {
	leaderboard LeaderboardService
	dashboard   DashboardService
	uploader    storage.FileUploader
	logger      *slog.Logger
	newID       func() string
}

// NewExportService builds the export service. A nil uploader disables snapshots.
func NewExportService(
	leaderboard LeaderboardService,
	dashboard DashboardService,
	uploader storage.FileUploader,
	logger *slog.Logger,
) ExportService {
	return &exportService{
		leaderboard: leaderboard,
		dashboard:   dashboard,
		uploader:    uploader,
		logger:      logger,
		newID:       uuid.NewString,
	}
}

func (s *exportService) SnapshotsEnabled() bool {
	return s.uploader != nil
}

func (s *exportService) LeaderboardWorkbook(ctx context.Context, query models.LeaderboardQuery) ([]byte, string, error) {
	board, err := s.leaderboard.Leaderboard(ctx, query)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), leaderboardSheet); err != nil {
		return nil, "", fmt.Errorf("failed to name leaderboard sheet: %w", err)
	}
	if err := setRow(f, 1, leaderboardHeader); err != nil {
		return nil, "", err
	}
	for i, e := range board.Entries {
		row := []interface{}{
			e.Rank, e.ID, e.Name, e.Points, e.MatchesWon, e.TournamentsWon, e.WinRate, e.TotalEarnings,
			e.LastActive.UTC().Format(time.RFC3339),
		}
		if err := setRow(f, i+2, row); err != nil {
			return nil, "", err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("failed to write leaderboard workbook: %w", err)
	}
	name := fmt.Sprintf("leaderboard_%s_%s.xlsx", board.EntityType, board.Category)
	return buf.Bytes(), name, nil
}

func setRow(f *excelize.File, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("failed to resolve cell for row %d: %w", row, err)
	}
	if err := f.SetSheetRow(leaderboardSheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}

// CreateDashboardSnapshot assembles the dashboard and uploads it as JSON under
// snapshots/YYYY/MM/DD/<uuid>.json.
func (s *exportService) CreateDashboardSnapshot(ctx context.Context) (*models.DashboardSnapshot, error) {
	if s.uploader == nil {
		return nil, ErrSnapshotStorageDisabled
	}

	dashboard, err := s.dashboard.GetDashboard(ctx)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(dashboard)
	if err != nil {
		return nil, fmt.Errorf("failed to encode dashboard snapshot: %w", err)
	}

	key := fmt.Sprintf("snapshots/%s/%s.json", dashboard.GeneratedAt.UTC().Format("2006/01/02"), s.newID())
	uploaded, err := s.uploader.Upload(ctx, key, snapshotContentType, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to upload dashboard snapshot: %w", err)
	}

	s.logger.InfoContext(ctx, "dashboard snapshot stored",
		slog.String("key", uploaded.Key),
		slog.Int("bytes", len(body)),
	)
	return &models.DashboardSnapshot{
		Key:         uploaded.Key,
		URL:         uploaded.Location,
		GeneratedAt: dashboard.GeneratedAt,
	}, nil
}
