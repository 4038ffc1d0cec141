package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/sorties-app/sorties-api/internal/repository"
)

// Export filenames served to the admin panel.
const (
	UsersExportFilename      = "export_utilisateurs.csv"
	ActivitiesExportFilename = "export_activites.csv"
)

// utf8BOM prefixes every export so spreadsheet tools detect the encoding.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ExportService produces flat CSV exports from store snapshots.
type ExportService interface {
	ExportUsers(ctx context.Context) ([]byte, error)
	ExportActivities(ctx context.Context) ([]byte, error)
}

type exportService struct {
	users      repository.UserRepository
	activities repository.ActivityRepository
	logger     zerolog.Logger
}

// NewExportService constructs the CSV export service.
func NewExportService(users repository.UserRepository, activities repository.ActivityRepository, logger zerolog.Logger) ExportService {
	return &exportService{
		users:      users,
		activities: activities,
		logger:     logger.With().Str("component", "export_service").Logger(),
	}
}

func (s *exportService) ExportUsers(ctx context.Context) ([]byte, error) {
	users, err := s.users.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	columns := []string{"id", "name", "email", "role", "status", "phone", "created_at"}
	rows := make([][]string, 0, len(users))
	for _, user := range users {
		rows = append(rows, []string{
			strconv.FormatUint(uint64(user.ID), 10),
			user.Name,
			user.Email,
			user.Role,
			user.Status,
			user.Phone,
			user.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
		})
	}

	s.logger.Info().Int("rows", len(rows)).Msg("exported users")
	return writeCSV(columns, rows)
}

func (s *exportService) ExportActivities(ctx context.Context) ([]byte, error) {
	activities, err := s.activities.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	columns := []string{"id", "title", "location", "category", "date", "status", "organizer", "participants", "comments", "created_at"}
	rows := make([][]string, 0, len(activities))
	for _, activity := range activities {
		rows = append(rows, []string{
			strconv.FormatUint(uint64(activity.ID), 10),
			activity.Title,
			activity.Location,
			activity.Category,
			activity.Date.UTC().Format("2006-01-02 15:04:05"),
			activity.Status,
			activity.OrganizerName,
			fmt.Sprintf("%d/%d", len(activity.Participants), activity.MaxParticipants),
			strconv.Itoa(len(activity.Comments)),
			activity.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
		})
	}

	s.logger.Info().Int("rows", len(rows)).Msg("exported activities")
	return writeCSV(columns, rows)
}

// writeCSV emits a BOM-prefixed document. encoding/csv wraps any field
// containing a comma, quote or newline in quotes and doubles the inner
// quotes, which is exactly the escaping contract the exports promise.
func writeCSV(columns []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(utf8BOM)

	writer := csv.NewWriter(&buf)
	if err := writer.Write(columns); err != nil {
		return nil, err
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
