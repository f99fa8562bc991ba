package repositories

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appMigrations "github.com/eduhealth/schoolhealth/internal/app/migrations"
	"github.com/eduhealth/schoolhealth/internal/app/models"
)

// testPool connects to SCHOOLHEALTH_TEST_DSN and applies the migrations.
// Tests that need PostgreSQL are skipped when it is not set.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("SCHOOLHEALTH_TEST_DSN")
	if dsn == "" {
		t.Skip("SCHOOLHEALTH_TEST_DSN not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, pool.Ping(ctx))

	require.NoError(t, appMigrations.NewMigrator(pool).MigrateFromDirectory(ctx, "../../../migrations"))
	return pool
}

func newTestCampaign(kind models.CampaignKind) *models.Campaign {
	return &models.Campaign{
		EventID:     uuid.New(),
		Kind:        kind,
		Title:       "Annual health check",
		ScheduledAt: time.Date(2025, 10, 1, 8, 30, 0, 0, time.UTC),
		TargetType:  models.TargetGrade,
		GradeLevels: []int{2},
		CreatedBy:   1,
	}
}

func scheduleRows(campaign *models.Campaign, studentIDs ...int64) []*models.Schedule {
	rows := make([]*models.Schedule, 0, len(studentIDs))
	for _, id := range studentIDs {
		rows = append(rows, &models.Schedule{
			StudentID:   id,
			Title:       campaign.Title,
			ScheduledAt: campaign.ScheduledAt,
			Status:      models.StatusPending,
			CreatedBy:   campaign.CreatedBy,
		})
	}
	return rows
}

func cleanupEvent(t *testing.T, repo *CampaignRepository, kind models.CampaignKind, eventID uuid.UUID) {
	t.Cleanup(func() {
		_, _ = repo.DeleteEvent(context.Background(), kind, eventID)
	})
}

func TestCampaignRepository_CreateWithSchedulesSkipsDuplicates(t *testing.T) {
	repo := NewCampaignRepository(testPool(t))
	ctx := context.Background()

	campaign := newTestCampaign(models.KindHealthExamination)
	cleanupEvent(t, repo, campaign.Kind, campaign.EventID)

	// Student 900002 appears twice; the second row hits the (event_id, student_id) key
	created, err := repo.CreateWithSchedules(ctx, campaign, scheduleRows(campaign, 900001, 900002, 900002))
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.NotZero(t, campaign.ID)
	for _, row := range created {
		assert.NotZero(t, row.ID)
		assert.Equal(t, campaign.ID, row.CampaignID)
		assert.Equal(t, campaign.EventID, row.EventID)
	}

	eventID := campaign.EventID
	rows, err := repo.ListSchedules(ctx, ScheduleFilter{Kind: campaign.Kind, EventID: &eventID})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.Equal(t, models.StatusPending, row.Status)
	}

	stored, err := repo.GetCampaign(ctx, campaign.Kind, eventID)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, stored.GradeLevels)
}

func TestCampaignRepository_DeleteEventIsScoped(t *testing.T) {
	repo := NewCampaignRepository(testPool(t))
	ctx := context.Background()

	first := newTestCampaign(models.KindVaccination)
	second := newTestCampaign(models.KindVaccination)
	cleanupEvent(t, repo, second.Kind, second.EventID)

	_, err := repo.CreateWithSchedules(ctx, first, scheduleRows(first, 910001, 910002, 910003))
	require.NoError(t, err)
	_, err = repo.CreateWithSchedules(ctx, second, scheduleRows(second, 910001, 910002))
	require.NoError(t, err)

	deleted, err := repo.DeleteEvent(ctx, first.Kind, first.EventID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)

	firstID, secondID := first.EventID, second.EventID
	rows, err := repo.ListSchedules(ctx, ScheduleFilter{Kind: first.Kind, EventID: &firstID})
	require.NoError(t, err)
	assert.Empty(t, rows)

	rows, err = repo.ListSchedules(ctx, ScheduleFilter{Kind: second.Kind, EventID: &secondID})
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	_, err = repo.DeleteEvent(ctx, first.Kind, first.EventID)
	assert.Error(t, err)
}
