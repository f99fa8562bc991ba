package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eduhealth/schoolhealth/internal/app/models"
	"github.com/eduhealth/schoolhealth/internal/db"
	"github.com/eduhealth/schoolhealth/internal/pkg/apperrors"
	"github.com/eduhealth/schoolhealth/internal/pkg/logger"
)

var campaignColumns = []string{
	"id", "event_id", "kind", "title", "description", "scheduled_at", "location", "target_type",
	"grade_levels", "student_id", "examination_type", "vaccine_name", "dose_number", "created_by", "created_at",
}

var scheduleColumns = []string{
	"cs.id", "cs.campaign_id", "cs.event_id", "cs.kind", "cs.student_id", "cs.class_id", "cs.parent_id",
	"cs.title", "cs.scheduled_at", "cs.status", "cs.parent_response_notes", "cs.rejection_reason",
	"cs.health_result", "cs.examination_notes", "cs.recommendations", "cs.follow_up_required",
	"cs.follow_up_date", "cs.created_by", "cs.created_at", "cs.updated_at",
	"COALESCE(s.full_name, '')", "COALESCE(c.name, '')",
}

// ScheduleFilter narrows a schedule listing; Kind is always applied
type ScheduleFilter struct {
	Kind      models.CampaignKind
	EventID   *uuid.UUID
	ClassID   *int64
	StudentID *int64
	ParentID  *int64
}

// StatusUpdate changes a schedule's status. When ExpectedCurrent is set the
// update only applies if the row still has that status.
type StatusUpdate struct {
	Status              models.ScheduleStatus
	ParentResponseNotes *string
	RejectionReason     *string
	ExpectedCurrent     *models.ScheduleStatus
}

// ResultUpdate records an outcome; nil fields keep their stored value
type ResultUpdate struct {
	HealthResult     *string
	ExaminationNotes *string
	Recommendations  *string
	FollowUpRequired *bool
	FollowUpDate     *time.Time
}

// CampaignRepository handles campaigns and their per-student schedules
type CampaignRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewCampaignRepository creates a new CampaignRepository
func NewCampaignRepository(db *pgxpool.Pool) *CampaignRepository {
	return &CampaignRepository{db: db, sb: newBuilder()}
}

func scanCampaign(row rowScanner) (*models.Campaign, error) {
	var c models.Campaign
	err := row.Scan(
		&c.ID, &c.EventID, &c.Kind, &c.Title, &c.Description, &c.ScheduledAt, &c.Location, &c.TargetType,
		&c.GradeLevels, &c.StudentID, &c.ExaminationType, &c.VaccineName, &c.DoseNumber, &c.CreatedBy, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func scanSchedule(row rowScanner) (*models.Schedule, error) {
	var s models.Schedule
	err := row.Scan(
		&s.ID, &s.CampaignID, &s.EventID, &s.Kind, &s.StudentID, &s.ClassID, &s.ParentID,
		&s.Title, &s.ScheduledAt, &s.Status, &s.ParentResponseNotes, &s.RejectionReason,
		&s.HealthResult, &s.ExaminationNotes, &s.Recommendations, &s.FollowUpRequired,
		&s.FollowUpDate, &s.CreatedBy, &s.CreatedAt, &s.UpdatedAt,
		&s.StudentName, &s.ClassName,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateWithSchedules inserts the campaign and one row per student in a single
// transaction. Rows that already exist for (event_id, student_id) are skipped;
// the rows actually inserted are returned.
func (r *CampaignRepository) CreateWithSchedules(ctx context.Context, campaign *models.Campaign, schedules []*models.Schedule) ([]*models.Schedule, error) {
	campaignSQL, campaignArgs, err := r.sb.Insert("campaigns").
		Columns("event_id", "kind", "title", "description", "scheduled_at", "location", "target_type",
			"grade_levels", "student_id", "examination_type", "vaccine_name", "dose_number", "created_by").
		Values(campaign.EventID, campaign.Kind, campaign.Title, campaign.Description, campaign.ScheduledAt,
			campaign.Location, campaign.TargetType, campaign.GradeLevels, campaign.StudentID,
			campaign.ExaminationType, campaign.VaccineName, campaign.DoseNumber, campaign.CreatedBy).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL: %w", err)
	}

	var created []*models.Schedule
	err = db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		created = created[:0]

		if err := tx.QueryRow(ctx, campaignSQL, campaignArgs...).Scan(&campaign.ID, &campaign.CreatedAt); err != nil {
			return fmt.Errorf("error creating campaign: %w", err)
		}

		batch := &pgx.Batch{}
		for _, s := range schedules {
			s.CampaignID = campaign.ID
			s.EventID = campaign.EventID
			s.Kind = campaign.Kind

			sql, args, err := r.sb.Insert("campaign_schedules").
				Columns("campaign_id", "event_id", "kind", "student_id", "class_id", "parent_id",
					"title", "scheduled_at", "status", "created_by").
				Values(s.CampaignID, s.EventID, s.Kind, s.StudentID, s.ClassID, s.ParentID,
					s.Title, s.ScheduledAt, s.Status, s.CreatedBy).
				Suffix("ON CONFLICT (event_id, student_id) DO NOTHING RETURNING id, created_at, updated_at").
				ToSql()
			if err != nil {
				return fmt.Errorf("failed to build SQL: %w", err)
			}
			batch.Queue(sql, args...)
		}

		results := tx.SendBatch(ctx, batch)
		for _, s := range schedules {
			err := results.QueryRow().Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
			if errors.Is(err, pgx.ErrNoRows) {
				continue
			}
			if err != nil {
				results.Close()
				return fmt.Errorf("error creating schedule for student %d: %w", s.StudentID, err)
			}
			created = append(created, s)
		}
		return results.Close()
	})
	if err != nil {
		logger.Error().Err(err).Str("eventID", campaign.EventID.String()).Int("students", len(schedules)).Msg("Error creating campaign")
		return nil, err
	}

	return created, nil
}

// GetCampaign retrieves the campaign of an event
func (r *CampaignRepository) GetCampaign(ctx context.Context, kind models.CampaignKind, eventID uuid.UUID) (*models.Campaign, error) {
	sql, args, err := r.sb.Select(campaignColumns...).From("campaigns").
		Where(squirrel.Eq{"event_id": eventID, "kind": kind}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL: %w", err)
	}

	c, err := scanCampaign(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, mapNoRows(err, apperrors.ErrCampaignNotFound)
	}
	return c, nil
}

// ListCampaigns retrieves the campaigns of a kind, latest scheduled first
func (r *CampaignRepository) ListCampaigns(ctx context.Context, kind models.CampaignKind) ([]*models.Campaign, error) {
	sql, args, err := r.sb.Select(campaignColumns...).From("campaigns").
		Where(squirrel.Eq{"kind": kind}).
		OrderBy("scheduled_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("kind", string(kind)).Msg("Error listing campaigns")
		return nil, fmt.Errorf("error listing campaigns: %w", err)
	}
	defer rows.Close()

	campaigns := []*models.Campaign{}
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning campaign: %w", err)
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, rows.Err()
}

func (r *CampaignRepository) selectSchedules() squirrel.SelectBuilder {
	return r.sb.Select(scheduleColumns...).
		From("campaign_schedules cs").
		LeftJoin("students s ON s.id = cs.student_id").
		LeftJoin("classes c ON c.id = cs.class_id")
}

// ListSchedules retrieves schedules matching the filter
func (r *CampaignRepository) ListSchedules(ctx context.Context, filter ScheduleFilter) ([]*models.Schedule, error) {
	where := squirrel.Eq{"cs.kind": filter.Kind}
	if filter.EventID != nil {
		where["cs.event_id"] = *filter.EventID
	}
	if filter.ClassID != nil {
		where["cs.class_id"] = *filter.ClassID
	}
	if filter.StudentID != nil {
		where["cs.student_id"] = *filter.StudentID
	}
	if filter.ParentID != nil {
		where["cs.parent_id"] = *filter.ParentID
	}

	sql, args, err := r.selectSchedules().Where(where).
		OrderBy("cs.scheduled_at DESC", "c.name", "s.full_name", "cs.id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("kind", string(filter.Kind)).Msg("Error listing schedules")
		return nil, fmt.Errorf("error listing schedules: %w", err)
	}
	defer rows.Close()

	schedules := []*models.Schedule{}
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning schedule: %w", err)
		}
		schedules = append(schedules, s)
	}
	return schedules, rows.Err()
}

// GetSchedule retrieves one schedule row
func (r *CampaignRepository) GetSchedule(ctx context.Context, kind models.CampaignKind, id int64) (*models.Schedule, error) {
	sql, args, err := r.selectSchedules().Where(squirrel.Eq{"cs.id": id, "cs.kind": kind}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL: %w", err)
	}

	s, err := scanSchedule(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, mapNoRows(err, apperrors.ErrScheduleNotFound)
	}
	return s, nil
}

// UpdateScheduleStatus writes the status and the accompanying notes
func (r *CampaignRepository) UpdateScheduleStatus(ctx context.Context, kind models.CampaignKind, id int64, update StatusUpdate) (*models.Schedule, error) {
	where := squirrel.Eq{"id": id, "kind": kind}
	if update.ExpectedCurrent != nil {
		where["status"] = *update.ExpectedCurrent
	}

	q := r.sb.Update("campaign_schedules").
		Set("status", update.Status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(where)
	if update.ParentResponseNotes != nil {
		q = q.Set("parent_response_notes", *update.ParentResponseNotes)
	}
	if update.RejectionReason != nil {
		q = q.Set("rejection_reason", *update.RejectionReason)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("scheduleID", id).Str("status", string(update.Status)).Msg("Error updating schedule status")
		return nil, fmt.Errorf("error updating schedule status: %w", err)
	}

	if tag.RowsAffected() == 0 {
		if _, err := r.GetSchedule(ctx, kind, id); err != nil {
			return nil, err
		}
		// Row exists, so the expected status no longer matched
		return nil, apperrors.ErrInvalidTransition
	}

	return r.GetSchedule(ctx, kind, id)
}

// UpdateScheduleResult records examination or vaccination results
func (r *CampaignRepository) UpdateScheduleResult(ctx context.Context, kind models.CampaignKind, id int64, update ResultUpdate) (*models.Schedule, error) {
	sql, args, err := r.sb.Update("campaign_schedules").
		Set("health_result", squirrel.Expr("COALESCE(?, health_result)", update.HealthResult)).
		Set("examination_notes", squirrel.Expr("COALESCE(?, examination_notes)", update.ExaminationNotes)).
		Set("recommendations", squirrel.Expr("COALESCE(?, recommendations)", update.Recommendations)).
		Set("follow_up_required", squirrel.Expr("COALESCE(?, follow_up_required)", update.FollowUpRequired)).
		Set("follow_up_date", squirrel.Expr("COALESCE(?, follow_up_date)", update.FollowUpDate)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "kind": kind}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("scheduleID", id).Msg("Error updating schedule result")
		return nil, fmt.Errorf("error updating schedule result: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, apperrors.ErrScheduleNotFound
	}

	return r.GetSchedule(ctx, kind, id)
}

// DeleteSchedule removes one row
func (r *CampaignRepository) DeleteSchedule(ctx context.Context, kind models.CampaignKind, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM campaign_schedules WHERE id = $1 AND kind = $2`, id, kind)
	if err != nil {
		logger.Error().Err(err).Int64("scheduleID", id).Msg("Error deleting schedule")
		return fmt.Errorf("error deleting schedule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrScheduleNotFound
	}
	return nil
}

// DeleteEvent removes every row of the event and the campaign itself, returning
// the number of rows removed. Other events are untouched.
func (r *CampaignRepository) DeleteEvent(ctx context.Context, kind models.CampaignKind, eventID uuid.UUID) (int64, error) {
	var deleted int64
	err := db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM campaign_schedules WHERE event_id = $1 AND kind = $2`, eventID, kind)
		if err != nil {
			return fmt.Errorf("error deleting schedules: %w", err)
		}
		deleted = tag.RowsAffected()

		tag, err = tx.Exec(ctx, `DELETE FROM campaigns WHERE event_id = $1 AND kind = $2`, eventID, kind)
		if err != nil {
			return fmt.Errorf("error deleting campaign: %w", err)
		}
		if tag.RowsAffected() == 0 && deleted == 0 {
			return apperrors.ErrCampaignNotFound
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrCampaignNotFound) {
			logger.Error().Err(err).Str("eventID", eventID.String()).Msg("Error deleting event")
		}
		return 0, err
	}
	return deleted, nil
}
