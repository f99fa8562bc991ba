package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduhealth/schoolhealth/internal/app/models"
	"github.com/eduhealth/schoolhealth/internal/app/models/dto"
	"github.com/eduhealth/schoolhealth/internal/pkg/apperrors"
)

func deliveryRequest(studentID int64) *dto.MedicineDeliveryRequest {
	return &dto.MedicineDeliveryRequest{
		StudentID:    studentID,
		MedicineName: "Amoxicillin",
		Total:        20,
		PerDose:      1,
		PerDay:       2,
		SentAt:       strPtr("2025-10-01"),
		EndAt:        strPtr("2025-10-10"),
	}
}

func TestDeliveryService_ParentSubmitsForOwnChild(t *testing.T) {
	f := newFixture(t, WorkflowOptions{})
	parent, grade2 := f.seedSchool(t)
	stranger := f.addUser(t, models.RoleParent, "stranger@example.com")
	ctx := context.Background()

	d, err := f.deliveries.Create(ctx, parentActor(parent.ID), deliveryRequest(grade2[0].ID))
	require.NoError(t, err)
	assert.Equal(t, models.DeliveryPending, d.Status)
	assert.Equal(t, parent.ID, d.ParentID)

	_, err = f.deliveries.Create(ctx, parentActor(stranger.ID), deliveryRequest(grade2[0].ID))
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	_, err = f.deliveries.GetByID(ctx, parentActor(stranger.ID), d.ID)
	assert.ErrorIs(t, err, apperrors.ErrDeliveryNotFound)

	byParent, err := f.deliveries.GetByParent(ctx, parent.ID)
	require.NoError(t, err)
	assert.Len(t, byParent, 1)
}

func TestDeliveryService_RejectsInconsistentDoses(t *testing.T) {
	f := newFixture(t, WorkflowOptions{})
	parent, grade2 := f.seedSchool(t)

	req := deliveryRequest(grade2[0].ID)
	req.Total = 1
	req.PerDose = 2
	_, err := f.deliveries.Create(context.Background(), parentActor(parent.ID), req)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	req = deliveryRequest(grade2[0].ID)
	req.EndAt = strPtr("2025-09-01")
	_, err = f.deliveries.Create(context.Background(), parentActor(parent.ID), req)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestDeliveryService_StatusChangeNotifiesParent(t *testing.T) {
	f := newFixture(t, WorkflowOptions{NotifyOnStatusChange: true})
	parent, grade2 := f.seedSchool(t)
	ctx := context.Background()

	d, err := f.deliveries.Create(ctx, parentActor(parent.ID), deliveryRequest(grade2[0].ID))
	require.NoError(t, err)

	updated, err := f.deliveries.UpdateStatus(ctx, staffActor(77), d.ID, &dto.DeliveryStatusRequest{Status: "approved"})
	require.NoError(t, err)
	assert.Equal(t, models.DeliveryApproved, updated.Status)
	require.NotNil(t, updated.StaffID)
	assert.Equal(t, int64(77), *updated.StaffID)

	list, err := f.notifications.GetByParent(ctx, parent.ID, false)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.NotificationMedicineDelivery, list[0].Type)

	_, err = f.deliveries.Update(ctx, parentActor(parent.ID), d.ID, deliveryRequest(grade2[0].ID))
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestDeliveryService_StrictTransitions(t *testing.T) {
	f := newFixture(t, WorkflowOptions{StrictTransitions: true})
	parent, grade2 := f.seedSchool(t)
	ctx := context.Background()

	d, err := f.deliveries.Create(ctx, parentActor(parent.ID), deliveryRequest(grade2[0].ID))
	require.NoError(t, err)

	_, err = f.deliveries.UpdateStatus(ctx, staffActor(77), d.ID, &dto.DeliveryStatusRequest{Status: "completed"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)

	_, err = f.deliveries.UpdateStatus(ctx, parentActor(parent.ID), d.ID, &dto.DeliveryStatusRequest{Status: "approved"})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	cancelled, err := f.deliveries.UpdateStatus(ctx, parentActor(parent.ID), d.ID, &dto.DeliveryStatusRequest{Status: "cancelled"})
	require.NoError(t, err)
	assert.Equal(t, models.DeliveryCancelled, cancelled.Status)
	assert.Nil(t, cancelled.StaffID)
}
