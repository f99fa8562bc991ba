package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduhealth/schoolhealth/internal/app/models"
	"github.com/eduhealth/schoolhealth/internal/app/models/dto"
	"github.com/eduhealth/schoolhealth/internal/app/repositories/memstore"
	"github.com/eduhealth/schoolhealth/internal/pkg/apperrors"
)

func TestNotificationService_CreateVisibleToParentAsUnread(t *testing.T) {
	f := newFixture(t, WorkflowOptions{})
	parent, grade2 := f.seedSchool(t)
	ctx := context.Background()

	created, err := f.notifications.Create(ctx, &dto.CreateNotificationRequest{
		ParentID:  parent.ID,
		StudentID: &grade2[0].ID,
		Type:      "MEDICAL_EVENT",
		Title:     "Nosebleed",
		Content:   "Your child had a nosebleed during PE and is fine now.",
	})
	require.NoError(t, err)
	assert.Equal(t, models.NotificationMedicalEvent, created.Type)

	list, err := f.notifications.GetByParent(ctx, parent.ID, false)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)
	assert.False(t, list[0].IsRead)

	byStudent, err := f.notifications.GetByStudent(ctx, grade2[0].ID)
	require.NoError(t, err)
	assert.Len(t, byStudent, 1)

	require.Len(t, f.dispatched.sent, 1)
	assert.Equal(t, created.ID, f.dispatched.sent[0].ID)
}

func TestNotificationService_CreateChecksReferences(t *testing.T) {
	f := newFixture(t, WorkflowOptions{})
	staff := f.addUser(t, models.RoleStaff, "nurse@example.com")
	parent := f.addUser(t, models.RoleParent, "p@example.com")
	ctx := context.Background()

	_, err := f.notifications.Create(ctx, &dto.CreateNotificationRequest{ParentID: staff.ID, Type: "GENERAL", Title: "t", Content: "c"})
	assert.ErrorIs(t, err, apperrors.ErrParentNotFound)

	_, err = f.notifications.Create(ctx, &dto.CreateNotificationRequest{ParentID: 9999, Type: "GENERAL", Title: "t", Content: "c"})
	assert.ErrorIs(t, err, apperrors.ErrParentNotFound)

	missing := int64(9999)
	_, err = f.notifications.Create(ctx, &dto.CreateNotificationRequest{ParentID: parent.ID, StudentID: &missing, Type: "GENERAL", Title: "t", Content: "c"})
	assert.ErrorIs(t, err, apperrors.ErrStudentNotFound)
}

func TestNotificationService_MarkAsReadIsIdempotent(t *testing.T) {
	f := newFixture(t, WorkflowOptions{})
	parent := f.addUser(t, models.RoleParent, "p@example.com")
	ctx := context.Background()

	n, err := f.notifications.Create(ctx, &dto.CreateNotificationRequest{ParentID: parent.ID, Type: "GENERAL", Title: "t", Content: "c"})
	require.NoError(t, err)

	first, err := f.notifications.MarkAsRead(ctx, parentActor(parent.ID), n.ID)
	require.NoError(t, err)
	assert.True(t, first.IsRead)

	second, err := f.notifications.MarkAsRead(ctx, parentActor(parent.ID), n.ID)
	require.NoError(t, err)
	assert.True(t, second.IsRead)
	assert.Equal(t, first.UpdatedAt, second.UpdatedAt)

	_, err = f.notifications.MarkAsRead(ctx, staffActor(1), 424242)
	assert.ErrorIs(t, err, apperrors.ErrNotificationNotFound)
}

func TestNotificationService_ParentScoping(t *testing.T) {
	f := newFixture(t, WorkflowOptions{})
	owner := f.addUser(t, models.RoleParent, "owner@example.com")
	other := f.addUser(t, models.RoleParent, "other@example.com")
	ctx := context.Background()

	n, err := f.notifications.Create(ctx, &dto.CreateNotificationRequest{ParentID: owner.ID, Type: "GENERAL", Title: "t", Content: "c"})
	require.NoError(t, err)

	_, err = f.notifications.GetByID(ctx, parentActor(other.ID), n.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotificationNotFound)
	assert.ErrorIs(t, f.notifications.MarkAsReadForParent(ctx, other.ID, n.ID), apperrors.ErrNotificationNotFound)
	assert.ErrorIs(t, f.notifications.Delete(ctx, parentActor(other.ID), n.ID), apperrors.ErrNotificationNotFound)

	require.NoError(t, f.notifications.MarkAsReadForParent(ctx, owner.ID, n.ID))
	got, err := f.notifications.GetByID(ctx, parentActor(owner.ID), n.ID)
	require.NoError(t, err)
	assert.True(t, got.IsRead)

	require.NoError(t, f.notifications.Delete(ctx, parentActor(owner.ID), n.ID))
}

func TestNotificationService_UnreadCountAndMarkAll(t *testing.T) {
	f := newFixture(t, WorkflowOptions{})
	parent := f.addUser(t, models.RoleParent, "p@example.com")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := f.notifications.Create(ctx, &dto.CreateNotificationRequest{ParentID: parent.ID, Type: "GENERAL", Title: "t", Content: "c"})
		require.NoError(t, err)
	}

	count, err := f.notifications.CountUnread(ctx, parent.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	changed, err := f.notifications.MarkAllAsRead(ctx, parent.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), changed)

	unread, err := f.notifications.GetByParent(ctx, parent.ID, true)
	require.NoError(t, err)
	assert.Empty(t, unread)

	changed, err = f.notifications.MarkAllAsRead(ctx, parent.ID)
	require.NoError(t, err)
	assert.Zero(t, changed)
}

type recordingPusher struct {
	mu     sync.Mutex
	pushed []int64
}

func (p *recordingPusher) Push(userID int64, _ string, _ interface{}) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pushed = append(p.pushed, userID)
	return true
}

func (p *recordingPusher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pushed)
}

type recordingMailer struct {
	mu sync.Mutex
	to []string
}

func (m *recordingMailer) SendNotificationEmail(toEmail, _, _, _, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.to = append(m.to, toEmail)
	return nil
}

func (m *recordingMailer) recipients() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.to...)
}

func TestNotificationDispatcher_PushesAndEmails(t *testing.T) {
	store := memstore.New()
	parent := &models.User{Email: "parent@example.com", FullName: "Parent", RoleType: models.RoleParent, IsActive: true}
	require.NoError(t, store.Users().Create(context.Background(), parent))

	pusher := &recordingPusher{}
	mailer := &recordingMailer{}
	dispatcher := NewNotificationDispatcher(pusher, mailer, store.Users(), zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go dispatcher.Run(ctx)

	service := NewNotificationService(store.Notifications(), store.Users(), store.Students(), dispatcher, zerolog.Nop())
	_, err := service.Create(ctx, &dto.CreateNotificationRequest{ParentID: parent.ID, Type: "GENERAL", Title: "Hello", Content: "World"})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return pusher.count() == 1 && len(mailer.recipients()) == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"parent@example.com"}, mailer.recipients())
}
