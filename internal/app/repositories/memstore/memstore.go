// Package memstore keeps every entity in memory. It mirrors the constraints of
// the PostgreSQL schema (unique keys, no-cascade deletes, idempotent fan-out)
// and backs service and handler tests.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/eduhealth/schoolhealth/internal/app/models"
	"github.com/eduhealth/schoolhealth/internal/app/repositories"
	"github.com/eduhealth/schoolhealth/internal/pkg/apperrors"
)

// Store holds all tables behind one lock
type Store struct {
	mu sync.Mutex
	id int64

	users         map[int64]*models.User
	classes       map[int64]*models.Class
	students      map[int64]*models.Student
	records       map[int64]*models.HealthRecord
	treatments    map[int64]*models.TreatmentHistory
	medicines     map[int64]*models.Medicine
	deliveries    map[int64]*models.MedicineDelivery
	campaigns     map[int64]*models.Campaign
	schedules     map[int64]*models.Schedule
	notifications map[int64]*models.Notification
	feedbacks     map[int64]*models.Feedback

	// FailNotifications makes notification inserts fail
	FailNotifications bool
}

// New creates an empty store
func New() *Store {
	return &Store{
		users:         map[int64]*models.User{},
		classes:       map[int64]*models.Class{},
		students:      map[int64]*models.Student{},
		records:       map[int64]*models.HealthRecord{},
		treatments:    map[int64]*models.TreatmentHistory{},
		medicines:     map[int64]*models.Medicine{},
		deliveries:    map[int64]*models.MedicineDelivery{},
		campaigns:     map[int64]*models.Campaign{},
		schedules:     map[int64]*models.Schedule{},
		notifications: map[int64]*models.Notification{},
		feedbacks:     map[int64]*models.Feedback{},
	}
}

func (s *Store) nextID() int64 {
	s.id++
	return s.id
}

func sortByID[T any](items []T, id func(T) int64) []T {
	sort.Slice(items, func(i, j int) bool { return id(items[i]) < id(items[j]) })
	return items
}

// Users returns the user store
func (s *Store) Users() *Users { return &Users{s} }

// Classes returns the class store
func (s *Store) Classes() *Classes { return &Classes{s} }

// Students returns the student store
func (s *Store) Students() *Students { return &Students{s} }

// HealthRecords returns the health record store
func (s *Store) HealthRecords() *HealthRecords { return &HealthRecords{s} }

// Treatments returns the treatment history store
func (s *Store) Treatments() *Treatments { return &Treatments{s} }

// Medicines returns the medicine store
func (s *Store) Medicines() *Medicines { return &Medicines{s} }

// Deliveries returns the medicine delivery store
func (s *Store) Deliveries() *Deliveries { return &Deliveries{s} }

// Campaigns returns the campaign store
func (s *Store) Campaigns() *Campaigns { return &Campaigns{s} }

// Notifications returns the notification store
func (s *Store) Notifications() *Notifications { return &Notifications{s} }

// Feedbacks returns the feedback store
func (s *Store) Feedbacks() *Feedbacks { return &Feedbacks{s} }

// Users implements the user store
type Users struct{ s *Store }

func (r *Users) Create(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user.Email = strings.ToLower(user.Email)
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return apperrors.ErrEmailAlreadyExists
		}
	}
	user.ID = r.s.nextID()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	r.s.users[user.ID] = &cp
	return nil
}

func (r *Users) GetByID(_ context.Context, id int64) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *Users) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == strings.ToLower(email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *Users) ListByRole(_ context.Context, role models.RoleType) ([]*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*models.User{}
	for _, u := range r.s.users {
		if u.RoleType == role {
			cp := *u
			out = append(out, &cp)
		}
	}
	return sortByID(out, func(u *models.User) int64 { return u.ID }), nil
}

func (r *Users) Update(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[user.ID]; !ok {
		return apperrors.ErrUserNotFound
	}
	user.Email = strings.ToLower(user.Email)
	for _, u := range r.s.users {
		if u.ID != user.ID && u.Email == user.Email {
			return apperrors.ErrEmailAlreadyExists
		}
	}
	user.UpdatedAt = time.Now()
	cp := *user
	r.s.users[user.ID] = &cp
	return nil
}

func (r *Users) UpdateLastLogin(_ context.Context, userID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u, ok := r.s.users[userID]; ok {
		now := time.Now()
		u.LastLoginAt = &now
	}
	return nil
}

func (r *Users) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return apperrors.ErrUserNotFound
	}
	delete(r.s.users, id)
	// students.parent_id is ON DELETE SET NULL
	for _, st := range r.s.students {
		if st.ParentID != nil && *st.ParentID == id {
			st.ParentID = nil
		}
	}
	return nil
}

// Classes implements the class store
type Classes struct{ s *Store }

func (r *Classes) Create(_ context.Context, class *models.Class) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.classes {
		if strings.EqualFold(c.Name, class.Name) {
			return apperrors.ErrClassAlreadyExists
		}
	}
	class.ID = r.s.nextID()
	class.CreatedAt = time.Now()
	class.UpdatedAt = class.CreatedAt
	cp := *class
	r.s.classes[class.ID] = &cp
	return nil
}

func (r *Classes) GetByID(_ context.Context, id int64) (*models.Class, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.classes[id]
	if !ok {
		return nil, apperrors.ErrClassNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *Classes) List(_ context.Context) ([]*models.Class, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*models.Class{}
	for _, c := range r.s.classes {
		cp := *c
		out = append(out, &cp)
	}
	return sortByID(out, func(c *models.Class) int64 { return c.ID }), nil
}

func (r *Classes) Update(_ context.Context, class *models.Class) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	old, ok := r.s.classes[class.ID]
	if !ok {
		return apperrors.ErrClassNotFound
	}
	for _, c := range r.s.classes {
		if c.ID != class.ID && strings.EqualFold(c.Name, class.Name) {
			return apperrors.ErrClassAlreadyExists
		}
	}
	class.CreatedAt = old.CreatedAt
	class.UpdatedAt = time.Now()
	cp := *class
	r.s.classes[class.ID] = &cp
	return nil
}

func (r *Classes) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.classes[id]; !ok {
		return apperrors.ErrClassNotFound
	}
	delete(r.s.classes, id)
	for _, st := range r.s.students {
		if st.ClassID != nil && *st.ClassID == id {
			st.ClassID = nil
		}
	}
	return nil
}

// Students implements the student store
type Students struct{ s *Store }

// withClass copies a student and fills the joined class columns. Caller holds the lock.
func (r *Students) withClass(st *models.Student) *models.Student {
	cp := *st
	cp.ClassName, cp.GradeLevel = "", 0
	if cp.ClassID != nil {
		if c, ok := r.s.classes[*cp.ClassID]; ok {
			cp.ClassName = c.Name
			cp.GradeLevel = c.GradeLevel
		}
	}
	return &cp
}

func (r *Students) checkUnique(st *models.Student) error {
	for _, other := range r.s.students {
		if other.ID != st.ID && other.StudentCode == st.StudentCode {
			return apperrors.ErrStudentCodeAlreadyExists
		}
	}
	return nil
}

func (r *Students) Create(_ context.Context, student *models.Student) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.checkUnique(student); err != nil {
		return err
	}
	student.ID = r.s.nextID()
	student.CreatedAt = time.Now()
	student.UpdatedAt = student.CreatedAt
	cp := *student
	r.s.students[student.ID] = &cp
	return nil
}

func (r *Students) GetByID(_ context.Context, id int64) (*models.Student, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	st, ok := r.s.students[id]
	if !ok {
		return nil, apperrors.ErrStudentNotFound
	}
	return r.withClass(st), nil
}

func (r *Students) filter(keep func(*models.Student) bool) []*models.Student {
	out := []*models.Student{}
	for _, st := range r.s.students {
		joined := r.withClass(st)
		if keep(joined) {
			out = append(out, joined)
		}
	}
	return sortByID(out, func(st *models.Student) int64 { return st.ID })
}

func (r *Students) List(_ context.Context, f repositories.StudentFilter) ([]*models.Student, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	search := strings.ToLower(f.Search)
	all := r.filter(func(st *models.Student) bool {
		if f.ClassID != nil && (st.ClassID == nil || *st.ClassID != *f.ClassID) {
			return false
		}
		if f.ParentID != nil && (st.ParentID == nil || *st.ParentID != *f.ParentID) {
			return false
		}
		if search != "" && !strings.Contains(strings.ToLower(st.FullName), search) &&
			!strings.Contains(strings.ToLower(st.StudentCode), search) {
			return false
		}
		return true
	})

	total := int64(len(all))
	start := int(f.Offset)
	if start > len(all) {
		start = len(all)
	}
	end := len(all)
	if f.Limit > 0 && start+int(f.Limit) < end {
		end = start + int(f.Limit)
	}
	return all[start:end], total, nil
}

func (r *Students) ListByParent(_ context.Context, parentID int64) ([]*models.Student, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.filter(func(st *models.Student) bool {
		return st.ParentID != nil && *st.ParentID == parentID
	}), nil
}

func (r *Students) ListByClass(_ context.Context, classID int64) ([]*models.Student, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.filter(func(st *models.Student) bool {
		return st.ClassID != nil && *st.ClassID == classID
	}), nil
}

func (r *Students) ListByGradeLevels(_ context.Context, gradeLevels []int) ([]*models.Student, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	grades := make(map[int]bool, len(gradeLevels))
	for _, g := range gradeLevels {
		grades[g] = true
	}
	return r.filter(func(st *models.Student) bool {
		return st.ClassID != nil && grades[st.GradeLevel]
	}), nil
}

func (r *Students) Update(_ context.Context, student *models.Student) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	old, ok := r.s.students[student.ID]
	if !ok {
		return apperrors.ErrStudentNotFound
	}
	if err := r.checkUnique(student); err != nil {
		return err
	}
	student.CreatedAt = old.CreatedAt
	student.UpdatedAt = time.Now()
	cp := *student
	r.s.students[student.ID] = &cp
	return nil
}

func (r *Students) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.students[id]; !ok {
		return apperrors.ErrStudentNotFound
	}
	delete(r.s.students, id)
	return nil
}

// HealthRecords implements the health record store
type HealthRecords struct{ s *Store }

func (r *HealthRecords) Create(_ context.Context, record *models.HealthRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.records {
		if other.StudentID == record.StudentID {
			return apperrors.ErrHealthRecordAlreadyExists
		}
	}
	record.ID = r.s.nextID()
	record.CreatedAt = time.Now()
	record.UpdatedAt = record.CreatedAt
	cp := *record
	r.s.records[record.ID] = &cp
	return nil
}

func (r *HealthRecords) GetByID(_ context.Context, id int64) (*models.HealthRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.records[id]
	if !ok {
		return nil, apperrors.ErrHealthRecordNotFound
	}
	cp := *rec
	return &cp, nil
}

func (r *HealthRecords) GetByStudentID(_ context.Context, studentID int64) (*models.HealthRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, rec := range r.s.records {
		if rec.StudentID == studentID {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, apperrors.ErrHealthRecordNotFound
}

func (r *HealthRecords) List(_ context.Context) ([]*models.HealthRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*models.HealthRecord{}
	for _, rec := range r.s.records {
		cp := *rec
		out = append(out, &cp)
	}
	return sortByID(out, func(h *models.HealthRecord) int64 { return h.ID }), nil
}

func (r *HealthRecords) Update(_ context.Context, record *models.HealthRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.records[record.ID]; !ok {
		return apperrors.ErrHealthRecordNotFound
	}
	record.UpdatedAt = time.Now()
	cp := *record
	r.s.records[record.ID] = &cp
	return nil
}

func (r *HealthRecords) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.records[id]; !ok {
		return apperrors.ErrHealthRecordNotFound
	}
	delete(r.s.records, id)
	for _, t := range r.s.treatments {
		if t.RecordID != nil && *t.RecordID == id {
			t.RecordID = nil
		}
	}
	return nil
}

// Treatments implements the treatment history store
type Treatments struct{ s *Store }

func (r *Treatments) Create(_ context.Context, entry *models.TreatmentHistory) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	entry.ID = r.s.nextID()
	entry.CreatedAt = time.Now()
	cp := *entry
	r.s.treatments[entry.ID] = &cp
	return nil
}

func (r *Treatments) GetByID(_ context.Context, id int64) (*models.TreatmentHistory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.treatments[id]
	if !ok {
		return nil, apperrors.ErrTreatmentNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *Treatments) List(_ context.Context, studentID *int64) ([]*models.TreatmentHistory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*models.TreatmentHistory{}
	for _, t := range r.s.treatments {
		if studentID == nil || t.StudentID == *studentID {
			cp := *t
			out = append(out, &cp)
		}
	}
	return sortByID(out, func(t *models.TreatmentHistory) int64 { return t.ID }), nil
}

func (r *Treatments) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.treatments[id]; !ok {
		return apperrors.ErrTreatmentNotFound
	}
	delete(r.s.treatments, id)
	return nil
}

// Medicines implements the medicine store
type Medicines struct{ s *Store }

func (r *Medicines) unique(m *models.Medicine) error {
	for _, other := range r.s.medicines {
		if other.ID != m.ID && strings.EqualFold(other.Name, m.Name) {
			return apperrors.ErrMedicineAlreadyExists
		}
	}
	return nil
}

func (r *Medicines) Create(_ context.Context, medicine *models.Medicine) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.unique(medicine); err != nil {
		return err
	}
	medicine.ID = r.s.nextID()
	medicine.CreatedAt = time.Now()
	medicine.UpdatedAt = medicine.CreatedAt
	cp := *medicine
	r.s.medicines[medicine.ID] = &cp
	return nil
}

func (r *Medicines) GetByID(_ context.Context, id int64) (*models.Medicine, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.medicines[id]
	if !ok {
		return nil, apperrors.ErrMedicineNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *Medicines) List(_ context.Context) ([]*models.Medicine, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*models.Medicine{}
	for _, m := range r.s.medicines {
		cp := *m
		out = append(out, &cp)
	}
	return sortByID(out, func(m *models.Medicine) int64 { return m.ID }), nil
}

func (r *Medicines) Update(_ context.Context, medicine *models.Medicine) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	old, ok := r.s.medicines[medicine.ID]
	if !ok {
		return apperrors.ErrMedicineNotFound
	}
	if err := r.unique(medicine); err != nil {
		return err
	}
	medicine.CreatedAt = old.CreatedAt
	medicine.UpdatedAt = time.Now()
	cp := *medicine
	r.s.medicines[medicine.ID] = &cp
	return nil
}

func (r *Medicines) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.medicines[id]; !ok {
		return apperrors.ErrMedicineNotFound
	}
	delete(r.s.medicines, id)
	return nil
}

// Deliveries implements the medicine delivery store
type Deliveries struct{ s *Store }

func (r *Deliveries) Create(_ context.Context, d *models.MedicineDelivery) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d.ID = r.s.nextID()
	d.CreatedAt = time.Now()
	d.UpdatedAt = d.CreatedAt
	cp := *d
	r.s.deliveries[d.ID] = &cp
	return nil
}

func (r *Deliveries) GetByID(_ context.Context, id int64) (*models.MedicineDelivery, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.deliveries[id]
	if !ok {
		return nil, apperrors.ErrDeliveryNotFound
	}
	cp := *d
	return &cp, nil
}

func (r *Deliveries) list(keep func(*models.MedicineDelivery) bool) []*models.MedicineDelivery {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*models.MedicineDelivery{}
	for _, d := range r.s.deliveries {
		if keep(d) {
			cp := *d
			out = append(out, &cp)
		}
	}
	return sortByID(out, func(d *models.MedicineDelivery) int64 { return d.ID })
}

func (r *Deliveries) ListAll(_ context.Context) ([]*models.MedicineDelivery, error) {
	return r.list(func(*models.MedicineDelivery) bool { return true }), nil
}

func (r *Deliveries) ListByStudent(_ context.Context, studentID int64) ([]*models.MedicineDelivery, error) {
	return r.list(func(d *models.MedicineDelivery) bool { return d.StudentID == studentID }), nil
}

func (r *Deliveries) ListByParent(_ context.Context, parentID int64) ([]*models.MedicineDelivery, error) {
	return r.list(func(d *models.MedicineDelivery) bool { return d.ParentID == parentID }), nil
}

func (r *Deliveries) Update(_ context.Context, d *models.MedicineDelivery) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	old, ok := r.s.deliveries[d.ID]
	if !ok {
		return apperrors.ErrDeliveryNotFound
	}
	d.CreatedAt = old.CreatedAt
	d.UpdatedAt = time.Now()
	cp := *d
	r.s.deliveries[d.ID] = &cp
	return nil
}

func (r *Deliveries) UpdateStatus(_ context.Context, id int64, status models.DeliveryStatus, staffID *int64, reason *string) (*models.MedicineDelivery, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.deliveries[id]
	if !ok {
		return nil, apperrors.ErrDeliveryNotFound
	}
	d.Status = status
	if staffID != nil {
		v := *staffID
		d.StaffID = &v
	}
	if reason != nil {
		v := *reason
		d.Reason = &v
	}
	d.UpdatedAt = time.Now()
	cp := *d
	return &cp, nil
}

func (r *Deliveries) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.deliveries[id]; !ok {
		return apperrors.ErrDeliveryNotFound
	}
	delete(r.s.deliveries, id)
	return nil
}

// Campaigns implements the campaign store
type Campaigns struct{ s *Store }

// joined copies a schedule and fills the student and class names. Caller holds the lock.
func (r *Campaigns) joined(row *models.Schedule) *models.Schedule {
	cp := *row
	cp.StudentName, cp.ClassName = "", ""
	if st, ok := r.s.students[cp.StudentID]; ok {
		cp.StudentName = st.FullName
	}
	if cp.ClassID != nil {
		if c, ok := r.s.classes[*cp.ClassID]; ok {
			cp.ClassName = c.Name
		}
	}
	return &cp
}

func (r *Campaigns) CreateWithSchedules(_ context.Context, campaign *models.Campaign, schedules []*models.Schedule) ([]*models.Schedule, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	campaign.ID = r.s.nextID()
	campaign.CreatedAt = time.Now()
	c := *campaign
	r.s.campaigns[campaign.ID] = &c

	taken := map[int64]bool{}
	for _, row := range r.s.schedules {
		if row.EventID == campaign.EventID {
			taken[row.StudentID] = true
		}
	}

	created := []*models.Schedule{}
	for _, row := range schedules {
		if taken[row.StudentID] {
			continue
		}
		taken[row.StudentID] = true
		row.ID = r.s.nextID()
		row.CampaignID = campaign.ID
		row.EventID = campaign.EventID
		row.Kind = campaign.Kind
		row.CreatedAt = campaign.CreatedAt
		row.UpdatedAt = campaign.CreatedAt
		cp := *row
		r.s.schedules[row.ID] = &cp
		created = append(created, row)
	}
	return created, nil
}

func (r *Campaigns) GetCampaign(_ context.Context, kind models.CampaignKind, eventID uuid.UUID) (*models.Campaign, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.campaigns {
		if c.Kind == kind && c.EventID == eventID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, apperrors.ErrCampaignNotFound
}

func (r *Campaigns) ListCampaigns(_ context.Context, kind models.CampaignKind) ([]*models.Campaign, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*models.Campaign{}
	for _, c := range r.s.campaigns {
		if c.Kind == kind {
			cp := *c
			out = append(out, &cp)
		}
	}
	return sortByID(out, func(c *models.Campaign) int64 { return c.ID }), nil
}

func (r *Campaigns) ListSchedules(_ context.Context, f repositories.ScheduleFilter) ([]*models.Schedule, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*models.Schedule{}
	for _, row := range r.s.schedules {
		switch {
		case row.Kind != f.Kind:
			continue
		case f.EventID != nil && row.EventID != *f.EventID:
			continue
		case f.ClassID != nil && (row.ClassID == nil || *row.ClassID != *f.ClassID):
			continue
		case f.StudentID != nil && row.StudentID != *f.StudentID:
			continue
		case f.ParentID != nil && (row.ParentID == nil || *row.ParentID != *f.ParentID):
			continue
		}
		out = append(out, r.joined(row))
	}
	return sortByID(out, func(s *models.Schedule) int64 { return s.ID }), nil
}

func (r *Campaigns) GetSchedule(_ context.Context, kind models.CampaignKind, id int64) (*models.Schedule, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.schedules[id]
	if !ok || row.Kind != kind {
		return nil, apperrors.ErrScheduleNotFound
	}
	return r.joined(row), nil
}

func (r *Campaigns) UpdateScheduleStatus(_ context.Context, kind models.CampaignKind, id int64, u repositories.StatusUpdate) (*models.Schedule, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.schedules[id]
	if !ok || row.Kind != kind {
		return nil, apperrors.ErrScheduleNotFound
	}
	if u.ExpectedCurrent != nil && row.Status != *u.ExpectedCurrent {
		return nil, apperrors.ErrInvalidTransition
	}
	row.Status = u.Status
	if u.ParentResponseNotes != nil {
		row.ParentResponseNotes = u.ParentResponseNotes
	}
	if u.RejectionReason != nil {
		row.RejectionReason = u.RejectionReason
	}
	row.UpdatedAt = time.Now()
	return r.joined(row), nil
}

func (r *Campaigns) UpdateScheduleResult(_ context.Context, kind models.CampaignKind, id int64, u repositories.ResultUpdate) (*models.Schedule, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.schedules[id]
	if !ok || row.Kind != kind {
		return nil, apperrors.ErrScheduleNotFound
	}
	if u.HealthResult != nil {
		row.HealthResult = u.HealthResult
	}
	if u.ExaminationNotes != nil {
		row.ExaminationNotes = u.ExaminationNotes
	}
	if u.Recommendations != nil {
		row.Recommendations = u.Recommendations
	}
	if u.FollowUpRequired != nil {
		row.FollowUpRequired = *u.FollowUpRequired
	}
	if u.FollowUpDate != nil {
		row.FollowUpDate = u.FollowUpDate
	}
	row.UpdatedAt = time.Now()
	return r.joined(row), nil
}

func (r *Campaigns) DeleteSchedule(_ context.Context, kind models.CampaignKind, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.schedules[id]
	if !ok || row.Kind != kind {
		return apperrors.ErrScheduleNotFound
	}
	delete(r.s.schedules, id)
	return nil
}

func (r *Campaigns) DeleteEvent(_ context.Context, kind models.CampaignKind, eventID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var deleted int64
	for id, row := range r.s.schedules {
		if row.Kind == kind && row.EventID == eventID {
			delete(r.s.schedules, id)
			deleted++
		}
	}
	found := false
	for id, c := range r.s.campaigns {
		if c.Kind == kind && c.EventID == eventID {
			delete(r.s.campaigns, id)
			found = true
		}
	}
	if !found && deleted == 0 {
		return 0, apperrors.ErrCampaignNotFound
	}
	return deleted, nil
}

// Notifications implements the notification store
type Notifications struct{ s *Store }

func (r *Notifications) Create(_ context.Context, n *models.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailNotifications {
		return apperrors.ErrConflict
	}
	n.ID = r.s.nextID()
	n.IsRead = false
	n.CreatedAt = time.Now()
	n.UpdatedAt = n.CreatedAt
	cp := *n
	r.s.notifications[n.ID] = &cp
	return nil
}

func (r *Notifications) GetByID(_ context.Context, id int64) (*models.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n, ok := r.s.notifications[id]
	if !ok {
		return nil, apperrors.ErrNotificationNotFound
	}
	cp := *n
	return &cp, nil
}

func (r *Notifications) list(keep func(*models.Notification) bool) []*models.Notification {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*models.Notification{}
	for _, n := range r.s.notifications {
		if keep(n) {
			cp := *n
			out = append(out, &cp)
		}
	}
	return sortByID(out, func(n *models.Notification) int64 { return n.ID })
}

func (r *Notifications) ListAll(_ context.Context) ([]*models.Notification, error) {
	return r.list(func(*models.Notification) bool { return true }), nil
}

func (r *Notifications) ListByParent(_ context.Context, parentID int64, unreadOnly bool) ([]*models.Notification, error) {
	return r.list(func(n *models.Notification) bool {
		return n.ParentID == parentID && (!unreadOnly || !n.IsRead)
	}), nil
}

func (r *Notifications) ListByStudent(_ context.Context, studentID int64) ([]*models.Notification, error) {
	return r.list(func(n *models.Notification) bool {
		return n.StudentID != nil && *n.StudentID == studentID
	}), nil
}

func (r *Notifications) MarkAsRead(_ context.Context, id int64) (*models.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n, ok := r.s.notifications[id]
	if !ok {
		return nil, apperrors.ErrNotificationNotFound
	}
	if !n.IsRead {
		n.IsRead = true
		n.UpdatedAt = time.Now()
	}
	cp := *n
	return &cp, nil
}

func (r *Notifications) MarkAllAsRead(_ context.Context, parentID int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var changed int64
	for _, n := range r.s.notifications {
		if n.ParentID == parentID && !n.IsRead {
			n.IsRead = true
			n.UpdatedAt = time.Now()
			changed++
		}
	}
	return changed, nil
}

func (r *Notifications) CountUnread(_ context.Context, parentID int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var count int64
	for _, n := range r.s.notifications {
		if n.ParentID == parentID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *Notifications) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.notifications[id]; !ok {
		return apperrors.ErrNotificationNotFound
	}
	delete(r.s.notifications, id)
	return nil
}

// Feedbacks implements the feedback store
type Feedbacks struct{ s *Store }

func (r *Feedbacks) Create(_ context.Context, f *models.Feedback) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f.ID = r.s.nextID()
	f.CreatedAt = time.Now()
	f.UpdatedAt = f.CreatedAt
	cp := *f
	r.s.feedbacks[f.ID] = &cp
	return nil
}

func (r *Feedbacks) GetByID(_ context.Context, id int64) (*models.Feedback, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f, ok := r.s.feedbacks[id]
	if !ok {
		return nil, apperrors.ErrFeedbackNotFound
	}
	cp := *f
	return &cp, nil
}

func (r *Feedbacks) List(_ context.Context, parentID *int64) ([]*models.Feedback, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*models.Feedback{}
	for _, f := range r.s.feedbacks {
		if parentID == nil || f.ParentID == *parentID {
			cp := *f
			out = append(out, &cp)
		}
	}
	return sortByID(out, func(f *models.Feedback) int64 { return f.ID }), nil
}

func (r *Feedbacks) Update(_ context.Context, f *models.Feedback) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	old, ok := r.s.feedbacks[f.ID]
	if !ok {
		return apperrors.ErrFeedbackNotFound
	}
	old.Title = f.Title
	old.Description = f.Description
	old.Category = f.Category
	old.UpdatedAt = time.Now()
	*f = *old
	return nil
}

func (r *Feedbacks) Respond(_ context.Context, id int64, response string, responderID int64) (*models.Feedback, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f, ok := r.s.feedbacks[id]
	if !ok {
		return nil, apperrors.ErrFeedbackNotFound
	}
	now := time.Now()
	f.Response = &response
	f.ResponderID = &responderID
	f.RespondedAt = &now
	f.Status = models.FeedbackResponded
	f.UpdatedAt = now
	cp := *f
	return &cp, nil
}

func (r *Feedbacks) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.feedbacks[id]; !ok {
		return apperrors.ErrFeedbackNotFound
	}
	delete(r.s.feedbacks, id)
	return nil
}
