package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/itscarlsmith/ClassCal-v2-sub001/internal/model"
	"github.com/itscarlsmith/ClassCal-v2-sub001/internal/notify"
	"github.com/itscarlsmith/ClassCal-v2-sub001/internal/repository"
)

// memStore is an in-memory stand-in for the pgx repositories. Its atomic
// writes reproduce the database-side guards: the conditional credit debit
// and the overlap exclusion on active lessons.
type memStore struct {
	mu       sync.Mutex
	nextID   int64
	lessons  map[int64]*model.Lesson
	rules    []*model.AvailabilityRule
	users    map[int64]*model.User
	accounts map[int64][]int64
}

func newMemStore() *memStore {
	return &memStore{
		lessons:  make(map[int64]*model.Lesson),
		users:    make(map[int64]*model.User),
		accounts: make(map[int64][]int64),
	}
}

func (m *memStore) addUser(u *model.User) {
	m.users[u.ID] = u
	m.accounts[u.AccountID] = append(m.accounts[u.AccountID], u.ID)
}

// --- RuleSource ---

func (m *memStore) Create(ctx context.Context, rule *model.AvailabilityRule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	rule.ID = m.nextID
	m.rules = append(m.rules, rule)
	return nil
}

func (m *memStore) GetByIDRule(ctx context.Context, id int64) (*model.AvailabilityRule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rules {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, nil
}

func (m *memStore) ListByTeacher(ctx context.Context, teacherID int64) ([]*model.AvailabilityRule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.AvailabilityRule
	for _, r := range m.rules {
		if r.TeacherID == teacherID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.rules {
		if r.ID == id {
			m.rules = append(m.rules[:i], m.rules[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

// --- LessonStore ---

func (m *memStore) GetByID(ctx context.Context, id int64) (*model.Lesson, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.lessons[id]
	if !ok {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

func (m *memStore) ListActiveBetween(ctx context.Context, teacherID int64, from, to time.Time) ([]*model.Lesson, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Lesson
	for _, l := range m.lessons {
		if l.TeacherID == teacherID && l.IsActive() && l.StartTime.Before(to) && l.EndTime.After(from) {
			cp := *l
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memStore) OverlapExists(ctx context.Context, start, end time.Time, teacherID int64, studentIDs []int64, excludeLessonID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.overlapLocked(start, end, teacherID, studentIDs, excludeLessonID), nil
}

func (m *memStore) overlapLocked(start, end time.Time, teacherID int64, studentIDs []int64, excludeLessonID int64) bool {
	for _, l := range m.lessons {
		if !l.IsActive() || l.ID == excludeLessonID {
			continue
		}
		participant := l.TeacherID == teacherID
		for _, sid := range studentIDs {
			if l.StudentID == sid {
				participant = true
			}
		}
		if participant && l.StartTime.Before(end) && start.Before(l.EndTime) {
			return true
		}
	}
	return false
}

func (m *memStore) CreateConfirmedWithDebit(ctx context.Context, lesson *model.Lesson) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if lesson.CreditsUsed < 1 {
		return repository.ErrConflict
	}

	// Exclusion constraint analogue: no second active lesson may overlap
	// the teacher's interval.
	if m.overlapLocked(lesson.StartTime, lesson.EndTime, lesson.TeacherID, []int64{lesson.StudentID}, 0) {
		return repository.ErrConflict
	}

	u, ok := m.users[lesson.StudentID]
	if !ok || u.Credits < lesson.CreditsUsed {
		return repository.ErrInsufficientCredits
	}
	u.Credits -= lesson.CreditsUsed

	m.nextID++
	lesson.ID = m.nextID
	lesson.Status = model.LessonStatusConfirmed
	cp := *lesson
	m.lessons[lesson.ID] = &cp
	return nil
}

func (m *memStore) CreatePending(ctx context.Context, lesson *model.Lesson) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if lesson.CreditsUsed < 1 {
		return repository.ErrConflict
	}
	m.nextID++
	lesson.ID = m.nextID
	lesson.Status = model.LessonStatusPending
	cp := *lesson
	m.lessons[lesson.ID] = &cp
	return nil
}

func (m *memStore) ConfirmWithDebit(ctx context.Context, lessonID, studentID int64, credits int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.lessons[lessonID]
	if !ok || l.Status != model.LessonStatusPending {
		return repository.ErrConflict
	}
	u, ok := m.users[studentID]
	if !ok || u.Credits < credits {
		return repository.ErrInsufficientCredits
	}
	u.Credits -= credits
	l.Status = model.LessonStatusConfirmed
	return nil
}

func (m *memStore) UpdateStatus(ctx context.Context, id int64, status model.LessonStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.lessons[id]
	if !ok {
		return repository.ErrNotFound
	}
	l.Status = status
	return nil
}

// --- UserSource ---

func (m *memStore) GetByIDUser(ctx context.Context, id int64) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) GetCreditBalance(ctx context.Context, studentID int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[studentID]
	if !ok {
		return 0, repository.ErrNotFound
	}
	return u.Credits, nil
}

func (m *memStore) LinkedStudentIDs(ctx context.Context, studentID int64) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[studentID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return append([]int64(nil), m.accounts[u.AccountID]...), nil
}

// ruleSourceAdapter and userSourceAdapter disambiguate memStore's GetByID
// methods per interface.
type ruleSourceAdapter struct{ *memStore }

func (a ruleSourceAdapter) GetByID(ctx context.Context, id int64) (*model.AvailabilityRule, error) {
	return a.memStore.GetByIDRule(ctx, id)
}

type userSourceAdapter struct{ *memStore }

func (a userSourceAdapter) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return a.memStore.GetByIDUser(ctx, id)
}

// recordingSink captures emitted events.
type recordingSink struct {
	mu     sync.Mutex
	events []notify.Event
	fail   bool
}

func (s *recordingSink) Emit(ctx context.Context, event notify.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return context.DeadlineExceeded
	}
	s.events = append(s.events, event)
	return nil
}

// fixture wires the services over one memStore with a frozen clock.
type fixture struct {
	store        *memStore
	sink         *recordingSink
	availability *AvailabilityService
	booking      *BookingService
	now          time.Time
}

func newFixture() *fixture {
	store := newMemStore()
	sink := &recordingSink{}
	logger := zap.NewNop()
	policy := DefaultBookingPolicy()
	now := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

	availability := NewAvailabilityService(
		ruleSourceAdapter{store}, store, userSourceAdapter{store}, nil, policy, logger)
	availability.now = func() time.Time { return now }

	booking := NewBookingService(
		store, ruleSourceAdapter{store}, userSourceAdapter{store}, availability, sink, nil, policy, logger)
	booking.now = func() time.Time { return now }

	return &fixture{
		store:        store,
		sink:         sink,
		availability: availability,
		booking:      booking,
		now:          now,
	}
}

func (f *fixture) addTeacherWithMondayRule() {
	f.store.addUser(&model.User{ID: 1, AccountID: 1, IsTeacher: true})
	f.store.rules = append(f.store.rules, &model.AvailabilityRule{
		ID:        100,
		TeacherID: 1,
		Kind:      model.RuleKindWeekly,
		Weekday:   1,
		StartHour: 9,
		EndHour:   17,
	})
}

func (f *fixture) addStudent(id int64, credits int) {
	f.store.addUser(&model.User{ID: id, AccountID: id * 10, Credits: credits})
}
