package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"failfeed/internal/models"
)

// ===============================
// TEST FAKES
// ===============================

// fakeActivityRepo returns canned metrics; err, when set, is returned
// by every method.
type fakeActivityRepo struct {
	fails             int
	reactionsGiven    int
	reactionsReceived int
	comments          int
	categories        int
	countries         int
	funnyFails        int
	loginDays         []time.Time
	failDays          []time.Time
	failStamps        []time.Time
	rank              int
	probesSatisfied   int
	probesTotal       int
	createdAt         time.Time
	err               error

	// captured arguments
	lastReactionKind string
	lastMinReactions int
}

func (f *fakeActivityRepo) CountFails(context.Context, int64) (int, error) {
	return f.fails, f.err
}

func (f *fakeActivityRepo) CountReactionsGiven(context.Context, int64) (int, error) {
	return f.reactionsGiven, f.err
}

func (f *fakeActivityRepo) CountReactionsReceived(context.Context, int64) (int, error) {
	return f.reactionsReceived, f.err
}

func (f *fakeActivityRepo) CountComments(context.Context, int64) (int, error) {
	return f.comments, f.err
}

func (f *fakeActivityRepo) CountDistinctCategories(context.Context, int64) (int, error) {
	return f.categories, f.err
}

func (f *fakeActivityRepo) CountDistinctCountries(context.Context, int64) (int, error) {
	return f.countries, f.err
}

func (f *fakeActivityRepo) CountFailsWithReactions(_ context.Context, _ int64, kind string, minReactions int) (int, error) {
	f.lastReactionKind = kind
	f.lastMinReactions = minReactions
	return f.funnyFails, f.err
}

func (f *fakeActivityRepo) LoginDays(context.Context, int64) ([]time.Time, error) {
	return f.loginDays, f.err
}

func (f *fakeActivityRepo) FailDays(context.Context, int64) ([]time.Time, error) {
	return f.failDays, f.err
}

func (f *fakeActivityRepo) FailTimestamps(context.Context, int64) ([]time.Time, error) {
	return f.failStamps, f.err
}

func (f *fakeActivityRepo) PointsRank(context.Context, int64) (int, error) {
	return f.rank, f.err
}

func (f *fakeActivityRepo) FeatureProbes(context.Context, int64) (int, int, error) {
	return f.probesSatisfied, f.probesTotal, f.err
}

func (f *fakeActivityRepo) AccountCreatedAt(context.Context, int64) (time.Time, error) {
	return f.createdAt, f.err
}

// fakeBadgeRepo tracks ownership in memory with the same
// insert-or-ignore semantics as the real table.
type fakeBadgeRepo struct {
	catalog     []*models.Badge
	owned       map[int64]bool
	settings    []byte
	settingsErr error
	catalogErr  error
	insertErr   error
	inserts     []int64
}

func newFakeBadgeRepo(catalog ...*models.Badge) *fakeBadgeRepo {
	return &fakeBadgeRepo{
		catalog: catalog,
		owned:   make(map[int64]bool),
	}
}

func (f *fakeBadgeRepo) GetAllActive(context.Context) ([]*models.Badge, error) {
	return f.catalog, f.catalogErr
}

func (f *fakeBadgeRepo) GetOwnedBadgeIDs(context.Context, int64) (map[int64]bool, error) {
	owned := make(map[int64]bool, len(f.owned))
	for id := range f.owned {
		owned[id] = true
	}
	return owned, nil
}

func (f *fakeBadgeRepo) InsertUserBadge(_ context.Context, _ int64, badgeID int64) (bool, error) {
	if f.insertErr != nil {
		return false, f.insertErr
	}
	if f.owned[badgeID] {
		return false, nil
	}
	f.owned[badgeID] = true
	f.inserts = append(f.inserts, badgeID)
	return true, nil
}

func (f *fakeBadgeRepo) ListUserBadges(context.Context, int64) ([]*models.UserBadgeView, error) {
	views := make([]*models.UserBadgeView, 0, len(f.catalog))
	for _, b := range f.catalog {
		views = append(views, &models.UserBadgeView{Badge: *b, Unlocked: f.owned[b.ID]})
	}
	return views, nil
}

func (f *fakeBadgeRepo) GetSettings(context.Context) ([]byte, error) {
	return f.settings, f.settingsErr
}

// fakeNotifier records delivered notifications.
type fakeNotifier struct {
	sent []*NotificationRequest
	err  error
}

func (f *fakeNotifier) Notify(_ context.Context, _ int64, req *NotificationRequest) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, req)
	return nil
}

func (f *fakeNotifier) List(context.Context, int64, models.PaginationParams) (*models.PaginatedResponse[*models.Notification], error) {
	return &models.PaginatedResponse[*models.Notification]{}, nil
}

func (f *fakeNotifier) MarkRead(context.Context, int64, int64) error {
	return nil
}

// fakeUserRepo keeps users in memory.
type fakeUserRepo struct {
	users   map[int64]*models.User
	nextID  int64
	logins  int
	seenIDs []int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*models.User), nextID: 1}
}

func (f *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	user.ID = f.nextID
	f.nextID++
	user.CreatedAt = time.Now()
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	return f.users[id], nil
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) UpdateLastSeen(_ context.Context, userID int64) error {
	f.seenIDs = append(f.seenIDs, userID)
	return nil
}

func (f *fakeUserRepo) SetPushToken(_ context.Context, userID int64, token string) error {
	if u := f.users[userID]; u != nil {
		u.PushToken = &token
	}
	return nil
}

func (f *fakeUserRepo) RecordLogin(context.Context, int64) error {
	f.logins++
	return nil
}

// fakeFailRepo keeps fails, reactions and comments in memory with the
// same insert-or-ignore reaction semantics as the real table.
type fakeFailRepo struct {
	fails     map[int64]*models.Fail
	reactions map[string]bool
	comments  []*models.Comment
	nextID    int64
}

func newFakeFailRepo() *fakeFailRepo {
	return &fakeFailRepo{
		fails:     make(map[int64]*models.Fail),
		reactions: make(map[string]bool),
		nextID:    1,
	}
}

func (f *fakeFailRepo) Create(_ context.Context, fail *models.Fail) error {
	fail.ID = f.nextID
	f.nextID++
	fail.CreatedAt = time.Now()
	f.fails[fail.ID] = fail
	return nil
}

func (f *fakeFailRepo) GetByID(_ context.Context, id int64) (*models.Fail, error) {
	return f.fails[id], nil
}

func (f *fakeFailRepo) List(_ context.Context, params models.PaginationParams) (*models.PaginatedResponse[*models.Fail], error) {
	var data []*models.Fail
	for _, fail := range f.fails {
		data = append(data, fail)
	}
	return &models.PaginatedResponse[*models.Fail]{Data: data, TotalItems: int64(len(data))}, nil
}

func (f *fakeFailRepo) GetByUserID(ctx context.Context, userID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Fail], error) {
	var data []*models.Fail
	for _, fail := range f.fails {
		if fail.UserID == userID {
			data = append(data, fail)
		}
	}
	return &models.PaginatedResponse[*models.Fail]{Data: data, TotalItems: int64(len(data))}, nil
}

func (f *fakeFailRepo) Delete(_ context.Context, id, userID int64) error {
	fail := f.fails[id]
	if fail == nil || fail.UserID != userID {
		return sql.ErrNoRows
	}
	delete(f.fails, id)
	return nil
}

func (f *fakeFailRepo) AddReaction(_ context.Context, reaction *models.Reaction) (bool, error) {
	key := fmt.Sprintf("%d:%d:%s", reaction.FailID, reaction.UserID, reaction.Kind)
	if f.reactions[key] {
		return false, nil
	}
	f.reactions[key] = true
	return true, nil
}

func (f *fakeFailRepo) RemoveReaction(_ context.Context, failID, userID int64, kind string) error {
	key := fmt.Sprintf("%d:%d:%s", failID, userID, kind)
	if !f.reactions[key] {
		return sql.ErrNoRows
	}
	delete(f.reactions, key)
	return nil
}

func (f *fakeFailRepo) AddComment(_ context.Context, comment *models.Comment) error {
	comment.ID = int64(len(f.comments) + 1)
	comment.CreatedAt = time.Now()
	f.comments = append(f.comments, comment)
	return nil
}

func (f *fakeFailRepo) GetComments(_ context.Context, failID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Comment], error) {
	var data []*models.Comment
	for _, c := range f.comments {
		if c.FailID == failID {
			data = append(data, c)
		}
	}
	return &models.PaginatedResponse[*models.Comment]{Data: data, TotalItems: int64(len(data))}, nil
}

// fakeNotificationRepo keeps notifications in memory.
type fakeNotificationRepo struct {
	notifications []*models.Notification
	createErr     error
}

func (f *fakeNotificationRepo) Create(_ context.Context, n *models.Notification) error {
	if f.createErr != nil {
		return f.createErr
	}
	n.ID = int64(len(f.notifications) + 1)
	n.CreatedAt = time.Now()
	f.notifications = append(f.notifications, n)
	return nil
}

func (f *fakeNotificationRepo) ListByUser(_ context.Context, userID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Notification], error) {
	var data []*models.Notification
	for _, n := range f.notifications {
		if n.UserID == userID {
			data = append(data, n)
		}
	}
	return &models.PaginatedResponse[*models.Notification]{Data: data, TotalItems: int64(len(data))}, nil
}

func (f *fakeNotificationRepo) MarkRead(_ context.Context, notificationID, userID int64) error {
	for _, n := range f.notifications {
		if n.ID == notificationID && n.UserID == userID {
			n.IsRead = true
			return nil
		}
	}
	return sql.ErrNoRows
}

// fakeSender records real-time deliveries.
type fakeSender struct {
	payloads []any
	err      error
}

func (f *fakeSender) Send(_ int64, payload any) error {
	if f.err != nil {
		return f.err
	}
	f.payloads = append(f.payloads, payload)
	return nil
}

// fakeEvaluator answers by criteria type.
type fakeEvaluator struct {
	eligible map[string]bool
}

func (f *fakeEvaluator) Evaluate(_ context.Context, _ int64, criteriaType string, _ int) bool {
	return f.eligible[criteriaType]
}

// staticThresholds serves a fixed threshold map.
type staticThresholds struct {
	t Thresholds
}

func (s *staticThresholds) Thresholds(context.Context) Thresholds {
	return s.t
}
