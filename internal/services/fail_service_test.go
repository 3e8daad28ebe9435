package services

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"failfeed/internal/events"
	"failfeed/internal/models"
)

func newTestFailService(t *testing.T) (FailService, *fakeFailRepo, *fakeUserRepo, *events.Bus) {
	t.Helper()
	failRepo := newFakeFailRepo()
	userRepo := newFakeUserRepo()
	bus := events.NewBus(&events.BusConfig{BufferSize: 16, WorkerCount: 1, HandlerTimeout: time.Second}, zap.NewNop())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = bus.Stop(ctx)
	})
	return NewFailService(failRepo, userRepo, bus, zap.NewNop()), failRepo, userRepo, bus
}

func seedUser(t *testing.T, userRepo *fakeUserRepo, country string) *models.User {
	t.Helper()
	user := &models.User{Email: "jane@example.com", Username: "jane", IsActive: true}
	if country != "" {
		user.Country = &country
	}
	require.NoError(t, userRepo.Create(context.Background(), user))
	return user
}

func TestCreateFailStampsCountry(t *testing.T) {
	svc, _, userRepo, _ := newTestFailService(t)
	user := seedUser(t, userRepo, "NL")

	fail, err := svc.CreateFail(context.Background(), user.ID, &CreateFailRequest{
		Title:    "Sent the memo to the whole company",
		Content:  "Reply-all strikes again. Everyone saw my salary negotiation notes.",
		Category: "work",
	})
	require.NoError(t, err)
	require.NotNil(t, fail.Country)
	assert.Equal(t, "NL", *fail.Country)
	assert.NotZero(t, fail.ID)
}

func TestCreateFailValidation(t *testing.T) {
	svc, _, userRepo, _ := newTestFailService(t)
	user := seedUser(t, userRepo, "")

	_, err := svc.CreateFail(context.Background(), user.ID, &CreateFailRequest{
		Title:    "x",
		Content:  "too short",
		Category: "work",
	})
	assert.True(t, IsValidationError(err))
}

func TestCreateFailUnknownUser(t *testing.T) {
	svc, _, _, _ := newTestFailService(t)

	_, err := svc.CreateFail(context.Background(), 999, &CreateFailRequest{
		Title:    "A perfectly valid title",
		Content:  "A perfectly valid story about failing.",
		Category: "work",
	})
	assert.True(t, IsNotFoundError(err))
}

func TestReactToFailDeduplicates(t *testing.T) {
	svc, failRepo, userRepo, bus := newTestFailService(t)
	user := seedUser(t, userRepo, "")

	fail := &models.Fail{UserID: user.ID, Title: "t", Content: "c", Category: "work"}
	require.NoError(t, failRepo.Create(context.Background(), fail))

	var published atomic.Int32
	done := make(chan struct{}, 4)
	bus.Subscribe(events.EventReactionGiven, events.HandlerFunc{
		ID: "test",
		Func: func(context.Context, events.Event) error {
			published.Add(1)
			done <- struct{}{}
			return nil
		},
	})

	ctx := context.Background()
	req := &ReactionRequest{Kind: "laugh"}
	require.NoError(t, svc.ReactToFail(ctx, fail.ID, user.ID, req))
	require.NoError(t, svc.ReactToFail(ctx, fail.ID, user.ID, req), "repeating a reaction is a silent no-op")

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected a reaction event")
	}
	// Give a duplicate event a chance to arrive before asserting.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), published.Load(), "only the first reaction publishes an event")
}

func TestReactToUnknownFail(t *testing.T) {
	svc, _, userRepo, _ := newTestFailService(t)
	user := seedUser(t, userRepo, "")

	err := svc.ReactToFail(context.Background(), 999, user.ID, &ReactionRequest{Kind: "hug"})
	assert.True(t, IsNotFoundError(err))
}

func TestDeleteFailOwnership(t *testing.T) {
	svc, failRepo, userRepo, _ := newTestFailService(t)
	user := seedUser(t, userRepo, "")

	fail := &models.Fail{UserID: user.ID, Title: "t", Content: "c", Category: "work"}
	require.NoError(t, failRepo.Create(context.Background(), fail))

	err := svc.DeleteFail(context.Background(), fail.ID, user.ID+1)
	assert.True(t, IsNotFoundError(err), "someone else's fail looks like it does not exist")

	assert.NoError(t, svc.DeleteFail(context.Background(), fail.ID, user.ID))
}

func TestAddComment(t *testing.T) {
	svc, failRepo, userRepo, _ := newTestFailService(t)
	user := seedUser(t, userRepo, "")

	fail := &models.Fail{UserID: user.ID, Title: "t", Content: "c", Category: "work"}
	require.NoError(t, failRepo.Create(context.Background(), fail))

	comment, err := svc.AddComment(context.Background(), fail.ID, user.ID, &CommentRequest{
		Content: "been there, done that",
	})
	require.NoError(t, err)
	assert.NotZero(t, comment.ID)

	page, err := svc.GetComments(context.Background(), fail.ID, models.PaginationParams{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, page.Data, 1)
}
