package reminder

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/joeydtaylor/terakoya-core/pkg/booking"
	"github.com/joeydtaylor/terakoya-core/pkg/dynamotest"
	"github.com/joeydtaylor/terakoya-core/pkg/mail"
)

type recordingSender struct {
	mu     sync.Mutex
	sent   []mail.Message
	failTo map[string]bool
}

func (s *recordingSender) Send(ctx context.Context, m mail.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failTo[m.To] {
		return errors.New("ses: throttled")
	}
	s.sent = append(s.sent, m)
	return nil
}

func seed(t *testing.T, n int) (*booking.Repository, *dynamotest.Fake) {
	t.Helper()
	fake := dynamotest.New()
	fake.CreateTable("bookings", "date", "sk")
	repo := booking.NewRepository(fake, "bookings")
	for i := 0; i < n; i++ {
		email := fmt.Sprintf("u%d@example.com", i)
		require.NoError(t, repo.Insert(context.Background(), booking.Item{
			Date:         repo.Today(),
			SK:           booking.GenerateSK(email, booking.MiddleschoolTokyo),
			Email:        email,
			Name:         "生徒",
			TerakoyaType: booking.MiddleschoolTokyo,
			Place:        booking.PlaceKashiwa,
			IsReminded:   booking.NotSent,
			CreatedAt:    time.Now().Format(time.RFC3339),
		}))
	}
	return repo, fake
}

func TestRun_SendsAndMarks(t *testing.T) {
	repo, _ := seed(t, 3)
	sender := &recordingSender{}
	d := NewDispatcher(repo, sender, "static", "staff@example.com", nil)

	rep, err := d.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Report{Sent: 3}, rep)
	require.Len(t, sender.sent, 3)
	assert.Equal(t, "staff@example.com", sender.sent[0].CC)
	assert.Equal(t, "static/kashiwa.png", sender.sent[0].ImagePath)
	assert.Contains(t, sender.sent[0].Body, "柏教室")

	pending, err := repo.ListPendingReminders(context.Background())
	require.NoError(t, err)
	assert.Empty(t, pending)

	rep, err = d.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Report{}, rep)
}

func TestRun_SendFailureLeavesPending(t *testing.T) {
	repo, _ := seed(t, 2)
	sender := &recordingSender{failTo: map[string]bool{"u0@example.com": true}}
	core, logs := observer.New(zap.InfoLevel)

	rep, err := NewDispatcher(repo, sender, "", "", zap.New(core)).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Report{Sent: 1, Failed: 1}, rep)
	assert.Equal(t, 1, logs.FilterMessage("reminder send failed").Len())
	assert.Equal(t, 1, logs.FilterMessage("reminder run finished").Len())

	pending, err := repo.ListPendingReminders(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "u0@example.com", pending[0].Email)
}

type racingStore struct {
	*booking.Repository
}

// ListPendingReminders marks everything SENT behind the dispatcher's back
// after listing, simulating a concurrent run winning the race.
func (s racingStore) ListPendingReminders(ctx context.Context) ([]booking.Item, error) {
	items, err := s.Repository.ListPendingReminders(ctx)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		if err := s.Repository.UpdateReminded(ctx, it.SK); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func TestRun_LostRaceIsSkipped(t *testing.T) {
	repo, _ := seed(t, 2)
	rep, err := NewDispatcher(racingStore{repo}, &recordingSender{}, "", "", nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Report{Skipped: 2}, rep)
}

func TestRun_ListFailure(t *testing.T) {
	repo, fake := seed(t, 1)
	fake.Errs["Query"] = errors.New("dynamo down")
	_, err := NewDispatcher(repo, &recordingSender{}, "", "", nil).Run(context.Background())
	require.Error(t, err)
}
