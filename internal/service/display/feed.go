package display

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ocupmed/queue-api/internal/model"
	"github.com/ocupmed/queue-api/internal/repository"
	"github.com/ocupmed/queue-api/pkg/messaging"
	"github.com/ocupmed/queue-api/pkg/metrics"
)

// Feed derives the two passive-display views from the visit records:
// the single position-1 "now calling" entry and the bounded recent
// history. Between refreshes it tracks the identity and room label of
// position 1 and signals a new-call event exactly once per change, so
// the display's audible alert neither misses a call nor re-fires on
// identical refreshes.
type Feed struct {
	visits  repository.VisitRepository
	broker  messaging.Broker
	logger  zerolog.Logger
	metrics *metrics.Metrics

	interval time.Duration
	window   int

	mu        sync.Mutex
	lastVisit uuid.UUID
	lastRoom  string
}

func NewFeed(
	visits repository.VisitRepository,
	broker messaging.Broker,
	logger zerolog.Logger,
	m *metrics.Metrics,
	interval time.Duration,
	window int,
) *Feed {
	if window <= 0 {
		window = 6
	}
	return &Feed{
		visits:   visits,
		broker:   broker,
		logger:   logger,
		metrics:  m,
		interval: interval,
		window:   window,
	}
}

// Board reads the current display state without advancing the new-call
// tracker. Used by the GET endpoint the passive screen polls.
func (f *Feed) Board(ctx context.Context, date time.Time) (*model.CallBoard, error) {
	visits, err := f.visits.ListCalled(ctx, date, f.window+1)
	if err != nil {
		return nil, err
	}
	return buildBoard(visits, f.window), nil
}

// Refresh reads the display state and reports whether the "now calling"
// slot changed since the previous refresh, either in visit identity or
// in room label. The second return is true exactly once per change.
func (f *Feed) Refresh(ctx context.Context, date time.Time) (*model.CallBoard, bool, error) {
	board, err := f.Board(ctx, date)
	if err != nil {
		return nil, false, err
	}
	if f.metrics != nil {
		f.metrics.FeedRefreshes.Inc()
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if board.NowCalling == nil {
		// An empty slot clears the tracker; the next call fires again.
		f.lastVisit = uuid.Nil
		f.lastRoom = ""
		return board, false, nil
	}

	changed := board.NowCalling.VisitID != f.lastVisit || board.NowCalling.RoomLabel != f.lastRoom
	f.lastVisit = board.NowCalling.VisitID
	f.lastRoom = board.NowCalling.RoomLabel
	return board, changed, nil
}

// Run polls the store on the configured interval and publishes a
// new-call event whenever Refresh detects one. The loop is the sole
// writer of the tracker; a missed cycle simply goes stale until the
// next tick.
func (f *Feed) Run(ctx context.Context) {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := time.Now()
			date := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
			board, newCall, err := f.Refresh(ctx, date)
			if err != nil {
				f.logger.Warn().Err(err).Msg("display feed refresh failed")
				continue
			}
			if newCall {
				f.announce(ctx, board.NowCalling)
			}
		}
	}
}

func (f *Feed) announce(ctx context.Context, entry *model.CallEntry) {
	if f.metrics != nil {
		f.metrics.NewCallEvents.Inc()
	}
	if f.broker == nil {
		return
	}
	event := model.CallEvent{
		VisitID:     entry.VisitID,
		PatientName: entry.PatientName,
		RoomLabel:   entry.RoomLabel,
	}
	if err := f.broker.Publish(ctx, messaging.ChannelNewCall, event); err != nil {
		f.logger.Warn().Err(err).Msg("failed to publish new-call event")
	}
}

func buildBoard(visits []*model.Visit, window int) *model.CallBoard {
	board := &model.CallBoard{History: []model.CallEntry{}}
	for _, v := range visits {
		if v.DisplayPosition == nil || v.DisplayRoom == nil {
			continue
		}
		entry := model.CallEntry{
			VisitID:     v.ID,
			PatientName: v.PatientName,
			RoomLabel:   *v.DisplayRoom,
			Position:    *v.DisplayPosition,
		}
		if entry.Position == 1 {
			board.NowCalling = &entry
			continue
		}
		if len(board.History) < window {
			board.History = append(board.History, entry)
		}
	}
	return board
}
