package telegram

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/grechaniuk/svitlo-bot/internal/bot"
)

// Handler consumes inbound events and produces the replies to send.
type Handler interface {
	Handle(ctx context.Context, userID int64, text string) []bot.Reply
	HandleCallback(ctx context.Context, userID int64, data string) []bot.Reply
}

// Sender is the outbound surface of the transport client.
type Sender interface {
	GetUpdates(ctx context.Context, offset int64) ([]Update, error)
	SendMessage(ctx context.Context, chatID int64, reply bot.Reply) error
	AnswerCallback(ctx context.Context, callbackID string) error
}

// workerQueueSize bounds each per-user inbox. A user who floods faster
// than their flow advances gets excess messages dropped, not the
// process stalled.
const workerQueueSize = 16

// pollRetryDelay paces retries after a failed getUpdates call.
const pollRetryDelay = 3 * time.Second

// Poller pulls updates and dispatches them to per-user workers: turns
// for one user are processed strictly in order, while different users
// proceed concurrently.
type Poller struct {
	client  Sender
	handler Handler
	log     *zap.Logger

	mu      sync.Mutex
	workers map[int64]chan Update
}

// NewPoller creates a poller over the given client and handler.
func NewPoller(client Sender, handler Handler, log *zap.Logger) *Poller {
	return &Poller{
		client:  client,
		handler: handler,
		log:     log,
		workers: make(map[int64]chan Update),
	}
}

// Run polls until the context is canceled. Cancellation is a clean
// shutdown, not an error.
func (p *Poller) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var offset int64
		for {
			updates, err := p.client.GetUpdates(ctx, offset)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				p.log.Warn("get updates", zap.Error(err))
				select {
				case <-ctx.Done():
					return nil
				case <-time.After(pollRetryDelay):
				}
				continue
			}
			for _, u := range updates {
				if u.UpdateID >= offset {
					offset = u.UpdateID + 1
				}
				p.dispatch(ctx, g, u)
			}
		}
	})

	err := g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// dispatch routes one update to its user's worker, starting the worker
// on first contact.
func (p *Poller) dispatch(ctx context.Context, g *errgroup.Group, u Update) {
	userID, ok := updateUser(u)
	if !ok {
		p.log.Debug("update without a sender", zap.Int64("update", u.UpdateID))
		return
	}

	p.mu.Lock()
	ch, running := p.workers[userID]
	if !running {
		ch = make(chan Update, workerQueueSize)
		p.workers[userID] = ch
		g.Go(func() error {
			p.runWorker(ctx, userID, ch)
			return nil
		})
	}
	p.mu.Unlock()

	select {
	case ch <- u:
	default:
		// Inbox full. Dropping preserves ordering of what was accepted.
		p.log.Warn("dropping update, worker inbox full",
			zap.Int64("user", userID), zap.Int64("update", u.UpdateID))
	}
}

func (p *Poller) runWorker(ctx context.Context, userID int64, inbox <-chan Update) {
	for {
		select {
		case <-ctx.Done():
			return
		case u := <-inbox:
			p.process(ctx, userID, u)
		}
	}
}

func (p *Poller) process(ctx context.Context, userID int64, u Update) {
	var replies []bot.Reply
	switch {
	case u.Callback != nil:
		replies = p.handler.HandleCallback(ctx, userID, u.Callback.Data)
		if err := p.client.AnswerCallback(ctx, u.Callback.ID); err != nil {
			p.log.Warn("answer callback", zap.Int64("user", userID), zap.Error(err))
		}
	case u.Message != nil:
		replies = p.handler.Handle(ctx, userID, u.Message.Text)
	default:
		return
	}

	for _, reply := range replies {
		if err := p.client.SendMessage(ctx, userID, reply); err != nil {
			p.log.Error("send reply", zap.Int64("user", userID), zap.Error(err))
			return
		}
	}
}

// updateUser extracts the acting user id from an update.
func updateUser(u Update) (int64, bool) {
	switch {
	case u.Callback != nil:
		return u.Callback.From.ID, true
	case u.Message != nil && u.Message.From != nil:
		return u.Message.From.ID, true
	default:
		return 0, false
	}
}
