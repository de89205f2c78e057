package services

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const notificationMaxAttempts = 3

// NotificationWorker delivers queued notifications in the background so
// resume and interview flows never block on SMTP or the Telegram API.
type NotificationWorker interface {
	Start(ctx context.Context)
	Stop()
	Enqueue(n Notification)
}

type notificationWorker struct {
	notifier    NotifierService
	jobQueue    chan Notification
	concurrency int
	retryDelay  time.Duration
	wg          sync.WaitGroup
	stopChan    chan struct{}
	stopOnce    sync.Once
}

func NewNotificationWorker(notifier NotifierService, concurrency int, retryDelay time.Duration) NotificationWorker {
	if concurrency < 1 {
		concurrency = 1
	}
	return &notificationWorker{
		notifier:    notifier,
		jobQueue:    make(chan Notification, 100),
		concurrency: concurrency,
		retryDelay:  retryDelay,
		stopChan:    make(chan struct{}),
	}
}

// Start implements NotificationWorker.
func (w *notificationWorker) Start(ctx context.Context) {
	log.Info().Int("concurrency", w.concurrency).Msg("starting notification worker")

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}
}

// Stop implements NotificationWorker. It waits for in-flight deliveries to
// finish; queued but unstarted notifications are dropped.
func (w *notificationWorker) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopChan)
	})
	w.wg.Wait()
	log.Info().Msg("notification worker stopped")
}

// Enqueue implements NotificationWorker.
func (w *notificationWorker) Enqueue(n Notification) {
	select {
	case w.jobQueue <- n:
	case <-w.stopChan:
		log.Warn().
			Str("channel", string(n.Channel)).
			Str("recipient", n.Recipient).
			Msg("worker stopped, notification dropped")
	}
}

func (w *notificationWorker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			return
		case n := <-w.jobQueue:
			w.deliver(ctx, workerID, n)
		}
	}
}

func (w *notificationWorker) deliver(ctx context.Context, workerID int, n Notification) {
	delay := w.retryDelay
	for attempt := 1; attempt <= notificationMaxAttempts; attempt++ {
		err := w.notifier.Send(ctx, n)
		if err == nil {
			log.Info().
				Int("worker", workerID).
				Str("channel", string(n.Channel)).
				Str("recipient", n.Recipient).
				Msg("notification delivered")
			return
		}

		log.Warn().
			Err(err).
			Int("worker", workerID).
			Int("attempt", attempt).
			Str("channel", string(n.Channel)).
			Msg("notification delivery failed")

		if attempt == notificationMaxAttempts {
			return
		}
		select {
		case <-time.After(delay):
			delay *= 2
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}
