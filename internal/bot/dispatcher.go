package bot

import (
	"FolderVaultBot/internal/logging"
	"context"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	queueSize   = 64
	idleTimeout = time.Minute
)

// chatQueue: отложенные обновления одного чата. pending меняется только
// под мьютексом диспетчера, wake будит воркер.
type chatQueue struct {
	pending []tgbotapi.Update
	wake    chan struct{}
}

// Dispatcher обрабатывает обновления одного чата строго по очереди,
// разные чаты параллельно. Воркер чата завершается после простоя.
type Dispatcher struct {
	handle func(ctx context.Context, update tgbotapi.Update)
	log    logging.Logger
	idle   time.Duration
	// onDrop вызывается вне мьютекса, когда очередь чата переполнена.
	onDrop func(chatID int64)

	mu      sync.Mutex
	queues  map[int64]*chatQueue
	closing chan struct{}
	closed  bool
	wg      sync.WaitGroup
}

func NewDispatcher(handle func(ctx context.Context, update tgbotapi.Update), log logging.Logger) *Dispatcher {
	return &Dispatcher{
		handle:  handle,
		log:     log,
		idle:    idleTimeout,
		queues:  make(map[int64]*chatQueue),
		closing: make(chan struct{}),
	}
}

// Submit кладёт обновление в очередь чата и никогда не блокируется:
// занятый чат не задерживает приём обновлений для остальных. Если очередь
// чата заполнена, обновление отбрасывается.
func (d *Dispatcher) Submit(chatID int64, update tgbotapi.Update) {
	d.mu.Lock()

	if d.closed {
		d.mu.Unlock()
		d.log.Warn(context.Background(), "update dropped: dispatcher closed", "chat_id", chatID)
		return
	}

	q, ok := d.queues[chatID]
	if !ok {
		q = &chatQueue{wake: make(chan struct{}, 1)}
		d.queues[chatID] = q
		d.wg.Add(1)
		go d.worker(chatID, q)
	}

	if len(q.pending) >= queueSize {
		d.mu.Unlock()
		d.log.Warn(context.Background(), "update dropped: chat queue full", "chat_id", chatID, "update_id", update.UpdateID)
		if d.onDrop != nil {
			d.onDrop(chatID)
		}
		return
	}

	q.pending = append(q.pending, update)
	select {
	case q.wake <- struct{}{}:
	default:
	}
	d.mu.Unlock()
}

// next снимает первое обновление из очереди чата.
func (d *Dispatcher) next(q *chatQueue) (tgbotapi.Update, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(q.pending) == 0 {
		return tgbotapi.Update{}, false
	}
	update := q.pending[0]
	q.pending[0] = tgbotapi.Update{}
	q.pending = q.pending[1:]
	return update, true
}

func (d *Dispatcher) worker(chatID int64, q *chatQueue) {
	defer d.wg.Done()

	for {
		if update, ok := d.next(q); ok {
			d.handle(context.Background(), update)
			continue
		}

		timer := time.NewTimer(d.idle)
		select {
		case <-q.wake:
			timer.Stop()
		case <-timer.C:
			if d.tryExit(chatID, q) {
				return
			}
		case <-d.closing:
			timer.Stop()
			if d.tryExit(chatID, q) {
				return
			}
		}
	}
}

// tryExit снимает воркер, только если его очередь пуста.
func (d *Dispatcher) tryExit(chatID int64, q *chatQueue) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(q.pending) > 0 {
		return false
	}
	delete(d.queues, chatID)
	return true
}

// Active возвращает число чатов с работающим воркером.
func (d *Dispatcher) Active() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queues)
}

// Close перестаёт принимать обновления и ждёт, пока воркеры разберут
// свои очереди.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.closing)
	}
	d.mu.Unlock()

	d.wg.Wait()
}
