package reminder

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"task-tracker/backend/internal/models"

	"gorm.io/gorm"
)

// Payload is what every reminder run hands to the notifier: the full set of
// tasks, each joined with its owner's email.
type Payload struct {
	Todos []models.ReminderRow `json:"todos"`
}

// Notifier forwards a reminder payload to an external sink and returns the
// sink's acknowledgement for logging.
type Notifier interface {
	Notify(ctx context.Context, payload Payload) (string, error)
}

// Dispatcher periodically scans the task store and forwards the result to a
// Notifier. A failed run is logged and never stops the loop; runs are
// sequential, so a slow run delays the next tick instead of stacking.
type Dispatcher struct {
	db       *gorm.DB
	notifier Notifier
	interval time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewDispatcher(db *gorm.DB, notifier Notifier, interval time.Duration) *Dispatcher {
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		db:       db,
		notifier: notifier,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (d *Dispatcher) Start() {
	d.wg.Add(1)
	go d.loop()
	log.Printf("reminder dispatcher started, interval %s", d.interval)
}

func (d *Dispatcher) Stop() {
	d.cancel()
	d.wg.Wait()
	log.Println("reminder dispatcher stopped")
}

func (d *Dispatcher) loop() {
	defer d.wg.Done()

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-d.ctx.Done():
			return
		case <-ticker.C:
			if err := d.RunOnce(d.ctx); err != nil {
				log.Printf("reminder run failed: %v", err)
			}
		}
	}
}

// RunOnce executes a single reminder scan. It is exported so a run can be
// triggered outside the timer, which is also how the tests drive it.
func (d *Dispatcher) RunOnce(ctx context.Context) error {
	rows, err := d.collect(ctx)
	if err != nil {
		return fmt.Errorf("failed to collect reminder rows: %w", err)
	}

	notifyCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	ack, err := d.notifier.Notify(notifyCtx, Payload{Todos: rows})
	if err != nil {
		return fmt.Errorf("failed to notify: %w", err)
	}

	log.Printf("reminder run dispatched %d todos, ack: %s", len(rows), ack)
	return nil
}

func (d *Dispatcher) collect(ctx context.Context) ([]models.ReminderRow, error) {
	rows := []models.ReminderRow{}
	err := d.db.WithContext(ctx).
		Table("todos").
		Select("todos.*, users.email AS user_email").
		Joins("INNER JOIN users ON todos.created_by = users.id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
