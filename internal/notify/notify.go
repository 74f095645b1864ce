// Package notify is the handoff between the web-serving task and the bot task.
// The channel is bounded and the bot is the sole consumer; payment persistence
// must never block on a slow Telegram send, so a full channel drops the notice.
package notify

import (
	"log/slog"

	"github.com/jolanboyev/ehson-backend/internal/models"
)

const defaultCapacity = 64

// Notice is a confirmation to deliver to the paying user.
type Notice struct {
	UserID int64
	Amount float64
	Status models.PaymentStatus
}

type Dispatcher struct {
	ch  chan Notice
	log *slog.Logger
}

func NewDispatcher(log *slog.Logger) *Dispatcher {
	return &Dispatcher{
		ch:  make(chan Notice, defaultCapacity),
		log: log,
	}
}

// Enqueue hands a notice to the bot task. Best effort: when the channel is
// full the notice is dropped and logged, never blocked on.
func (d *Dispatcher) Enqueue(n Notice) {
	select {
	case d.ch <- n:
	default:
		d.log.Warn("notification queue full, dropping notice", "user", n.UserID, "amount", n.Amount)
	}
}

// Notices exposes the receive side for the single consumer.
func (d *Dispatcher) Notices() <-chan Notice {
	return d.ch
}
