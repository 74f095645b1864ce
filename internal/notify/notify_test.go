package notify

import (
	"io"
	"log/slog"
	"testing"

	"github.com/jolanboyev/ehson-backend/internal/models"
)

func TestEnqueueDelivers(t *testing.T) {
	d := NewDispatcher(slog.New(slog.NewJSONHandler(io.Discard, nil)))
	d.Enqueue(Notice{UserID: 42, Amount: 10000, Status: models.PaymentSuccess})

	select {
	case n := <-d.Notices():
		if n.UserID != 42 || n.Amount != 10000 {
			t.Errorf("notice = %+v", n)
		}
	default:
		t.Fatal("no notice on channel")
	}
}

func TestEnqueueDropsWhenFull(t *testing.T) {
	d := NewDispatcher(slog.New(slog.NewJSONHandler(io.Discard, nil)))

	// Fill past capacity with no consumer; Enqueue must never block.
	for i := 0; i < defaultCapacity+10; i++ {
		d.Enqueue(Notice{UserID: int64(i)})
	}
	if got := len(d.ch); got != defaultCapacity {
		t.Errorf("buffered notices = %d, want %d", got, defaultCapacity)
	}
}
