package worker

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/okian/duelwall/internal/adapters/mq/queue"
	"github.com/okian/duelwall/internal/domain/model"
	"github.com/okian/duelwall/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(logger.WithWriter(io.Discard)); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type recorder struct {
	mu   sync.Mutex
	seen []string
	fail map[string]bool
}

func (r *recorder) Handle(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, e.EventID)
	if r.fail[e.EventID] {
		return errors.New("boom")
	}
	return nil
}

func (r *recorder) ids() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.seen...)
}

func rosterEvent(id string) Event {
	return model.RosterEvent{EventID: id, Kind: model.EventRosterChanged, TS: time.Now()}
}

func TestInMemoryWorker(t *testing.T) {
	Convey("Given a worker over a queue", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		q := queue.NewInMemoryQueue(queue.WithCapacity(8))
		h := &recorder{fail: map[string]bool{"bad": true}}
		w := NewInMemoryWorker(q, h, WithName("test"))

		Convey("When events are queued and the queue closes", func() {
			for _, id := range []string{"e1", "bad", "e2"} {
				So(q.Enqueue(ctx, rosterEvent(id)), ShouldBeNil)
			}
			So(q.Close(), ShouldBeNil)
			w.Run(ctx)

			Convey("Then every event reaches the handler despite failures", func() {
				So(h.ids(), ShouldResemble, []string{"e1", "bad", "e2"})
			})
		})

		Convey("When the worker is shut down while idle", func() {
			go w.Run(ctx)
			err := w.Shutdown(context.Background())

			Convey("Then it stops and a second shutdown is harmless", func() {
				So(err, ShouldBeNil)
				So(w.Shutdown(context.Background()), ShouldBeNil)
			})
		})
	})
}

func TestPool(t *testing.T) {
	Convey("Given a pool of three workers", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		q := queue.NewInMemoryQueue(queue.WithCapacity(100))
		h := &recorder{}
		p := NewPool(3, q, h)
		p.Start(ctx)

		Convey("When events are enqueued and the pool shuts down", func() {
			for i := 0; i < 50; i++ {
				So(q.Enqueue(ctx, rosterEvent("e")), ShouldBeNil)
			}
			err := p.Shutdown(context.Background())

			Convey("Then the backlog is drained first", func() {
				So(err, ShouldBeNil)
				So(h.ids(), ShouldHaveLength, 50)
				So(q.IsClosed(), ShouldBeTrue)
			})
		})

		Convey("Then the pool reports its size", func() {
			So(p.Size(), ShouldEqual, 3)
			So(p.Shutdown(context.Background()), ShouldBeNil)
		})
	})

	Convey("Given a non-positive worker count", t, func() {
		p := NewPool(0, queue.NewInMemoryQueue(), HandlerFunc(func(context.Context, Event) error { return nil }))

		Convey("Then one worker per CPU is created", func() {
			So(p.Size(), ShouldBeGreaterThan, 0)
		})
	})
}
