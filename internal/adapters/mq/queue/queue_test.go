package queue_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/fightsight/engine/internal/adapters/mq/queue"
	. "github.com/smartystreets/goconvey/convey"
)

func job() queue.Job {
	return queue.Job{SessionID: uuid.New(), PosesPath: "/data/poses.jsonl"}
}

func TestInMemoryQueue(t *testing.T) {
	ctx := context.Background()

	Convey("Given a bounded in-memory queue", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(2))
		defer func() { _ = q.Close() }()

		Convey("When enqueuing within capacity", func() {
			So(q.Enqueue(ctx, job()), ShouldBeTrue)
			So(q.Enqueue(ctx, job()), ShouldBeTrue)

			Convey("Then the length reflects the queued jobs", func() {
				So(q.Len(ctx), ShouldEqual, 2)
			})

			Convey("Then a further enqueue is refused without blocking", func() {
				done := make(chan bool, 1)
				go func() { done <- q.Enqueue(ctx, job()) }()

				select {
				case ok := <-done:
					So(ok, ShouldBeFalse)
				case <-time.After(time.Second):
					t.Fatal("enqueue blocked on a full queue")
				}
			})
		})

		Convey("When dequeuing", func() {
			j := job()
			So(q.Enqueue(ctx, j), ShouldBeTrue)

			out := q.Dequeue(ctx)

			Convey("Then the job arrives intact", func() {
				select {
				case got := <-out:
					So(got.SessionID, ShouldEqual, j.SessionID)
					So(got.PosesPath, ShouldEqual, j.PosesPath)
				case <-time.After(time.Second):
					t.Fatal("dequeue did not deliver")
				}
			})
		})

		Convey("When the queue is closed", func() {
			So(q.Close(), ShouldBeNil)

			Convey("Then it reports closed and refuses new jobs", func() {
				So(q.IsClosed(), ShouldBeTrue)
				So(q.Enqueue(ctx, job()), ShouldBeFalse)
			})

			Convey("Then the dequeue channel drains and closes", func() {
				out := q.Dequeue(ctx)
				select {
				case _, open := <-out:
					So(open, ShouldBeFalse)
				case <-time.After(time.Second):
					t.Fatal("dequeue channel did not close")
				}
			})

			Convey("Then closing again is a no-op", func() {
				So(q.Close(), ShouldBeNil)
			})
		})
	})
}
