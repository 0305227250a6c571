package claim_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"

	"github.com/fightsight/engine/internal/domain/claim"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRegistry(t *testing.T) {
	ctx := context.Background()

	Convey("Given an in-memory claim registry", t, func() {
		r := claim.NewInMemoryRegistry()

		Convey("When one caller claims a session", func() {
			id := uuid.New()
			So(r.Claim(ctx, id), ShouldBeTrue)

			Convey("Then a second claim on the same session loses", func() {
				So(r.Claim(ctx, id), ShouldBeFalse)
				So(r.Size(), ShouldEqual, 1)
			})

			Convey("Then release makes the session claimable again", func() {
				r.Release(ctx, id)
				So(r.Size(), ShouldEqual, 0)
				So(r.Claim(ctx, id), ShouldBeTrue)
			})
		})

		Convey("When releasing an unclaimed session", func() {
			r.Release(ctx, uuid.New())

			Convey("Then nothing changes", func() {
				So(r.Size(), ShouldEqual, 0)
			})
		})

		Convey("When many goroutines race for the same session", func() {
			id := uuid.New()
			var wins atomic.Int64
			var wg sync.WaitGroup
			for i := 0; i < 64; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if r.Claim(ctx, id) {
						wins.Add(1)
					}
				}()
			}
			wg.Wait()

			Convey("Then exactly one wins", func() {
				So(wins.Load(), ShouldEqual, 1)
				So(r.Size(), ShouldEqual, 1)
			})
		})
	})

	Convey("Given a registry bounded to two claims", t, func() {
		r := claim.NewInMemoryRegistry(claim.WithMaxSize(2))

		Convey("When capacity is reached", func() {
			a, b := uuid.New(), uuid.New()
			So(r.Claim(ctx, a), ShouldBeTrue)
			So(r.Claim(ctx, b), ShouldBeTrue)

			Convey("Then further claims are refused until a release", func() {
				c := uuid.New()
				So(r.Claim(ctx, c), ShouldBeFalse)
				r.Release(ctx, a)
				So(r.Claim(ctx, c), ShouldBeTrue)
			})
		})
	})
}
