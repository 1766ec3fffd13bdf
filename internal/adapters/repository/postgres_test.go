package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/matchbot/internal/domain/model"
)

// TestPostgresLog runs against a real database when MATCHBOT_TEST_DATABASE_URL is set.
func TestPostgresLog(t *testing.T) {
	url := os.Getenv("MATCHBOT_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("MATCHBOT_TEST_DATABASE_URL not set")
	}

	Convey("Given a migrated postgres run log", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		pool, err := NewPostgresPool(ctx, url)
		So(err, ShouldBeNil)
		defer pool.Close()

		store, err := NewPostgresLog(ctx, pool)
		So(err, ShouldBeNil)

		id := uuid.NewString()
		r := run(id, time.Now().UTC().Truncate(time.Millisecond))
		So(store.Record(ctx, r), ShouldBeNil)

		Convey("Recording again updates the run", func() {
			r.Outcome = model.OutcomeNoMatch
			So(store.Record(ctx, r), ShouldBeNil)

			got, err := store.Get(ctx, id)
			So(err, ShouldBeNil)
			So(got.Outcome, ShouldEqual, model.OutcomeNoMatch)
			So(got.InputKind, ShouldEqual, model.MediaNone)
		})

		Convey("Unknown ids are not found", func() {
			_, err := store.Get(ctx, uuid.NewString())
			So(err, ShouldWrap, ErrNotFound)
		})

		Convey("Recent and Count see the run", func() {
			recent, err := store.Recent(ctx, 1)
			So(err, ShouldBeNil)
			So(recent, ShouldHaveLength, 1)
			n, err := store.Count(ctx)
			So(err, ShouldBeNil)
			So(n, ShouldBeGreaterThanOrEqualTo, 1)
		})
	})
}
