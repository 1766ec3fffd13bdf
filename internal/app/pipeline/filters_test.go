package pipeline

import (
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/matchbot/internal/domain/model"
)

func TestFiltersFromAnswers(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	located := model.Job{"location": map[string]any{"text": "Lyon", "lat": 45.76, "lng": 4.83}}

	Convey("Given a months answer of 0", t, func() {
		f := FiltersFromAnswers([]string{"Dev", "0", "0", "", "0"}, model.Job{}, 30, now)

		Convey("Then there is no lower creation bound", func() {
			So(f.CreatedAtMin, ShouldBeNil)
			So(f.CreatedAtMax, ShouldEqual, now)
		})
		Convey("Then the radius falls back to the default", func() {
			So(f.Radius, ShouldEqual, 30)
		})
		Convey("Then a job without coordinates has no location", func() {
			So(f.Location, ShouldBeNil)
		})
	})

	Convey("Given a months answer of 6", t, func() {
		f := FiltersFromAnswers([]string{"Dev", "6", "50", "Senior", "3"}, located, 30, now)

		Convey("Then the lower bound is 180 days before now", func() {
			So(f.CreatedAtMin, ShouldNotBeNil)
			So(*f.CreatedAtMin, ShouldEqual, now.Add(-180*24*time.Hour))
		})
		Convey("Then the other answers are used", func() {
			So(f.JobTitle, ShouldEqual, "Dev")
			So(f.Radius, ShouldEqual, 50)
			So(f.Seniority, ShouldEqual, 3)
			So(*f.Location, ShouldResemble, model.GeoPoint{Lat: 45.76, Lng: 4.83})
		})
	})

	Convey("Given a months answer far beyond any real lookback", t, func() {
		f := FiltersFromAnswers([]string{"Dev", "4000", "0", "", "0"}, model.Job{}, 30, now)

		Convey("Then the lower bound is still in the past", func() {
			So(f.CreatedAtMin, ShouldNotBeNil)
			So(f.CreatedAtMin.Before(now), ShouldBeTrue)
			So(*f.CreatedAtMin, ShouldEqual, now.AddDate(0, 0, -4000*30))
		})
	})

	Convey("Given an absurd months answer", t, func() {
		f := FiltersFromAnswers([]string{"Dev", "99999999999999", "0", "", "0"}, model.Job{}, 30, now)

		Convey("Then the lookback is capped and stays in the past", func() {
			So(f.CreatedAtMin, ShouldNotBeNil)
			So(f.CreatedAtMin.Before(now), ShouldBeTrue)
			So(*f.CreatedAtMin, ShouldEqual, now.AddDate(0, 0, -12000*30))
		})
	})

	Convey("Given loose or missing answers", t, func() {
		f := FiltersFromAnswers([]string{"Dev", " 2 months", "about 10km"}, model.Job{}, 25, now)

		So(*f.CreatedAtMin, ShouldEqual, now.Add(-60*24*time.Hour))
		So(f.Radius, ShouldEqual, 25)
		So(f.Seniority, ShouldEqual, 0)
	})
}

func TestResult(t *testing.T) {
	Convey("Given a failed lookup", t, func() {
		r := resultOf("value", errors.New("boom"), "fallback")
		So(r.Value, ShouldEqual, "fallback")
		So(r.Degraded(), ShouldBeTrue)
	})

	Convey("Given a successful lookup", t, func() {
		r := resultOf(42, nil, 0)
		So(r.Value, ShouldEqual, 42)
		So(r.Degraded(), ShouldBeFalse)
	})
}
