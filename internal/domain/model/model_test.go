package model_test

import (
	"encoding/json"
	"testing"

	model "github.com/okian/matchbot/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestJob(t *testing.T) {
	convey.Convey("Given a parsed job", t, func() {
		job := model.Job{
			"key":       "invented",
			"board":     map[string]any{"key": "b"},
			"board_key": "b",
			"name":      "Backend Engineer",
			"location":  map[string]any{"text": "Paris", "lat": nil, "lng": nil},
		}

		convey.Convey("When identifiers are stripped and the description attached", func() {
			job.StripIdentifiers()
			job.SetDescription("We need a Go developer")

			convey.Convey("Then only the parsed fields and the section remain", func() {
				convey.So(job, convey.ShouldNotContainKey, "key")
				convey.So(job, convey.ShouldNotContainKey, "board")
				convey.So(job, convey.ShouldNotContainKey, "board_key")
				sections := job["sections"].([]any)
				convey.So(sections, convey.ShouldHaveLength, 1)
				sec := sections[0].(map[string]any)
				convey.So(sec["title"], convey.ShouldEqual, "Job Description")
				convey.So(sec["description"], convey.ShouldEqual, "We need a Go developer")
			})
		})

		convey.Convey("When the location has no coordinates", func() {
			convey.So(job.LocationText(), convey.ShouldEqual, "Paris")
			convey.So(job.Geopoint(), convey.ShouldBeNil)
		})

		convey.Convey("When a geocoded location is set", func() {
			job.SetLocation(map[string]any{"text": "Paris", "lat": 48.85, "lng": 2.35})

			convey.Convey("Then the geopoint should be available", func() {
				convey.So(job.Geopoint(), convey.ShouldResemble, &model.GeoPoint{Lat: 48.85, Lng: 2.35})
				convey.So(job.Name(), convey.ShouldEqual, "Backend Engineer")
			})
		})

		convey.Convey("When the job has no location at all", func() {
			delete(job, "location")
			convey.So(job.LocationText(), convey.ShouldBeEmpty)
			convey.So(job.Geopoint(), convey.ShouldBeNil)
		})
	})
}

func TestProfileDecoding(t *testing.T) {
	convey.Convey("Given a profile payload with mixed skill shapes", t, func() {
		raw := `{
			"key": "p1",
			"source": {"key": "src"},
			"info": {"first_name": "Ada", "last_name": "Lovelace", "summary": "Engineer.", "picture": null},
			"experiences": [{"title": "CTO", "description": "Led teams"}, {"title": "Dev", "description": ""}],
			"skills": ["go", {"name": "sql", "type": "hard"}, {"value": "k8s"}],
			"attachments": [{"type": "resume", "public_url": "https://files/p1.pdf"}]
		}`

		var p model.Profile
		err := json.Unmarshal([]byte(raw), &p)

		convey.Convey("Then it should decode every shape", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(p.SourceKeyOrRef(), convey.ShouldEqual, "src")
			convey.So(p.Skills, convey.ShouldHaveLength, 3)
			convey.So(p.Skills[0].Label(), convey.ShouldEqual, "go")
			convey.So(p.Skills[1].Label(), convey.ShouldEqual, "sql")
			convey.So(p.Skills[2].Label(), convey.ShouldEqual, "k8s")
			convey.So(p.LatestTitle(), convey.ShouldEqual, "CTO")
			convey.So(p.AttachmentURL(), convey.ShouldEqual, "https://files/p1.pdf")
		})

		convey.Convey("And the tagging text should join summary, experiences and skills", func() {
			convey.So(p.TaggingText(), convey.ShouldEqual, "Engineer. CTO Led teams Dev  go sql k8s")
		})

		convey.Convey("And the display name should fall back to the key", func() {
			convey.So(p.DisplayName("Profile"), convey.ShouldEqual, "p1")
			p.Info.Name = "Ada L."
			convey.So(p.DisplayName("Profile"), convey.ShouldEqual, "Ada L.")
			p.Info.FullName = "Ada Lovelace"
			convey.So(p.DisplayName("Profile"), convey.ShouldEqual, "Ada Lovelace")
			convey.So(model.Profile{}.DisplayName("Profile"), convey.ShouldEqual, "Profile")
		})
	})
}

func TestExplanation(t *testing.T) {
	convey.Convey("Given an upskilling payload with strings and objects", t, func() {
		raw := `{"strengths": ["Go", {"name": "Leadership"}, "SQL"], "weaknesses": [{"name": "Rust"}, 42]}`

		var e model.Explanation
		err := json.Unmarshal([]byte(raw), &e)

		convey.Convey("Then both shapes decode and unknown items become empty", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(e.Strengths[1].Name, convey.ShouldEqual, "Leadership")
			convey.So(e.Weaknesses[1].Name, convey.ShouldBeEmpty)
		})

		convey.Convey("And truncation keeps two of each", func() {
			tr := e.Truncate(2)
			convey.So(tr.Strengths, convey.ShouldHaveLength, 2)
			convey.So(tr.Weaknesses, convey.ShouldHaveLength, 2)
			convey.So(tr.Strengths[0].Name, convey.ShouldEqual, "Go")
		})
	})
}

func TestInboundMessage(t *testing.T) {
	convey.Convey("Given inbound messages", t, func() {
		convey.So(model.InboundMessage{NumMedia: 1}.HasMedia(), convey.ShouldBeTrue)
		convey.So(model.InboundMessage{Body: "hi"}.HasMedia(), convey.ShouldBeFalse)
	})
}

func TestJobSkillNames(t *testing.T) {
	convey.Convey("Given a decoded job with mixed skill shapes", t, func() {
		var job model.Job
		err := json.Unmarshal([]byte(`{"skills":[{"name":"Go","type":"hard"},"SQL",{"value":"x"},"",42]}`), &job)
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("Then named objects and non-empty strings are listed in order", func() {
			convey.So(job.SkillNames(), convey.ShouldResemble, []string{"Go", "SQL"})
		})
	})

	convey.Convey("Given a job without skills", t, func() {
		convey.So(model.Job{}.SkillNames(), convey.ShouldBeEmpty)
	})
}
