package format_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/okian/matchbot/internal/domain/format"
	"github.com/okian/matchbot/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestTruncate(t *testing.T) {
	Convey("Given text around the limit", t, func() {
		So(format.Truncate("abc", 3), ShouldEqual, "abc")
		So(format.Truncate("abcd", 3), ShouldEqual, "abc...")
		So(format.Truncate("éééé", 2), ShouldEqual, "éé...")
		So(format.Truncate("", 3), ShouldEqual, "")
	})
}

func TestClean(t *testing.T) {
	Convey("Given decomposed accents and padding", t, func() {
		So(format.Clean("  Se\u0301nior  "), ShouldEqual, "S\u00e9nior")
	})
}

func TestLead(t *testing.T) {
	Convey("Given an English formatter", t, func() {
		f := format.New("en")

		Convey("When candidates were found", func() {
			So(f.Lead("Go dev", 2), ShouldEqual, `🎯 Top 2 profiles for: "Go dev"`)
		})

		Convey("When nothing matched", func() {
			msg := f.Lead("Go dev", 0)

			Convey("Then the text is quoted in a no-match reply", func() {
				So(msg, ShouldContainSubstring, "could not find any relevant profile")
				So(msg, ShouldEndWith, `"Go dev"`)
			})
		})

		Convey("When the text is long", func() {
			msg := f.Lead(strings.Repeat("x", 500), 1)
			So(msg, ShouldContainSubstring, strings.Repeat("x", 400)+"...")
			So(msg, ShouldNotContainSubstring, strings.Repeat("x", 401))
		})

		Convey("When echoing the search text", func() {
			msg := f.Searching(strings.Repeat("y", 900))
			So(msg, ShouldStartWith, "🔍 Searching for:")
			So(msg, ShouldContainSubstring, strings.Repeat("y", 800)+"...")
		})

		Convey("When rendering an error", func() {
			So(f.Error(errors.New("boom")), ShouldEqual, "❌ Error: boom")
		})
	})

	Convey("Given an unknown language", t, func() {
		f := format.New("de")
		So(f.Messages().Ack, ShouldStartWith, "✅ Reçu.")
		So(f.Unsupported("image/png"), ShouldContainSubstring, "(image/png)")
	})
}

func TestCandidate(t *testing.T) {
	Convey("Given a fully enriched candidate", t, func() {
		f := format.New("en")
		c := model.Candidate{
			Profile: model.Profile{
				Key:         "p1",
				Info:        model.ProfileInfo{FullName: "Ada Lovelace"},
				Experiences: []model.Experience{{Title: "CTO"}},
				Attachments: []model.Attachment{{PublicURL: "https://files/p1.pdf"}},
			},
			Score:       0.9,
			Summary:     "Seasoned engineer.",
			Explanation: model.Explanation{Strengths: []model.Insight{{Name: "Go"}, {Name: ""}}},
			Seniority:   model.Tag{Label: "Lead", Value: 3},
			Degree:      model.Tag{Label: "Master", Value: 3},
		}

		msg := f.Candidate(c, 1)

		Convey("Then every line is rendered in order", func() {
			So(msg, ShouldEqual, strings.Join([]string{
				"1 🥇 Ada Lovelace 4.50 ⭐",
				"CTO",
				"💼 Lead 🎓 Master",
				"Seasoned engineer.",
				"💪 Strengths:\n• Go\n• -",
				"⚠️ Weaknesses: -",
				"📂 [Open Profile]\nhttps://files/p1.pdf",
			}, "\n"))
		})
	})

	Convey("Given a bare candidate ranked third", t, func() {
		c := model.Candidate{Profile: model.Profile{}, Score: 0.25}

		Convey("When no fallback URL is configured", func() {
			msg := format.New("fr").Candidate(c, 3)

			Convey("Then optional lines and the link are omitted", func() {
				So(msg, ShouldEqual, "3 🥉 Profil 1.25 ⭐\n💪 Strengths: -\n⚠️ Weaknesses: -")
			})
		})

		Convey("When a fallback URL is configured", func() {
			msg := format.New("fr", format.WithFallbackURL("https://example.com/sample.pdf")).Candidate(c, 2)

			Convey("Then it is linked", func() {
				So(msg, ShouldStartWith, "2 🥈 Profil")
				So(msg, ShouldEndWith, "📂 [Open Profile]\nhttps://example.com/sample.pdf")
			})
		})
	})
}
