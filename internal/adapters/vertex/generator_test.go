package vertex

import (
	"context"
	"errors"
	"testing"

	"cloud.google.com/go/vertexai/genai"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/matchbot/internal/domain/prompts"
)

type fakeModel struct {
	parts []genai.Part
	resp  *genai.GenerateContentResponse
	err   error
}

func (f *fakeModel) GenerateContent(_ context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	f.parts = parts
	return f.resp, f.err
}

func TestGenerateJob(t *testing.T) {
	Convey("Given a model answering in several parts", t, func() {
		fm := &fakeModel{resp: &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []genai.Part{genai.Text(" Data "), genai.Text("Engineer\n")}},
			}},
		}}
		g := &Generator{model: fm}

		job, err := g.GenerateJob(context.Background(), "SQL, Spark")
		So(err, ShouldBeNil)

		Convey("The parts are joined and trimmed", func() {
			So(job, ShouldEqual, "Data Engineer")
			So(fm.parts, ShouldHaveLength, 1)
			So(fm.parts[0], ShouldEqual, genai.Text(prompts.JobFromResume("SQL, Spark")))
			So(g.Close(), ShouldBeNil)
		})
	})

	Convey("No candidates is an empty title", t, func() {
		g := &Generator{model: &fakeModel{resp: &genai.GenerateContentResponse{}}}
		job, err := g.GenerateJob(context.Background(), "cv")
		So(err, ShouldBeNil)
		So(job, ShouldBeEmpty)
	})

	Convey("Model failures are generate errors", t, func() {
		g := &Generator{model: &fakeModel{err: errors.New("quota")}}
		_, err := g.GenerateJob(context.Background(), "cv")
		So(err, ShouldWrap, ErrGenerate)
	})
}
