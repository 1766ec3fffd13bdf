package analysis_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/matchbot/internal/app/analysis"
	"github.com/okian/matchbot/internal/domain/model"
)

type fakeHrFlow struct {
	profile    model.Profile
	profileErr error
	job        model.Job
	jobErr     error
	grade      float64
	graded     bool
	gradeErr   error
	list       []model.Profile
	listErr    error

	mu    sync.Mutex
	calls []string
}

func (f *fakeHrFlow) note(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeHrFlow) GetProfile(_ context.Context, sourceKey, key string) (model.Profile, error) {
	f.note("profile:" + sourceKey + "/" + key)
	return f.profile, f.profileErr
}

func (f *fakeHrFlow) GetJob(_ context.Context, boardKey, key string) (model.Job, error) {
	f.note("job:" + boardKey + "/" + key)
	return f.job, f.jobErr
}

func (f *fakeHrFlow) GradeOne(_ context.Context, algorithmKey, _, _, _, _ string) (float64, bool, error) {
	f.note("grade:" + algorithmKey)
	return f.grade, f.graded, f.gradeErr
}

func (f *fakeHrFlow) ListProfilesWithInfo(_ context.Context, sourceKey string, limit int) ([]model.Profile, error) {
	f.note("list:" + sourceKey)
	if limit < len(f.list) {
		return f.list[:limit], f.listErr
	}
	return f.list, f.listErr
}

// fakeWriter answers recommendation prompts and email prompts separately.
type fakeWriter struct {
	recs     string
	recsErr  error
	email    string
	emailErr error

	mu      sync.Mutex
	prompts []string
}

func (w *fakeWriter) Complete(_ context.Context, prompt string, _ int) (string, error) {
	w.mu.Lock()
	w.prompts = append(w.prompts, prompt)
	w.mu.Unlock()
	if strings.Contains(prompt, "learning recommendations") {
		return w.recs, w.recsErr
	}
	return w.email, w.emailErr
}

func (w *fakeWriter) emailPrompt() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, p := range w.prompts {
		if !strings.Contains(p, "learning recommendations") {
			return p
		}
	}
	return ""
}

func settings() analysis.Settings {
	return analysis.Settings{SourceKey: "src", BoardKey: "board", AlgorithmKey: "algo"}
}

func adaProfile() model.Profile {
	return model.Profile{
		Key:          "p1",
		Info:         model.ProfileInfo{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"},
		Skills:       []model.Skill{{Name: "Python"}, {Name: "go"}, {Name: "Docker"}},
		TextLanguage: "fr",
	}
}

func goJob() model.Job {
	return model.Job{
		"name":   "Go Developer",
		"skills": []any{map[string]any{"name": "Go"}, map[string]any{"name": "Kubernetes"}, "SQL"},
	}
}

const recsJSON = "```json\n[{\"type\":\"hardskill\",\"skill\":\"Kubernetes\",\"title\":\"Learn Kubernetes\",\"description\":\"Run clusters\",\"courses\":[{\"name\":\"K8s 101\",\"platform\":\"Udemy\",\"url\":\"https://u/k8s\"}]},{\"title\":\"SQL basics\",\"description\":\"Queries\"}]\n```"

func TestAnalyze(t *testing.T) {
	Convey("Given a profile, a job and a grading score of 0.837", t, func() {
		hr := &fakeHrFlow{profile: adaProfile(), job: goJob(), grade: 0.837, graded: true}
		w := &fakeWriter{recs: recsJSON, email: "Dear Ada"}
		svc := analysis.New(hr, w, settings())

		res, err := svc.Analyze(context.Background(), analysis.Request{ProfileKey: "p1", JobKey: "j1"})
		So(err, ShouldBeNil)

		Convey("Then the score is rounded and compared with the 0.8 threshold", func() {
			So(res.Score, ShouldEqual, 0.84)
			So(res.Threshold, ShouldEqual, 0.8)
			So(res.Matched, ShouldBeTrue)
			So(res.DetectedLanguage, ShouldEqual, "fr")
		})

		Convey("Then the candidate is named and reachable", func() {
			So(res.Candidate.Name, ShouldEqual, "Ada Lovelace")
			So(res.Candidate.Email, ShouldEqual, "ada@example.com")
		})

		Convey("Then missing job skills come before held ones and extras are strengths", func() {
			names := func(ls []model.SkillLevel) []string {
				out := []string{}
				for _, l := range ls {
					out = append(out, l.Name)
				}
				return out
			}
			So(names(res.SkillGaps), ShouldResemble, []string{"Kubernetes", "SQL", "Go"})
			So(res.SkillGaps[0].CandidateLevel, ShouldEqual, 0)
			So(res.SkillGaps[2].CandidateLevel, ShouldEqual, 65)
			So(names(res.Strengths), ShouldResemble, []string{"Python", "Docker"})
			So(res.Strengths[0].CandidateLevel, ShouldEqual, 75)
		})

		Convey("Then recommendations are parsed with defaults filled in", func() {
			So(res.Recommendations, ShouldHaveLength, 2)
			So(res.Recommendations[0].Courses[0].Platform, ShouldEqual, "Udemy")
			So(res.Recommendations[1].Type, ShouldEqual, "hardskill")
			So(res.Recommendations[1].Courses, ShouldNotBeNil)
		})

		Convey("Then the email is written for the candidate in their language", func() {
			So(res.Email, ShouldEqual, "Dear Ada")
			p := w.emailPrompt()
			So(p, ShouldContainSubstring, "CANDIDATE: Ada Lovelace")
			So(p, ShouldContainSubstring, "JOB: Go Developer")
			So(p, ShouldContainSubstring, "Write in fr")
			So(p, ShouldContainSubstring, "warm, constructive")
		})

		Convey("Then the chat context mirrors the analysis", func() {
			So(res.ChatContext.CandidateName, ShouldEqual, "Ada")
			So(res.ChatContext.JobTitle, ShouldEqual, "Go Developer")
			So(res.ChatContext.SkillGaps, ShouldResemble, res.SkillGaps)
			So(res.ChatContext.Recommendations, ShouldResemble, res.Recommendations)
		})

		Convey("Then the configured keys are used", func() {
			So(hr.calls, ShouldContain, "profile:src/p1")
			So(hr.calls, ShouldContain, "job:board/j1")
			So(hr.calls, ShouldContain, "grade:algo")
		})
	})

	Convey("Given grading fails", t, func() {
		hr := &fakeHrFlow{profile: adaProfile(), job: goJob(), gradeErr: errors.New("boom")}
		svc := analysis.New(hr, &fakeWriter{recs: recsJSON, email: "x"}, settings())

		res, err := svc.Analyze(context.Background(), analysis.Request{ProfileKey: "p1", JobKey: "j1"})
		So(err, ShouldBeNil)
		So(res.Score, ShouldEqual, analysis.DefaultScore)
		So(res.Matched, ShouldBeFalse)
	})

	Convey("Given grading returns no tuple", t, func() {
		hr := &fakeHrFlow{profile: adaProfile(), job: goJob()}
		svc := analysis.New(hr, &fakeWriter{recs: recsJSON, email: "x"}, settings())

		res, err := svc.Analyze(context.Background(), analysis.Request{ProfileKey: "p1", JobKey: "j1"})
		So(err, ShouldBeNil)
		So(res.Score, ShouldEqual, 0.5)
	})

	Convey("Given the profile cannot be fetched", t, func() {
		hr := &fakeHrFlow{profileErr: errors.New("404"), job: goJob()}
		svc := analysis.New(hr, &fakeWriter{}, settings())

		_, err := svc.Analyze(context.Background(), analysis.Request{ProfileKey: "nope", JobKey: "j1"})
		So(errors.Is(err, analysis.ErrNotFound), ShouldBeTrue)
	})

	Convey("Given the job cannot be fetched", t, func() {
		hr := &fakeHrFlow{profile: adaProfile(), jobErr: errors.New("404")}
		svc := analysis.New(hr, &fakeWriter{}, settings())

		_, err := svc.Analyze(context.Background(), analysis.Request{ProfileKey: "p1", JobKey: "nope"})
		So(errors.Is(err, analysis.ErrNotFound), ShouldBeTrue)
	})

	Convey("Given the recommendation answer is unusable", t, func() {
		hr := &fakeHrFlow{profile: adaProfile(), job: goJob(), grade: 0.3, graded: true}

		for _, w := range []*fakeWriter{
			{recs: "sorry, no JSON", email: "x"},
			{recsErr: errors.New("rate limited"), email: "x"},
			{recs: "[]", email: "x"},
		} {
			res, err := analysis.New(hr, w, settings()).Analyze(context.Background(), analysis.Request{ProfileKey: "p1", JobKey: "j1"})
			So(err, ShouldBeNil)
			So(res.Recommendations, ShouldHaveLength, 1)
			So(res.Recommendations[0].Skill, ShouldEqual, "Kubernetes")
			So(res.Recommendations[0].Title, ShouldEqual, "Build foundational knowledge in Kubernetes")
		}
	})

	Convey("Given a candidate who covers every job skill", t, func() {
		job := model.Job{"name": "Dev", "skills": []any{}}
		hr := &fakeHrFlow{profile: adaProfile(), job: job}
		w := &fakeWriter{email: "x"}
		res, err := analysis.New(hr, w, settings()).Analyze(context.Background(), analysis.Request{ProfileKey: "p1", JobKey: "j1"})

		So(err, ShouldBeNil)
		So(res.SkillGaps, ShouldBeEmpty)
		So(res.Recommendations, ShouldHaveLength, 1)
		So(res.Recommendations[0].Type, ShouldEqual, "general")
		So(w.prompts, ShouldHaveLength, 1)
	})

	Convey("Given the email cannot be written", t, func() {
		hr := &fakeHrFlow{profile: adaProfile(), job: goJob()}
		svc := analysis.New(hr, &fakeWriter{recs: recsJSON, emailErr: errors.New("down")}, settings())

		_, err := svc.Analyze(context.Background(), analysis.Request{ProfileKey: "p1", JobKey: "j1"})
		So(errors.Is(err, analysis.ErrEmail), ShouldBeTrue)
	})

	Convey("Given roast mode and an anonymous profile without a job title", t, func() {
		hr := &fakeHrFlow{profile: model.Profile{Key: "p9"}, job: model.Job{}}
		w := &fakeWriter{email: "🔥"}
		res, err := analysis.New(hr, w, settings()).Analyze(context.Background(),
			analysis.Request{ProfileKey: "p9", JobKey: "j1", RoastMode: true})

		So(err, ShouldBeNil)
		So(res.Candidate.Name, ShouldEqual, "Candidate")
		So(res.ChatContext.JobTitle, ShouldEqual, "Position")
		So(res.DetectedLanguage, ShouldEqual, "en")
		So(w.emailPrompt(), ShouldContainSubstring, "roast email")
	})
}

func TestProfiles(t *testing.T) {
	Convey("Given stored profiles with and without names", t, func() {
		long := strings.Repeat("é", 60)
		hr := &fakeHrFlow{list: []model.Profile{
			{Key: "p1", Info: model.ProfileInfo{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}},
			{Key: "p2", Info: model.ProfileInfo{Summary: "Backend engineer"}},
			{Key: "p3", Info: model.ProfileInfo{Summary: long}},
			{Key: "p4"},
		}}
		svc := analysis.New(hr, &fakeWriter{}, settings())

		out, err := svc.Profiles(context.Background())
		So(err, ShouldBeNil)
		So(out, ShouldHaveLength, 4)
		So(out[0], ShouldResemble, model.ProfileSummary{Key: "p1", Name: "Ada Lovelace", Email: "ada@example.com"})
		So(out[1].Name, ShouldEqual, "Backend engineer")
		So(out[2].Name, ShouldEqual, strings.Repeat("é", 50))
		So(out[3].Name, ShouldEqual, "Candidate")
		So(hr.calls, ShouldResemble, []string{"list:src"})
	})

	Convey("Given the listing fails", t, func() {
		hr := &fakeHrFlow{listErr: errors.New("down")}
		_, err := analysis.New(hr, &fakeWriter{}, settings()).Profiles(context.Background())
		So(err, ShouldNotBeNil)
	})
}

func TestCompareSkills(t *testing.T) {
	Convey("Matching is case-insensitive and duplicates collapse", t, func() {
		gaps, strengths := analysis.CompareSkills(
			[]string{"GO", "go", "Rust"},
			[]string{"Go", "go", "SQL"},
		)
		So(gaps, ShouldHaveLength, 2)
		So(gaps[0].Name, ShouldEqual, "SQL")
		So(gaps[1].Name, ShouldEqual, "Go")
		So(strengths, ShouldHaveLength, 1)
		So(strengths[0].Name, ShouldEqual, "Rust")
	})

	Convey("Both lists are capped at five", t, func() {
		gaps, strengths := analysis.CompareSkills(
			[]string{"a", "b", "c", "d", "e", "f"},
			[]string{"1", "2", "3", "4", "5", "6"},
		)
		So(gaps, ShouldHaveLength, 5)
		So(strengths, ShouldHaveLength, 5)
	})
}

func TestParseRecommendations(t *testing.T) {
	Convey("A bare JSON array is accepted", t, func() {
		recs, err := analysis.ParseRecommendations(`[{"type":"softskill","title":"Talk","description":"More"}]`)
		So(err, ShouldBeNil)
		So(recs[0].Type, ShouldEqual, "softskill")
		So(recs[0].Courses, ShouldBeEmpty)
	})

	Convey("Prose is rejected", t, func() {
		_, err := analysis.ParseRecommendations("Here are some ideas")
		So(err, ShouldNotBeNil)
	})
}
