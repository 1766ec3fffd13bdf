package simulate

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/okian/matchbot/internal/adapters/twilio"
	"github.com/okian/matchbot/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
	"github.com/twilio/twilio-go/client"
)

// fakeServer mimics the matchbot webhook surface.
type fakeServer struct {
	mu        sync.Mutex
	sids      map[string]int
	validator *twilio.SignatureValidator
	health    int
}

func newFakeServer(token string) *fakeServer {
	f := &fakeServer{sids: map[string]int{}, health: http.StatusOK}
	if token != "" {
		f.validator = twilio.NewSignatureValidator(token, "")
	}
	return f
}

func (f *fakeServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(f.health)
	})
	mux.HandleFunc("/stats", func(w http.ResponseWriter, _ *http.Request) {
		f.mu.Lock()
		runs := len(f.sids)
		f.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]any{"runs": runs})
	})
	mux.HandleFunc(DefaultWebhookPath, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if f.validator != nil && !f.validator.Valid(r) {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		f.mu.Lock()
		f.sids[r.PostForm.Get("MessageSid")]++
		f.mu.Unlock()
		w.Header().Set("Content-Type", "text/xml")
		_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Response><Message>ok</Message></Response>`)
	})
	return mux
}

func TestSimulate(t *testing.T) {
	logger.SetOutput(io.Discard)

	convey.Convey("Given generated conversations", t, func() {
		cfg := &Config{Senders: 10, DuplicateEvery: 3}
		stats := &Stats{}
		convs := generateConversations(context.Background(), cfg, stats)

		convey.So(convs, convey.ShouldHaveLength, 10)
		convey.So(stats.Conversations, convey.ShouldEqual, 10)

		convey.Convey("Each sender has its own number and Twilio-shaped SIDs", func() {
			seen := map[string]bool{}
			for _, c := range convs {
				convey.So(seen[c.From], convey.ShouldBeFalse)
				seen[c.From] = true
				convey.So(c.From, convey.ShouldStartWith, "whatsapp:+33")
				for _, m := range c.Messages {
					convey.So(m.From, convey.ShouldEqual, c.From)
					convey.So(m.SID, convey.ShouldStartWith, "SM")
					convey.So(len(m.SID), convey.ShouldEqual, 34)
				}
			}
		})

		convey.Convey("Redeliveries repeat the previous SID", func() {
			redeliveries := 0
			for _, c := range convs {
				for i, m := range c.Messages {
					if m.Redelivery {
						redeliveries++
						convey.So(i, convey.ShouldBeGreaterThan, 0)
						convey.So(c.Messages[i-1].SID, convey.ShouldEqual, m.SID)
					}
				}
			}
			convey.So(redeliveries, convey.ShouldBeGreaterThan, 0)
		})
	})

	convey.Convey("Given a signed form", t, func() {
		form := formFor(Message{SID: "SM1", From: "whatsapp:+33600000000", Body: "Développeur Go"})
		u := "https://bot.example.com/twilio/whatsapp"
		sig := Sign("secret", u, form)

		convey.Convey("The Twilio request validator accepts the signature", func() {
			params := map[string]string{}
			for k := range form {
				params[k] = form.Get(k)
			}
			valid := client.NewRequestValidator("secret")
			other := client.NewRequestValidator("other")
			convey.So(valid.Validate(u, params, sig), convey.ShouldBeTrue)
			convey.So(other.Validate(u, params, sig), convey.ShouldBeFalse)
		})
	})

	convey.Convey("Given a media message", t, func() {
		form := formFor(Message{SID: "SM2", From: "whatsapp:+1", MediaURL: "https://x/y", MediaType: "image/jpeg"})

		convey.So(form.Get("NumMedia"), convey.ShouldEqual, "1")
		convey.So(form.Get("MediaUrl0"), convey.ShouldEqual, "https://x/y")
		convey.So(form.Get("MediaContentType0"), convey.ShouldEqual, "image/jpeg")
	})

	convey.Convey("Given a running server that checks signatures", t, func() {
		fake := newFakeServer("secret")
		srv := httptest.NewServer(fake.handler())
		defer srv.Close()

		convey.Convey("A signed run gets a reply for every message", func() {
			cfg := &Config{BaseURL: srv.URL, AuthToken: "secret", Senders: 8, Workers: 3, DuplicateEvery: 2}
			stats, err := Run(context.Background(), cfg)

			convey.So(err, convey.ShouldBeNil)
			convey.So(stats.MessagesSent, convey.ShouldBeGreaterThanOrEqualTo, 8)
			convey.So(stats.Replied, convey.ShouldEqual, stats.MessagesSent)
			convey.So(stats.Failed, convey.ShouldEqual, 0)
			convey.So(stats.Redeliveries, convey.ShouldBeGreaterThan, 0)
			convey.So(stats.ServerStatsRead, convey.ShouldBeTrue)
			convey.So(stats.ServerRuns, convey.ShouldEqual, stats.MessagesSent-stats.Redeliveries)
		})

		convey.Convey("A run with the wrong token is rejected", func() {
			cfg := &Config{BaseURL: srv.URL, AuthToken: "wrong", Senders: 3, Workers: 2}
			stats, err := Run(context.Background(), cfg)

			convey.So(err, convey.ShouldBeNil)
			convey.So(stats.Replied, convey.ShouldEqual, 0)
			convey.So(stats.Rejected, convey.ShouldEqual, stats.MessagesSent)
			convey.So(stats.ServerRuns, convey.ShouldEqual, 0)
		})

		convey.Convey("Generated conversations can be saved", func() {
			out := t.TempDir() + "/convs/run.json"
			cfg := &Config{BaseURL: srv.URL, AuthToken: "secret", Senders: 2, Workers: 1, OutputFile: out}
			_, err := Run(context.Background(), cfg)
			convey.So(err, convey.ShouldBeNil)

			var saved []Conversation
			data, readErr := os.ReadFile(out)
			convey.So(readErr, convey.ShouldBeNil)
			convey.So(json.Unmarshal(data, &saved), convey.ShouldBeNil)
			convey.So(saved, convey.ShouldHaveLength, 2)
		})
	})

	convey.Convey("Given an unhealthy server", t, func() {
		fake := newFakeServer("")
		fake.health = http.StatusServiceUnavailable
		srv := httptest.NewServer(fake.handler())
		defer srv.Close()

		_, err := Run(context.Background(), &Config{BaseURL: srv.URL, Timeout: time.Second})
		convey.So(err, convey.ShouldNotBeNil)
		convey.So(strings.Contains(err.Error(), "health"), convey.ShouldBeTrue)
	})
}
