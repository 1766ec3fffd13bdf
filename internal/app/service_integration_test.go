package service_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	workerpool "github.com/okian/matchbot/internal/adapters/mq/worker"
	repository "github.com/okian/matchbot/internal/adapters/repository"
	service "github.com/okian/matchbot/internal/app"
	"github.com/okian/matchbot/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestServiceIntegration(t *testing.T) {
	Convey("Given a service that records every run", t, func() {
		ctx := context.Background()
		runs := repository.NewMemoryLog()
		proc := workerpool.ProcessorFunc(func(ctx context.Context, m model.InboundMessage) error {
			time.Sleep(time.Millisecond)
			return runs.Record(ctx, model.Run{ID: m.MessageSID, MessageSID: m.MessageSID, Outcome: model.OutcomeMatched})
		})
		svc := service.New(proc,
			service.WithWorkerCount(4),
			service.WithQueueSize(200),
			service.WithRunLog(runs),
		)
		So(svc.Start(ctx), ShouldBeNil)

		Convey("When 50 messages arrive twice each from concurrent senders", func() {
			var wg sync.WaitGroup
			var mu sync.Mutex
			counts := map[service.Admission]int{}
			for i := 0; i < 50; i++ {
				for range 2 {
					wg.Add(1)
					go func(sid string) {
						defer wg.Done()
						adm, err := svc.Enqueue(ctx, msg(sid))
						if err != nil {
							return
						}
						mu.Lock()
						counts[adm]++
						mu.Unlock()
					}(fmt.Sprintf("SM%03d", i))
				}
			}
			wg.Wait()

			stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			So(svc.Stop(stopCtx), ShouldBeNil)

			Convey("Then each message is processed exactly once", func() {
				So(counts[service.Accepted], ShouldEqual, 50)
				So(counts[service.Duplicate], ShouldEqual, 50)
				n, err := runs.Count(ctx)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 50)
				So(svc.GetStats(ctx)["runs"], ShouldEqual, 50)
			})
		})
	})
}
