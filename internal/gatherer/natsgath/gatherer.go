package natsgath

import (
	"encoding/json"
	"log/slog"

	"github.com/programme-lv/sampler/api"
)

type natsGatherer struct {
	nc      Publisher
	subject string
	jobUuid string
	log     *slog.Logger
}

// publish is fire and forget: a lost event never fails the job.
func (g *natsGatherer) publish(event any) {
	data, err := json.Marshal(event)
	if err != nil {
		g.log.Error("cannot encode event", "error", err)
		return
	}
	if err := g.nc.Publish(g.subject, data); err != nil {
		g.log.Warn("event dropped", "error", err)
	}
}

func (g *natsGatherer) StartJob(sourcePath string, caseCount int) {
	g.publish(api.NewStartJob(g.jobUuid, sourcePath, caseCount))
}

func (g *natsGatherer) StartCompile() {
	g.publish(api.NewStartCompile(g.jobUuid))
}

func (g *natsGatherer) FinishCompile(success bool, output string, elapsedMs int64) {
	output = api.TrimStrToRect(output, api.MaxOutputHeight, api.MaxOutputWidth)
	g.publish(api.NewFinishCompile(g.jobUuid, success, output, elapsedMs))
}

func (g *natsGatherer) ReachTest(testId int) {
	g.publish(api.NewReachTest(g.jobUuid, testId))
}

func (g *natsGatherer) FinishTest(testId int, verdict api.Verdict) {
	g.publish(api.NewFinishTest(g.jobUuid, testId, api.TrimVerdict(verdict)))
}

func (g *natsGatherer) CompileError(msg string) {
	msg = api.TrimStrToRect(msg, api.MaxOutputHeight, api.MaxOutputWidth)
	g.publish(api.NewFinishJob(g.jobUuid, &msg, true, false))
}

func (g *natsGatherer) InternalError(msg string) {
	g.publish(api.NewFinishJob(g.jobUuid, &msg, false, true))
}

func (g *natsGatherer) FinishNoError() {
	g.publish(api.NewFinishJob(g.jobUuid, nil, false, false))
}
