package sqsgath

import (
	"github.com/programme-lv/sampler/api"
)

type sqsResQueueGatherer struct {
	sqsClient Sender
	queueUrl  string
	jobUuid   string
}

// StartJob implements batch.ResultGatherer.
func (s *sqsResQueueGatherer) StartJob(sourcePath string, caseCount int) {
	s.send(api.NewStartJob(s.jobUuid, sourcePath, caseCount))
}

// StartCompile implements batch.ResultGatherer.
func (s *sqsResQueueGatherer) StartCompile() {
	s.send(api.NewStartCompile(s.jobUuid))
}

func (s *sqsResQueueGatherer) FinishCompile(success bool, output string, elapsedMs int64) {
	output = api.TrimStrToRect(output, api.MaxOutputHeight*2, api.MaxOutputWidth*2)
	s.send(api.NewFinishCompile(s.jobUuid, success, output, elapsedMs))
}

// ReachTest implements batch.ResultGatherer.
func (s *sqsResQueueGatherer) ReachTest(testId int) {
	s.send(api.NewReachTest(s.jobUuid, testId))
}

func (s *sqsResQueueGatherer) FinishTest(testId int, verdict api.Verdict) {
	s.send(api.NewFinishTest(s.jobUuid, testId, api.TrimVerdict(verdict)))
}

func (s *sqsResQueueGatherer) CompileError(msg string) {
	msg = api.TrimStrToRect(msg, api.MaxOutputHeight*2, api.MaxOutputWidth*2)
	s.send(api.NewFinishJob(s.jobUuid, &msg, true, false))
}

func (s *sqsResQueueGatherer) InternalError(msg string) {
	s.send(api.NewFinishJob(s.jobUuid, &msg, false, true))
}

func (s *sqsResQueueGatherer) FinishNoError() {
	s.send(api.NewFinishJob(s.jobUuid, nil, false, false))
}
