package batch

import "github.com/programme-lv/sampler/api"

// ResultGatherer receives progress of a judging job. FinishTest and
// ReachTest are called from several workers at once.
type ResultGatherer interface {
	StartJob(sourcePath string, caseCount int)

	StartCompile()
	FinishCompile(success bool, output string, elapsedMs int64)

	ReachTest(testId int)
	FinishTest(testId int, verdict api.Verdict)

	CompileError(msg string)
	InternalError(msg string)
	FinishNoError()
}

// NoopGatherer discards all events.
type NoopGatherer struct{}

func (NoopGatherer) StartJob(string, int) {}
func (NoopGatherer) StartCompile() {}
func (NoopGatherer) FinishCompile(bool, string, int64) {}
func (NoopGatherer) ReachTest(int) {}
func (NoopGatherer) FinishTest(int, api.Verdict) {}
func (NoopGatherer) CompileError(string) {}
func (NoopGatherer) InternalError(string) {}
func (NoopGatherer) FinishNoError() {}

// Gatherers forwards every event to each gatherer in order.
type Gatherers []ResultGatherer

func (gs Gatherers) StartJob(sourcePath string, caseCount int) {
	for _, g := range gs {
		g.StartJob(sourcePath, caseCount)
	}
}

func (gs Gatherers) StartCompile() {
	for _, g := range gs {
		g.StartCompile()
	}
}

func (gs Gatherers) FinishCompile(success bool, output string, elapsedMs int64) {
	for _, g := range gs {
		g.FinishCompile(success, output, elapsedMs)
	}
}

func (gs Gatherers) ReachTest(testId int) {
	for _, g := range gs {
		g.ReachTest(testId)
	}
}

func (gs Gatherers) FinishTest(testId int, verdict api.Verdict) {
	for _, g := range gs {
		g.FinishTest(testId, verdict)
	}
}

func (gs Gatherers) CompileError(msg string) {
	for _, g := range gs {
		g.CompileError(msg)
	}
}

func (gs Gatherers) InternalError(msg string) {
	for _, g := range gs {
		g.InternalError(msg)
	}
}

func (gs Gatherers) FinishNoError() {
	for _, g := range gs {
		g.FinishNoError()
	}
}
