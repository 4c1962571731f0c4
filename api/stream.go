package api

import "time"

// MsgType is a message type for streamed progress events
type MsgType string

const (
	StartJobMsg      MsgType = "job_start"
	StartCompileMsg  MsgType = "compile_start"
	FinishCompileMsg MsgType = "compile_finish"
	ReachTestMsg     MsgType = "test_reach"
	FinishTestMsg    MsgType = "test_finish"
	FinishJobMsg     MsgType = "job_finish"
)

// Size constraints for text carried inside events
const (
	MaxOutputHeight = 40
	MaxOutputWidth  = 80
)

// Header is the common header for all streamed messages
type Header struct {
	JobUuid string  `json:"job_uuid"`
	MsgType MsgType `json:"msg_type"`
}

type StartJob struct {
	Header
	SourcePath  string `json:"source_path"`
	CaseCount   int    `json:"case_count"`
	StartedTime string `json:"started_time"`
}

type StartCompile struct {
	Header
}

// FinishCompile carries compiler output, trimmed for transport
type FinishCompile struct {
	Header
	Success   bool   `json:"success"`
	Output    string `json:"output"`
	ElapsedMs int64  `json:"elapsed_ms"`
}

type ReachTest struct {
	Header
	TestId int `json:"test_id"`
}

type FinishTest struct {
	Header
	TestId  int      `json:"test_id"`
	Verdict *Verdict `json:"verdict"`
}

type FinishJob struct {
	Header
	ErrorMessage  *string `json:"error_message"`
	CompileError  bool    `json:"compile_error"`
	InternalError bool    `json:"internal_error"`
}

func NewHeader(jobUuid string, msgType MsgType) Header {
	return Header{
		JobUuid: jobUuid,
		MsgType: msgType,
	}
}

func NewStartJob(jobUuid, sourcePath string, caseCount int) StartJob {
	return StartJob{
		Header:      NewHeader(jobUuid, StartJobMsg),
		SourcePath:  sourcePath,
		CaseCount:   caseCount,
		StartedTime: time.Now().Format(time.RFC3339),
	}
}

func NewStartCompile(jobUuid string) StartCompile {
	return StartCompile{Header: NewHeader(jobUuid, StartCompileMsg)}
}

func NewFinishCompile(jobUuid string, success bool, output string, elapsedMs int64) FinishCompile {
	return FinishCompile{
		Header:    NewHeader(jobUuid, FinishCompileMsg),
		Success:   success,
		Output:    output,
		ElapsedMs: elapsedMs,
	}
}

func NewReachTest(jobUuid string, testId int) ReachTest {
	return ReachTest{
		Header: NewHeader(jobUuid, ReachTestMsg),
		TestId: testId,
	}
}

func NewFinishTest(jobUuid string, testId int, verdict *Verdict) FinishTest {
	return FinishTest{
		Header:  NewHeader(jobUuid, FinishTestMsg),
		TestId:  testId,
		Verdict: verdict,
	}
}

func NewFinishJob(jobUuid string, errorMessage *string, compileError, internalError bool) FinishJob {
	return FinishJob{
		Header:        NewHeader(jobUuid, FinishJobMsg),
		ErrorMessage:  errorMessage,
		CompileError:  compileError,
		InternalError: internalError,
	}
}
