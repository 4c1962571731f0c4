package natsgath_test

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/programme-lv/sampler/api"
	"github.com/programme-lv/sampler/internal/batch"
	"github.com/programme-lv/sampler/internal/gatherer/natsgath"
	"github.com/stretchr/testify/require"
)

type published struct {
	subject string
	data    []byte
}

type fakeConn struct {
	mu   sync.Mutex
	msgs []published
	err  error
}

func (f *fakeConn) Publish(subj string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, published{subj, data})
	return f.err
}

var _ batch.ResultGatherer = natsgath.New(nil, "", "")

func TestPublishesEvents(t *testing.T) {
	nc := &fakeConn{}
	g := natsgath.New(nc, "sampler.events", "job-1")

	g.StartJob("a.cpp", 1)
	g.StartCompile()
	g.FinishCompile(true, "", 7)
	g.ReachTest(1)
	g.FinishTest(1, api.Verdict{Status: api.Accepted, Output: strings.Repeat("x", 200)})
	g.FinishNoError()

	require.Len(t, nc.msgs, 6)
	types := []api.MsgType{}
	for _, m := range nc.msgs {
		require.Equal(t, "sampler.events", m.subject)
		var h api.Header
		require.NoError(t, json.Unmarshal(m.data, &h))
		require.Equal(t, "job-1", h.JobUuid)
		types = append(types, h.MsgType)
	}
	require.Equal(t, []api.MsgType{
		api.StartJobMsg, api.StartCompileMsg, api.FinishCompileMsg,
		api.ReachTestMsg, api.FinishTestMsg, api.FinishJobMsg,
	}, types)

	var finish api.FinishTest
	require.NoError(t, json.Unmarshal(nc.msgs[4].data, &finish))
	require.Equal(t, api.Accepted, finish.Verdict.Status)
	require.Equal(t, strings.Repeat("x", api.MaxOutputWidth)+"[...]", finish.Verdict.Output)
}

func TestCompileErrorFinishesJob(t *testing.T) {
	nc := &fakeConn{}
	natsgath.New(nc, "s", "job-2").CompileError("boom")

	var msg api.FinishJob
	require.NoError(t, json.Unmarshal(nc.msgs[0].data, &msg))
	require.True(t, msg.CompileError)
	require.False(t, msg.InternalError)
	require.Equal(t, "boom", *msg.ErrorMessage)
}

func TestPublishFailureIsNotFatal(t *testing.T) {
	nc := &fakeConn{err: errors.New("nats: connection closed")}
	g := natsgath.New(nc, "s", "job-3")
	g.InternalError("x")
	require.Len(t, nc.msgs, 1)
}
