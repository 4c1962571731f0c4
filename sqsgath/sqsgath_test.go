package sqsgath_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/programme-lv/sampler/api"
	"github.com/programme-lv/sampler/sqsgath"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	mu     sync.Mutex
	inputs []*sqs.SendMessageInput
	err    error
}

func (f *fakeSender) SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, params)
	if f.err != nil {
		return nil, f.err
	}
	return &sqs.SendMessageOutput{MessageId: aws.String("m")}, nil
}

func TestSendsToQueue(t *testing.T) {
	client := &fakeSender{}
	g := sqsgath.NewSqsResponseQueueGatherer(client, "https://sqs.example/q", "job-9")

	g.StartJob("b.cpp", 3)
	g.FinishTest(2, api.Verdict{Status: api.TimeLimitExceeded, ElapsedMs: 1500})

	require.Len(t, client.inputs, 2)
	require.Equal(t, "https://sqs.example/q", aws.ToString(client.inputs[0].QueueUrl))

	var start api.StartJob
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(client.inputs[0].MessageBody)), &start))
	require.Equal(t, api.StartJobMsg, start.MsgType)
	require.Equal(t, 3, start.CaseCount)
	require.Equal(t, "b.cpp", start.SourcePath)

	var finish api.FinishTest
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(client.inputs[1].MessageBody)), &finish))
	require.Equal(t, 2, finish.TestId)
	require.Equal(t, api.TimeLimitExceeded, finish.Verdict.Status)
	require.EqualValues(t, 1500, finish.Verdict.ElapsedMs)
}

func TestSendFailureIsLogged(t *testing.T) {
	client := &fakeSender{err: errors.New("throttled")}
	g := sqsgath.NewSqsResponseQueueGatherer(client, "q", "job")
	g.FinishNoError()
	require.Len(t, client.inputs, 1)
}
