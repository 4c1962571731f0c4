package samples_test

import (
	"math/rand"
	"testing"

	"github.com/programme-lv/sampler/api"
	"github.com/programme-lv/sampler/internal/samples"
	"github.com/stretchr/testify/require"
)

func TestAddAssignsNextID(t *testing.T) {
	set := samples.New("/ws", "/ws/a.cpp")

	a, err := set.Add(samples.Text("1"), samples.Text("1"), 0)
	require.NoError(t, err)
	b, err := set.Add(samples.Text("2"), samples.Text("2"), 2500)
	require.NoError(t, err)

	require.Equal(t, 1, a.ID)
	require.Equal(t, 2, b.ID)
	require.Equal(t, samples.DefaultTimeLimitMs, a.TimeLimitMs)
	require.Equal(t, 2500, b.TimeLimitMs)
	require.Equal(t, 3, set.NextID())
}

func TestDeleteRenumbers(t *testing.T) {
	set := samples.New("/ws", "/ws/a.cpp")
	for i := 0; i < 4; i++ {
		_, err := set.Add(samples.Text(string(rune('a'+i))), samples.Text(""), 0)
		require.NoError(t, err)
	}

	require.NoError(t, set.Delete(2))

	cases := set.Cases()
	require.Len(t, cases, 3)
	require.Equal(t, []string{"a", "c", "d"}, []string{cases[0].Input.Text, cases[1].Input.Text, cases[2].Input.Text})
	for i, tc := range cases {
		require.Equal(t, i+1, tc.ID)
	}
	require.Equal(t, 4, set.NextID())

	err := set.Delete(7)
	require.ErrorIs(t, err, samples.ErrNoSuchCase)
}

func TestIDsStayDense(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	set := samples.New("/ws", "/ws/a.cpp")

	for step := 0; step < 500; step++ {
		if set.Len() == 0 || rng.Intn(3) > 0 {
			_, err := set.Add(samples.Text("x"), samples.Text("y"), 0)
			require.NoError(t, err)
		} else {
			require.NoError(t, set.Delete(1+rng.Intn(set.Len())))
		}
		require.NoError(t, set.Validate())
		require.Equal(t, set.Len()+1, set.NextID())
	}
}

func TestStateMachine(t *testing.T) {
	set := samples.New("/ws", "/ws/a.cpp")
	require.Equal(t, samples.Idle, set.State())

	require.NoError(t, set.Begin())
	require.ErrorIs(t, set.Begin(), samples.ErrBusy)

	_, err := set.Add(samples.Text(""), samples.Text(""), 0)
	require.ErrorIs(t, err, samples.ErrBusy)
	require.ErrorIs(t, set.SetJudge(samples.JudgeConfig{UseSpj: true}), samples.ErrBusy)

	require.NoError(t, set.Advance(samples.Running))
	require.Error(t, set.Advance(samples.Compiling))
	require.NoError(t, set.Advance(samples.Done))

	// a finished set can be judged again
	require.NoError(t, set.Begin())
	require.NoError(t, set.Advance(samples.Done))
	require.Equal(t, "done", set.State().String())
}

func TestSetVerdictOverwrites(t *testing.T) {
	set := samples.New("/ws", "/ws/a.cpp")
	tc, err := set.Add(samples.Text(""), samples.Text(""), 0)
	require.NoError(t, err)

	set.SetVerdict(tc, api.Verdict{Status: api.WrongAnswer, Mismatch: &api.Mismatch{Line: 1, Column: 1}})
	set.SetVerdict(tc, api.Verdict{Status: api.Accepted})

	require.Equal(t, api.Accepted, tc.LastVerdict.Status)
	require.Nil(t, tc.LastVerdict.Mismatch)
}
