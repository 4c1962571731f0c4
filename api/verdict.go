package api

// Status is the outcome of judging one test case.
type Status string

const (
	Accepted            Status = "AC"
	WrongAnswer         Status = "WA"
	TimeLimitExceeded   Status = "TLE"
	RuntimeError        Status = "RE"
	OutputLimitExceeded Status = "OLE"
	CompileError        Status = "CE"
	InternalError       Status = "Error"
)

// Statuses lists every status in display order.
var Statuses = []Status{
	Accepted,
	WrongAnswer,
	TimeLimitExceeded,
	RuntimeError,
	OutputLimitExceeded,
	CompileError,
	InternalError,
}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

// Verdict is the result of the latest run of a test case.
type Verdict struct {
	Status    Status `json:"status"`
	Output    string `json:"output"`
	ElapsedMs int64  `json:"elapsedMs"`
	UsedSpj   bool   `json:"usedSpj"`

	// Mismatch points at the first differing character of the normalised
	// outputs. Only set on a wrong answer decided without a special judge.
	Mismatch *Mismatch `json:"mismatch,omitempty"`
}

// Mismatch is a 1-based position in the normalised output.
type Mismatch struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}
