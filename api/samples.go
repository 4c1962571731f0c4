package api

// SourceType tells whether a sample field holds literal text or a file path.
type SourceType string

const (
	UserInput SourceType = "userinput"
	FileInput SourceType = "file"
)

// SamplesFile is the on-disk document holding every sample of one source file.
type SamplesFile struct {
	Samples        []Sample       `json:"samples"`
	GlobalSettings GlobalSettings `json:"globalSettings"`
}

// Sample is a single persisted test case. When InputType is "file", Input
// holds a path instead of the literal text (same for Output).
type Sample struct {
	ID         int        `json:"id"`
	InputType  SourceType `json:"inputType"`
	OutputType SourceType `json:"outputType"`
	Input      string     `json:"input"`
	Output     string     `json:"output"`
	TimeLimit  int        `json:"timeLimit"`
	Result     *Verdict   `json:"result,omitempty"`
}

type GlobalSettings struct {
	UseTestlib bool   `json:"useTestlib"`
	SpjPath    string `json:"spjPath"`
}
