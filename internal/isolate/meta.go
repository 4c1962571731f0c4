package isolate

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// Metrics is the content of an isolate --meta file.
type Metrics struct {
	TimeSec     float64
	TimeWallSec float64
	MaxRssKb    int64
	CgMemKb     int64
	ExitCode    int
	ExitSignal  int
	Killed      bool
	Status      string
	Message     string
}

// Isolate status codes
const (
	StatusRuntimeError = "RE"
	StatusSignaled     = "SG"
	StatusTimedOut     = "TO"
	StatusInternal     = "XX"
)

func parseMetaFile(content []byte) (*Metrics, error) {
	m := &Metrics{}
	sc := bufio.NewScanner(bytes.NewReader(content))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("malformed meta line %q", line)
		}
		var err error
		switch key {
		case "time":
			m.TimeSec, err = strconv.ParseFloat(value, 64)
		case "time-wall":
			m.TimeWallSec, err = strconv.ParseFloat(value, 64)
		case "max-rss":
			m.MaxRssKb, err = strconv.ParseInt(value, 10, 64)
		case "cg-mem":
			m.CgMemKb, err = strconv.ParseInt(value, 10, 64)
		case "exitcode":
			m.ExitCode, err = strconv.Atoi(value)
		case "exitsig":
			m.ExitSignal, err = strconv.Atoi(value)
		case "killed":
			m.Killed = value == "1"
		case "status":
			m.Status = value
		case "message":
			m.Message = value
		}
		if err != nil {
			return nil, fmt.Errorf("bad value for %s: %w", key, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return m, nil
}
