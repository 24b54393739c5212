package logger

import (
	"bufio"
	"encoding/json"
	"io"
	"sort"
)

// ReadJSONLinesLog parses a newline delimited JSON log.
func ReadJSONLinesLog(r io.Reader, handler func(le *LogEntry)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		logEntry, err := UnmarshalEntry(line)
		if err != nil {
			return err
		}

		handler(logEntry)
	}
	return scanner.Err()
}

// Report holds statistics about the logged events.
type Report struct {
	LogEntries     int        `json:"log_entries"`
	Sessions       StrCounter `json:"sessions"`
	InvalidEntries StrCounter `json:"unknown_log_entries,omitempty"`

	Logins            LoginReport             `json:"login_report"`
	RunPipeline       RunPipelineReport       `json:"run_pipeline_report"`
	UnknownCommand    UnknownCommandReport    `json:"unknown_command_report"`
	StageFailure      StageFailureReport      `json:"stage_failure_report"`
	InvalidInvocation InvalidInvocationReport `json:"invalid_invocation_report"`
	ParseFailures     int                     `json:"parse_failures"`
	ExpansionFailures int                     `json:"expansion_failures"`
}

// Update adds the entry to the report.
func (r *Report) Update(le *LogEntry) {
	r.LogEntries++
	if le.SessionID != "" {
		r.Sessions.Increment(le.SessionID)
	}

	switch le.Type {
	case (*Login)(nil).EventType():
		r.Logins.update(le)
	case (*RunPipeline)(nil).EventType():
		r.RunPipeline.update(le)
	case (*UnknownCommand)(nil).EventType():
		r.UnknownCommand.update(le)
	case (*StageFailure)(nil).EventType():
		r.StageFailure.update(le)
	case (*InvalidInvocation)(nil).EventType():
		r.InvalidInvocation.update(le)
	case (*ParseFailure)(nil).EventType():
		r.ParseFailures++
	case (*ExpansionFailure)(nil).EventType():
		r.ExpansionFailures++
	default:
		r.InvalidEntries.Increment(le.Type)
	}
}

type LoginReport struct {
	Count int        `json:"count"`
	Users StrCounter `json:"users"`
}

func (r *LoginReport) update(le *LogEntry) {
	r.Count++
	r.Users.Increment(le.GetString("user"))
}

type RunPipelineReport struct {
	Count int `json:"count"`
	// Name of the executables run in any stage.
	CommandNames StrCounter `json:"command_names"`
	// Number of stages per pipeline.
	Lengths StrCounter `json:"lengths"`
}

func (r *RunPipelineReport) update(le *LogEntry) {
	r.Count++

	commands, _ := le.Fields["commands"].([]interface{})
	r.Lengths.Increment(itoa(len(commands)))
	for _, cmd := range commands {
		argv, _ := cmd.([]interface{})
		if len(argv) == 0 {
			continue
		}
		if name, ok := argv[0].(string); ok {
			r.CommandNames.Increment(name)
		}
	}
}

type UnknownCommandReport struct {
	CommandNames StrCounter `json:"command_names"`
}

func (r *UnknownCommandReport) update(le *LogEntry) {
	r.CommandNames.Increment(le.GetString("command"))
}

type StageFailureReport struct {
	Stages StrCounter `json:"stages"`
	Errors StrCounter `json:"errors"`
}

func (r *StageFailureReport) update(le *LogEntry) {
	r.Stages.Increment(le.GetString("stage"))
	r.Errors.Increment(le.GetString("error"))
}

type InvalidInvocationReport struct {
	CommandNames StrCounter `json:"command_counts"`
}

func (r *InvalidInvocationReport) update(le *LogEntry) {
	if cmd := le.GetStrings("command"); len(cmd) > 0 {
		r.CommandNames.Increment(cmd[0])
	}
}

// StrCounter counts the number of strings seen.
type StrCounter struct {
	internal map[string]int
}

// Increment adds one to the given key.
func (s *StrCounter) Increment(toAdd string) {
	if s.internal == nil {
		s.internal = make(map[string]int)
	}

	s.internal[toAdd]++
}

// Get returns the count for the key.
func (s *StrCounter) Get(key string) int {
	return s.internal[key]
}

// Keys returns the counted strings in sorted order.
func (s *StrCounter) Keys() []string {
	var out []string
	for k := range s.internal {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// MarshalJSON implemnts custom JSON marshaler.
func (s StrCounter) MarshalJSON() ([]byte, error) {
	if s.internal == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(s.internal)
}

func itoa(i int) string {
	b, _ := json.Marshal(i)
	return string(b)
}
