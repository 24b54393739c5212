package logger

import "fmt"

// Event is a single loggable occurrence.
type Event interface {
	// EventType is the key the event is stored under.
	EventType() string
	fields() map[string]interface{}
}

// Recorder stores events.
type Recorder interface {
	Record(event Event) error
}

// NopRecorder discards all events.
type NopRecorder struct{}

var _ Recorder = (*NopRecorder)(nil)

// Record implements Recorder.
func (*NopRecorder) Record(Event) error {
	return nil
}

// RunPipeline is logged for every pipeline that was executed.
type RunPipeline struct {
	Source string
	// Commands holds the expanded argv of each stage.
	Commands [][]string
	// Statuses holds the exit status of each stage.
	Statuses []int
}

func (*RunPipeline) EventType() string { return "run_pipeline" }

func (e *RunPipeline) fields() map[string]interface{} {
	var commands []interface{}
	for _, argv := range e.Commands {
		commands = append(commands, strList(argv))
	}
	var statuses []interface{}
	for _, status := range e.Statuses {
		statuses = append(statuses, status)
	}

	return map[string]interface{}{
		"source":   e.Source,
		"commands": commands,
		"statuses": statuses,
	}
}

// UnknownCommand is logged when a command name can't be resolved.
type UnknownCommand struct {
	Command     string
	Suggestions []string
}

func (*UnknownCommand) EventType() string { return "unknown_command" }

func (e *UnknownCommand) fields() map[string]interface{} {
	return map[string]interface{}{
		"command":     e.Command,
		"suggestions": strList(e.Suggestions),
	}
}

// StageFailure is logged when a pipeline stage fails while running.
type StageFailure struct {
	Stage string
	Args  []string
	Error string
}

func (*StageFailure) EventType() string { return "stage_failure" }

func (e *StageFailure) fields() map[string]interface{} {
	return map[string]interface{}{
		"stage": e.Stage,
		"args":  strList(e.Args),
		"error": e.Error,
	}
}

// InvalidInvocation is logged when a builtin is called with bad arguments.
type InvalidInvocation struct {
	Command []string
	Error   string
}

func (*InvalidInvocation) EventType() string { return "invalid_invocation" }

func (e *InvalidInvocation) fields() map[string]interface{} {
	return map[string]interface{}{
		"command": strList(e.Command),
		"error":   e.Error,
	}
}

// ParseFailure is logged when source text isn't a valid pipeline.
type ParseFailure struct {
	Source string
	Pos    int
	Error  string
}

func (*ParseFailure) EventType() string { return "parse_failure" }

func (e *ParseFailure) fields() map[string]interface{} {
	return map[string]interface{}{
		"source": e.Source,
		"pos":    e.Pos,
		"error":  e.Error,
	}
}

// ExpansionFailure is logged when a pipeline can't be expanded.
type ExpansionFailure struct {
	Source string
	Error  string
}

func (*ExpansionFailure) EventType() string { return "expansion_failure" }

func (e *ExpansionFailure) fields() map[string]interface{} {
	return map[string]interface{}{
		"source": e.Source,
		"error":  e.Error,
	}
}

// Login is logged when a client opens a session.
type Login struct {
	User       string
	RemoteAddr string
	// RawCommand is set if the client asked to run a command rather than an
	// interactive shell.
	RawCommand string
}

func (*Login) EventType() string { return "login" }

func (e *Login) fields() map[string]interface{} {
	return map[string]interface{}{
		"user":        e.User,
		"remote_addr": e.RemoteAddr,
		"raw_command": e.RawCommand,
	}
}

// strList converts to a type structpb accepts.
func strList(in []string) []interface{} {
	out := make([]interface{}, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}

// ErrUnknownEvent is returned when a log line holds no known event.
type ErrUnknownEvent struct {
	Keys []string
}

func (e *ErrUnknownEvent) Error() string {
	return fmt.Sprintf("log entry has no event, keys: %v", e.Keys)
}
