package logger

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	keyTimestamp = "timestamp_micros"
	keySession   = "session_id"
)

// LogEntry is a single decoded log line.
type LogEntry struct {
	TimestampMicros int64  `json:"timestamp_micros"`
	SessionID       string `json:"session_id,omitempty"`
	// Type is the EventType of the recorded event.
	Type string `json:"type"`
	// Fields holds the event's values as decoded from JSON: strings, float64
	// numbers, bools and []interface{} lists.
	Fields map[string]interface{} `json:"fields"`
}

// GetString returns a string field or the empty string.
func (le *LogEntry) GetString(key string) string {
	s, _ := le.Fields[key].(string)
	return s
}

// GetStrings returns a list of strings field, skipping values that aren't
// strings.
func (le *LogEntry) GetStrings(key string) []string {
	list, _ := le.Fields[key].([]interface{})
	var out []string
	for _, v := range list {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// LogRecorder is a callback that stores events in an external datastore.
type LogRecorder func(le *LogEntry) error

// Logger captures interaction event logs.
type Logger struct {
	Record LogRecorder
	// Now is the time source, time.Now if nil.
	Now func() time.Time
}

// NewJsonLinesLogRecorder creates a Logger that exports logs in newline
// delimited JSON object format. It's safe for concurrent use.
func NewJsonLinesLogRecorder(w io.Writer) *Logger {
	var mu sync.Mutex
	return &Logger{
		Record: func(le *LogEntry) error {
			entry, err := MarshalEntry(le)
			if err != nil {
				return err
			}

			mu.Lock()
			defer mu.Unlock()
			_, err = fmt.Fprintln(w, string(entry))
			return err
		},
	}
}

// MarshalEntry encodes a log entry as a single line of JSON.
func MarshalEntry(le *LogEntry) ([]byte, error) {
	st, err := structpb.NewStruct(map[string]interface{}{
		keyTimestamp: le.TimestampMicros,
		keySession:   le.SessionID,
		le.Type:      le.Fields,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding %s event: %w", le.Type, err)
	}

	return protojson.Marshal(st)
}

// UnmarshalEntry decodes a single line of JSON created by MarshalEntry.
func UnmarshalEntry(data []byte) (*LogEntry, error) {
	var st structpb.Struct
	if err := protojson.Unmarshal(data, &st); err != nil {
		return nil, err
	}

	raw := st.AsMap()
	out := &LogEntry{}
	if ts, ok := raw[keyTimestamp].(float64); ok {
		out.TimestampMicros = int64(ts)
	}
	out.SessionID, _ = raw[keySession].(string)

	var keys []string
	for k, v := range raw {
		keys = append(keys, k)
		if k == keyTimestamp || k == keySession {
			continue
		}
		if fields, ok := v.(map[string]interface{}); ok {
			out.Type = k
			out.Fields = fields
		}
	}

	if out.Type == "" {
		sort.Strings(keys)
		return nil, &ErrUnknownEvent{Keys: keys}
	}
	return out, nil
}

func (l *Logger) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}

func (l *Logger) recordEvent(sessionID string, event Event) error {
	le := &LogEntry{
		TimestampMicros: l.now().UnixNano() / int64(time.Microsecond),
		SessionID:       sessionID,
		Type:            event.EventType(),
		Fields:          event.fields(),
	}

	return l.Record(le)
}

// NewSession creates a logger with a random session ID attached.
func (l *Logger) NewSession() *SessionLogger {
	return &SessionLogger{Logger: l, sessionID: uuid.NewString()}
}

// Sessionless creates a logger with no session ID.
func (l *Logger) Sessionless() *SessionLogger {
	return &SessionLogger{Logger: l}
}

// SessionLogger logs messages with a shared session ID.
type SessionLogger struct {
	*Logger
	sessionID string
}

var _ Recorder = (*SessionLogger)(nil)

// SessionID returns the ID attached to every event.
func (l *SessionLogger) SessionID() string {
	return l.sessionID
}

// Record implements Recorder.
func (l *SessionLogger) Record(event Event) error {
	return l.recordEvent(l.sessionID, event)
}
