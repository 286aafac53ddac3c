package testlog

import (
	"sync"

	"parcel-delivery/internal/logx"
)

// Entry is one recorded log call.
type Entry struct {
	Level  string
	Msg    string
	Fields []logx.Field
}

// Field returns the value stored under key and whether it was present.
func (e Entry) Field(key string) (any, bool) {
	for _, f := range e.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Recorder collects entries written through the loggers it hands out.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

func New() *Recorder { return &Recorder{} }

// Logger returns a logx.Logger that writes into r.
func (r *Recorder) Logger() logx.Logger {
	return bound{r: r}
}

// Entries returns a snapshot of everything recorded so far.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// ByMsg returns the entries whose message equals msg.
func (r *Recorder) ByMsg(msg string) []Entry {
	var out []Entry
	for _, e := range r.Entries() {
		if e.Msg == msg {
			out = append(out, e)
		}
	}
	return out
}

// Has reports whether msg was logged at least once.
func (r *Recorder) Has(msg string) bool {
	return len(r.ByMsg(msg)) > 0
}

func (r *Recorder) add(level, msg string, fields []logx.Field) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := append([]logx.Field(nil), fields...)
	r.entries = append(r.entries, Entry{Level: level, Msg: msg, Fields: cp})
}

type bound struct {
	r    *Recorder
	base []logx.Field
}

func (b bound) fields(f []logx.Field) []logx.Field {
	out := make([]logx.Field, 0, len(b.base)+len(f))
	out = append(out, b.base...)
	return append(out, f...)
}

func (b bound) Debug(msg string, f ...logx.Field) { b.r.add("debug", msg, b.fields(f)) }
func (b bound) Info(msg string, f ...logx.Field)  { b.r.add("info", msg, b.fields(f)) }
func (b bound) Warn(msg string, f ...logx.Field)  { b.r.add("warn", msg, b.fields(f)) }
func (b bound) Error(msg string, f ...logx.Field) { b.r.add("error", msg, b.fields(f)) }

func (b bound) With(f ...logx.Field) logx.Logger {
	return bound{r: b.r, base: b.fields(f)}
}

func (b bound) Sync() error { return nil }

var _ logx.Logger = bound{}
