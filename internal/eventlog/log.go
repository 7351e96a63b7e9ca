package eventlog

import "github.com/google/uuid"

// Log is an append-only, in-memory sequence of Records. It never reorders
// or removes individual entries; Clear drops them all by swapping in a
// fresh empty slice rather than truncating the old one in place, so any
// reader mid-iteration over the old slice is unaffected.
type Log struct {
	records []Record
}

// New returns an empty log.
func New() *Log {
	return &Log{}
}

// Append records r, stamping it with a fresh external correlation id, and
// returns the stamped record.
func (l *Log) Append(r Record) Record {
	r.ExternalID = uuid.NewString()
	l.records = append(l.records, r)
	return r
}

// Records returns every record appended so far, oldest first. The returned
// slice aliases the log's backing array and must not be mutated by callers.
func (l *Log) Records() []Record {
	return l.records
}

// Len returns the number of records currently logged.
func (l *Log) Len() int {
	return len(l.records)
}

// AppendRaw appends r verbatim, preserving its ExternalID rather than
// minting a fresh one. Used by Replay to rebuild a log byte-for-byte
// identical to the one it was replaying from.
func (l *Log) AppendRaw(r Record) {
	l.records = append(l.records, r)
}

// Clear discards every record by swapping in a fresh empty backing slice,
// never mutating the one readers may still hold a reference to via
// Records.
func (l *Log) Clear() {
	l.records = nil
}

// Replay feeds every record in records through apply, in order. apply is
// normally internal/engine's own command dispatch method, so the same code
// path serves both live command handling and replay. Replay is a
// pure function of records and apply's starting state: given the same
// records against a freshly constructed target, it reproduces identical
// resulting state.
func Replay(records []Record, apply func(Record)) {
	for _, r := range records {
		apply(r)
	}
}
