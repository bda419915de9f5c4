// Package interaction models the append-only agent conversation log.
package interaction

import "time"

// Record is one logged question/answer pair. Answer carries the routing trace prefix.
type Record struct {
	Question  string
	Answer    string
	Timestamp time.Time
}

// New creates a record stamped with the given time (UTC).
func New(question, answer string, at time.Time) Record {
	return Record{Question: question, Answer: answer, Timestamp: at.UTC()}
}
