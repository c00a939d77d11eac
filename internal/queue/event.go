// Package queue defines message payloads exchanged over the message broker
// and the background consumer that records them.
package queue

// IngestProgressEvent is published after each batch of processed records and
// once more when a run finishes. It carries the per-outcome counters so
// downstream consumers can log or alert without querying the database.
type IngestProgressEvent struct {
	Source    string `json:"source"`
	Done      bool   `json:"done"`
	Processed int    `json:"processed"`
	Inserted  int    `json:"inserted"`
	Updated   int    `json:"updated"`
	Skipped   int    `json:"skipped"`
	Failed    int    `json:"failed"`
	Linked    int    `json:"genres_linked"`
	At        string `json:"at"`
}
