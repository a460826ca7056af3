package casestore

import "errors"

var (
	// ErrUnknownCase is returned when a case slug does not exist in the store.
	ErrUnknownCase = errors.New("unknown case")

	// ErrCaseExists is returned when creating a case whose slug is taken.
	ErrCaseExists = errors.New("case already exists")

	// ErrUnknownCandidate is returned when attaching a score to a profile URL
	// that was never recorded for the case.
	ErrUnknownCandidate = errors.New("unknown candidate")

	// ErrLocked is returned by the file backend when another process holds
	// the writer lock.
	ErrLocked = errors.New("store locked by another process")

	// ErrNoEmbedding is returned when no cached embedding exists for a
	// key and model combination.
	ErrNoEmbedding = errors.New("no cached embedding")
)
