package models

import (
	"github.com/myrjola/casebook/internal/errors"
)

var (
	// ErrContentNotFound is returned when a case, clue, suspect, option or chapter id does not match any content.
	ErrContentNotFound = errors.NewSentinel("content not found")
	// ErrContentValidation is returned by the content loader when the authored corpus is malformed.
	ErrContentValidation = errors.NewSentinel("content validation failed")
	// ErrStorageUnavailable is returned when the progress store cannot be reached.
	ErrStorageUnavailable = errors.NewSentinel("storage unavailable")
	// ErrAccusationLocked is returned when a weekly accusation is attempted before chapters 1-6 are done.
	ErrAccusationLocked = errors.NewSentinel("accusation locked")

	ErrCaseNotFound    = errors.Wrap(ErrContentNotFound, "case not found")
	ErrClueNotFound    = errors.Wrap(ErrContentNotFound, "clue not found")
	ErrSuspectNotFound = errors.Wrap(ErrContentNotFound, "suspect not found")
	ErrOptionNotFound  = errors.Wrap(ErrContentNotFound, "dialogue option not found")
	ErrObjectNotFound  = errors.Wrap(ErrContentNotFound, "crime scene object not found")
	ErrChapterNotFound = errors.Wrap(ErrContentNotFound, "chapter not found")
)
