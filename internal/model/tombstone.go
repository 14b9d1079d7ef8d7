package model

import "strings"

// Body values the live source substitutes for content that is gone.
const (
	RemovedBody = "[removed]"
	DeletedBody = "[deleted]"
)

// IsRemoved reports whether text is the moderator-removal tombstone.
// Some archive dumps escape the brackets, so backslashes are ignored.
func IsRemoved(text string) bool {
	return strings.ReplaceAll(text, `\`, "") == RemovedBody
}

// IsDeleted reports whether text is the author-deletion tombstone.
func IsDeleted(text string) bool {
	return strings.ReplaceAll(text, `\`, "") == DeletedBody
}

// IsTombstone reports whether text is either tombstone.
func IsTombstone(text string) bool {
	return IsRemoved(text) || IsDeleted(text)
}
