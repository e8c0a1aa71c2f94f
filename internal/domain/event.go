package domain

import (
	"strings"
	"time"
)

// EventKind identifies the user action behind an engagement event.
type EventKind string

const (
	EventUpvote               EventKind = "upvote"
	EventComment              EventKind = "comment"
	EventGuess                EventKind = "guess"
	EventIntroRequestCreated  EventKind = "intro_request_created"
	EventIntroRequestAccepted EventKind = "intro_request_accepted"
)

// Category is the sub-score bucket an event contributes to. Accepted intros
// form a distinct bonus bucket, separate from the base intro-request bucket,
// so an accepted intro counts twice: once as the original request signal and
// once as the bonus.
type Category string

const (
	CategoryUpvote        Category = "upvote"
	CategoryComment       Category = "comment"
	CategoryGuess         Category = "guess"
	CategoryIntroRequest  Category = "intro_request"
	CategoryIntroAccepted Category = "intro_accepted"
)

// Categories lists all sub-score buckets in a stable order.
func Categories() []Category {
	return []Category{
		CategoryUpvote,
		CategoryComment,
		CategoryGuess,
		CategoryIntroRequest,
		CategoryIntroAccepted,
	}
}

// EngagementEvent is an immutable fact recorded the instant a user action
// occurs. Events are append-only: never mutated, never deleted. Multiple
// events of the same kind from the same user on the same listing are all
// retained; the engine does not deduplicate them.
type EngagementEvent struct {
	ListingID string    `json:"listing_id"`
	UserID    string    `json:"user_id"`
	Kind      EventKind `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
}

// exactCategories maps known event kinds to their bucket.
var exactCategories = map[EventKind]Category{
	EventUpvote:               CategoryUpvote,
	EventComment:              CategoryComment,
	EventGuess:                CategoryGuess,
	EventIntroRequestCreated:  CategoryIntroRequest,
	EventIntroRequestAccepted: CategoryIntroAccepted,
}

// classificationRule matches an unknown event kind to a category.
type classificationRule struct {
	matches  func(kind string) bool
	category Category
}

// fallbackRules is the ordered list of substring rules applied when an
// event's kind has no exact match. The fallback exists so that historical
// events survive taxonomy changes without losing their scoring contribution.
// Rules are evaluated top to bottom; first match wins.
var fallbackRules = []classificationRule{
	{func(k string) bool { return strings.Contains(k, "accept") && strings.Contains(k, "intro") }, CategoryIntroAccepted},
	{func(k string) bool { return strings.Contains(k, "intro") }, CategoryIntroRequest},
	{func(k string) bool { return strings.Contains(k, "vote") }, CategoryUpvote},
	{func(k string) bool { return strings.Contains(k, "comment") || strings.Contains(k, "reply") }, CategoryComment},
	{func(k string) bool { return strings.Contains(k, "guess") }, CategoryGuess},
}

// Classify resolves an event kind to its sub-score category. Exact matches
// win; otherwise the ordered fallback rules apply. Unrecognized kinds return
// ok=false and contribute zero to the score.
func Classify(kind EventKind) (Category, bool) {
	if cat, ok := exactCategories[kind]; ok {
		return cat, true
	}

	k := strings.ToLower(string(kind))
	for _, rule := range fallbackRules {
		if rule.matches(k) {
			return rule.category, true
		}
	}

	return "", false
}
