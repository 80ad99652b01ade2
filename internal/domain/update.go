package domain

import "time"

type UpdateID string

type Update struct {
	ID        UpdateID
	Title     string
	Body      string
	ImageURL  string
	AudioURL  string
	Author    string
	CreatedAt time.Time
}

func (u Update) CreationInstant() time.Time {
	return u.CreatedAt
}

// Timestamped is anything carrying the server-reported creation instant used
// for notification deltas.
type Timestamped interface {
	CreationInstant() time.Time
}

func SessionsAsTimestamped(sessions []Session) []Timestamped {
	items := make([]Timestamped, 0, len(sessions))
	for _, session := range sessions {
		items = append(items, session)
	}
	return items
}

func UpdatesAsTimestamped(updates []Update) []Timestamped {
	items := make([]Timestamped, 0, len(updates))
	for _, update := range updates {
		items = append(items, update)
	}
	return items
}
