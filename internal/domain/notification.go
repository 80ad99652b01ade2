package domain

import (
	"fmt"
	"strings"
	"time"
)

type Category string

const (
	CategoryUpdates  Category = "updates"
	CategorySessions Category = "sessions"
)

func (c Category) Validate() error {
	if strings.TrimSpace(string(c)) == "" {
		return fmt.Errorf("category is required")
	}
	return nil
}

func ParseCategory(raw string) (Category, error) {
	switch Category(strings.ToLower(strings.TrimSpace(raw))) {
	case CategoryUpdates:
		return CategoryUpdates, nil
	case CategorySessions:
		return CategorySessions, nil
	default:
		return "", fmt.Errorf("unknown notification category %q", raw)
	}
}

type Checkpoint struct {
	Category       Category
	AcknowledgedAt time.Time
}

type Delta struct {
	Category Category
	Unseen   int
	Total    int
}
