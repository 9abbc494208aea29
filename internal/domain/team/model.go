package team

import (
	"fmt"
	"time"
)

// Team is a college basketball program. Slug and name are each unique.
type Team struct {
	ID         int64
	Slug       string
	Name       string
	ShortName  string
	Conference *string
	LogoURL    *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (t Team) Validate() error {
	if t.Slug == "" {
		return fmt.Errorf("team slug is required")
	}
	if t.Name == "" {
		return fmt.Errorf("team name is required")
	}
	if t.ShortName == "" {
		return fmt.Errorf("team short name is required")
	}

	return nil
}

// UpsertResult reports the stored id and whether the row was created.
type UpsertResult struct {
	ID       int64
	Inserted bool
}

// ListFilter narrows team listings. Empty fields match everything.
type ListFilter struct {
	Conference string
}
