package team

import "testing"

func TestTeamValidate(t *testing.T) {
	t.Parallel()

	if err := (Team{Slug: "iowa", Name: "Iowa", ShortName: "IOWA"}).Validate(); err != nil {
		t.Fatalf("expected valid team: %v", err)
	}
	if err := (Team{Name: "Iowa", ShortName: "IOWA"}).Validate(); err == nil {
		t.Fatalf("expected error for missing slug")
	}
	if err := (Team{Slug: "iowa", ShortName: "IOWA"}).Validate(); err == nil {
		t.Fatalf("expected error for missing name")
	}
}
