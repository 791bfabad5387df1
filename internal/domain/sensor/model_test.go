package sensor

import (
	"testing"
	"time"
)

func TestSlugAndNames(t *testing.T) {
	t.Parallel()

	if got := Slug("UEFA.Champions League"); got != "uefa_champions_league" {
		t.Fatalf("unexpected slug %q", got)
	}
	if got := NextMatchName("ita.1", "Inter Milan"); got != "matchfeed_next_ita_1_inter_milan" {
		t.Fatalf("unexpected next match name %q", got)
	}
	if got := MixedMatchesName("A.C. Milan"); got != "matchfeed_all_mixed_a_c__milan" {
		t.Fatalf("unexpected mixed name %q", got)
	}
	if got := UniqueID(StandingsName("eng.1"), KindStandings); got != "matchfeed_standings_eng_1_standings" {
		t.Fatalf("unexpected unique id %q", got)
	}
}

func TestSourceSupports(t *testing.T) {
	t.Parallel()

	if !SourceESPN.Supports(KindTeamProfile) {
		t.Fatalf("espn should support team_profile")
	}
	if SourceESPN.Supports(KindScorers) {
		t.Fatalf("espn must not support scorers")
	}
	if !SourceFootballData.Supports(KindMatchDay) {
		t.Fatalf("football-data should support match_day")
	}
	if SourceFootballData.Supports(KindTeamNextMatch) {
		t.Fatalf("football-data must not support team_next_match")
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	window := DefaultWindow(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	base := Config{
		Name:            "matchfeed_all_ita_1",
		Source:          SourceESPN,
		Sport:           SportSoccer,
		Kind:            KindMatchDay,
		CompetitionCode: "ita.1",
		StartDate:       window.Start,
		EndDate:         window.End,
		PollInterval:    DefaultPollInterval,
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	cases := map[string]func(Config) Config{
		"missing competition": func(c Config) Config { c.CompetitionCode = ""; return c },
		"unsupported kind":    func(c Config) Config { c.Kind = KindScorers; return c },
		"team without name":   func(c Config) Config { c.Kind = KindTeamNextMatch; return c },
		"inverted window":     func(c Config) Config { c.EndDate = c.StartDate.AddDate(0, 0, -1); return c },
		"zero interval":       func(c Config) Config { c.PollInterval = 0; return c },
		"unknown sport":       func(c Config) Config { c.Sport = "hockey"; return c },
	}
	for name, mutate := range cases {
		if err := mutate(base).Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestParseWindow(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 22, 30, 0, 0, time.UTC)
	window, err := ParseWindow("", "", now)
	if err != nil {
		t.Fatalf("parse default window: %v", err)
	}
	if !window.Start.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected default start %s", window.Start)
	}
	if !window.End.Equal(time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected default end %s", window.End)
	}

	if _, err := ParseWindow("2026-04-10", "2026-04-01", now); err == nil {
		t.Fatalf("expected inverted window error")
	}
	if _, err := ParseWindow("10/04/2026", "", now); err == nil {
		t.Fatalf("expected layout error")
	}
}

func TestWindowEndCoversWholeDay(t *testing.T) {
	t.Parallel()

	cfg := Config{EndDate: time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)}
	last := time.Date(2026, 3, 31, 23, 59, 0, 0, time.UTC)
	if last.After(cfg.WindowEnd()) {
		t.Fatalf("late kickoff on end date must be inside window")
	}
}
