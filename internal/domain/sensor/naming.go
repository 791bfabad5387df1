package sensor

import "strings"

const namePrefix = "matchfeed"

var slugReplacer = strings.NewReplacer(" ", "_", ".", "_")

// Slug lowercases value and maps spaces and dots to underscores.
func Slug(value string) string {
	return slugReplacer.Replace(strings.ToLower(strings.TrimSpace(value)))
}

// UniqueID is stable per entity and doubles as the "already created" guard.
func UniqueID(name string, kind DataKind) string {
	return name + "_" + string(kind)
}

func NextMatchName(competition, team string) string {
	return namePrefix + "_next_" + Slug(competition) + "_" + Slug(team)
}

func TeamMatchesName(competition, team string) string {
	return namePrefix + "_all_" + Slug(competition) + "_" + Slug(team)
}

func MixedMatchesName(team string) string {
	return namePrefix + "_all_mixed_" + Slug(team)
}

func StandingsName(competition string) string {
	return namePrefix + "_standings_" + Slug(competition)
}

func MatchDayName(competition string) string {
	return namePrefix + "_all_" + Slug(competition)
}

func AllTodayName() string {
	return namePrefix + "_today_all"
}

// PaidName names a paid-API entity; scope is a competition code or team id.
func PaidName(kind DataKind, scope string) string {
	name := namePrefix + "_fd_" + string(kind)
	if scope = Slug(scope); scope != "" {
		name += "_" + scope
	}
	return name
}

func TeamProfileName(competition, team string) string {
	return namePrefix + "_team_" + Slug(competition) + "_" + Slug(team)
}

// DefaultName derives the entity name the setup flow would have chosen.
func DefaultName(cfg Config) string {
	team := cfg.TeamName
	if strings.TrimSpace(team) == "" {
		team = cfg.TeamID
	}
	if cfg.Source == SourceFootballData {
		scope := cfg.CompetitionCode
		if cfg.Kind == KindTeamMatches {
			scope = cfg.TeamID
		}
		return PaidName(cfg.Kind, scope)
	}
	switch cfg.Kind {
	case KindTeamNextMatch:
		return NextMatchName(cfg.CompetitionCode, team)
	case KindTeamMatches:
		return TeamMatchesName(cfg.CompetitionCode, team)
	case KindTeamMatchesMixed:
		return MixedMatchesName(team)
	case KindStandings:
		return StandingsName(cfg.CompetitionCode)
	case KindMatchDay:
		return MatchDayName(cfg.CompetitionCode)
	case KindAllTodayMatches:
		return AllTodayName()
	case KindTeamProfile:
		return TeamProfileName(cfg.CompetitionCode, team)
	default:
		return namePrefix + "_" + string(cfg.Kind)
	}
}
