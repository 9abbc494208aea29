package roster

import (
	"regexp"
	"strings"
)

const (
	// Conference is the display name stored on known teams.
	Conference = "Big Ten"
	// ESPNGroupID is the provider's conference group for the Big Ten.
	ESPNGroupID = 7

	UnknownTeamSlug = "unknown-team"
)

// KnownTeam is a conference member with its accepted aliases.
type KnownTeam struct {
	Slug      string
	Name      string
	ShortName string
	Aliases   []string
}

var knownTeams = []KnownTeam{
	{Slug: "illinois", Name: "Illinois", ShortName: "ILL", Aliases: []string{"illinois fighting illini", "fighting illini", "uiuc"}},
	{Slug: "indiana", Name: "Indiana", ShortName: "IU", Aliases: []string{"indiana hoosiers", "hoosiers"}},
	{Slug: "iowa", Name: "Iowa", ShortName: "IOWA", Aliases: []string{"iowa hawkeyes", "hawkeyes"}},
	{Slug: "maryland", Name: "Maryland", ShortName: "MD", Aliases: []string{"maryland terrapins", "terrapins"}},
	{Slug: "michigan", Name: "Michigan", ShortName: "MICH", Aliases: []string{"michigan wolverines", "wolverines"}},
	{Slug: "michigan-state", Name: "Michigan State", ShortName: "MSU", Aliases: []string{"michigan state spartans", "spartans"}},
	{Slug: "minnesota", Name: "Minnesota", ShortName: "MINN", Aliases: []string{"minnesota golden gophers", "golden gophers"}},
	{Slug: "nebraska", Name: "Nebraska", ShortName: "NEB", Aliases: []string{"nebraska cornhuskers", "cornhuskers"}},
	{Slug: "northwestern", Name: "Northwestern", ShortName: "NU", Aliases: []string{"northwestern wildcats", "wildcats"}},
	{Slug: "ohio-state", Name: "Ohio State", ShortName: "OSU", Aliases: []string{"ohio state buckeyes", "buckeyes"}},
	{Slug: "oregon", Name: "Oregon", ShortName: "ORE", Aliases: []string{"oregon ducks", "ducks"}},
	{Slug: "penn-state", Name: "Penn State", ShortName: "PSU", Aliases: []string{"penn state nittany lions", "nittany lions"}},
	{Slug: "purdue", Name: "Purdue", ShortName: "PUR", Aliases: []string{"purdue boilermakers", "boilermakers"}},
	{Slug: "rutgers", Name: "Rutgers", ShortName: "RUTG", Aliases: []string{"rutgers scarlet knights", "scarlet knights"}},
	{Slug: "ucla", Name: "UCLA", ShortName: "UCLA", Aliases: []string{"ucla bruins", "bruins"}},
	{Slug: "usc", Name: "USC", ShortName: "USC", Aliases: []string{"usc trojans", "southern california", "trojans"}},
	{Slug: "washington", Name: "Washington", ShortName: "WASH", Aliases: []string{"washington huskies", "huskies"}},
	{Slug: "wisconsin", Name: "Wisconsin", ShortName: "WIS", Aliases: []string{"wisconsin badgers", "badgers"}},
}

var (
	nonAlnumRegex  = regexp.MustCompile(`[^a-z0-9]+`)
	hyphenRunRegex = regexp.MustCompile(`-+`)

	slugByAlias = buildAliasIndex(knownTeams)
	teamBySlug  = buildSlugIndex(knownTeams)
)

func buildAliasIndex(teams []KnownTeam) map[string]string {
	out := make(map[string]string, len(teams)*5)
	for _, item := range teams {
		keys := append([]string{item.Name, item.ShortName, item.Slug}, item.Aliases...)
		for _, key := range keys {
			normalized := NormalizeKey(key)
			if normalized == "" {
				continue
			}
			if _, exists := out[normalized]; exists {
				continue
			}
			out[normalized] = item.Slug
		}
	}
	return out
}

func buildSlugIndex(teams []KnownTeam) map[string]KnownTeam {
	out := make(map[string]KnownTeam, len(teams))
	for _, item := range teams {
		out[item.Slug] = item
	}
	return out
}

// NormalizeKey folds a display string into the form used for alias lookup.
func NormalizeKey(value string) string {
	value = strings.ToLower(value)
	value = strings.ReplaceAll(value, "&", "and")
	value = nonAlnumRegex.ReplaceAllString(value, " ")
	return strings.TrimSpace(value)
}

// Slugify builds a url-safe slug. It returns an empty string for input
// without any alphanumeric characters.
func Slugify(value string) string {
	value = strings.ToLower(value)
	value = strings.ReplaceAll(value, "&", "and")
	value = nonAlnumRegex.ReplaceAllString(value, "-")
	value = hyphenRunRegex.ReplaceAllString(value, "-")
	return strings.Trim(value, "-")
}

// ResolveSlug returns the known slug for the first candidate that matches an
// alias. Otherwise the first non-empty candidate is slugified.
func ResolveSlug(candidates ...string) string {
	for _, candidate := range candidates {
		key := NormalizeKey(candidate)
		if key == "" {
			continue
		}
		if slug, ok := slugByAlias[key]; ok {
			return slug
		}
	}

	for _, candidate := range candidates {
		if strings.TrimSpace(candidate) == "" {
			continue
		}
		if slug := Slugify(candidate); slug != "" {
			return slug
		}
	}

	return UnknownTeamSlug
}

// KnownSlug reports the roster slug for the first candidate matching an alias.
func KnownSlug(candidates ...string) (string, bool) {
	for _, candidate := range candidates {
		if slug, ok := slugByAlias[NormalizeKey(candidate)]; ok {
			return slug, true
		}
	}
	return "", false
}

func Lookup(slug string) (KnownTeam, bool) {
	item, ok := teamBySlug[strings.TrimSpace(strings.ToLower(slug))]
	if !ok {
		return KnownTeam{}, false
	}
	item.Aliases = append([]string(nil), item.Aliases...)
	return item, true
}

func IsKnown(slug string) bool {
	_, ok := teamBySlug[strings.TrimSpace(strings.ToLower(slug))]
	return ok
}

// Teams returns a copy of the conference roster in display order.
func Teams() []KnownTeam {
	out := make([]KnownTeam, 0, len(knownTeams))
	for _, item := range knownTeams {
		item.Aliases = append([]string(nil), item.Aliases...)
		out = append(out, item)
	}
	return out
}
