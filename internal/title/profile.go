package title

import (
	"strings"

	"marquee/internal/config"
)

// Brand identifies an event-cinema broadcast series. Phrases are matched
// against the normalized listing title; Tokens are the phrases at least one
// of which must appear in an accepted candidate's display or original title.
type Brand struct {
	Name    string
	Phrases []string
	Tokens  []string
}

// Profile carries the per-market vocabulary driving cleaning, query
// generation, and the non-film guard. The curated defaults cover the UK
// listings the scrapers target; config additions extend them.
type Profile struct {
	nonFilm   []string
	programme []string
	festival  []string
	brands    []Brand
	aliases   map[string]string
	stopWords map[string]struct{}
}

var defaultNonFilmKeywords = []string{
	"open mic",
	"free entry",
	"fun in the lounge",
	"quiz",
	"trivia",
	"workshop",
	"masterclass",
	"panel",
	"discussion",
	"in conversation",
	"talk",
	"live podcast",
	"book launch",
	"stand up",
	"comedy night",
	"live music",
	"dj set",
	"club night",
	"karaoke",
	"an evening with",
}

var defaultProgrammeKeywords = []string{
	"shorts",
	"short film programme",
	"spotlight",
	"programme",
	"selection",
	"showcase",
}

var defaultFestivalKeywords = []string{
	"festival",
	"lsff",
	"anz",
	"docfest",
	"queer east",
}

var defaultBrands = []Brand{
	{
		Name:    "National Theatre Live",
		Phrases: []string{"nt live", "national theatre live"},
		Tokens:  []string{"national theatre", "nt live"},
	},
	{
		Name:    "Met Opera",
		Phrases: []string{"met opera live", "met opera encore", "met opera"},
		Tokens:  []string{"met opera", "metropolitan opera"},
	},
	{
		Name:    "Royal Opera",
		Phrases: []string{"royal opera", "rbo live", "rbo encore"},
		Tokens:  []string{"royal opera"},
	},
	{
		Name:    "Royal Ballet",
		Phrases: []string{"royal ballet"},
		Tokens:  []string{"royal ballet"},
	},
	{
		Name:    "Bolshoi Ballet",
		Phrases: []string{"bolshoi ballet"},
		Tokens:  []string{"bolshoi"},
	},
	{
		Name:    "Exhibition on Screen",
		Phrases: []string{"exhibition on screen"},
		Tokens:  []string{"exhibition on screen"},
	},
}

// defaultAliases corrects titles that search poorly as scraped, mapping the
// normalized listing title to the service's searchable title. Keys are in
// Normalize form; a trailing "(year)" in the value becomes a year hint for
// the variant rather than query text.
var defaultAliases = map[string]string{
	"hausu": "House (1977)",
}

var splitStopWords = []string{
	"intro", "q", "a", "qa", "discussion", "panel", "talk", "with", "recorded", "cast",
}

// NewProfile builds the default profile extended with config additions.
func NewProfile(market config.Market) *Profile {
	p := &Profile{
		nonFilm:   append([]string(nil), defaultNonFilmKeywords...),
		programme: append([]string(nil), defaultProgrammeKeywords...),
		festival:  append([]string(nil), defaultFestivalKeywords...),
		brands:    defaultBrands,
		aliases:   make(map[string]string, len(defaultAliases)+len(market.Aliases)),
		stopWords: make(map[string]struct{}, len(splitStopWords)),
	}
	for key, value := range defaultAliases {
		p.aliases[key] = value
	}
	for _, word := range splitStopWords {
		p.stopWords[word] = struct{}{}
	}
	p.nonFilm = appendNormalized(p.nonFilm, market.NonFilmKeywords)
	p.programme = appendNormalized(p.programme, market.ProgrammeKeywords)
	p.festival = appendNormalized(p.festival, market.FestivalKeywords)
	for key, value := range market.Aliases {
		normalized := Normalize(key)
		if normalized == "" || strings.TrimSpace(value) == "" {
			continue
		}
		p.aliases[normalized] = strings.TrimSpace(value)
	}
	return p
}

// DefaultProfile builds the profile with no config additions.
func DefaultProfile() *Profile {
	return NewProfile(config.Market{})
}

// Alias returns the curated replacement query for a normalized title, if any.
func (p *Profile) Alias(normalized string) (string, bool) {
	value, ok := p.aliases[normalized]
	return value, ok
}

func appendNormalized(dst []string, extra []string) []string {
	for _, keyword := range extra {
		normalized := Normalize(keyword)
		if normalized == "" {
			continue
		}
		dst = append(dst, normalized)
	}
	return dst
}
