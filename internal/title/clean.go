package title

import (
	"regexp"
	"strings"
)

// Event prefixes bound to a colon or dash. Broadcast brand prefixes are
// deliberately not listed: the brand is part of the searchable title and the
// colon-suffix variant is generated separately.
var prefixPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(narrow margin presents|in focus|crafty movie night|member's request|staff pick|relaxed screening|family screening|preview|premiere|uk premiere)[:\s–-]+`),
	regexp.MustCompile(`(?i)^(throwback|babykino|carers & babies|toddler club|club room|dog-friendly screening|dog-friendly|sensory friendly|hoh|caption|autism friendly)[:\s–-]+`),
	regexp.MustCompile(`(?i)^(dochouse|lsff|anz film festival|anz ff)[:\s–-]+`),
	regexp.MustCompile(`(?i)^(member's preview|members' preview|mystery movie|secret movie|surprise movie)[:\s–-]+`),
	regexp.MustCompile(`(?i)^(bar trash|offbeat|pink palace|films for workers|coming up|london short film festival)[:\s–-]+`),
	regexp.MustCompile(`(?i)^(phoenix classics|cine-real presents|green screen)[:\s–-]+`),
	regexp.MustCompile(`(?i)^(drink\s*&\s*dine|docfest spotlights|video bazaar presents|tv preview)[:\s–-]+`),
	regexp.MustCompile(`(?i)^(scanners\s+inc\.?\s+presents|deleted scenes presents)[:\s–-]+`),
	regexp.MustCompile(`(?i)^(holocaust memorial day|lexi seniors'? film club|saturday morning picture club)[:\s–-]+`),
	regexp.MustCompile(`(?i)^(nostalgie|red flagged[^:]*presents|queer east presents|pitchblack playback|evolution of horror|philosophical screens)[:\s–-]+`),
	regexp.MustCompile(`(?i)^an evening with[^:]+[:\s–-]+`),
}

// Release/screening suffix noise.
var suffixPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)4k restor.*`),
	regexp.MustCompile(`(?i)4k digital remaster.*`),
	regexp.MustCompile(`(?i)director's cut`),
	regexp.MustCompile(`(?i)extended edition`),
	regexp.MustCompile(`(?i)anniversary edition`),
	regexp.MustCompile(`(?i)special edition`),
	regexp.MustCompile(`(?i)remastered`),
	regexp.MustCompile(`(?i)\d+th anniversary.*`),
	regexp.MustCompile(`(?i)double bill.*`),
	regexp.MustCompile(`(?i)double feature.*`),
	regexp.MustCompile(`(?i)\(\s*(u|pg|12a|12|15|15\*|18|r)\s*\)`),
	regexp.MustCompile(`\(\s*\d{4}\s*\)\s*$`),
	regexp.MustCompile(`(?i)\(.*?version\)`),
	regexp.MustCompile(`\[.*?\]`),
	regexp.MustCompile(`(?i)\s+encore\s*$`),
	regexp.MustCompile(`(?i)\s+\d{4}-\d{2,4}\s+season\s*$`),
	regexp.MustCompile(`(?i)\s+sing[- ]?a[- ]?long!?\s*$`),
	regexp.MustCompile(`(?i)\b(parent and baby|carer|hard of hearing|captioned|subtitled|relaxed|autism|dementia|hoh|babes-in-arms)(\s+screening)?\s*$`),
	regexp.MustCompile(`(?i)\s+uk premiere\s*$`),
	regexp.MustCompile(`(?i)\s(\+|–|-)\s+(intro|discussion|q\s*&\s*a|qa|panel|talk|shorts|live score|live music|director|presented by|hosted by|with|screening|recorded|cast).*$`),
}

// eventSuffixPatterns trims post-film event text from double-bill fragments.
var eventSuffixPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\s+(with|hosted by|presented by|introduced by)\s+.*$`),
	regexp.MustCompile(`(?i)\s+(q&a|qa|discussion|talk|panel)\s*$`),
	regexp.MustCompile(`(?i)\s+(live|recorded)\s*$`),
}

var (
	yearInTitle   = regexp.MustCompile(`\((\d{4})\)`)
	bracketAlt    = regexp.MustCompile(`\[([^\]]+)\]`)
	akaAlt        = regexp.MustCompile(`(?i)\baka\s+(.*)`)
	billSeparator = regexp.MustCompile(`\s*(?:\+|&)\s*`)
)

// noisyTitleCutoffs mark where run-on marketing copy starts in titles the
// scrapers failed to truncate.
var noisyTitleCutoffs = []string{"doors", "film", "certificate", "digital", "book here", "not for the easily"}

// Clean strips event-prefix and release-suffix noise from a raw listing
// title. Broadcast brand prefixes survive cleaning. If stripping removes
// everything the raw title is returned unchanged.
func (p *Profile) Clean(raw string) string {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return ""
	}
	cleaned = truncateNoisy(cleaned)
	for _, pattern := range prefixPatterns {
		cleaned = pattern.ReplaceAllString(cleaned, "")
	}
	for _, pattern := range suffixPatterns {
		cleaned = pattern.ReplaceAllString(cleaned, "")
	}
	cleaned = strings.Trim(strings.TrimSpace(cleaned), " .,:;")
	if cleaned == "" {
		return strings.TrimSpace(raw)
	}
	return cleaned
}

func truncateNoisy(raw string) string {
	if len(raw) < 80 {
		return raw
	}
	lower := strings.ToLower(raw)
	cut := len(raw)
	for _, keyword := range noisyTitleCutoffs {
		if idx := strings.Index(lower, keyword); idx >= 0 && idx < cut {
			cut = idx
		}
	}
	return strings.TrimSpace(raw[:cut])
}

func stripEventSuffix(fragment string) string {
	result := fragment
	for _, pattern := range eventSuffixPatterns {
		result = pattern.ReplaceAllString(result, "")
	}
	return strings.TrimSpace(result)
}

// YearFromTitle extracts a plausible parenthesised year, 0 when none.
func YearFromTitle(raw string) int {
	for _, match := range yearInTitle.FindAllStringSubmatch(raw, -1) {
		if year := parsePlausibleYear(match[1]); year > 0 {
			return year
		}
	}
	return 0
}
