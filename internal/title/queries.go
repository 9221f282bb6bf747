package title

import (
	"strconv"
	"strings"
	"time"
)

// stripYear removes a parenthesised year from a query, returning the year.
func stripYear(query string) (string, int) {
	year := YearFromTitle(query)
	if year == 0 {
		return query, 0
	}
	return strings.Trim(yearInTitle.ReplaceAllString(query, ""), " .,:;"), year
}

// Variant is one search query derived from a raw listing title. Year is a
// hint extracted from the variant text itself (an alias like "Hausu (1977)"
// or a parenthesised year in the raw title), 0 when absent.
type Variant struct {
	Query  string
	Year   int
	Origin string
}

// Variant origins, in the order variants are generated.
const (
	OriginBase        = "base"
	OriginAlias       = "alias"
	OriginBracket     = "bracket"
	OriginDoubleBill  = "double-bill"
	OriginBrandSuffix = "brand-suffix"
)

// Queries generates the ordered, de-duplicated search variants for a raw
// title: the cleaned base, alias corrections, bracketed alternate titles,
// double-bill halves, and the content suffix of broadcast-brand titles.
// The result is non-empty unless raw is empty.
func (p *Profile) Queries(raw string) []Variant {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	titleYear := YearFromTitle(raw)
	var variants []Variant
	seen := make(map[string]struct{})

	add := func(query, origin string, year int) {
		query = strings.Trim(strings.TrimSpace(query), " .,:;")
		if stripped, embeddedYear := stripYear(query); embeddedYear > 0 {
			query, year = stripped, embeddedYear
		}
		if query == "" {
			return
		}
		key := Normalize(query)
		if key == "" {
			key = strings.ToLower(query)
		}
		key += "|" + strconv.Itoa(year)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		variants = append(variants, Variant{Query: query, Year: year, Origin: origin})
	}

	addWithAlias := func(query, origin string, year int) {
		add(query, origin, year)
		if alias, ok := p.Alias(Normalize(query)); ok {
			add(alias, OriginAlias, 0)
		}
	}

	base := p.Clean(raw)
	addWithAlias(base, OriginBase, titleYear)

	for _, match := range bracketAlt.FindAllStringSubmatch(raw, -1) {
		alt := strings.TrimSpace(match[1])
		if aka := akaAlt.FindStringSubmatch(alt); aka != nil {
			alt = strings.TrimSpace(aka[1])
		}
		addWithAlias(p.Clean(alt), OriginBracket, YearFromTitle(alt))
	}

	if strings.Contains(base, " + ") || strings.Contains(base, " & ") {
		for _, part := range billSeparator.Split(base, -1) {
			part = stripEventSuffix(strings.TrimSpace(part))
			part = strings.Trim(p.Clean(part), " .,:;")
			if len([]rune(part)) < 4 {
				continue
			}
			if _, stop := p.stopWords[strings.ToLower(part)]; stop {
				continue
			}
			addWithAlias(part, OriginDoubleBill, 0)
		}
	}

	if idx := strings.Index(base, ":"); idx > 0 {
		prefixNorm := Normalize(base[:idx])
		if p.brandForTitle(prefixNorm) != nil {
			addWithAlias(base[idx+1:], OriginBrandSuffix, 0)
		}
	}

	return variants
}

func parsePlausibleYear(raw string) int {
	year, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	if year < 1880 || year > time.Now().Year()+3 {
		return 0
	}
	return year
}
