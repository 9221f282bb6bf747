package title

import "fmt"

// ShouldSkip reports whether a title names something that is not a film
// screening at all, with a human-readable reason. Two independent checks:
// a non-film event keyword anywhere in the normalized title, and a
// programme/shorts composite (a showcase keyword together with a festival
// keyword names a festival slate, not a single film). Broadcast-brand titles
// do not skip; they proceed under the brand-token gate instead.
func (p *Profile) ShouldSkip(raw string) (bool, string) {
	normalized := Normalize(raw)
	if normalized == "" {
		return true, "empty title"
	}
	for _, keyword := range p.nonFilm {
		if containsWord(normalized, keyword) {
			return true, fmt.Sprintf("non-film event keyword %q", keyword)
		}
	}
	for _, showcase := range p.programme {
		if !containsWord(normalized, showcase) {
			continue
		}
		for _, festival := range p.festival {
			if containsWord(normalized, festival) {
				return true, fmt.Sprintf("festival programme (%q + %q)", showcase, festival)
			}
		}
	}
	return false, ""
}

// HasBroadcastBrand reports whether the title carries an event-cinema brand.
func (p *Profile) HasBroadcastBrand(raw string) bool {
	return p.brandForTitle(Normalize(raw)) != nil
}

// RequiredBrandTokens returns the tokens an accepted candidate must carry in
// its display or original title, empty for non-brand titles.
func (p *Profile) RequiredBrandTokens(raw string) []string {
	brand := p.brandForTitle(Normalize(raw))
	if brand == nil {
		return nil
	}
	return brand.Tokens
}

func (p *Profile) brandForTitle(normalized string) *Brand {
	if normalized == "" {
		return nil
	}
	for i := range p.brands {
		for _, phrase := range p.brands[i].Phrases {
			if containsWord(normalized, phrase) {
				return &p.brands[i]
			}
		}
	}
	return nil
}
