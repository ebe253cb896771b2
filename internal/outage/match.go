// Package outage correlates scraped listing text with registered
// addresses and dispatches notifications.
package outage

import (
	"strings"

	"github.com/ak800i/power-outage-notifier/internal/domain"
)

// indexFold is a case-insensitive strings.Index. Lowercasing the cyrillic
// and latin text seen here never changes byte lengths, so the returned
// offset is valid in the original string.
func indexFold(s, substr string) int {
	return strings.Index(strings.ToLower(s), strings.ToLower(substr))
}

func containsFold(s, substr string) bool {
	return indexFold(s, substr) >= 0
}

// declensionRoot trims the last two runes off a street name so that
// grammatical case suffixes in prose listings still match. Very short
// street names are used as-is.
func declensionRoot(street string) string {
	runes := []rune(street)
	if len(runes) <= 2 {
		return street
	}
	return string(runes[:len(runes)-2])
}

// MatchTabular decides a power-outage table row against a user: the
// municipality cell must equal the user's municipality exactly and the
// streets cell must contain the street. The returned fragment runs from
// the street's first occurrence up to the next comma, so it carries the
// house-number range the listing attaches to the street.
func MatchTabular(municipalityCell, streetsCell string, u domain.User) (string, bool) {
	if u.Street == "" {
		return "", false
	}
	if municipalityCell != u.Municipality {
		return "", false
	}
	idx := indexFold(streetsCell, u.Street)
	if idx < 0 {
		return "", false
	}

	fragment := streetsCell[idx:]
	if comma := strings.Index(fragment, ","); comma >= 0 {
		fragment = fragment[:comma]
	}
	return fragment, true
}

// MatchDeclension decides a planned-water prose block against a user.
// Prose declines street names, so only the declension root is required.
func MatchDeclension(block string, u domain.User) bool {
	if u.Street == "" || u.Municipality == "" {
		return false
	}
	return containsFold(block, u.Municipality) && containsFold(block, declensionRoot(u.Street))
}

// MatchStrict decides an unplanned-water list item against a user. The
// failure list spells streets out in full, so the whole street must occur.
func MatchStrict(item string, u domain.User) bool {
	if u.Street == "" || u.Municipality == "" {
		return false
	}
	return containsFold(item, u.Municipality) && containsFold(item, u.Street)
}
