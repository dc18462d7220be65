package chart

import "strings"

// clutter is applied in order; later replacements see the output of earlier ones.
var clutter = []string{".", "&", "featuring ", "and ", "+", "?", " x ", "feat"}

// NormalizeArtist lower-cases an artist credit and blanks out the separators
// and conjunctions that trip up keyword search on multi-artist credits. Each
// removed token becomes a single space, so "Benji & Vedaant" becomes
// "benji   vedaant".
func NormalizeArtist(artist string) string {
	cleaned := strings.ToLower(artist)
	for _, token := range clutter {
		cleaned = strings.ReplaceAll(cleaned, token, " ")
	}
	return cleaned
}
