package validation

import "regexp"

// Accepted color grammars. The renderer consumes CSS-style color strings;
// anything else fails structural validation.
var colorPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^#[0-9a-fA-F]{3}$`),
	regexp.MustCompile(`^#[0-9a-fA-F]{6}$`),
	regexp.MustCompile(`^#[0-9a-fA-F]{8}$`),
	regexp.MustCompile(`^rgb\(\s*\d{1,3}\s*,\s*\d{1,3}\s*,\s*\d{1,3}\s*\)$`),
	regexp.MustCompile(`^rgba\(\s*\d{1,3}\s*,\s*\d{1,3}\s*,\s*\d{1,3}\s*,\s*(0|1|0?\.\d+)\s*\)$`),
	regexp.MustCompile(`^hsl\(\s*\d{1,3}\s*,\s*\d{1,3}%\s*,\s*\d{1,3}%\s*\)$`),
	regexp.MustCompile(`^hsla\(\s*\d{1,3}\s*,\s*\d{1,3}%\s*,\s*\d{1,3}%\s*,\s*(0|1|0?\.\d+)\s*\)$`),
}

// IsValidColor reports whether s matches one of the accepted color
// grammars: "transparent", #RGB, #RRGGBB, #RRGGBBAA, rgb(), rgba(),
// hsl() or hsla().
func IsValidColor(s string) bool {
	if s == "transparent" {
		return true
	}
	for _, p := range colorPatterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}
