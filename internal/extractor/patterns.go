package extractor

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// spaceClass is \s widened to the no-break and thin spaces listing sites put
// between the currency symbol and the amount
const spaceClass = `[\s\x{00A0}\x{202F}\x{2009}]`

var (
	pricePattern = regexp.MustCompile(`€` + spaceClass + `*[\d.,]+|[\d.,]+` + spaceClass + `*€`)
	yearPattern  = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	// autoScoutTitlePattern matches capitalised word sequences; spaces include line breaks
	autoScoutTitlePattern = regexp.MustCompile(`[A-Z][a-z]+` + spaceClass + `+[A-Za-z0-9\s\x{00A0}\x{202F}\x{2009}]+`)

	// Single-line lookups try the symbol-first form before the trailing form
	priceLinePatterns = []*regexp.Regexp{
		regexp.MustCompile(`€` + spaceClass + `*[\d.,]+`),
		regexp.MustCompile(`[\d.,]+` + spaceClass + `*€`),
	}
	mileageLinePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)km` + spaceClass + `*[\d.,]+`),
		regexp.MustCompile(`(?i)[\d.,]+` + spaceClass + `*km`),
	}
)

const (
	currencySymbol   = "€"
	notAvailable     = "N/A"
	minWordRunes     = 3
	maxModelWords    = 2
	fallbackMinRunes = 10
	fallbackMaxRunes = 200
)

func firstMatch(line string, patterns []*regexp.Regexp) string {
	for _, re := range patterns {
		if m := re.FindString(line); m != "" {
			return m
		}
	}
	return ""
}

func findLinePrice(line string) string {
	return firstMatch(line, priceLinePatterns)
}

func findLineMileage(line string) string {
	return firstMatch(line, mileageLinePatterns)
}

func findYear(line string) string {
	return yearPattern.FindString(line)
}

// nonBlankLines splits content on newlines and drops whitespace-only lines.
// Lines are returned untrimmed.
func nonBlankLines(content string) []string {
	raw := strings.Split(content, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// significantWords splits a line on single spaces and keeps tokens of at least three characters
func significantWords(line string) []string {
	var words []string
	for _, w := range strings.Split(line, " ") {
		if utf8.RuneCountInString(w) >= minWordRunes {
			words = append(words, w)
		}
	}
	return words
}

// brandAndModel takes the first word as brand and up to two following words as model
func brandAndModel(words []string) (string, string) {
	if len(words) == 0 {
		return "", ""
	}
	end := 1 + maxModelWords
	if end > len(words) {
		end = len(words)
	}
	return words[0], strings.Join(words[1:end], " ")
}
