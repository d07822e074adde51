// Package roster turns loosely structured tabular or text input into an ordered
// list of identified students.
package roster

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

const minIdentifierLength = 6

// Identifier is a detected roll/registration number plus the residual display name.
type Identifier struct {
	ID   string
	Name string
}

// Extractor infers an identifier from a raw line. It reports false when none was found.
type Extractor func(line string) (Identifier, bool)

// labelWords are stripped from the edges of a residual name ("Reg No 2400... Alice" -> "Alice").
var labelWords = map[string]struct{}{
	"reg":          {},
	"regno":        {},
	"registration": {},
	"roll":         {},
	"rollno":       {},
	"rn":           {},
	"no":           {},
	"num":          {},
	"number":       {},
}

// ExtractIdentifier is the default Extractor. The first run of at least 6 digits wins,
// even when glued to a label ("Roll:2400970100108"); otherwise the first token of
// length >= 6 mixing letters and digits (hyphens allowed) is used.
func ExtractIdentifier(line string) (Identifier, bool) {
	line = normalizeSpaces(line)
	if strings.TrimSpace(line) == "" {
		return Identifier{}, false
	}
	tokens := tokenize(line)

	id := ""
	for _, tok := range tokens {
		if run := digitRun(tok); run != "" {
			id = run
			break
		}
	}
	if id == "" {
		for _, tok := range tokens {
			if isAlnumIdentifier(tok) {
				id = tok
				break
			}
		}
	}
	if id == "" {
		return Identifier{}, false
	}

	name := ResidualName(line, id)
	if name == "" {
		name = id
	}
	return Identifier{ID: id, Name: name}, true
}

// ResidualName removes the first occurrence of id from line and cleans the rest
// into a display name. It returns an empty string when nothing meaningful is left.
func ResidualName(line, id string) string {
	rest := normalizeSpaces(line)
	if id != "" {
		rest = strings.Replace(rest, id, " ", 1)
	}
	words := strings.FieldsFunc(rest, isSeparator)
	for len(words) > 0 && isLabelWord(words[0]) {
		words = words[1:]
	}
	for len(words) > 0 && isLabelWord(words[len(words)-1]) {
		words = words[:len(words)-1]
	}
	return trimNonAlnum(strings.Join(words, " "))
}

func tokenize(line string) []string {
	raw := strings.FieldsFunc(line, isSeparator)
	tokens := make([]string, 0, len(raw))
	for _, tok := range raw {
		if clean := trimNonAlnum(tok); clean != "" {
			tokens = append(tokens, clean)
		}
	}
	return tokens
}

func isSeparator(r rune) bool {
	switch r {
	case ',', '|', ';':
		return true
	}
	return unicode.IsSpace(r)
}

// digitRun returns the first run of at least minIdentifierLength ASCII digits in tok.
func digitRun(tok string) string {
	start := -1
	for i := 0; i <= len(tok); i++ {
		if i < len(tok) && tok[i] >= '0' && tok[i] <= '9' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 && i-start >= minIdentifierLength {
			return tok[start:i]
		}
		start = -1
	}
	return ""
}

func isAlnumIdentifier(tok string) bool {
	if len(tok) < minIdentifierLength {
		return false
	}
	var hasLetter, hasDigit bool
	for _, r := range tok {
		switch {
		case r >= '0' && r <= '9':
			hasDigit = true
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			hasLetter = true
		case r == '-':
		default:
			return false
		}
	}
	return hasLetter && hasDigit
}

func isLabelWord(word string) bool {
	key := strings.ToLower(trimNonAlnum(word))
	key = strings.NewReplacer(".", "", ":", "", "_", "").Replace(key)
	_, ok := labelWords[key]
	return ok
}

func trimNonAlnum(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func normalizeSpaces(s string) string {
	return strings.ReplaceAll(s, "\u00a0", " ")
}

var (
	scanDigits  = regexp.MustCompile(`\b\d{6,}\b`)
	scanAlnum   = regexp.MustCompile(`\b[A-Za-z0-9-]{6,}\b`)
	scanKeyword = regexp.MustCompile(`(?i)\b(?:reg(?:istration)?|roll|rn)\b\.?\s*(?:(?:no|num|number)\b\.?)?\s*:?\s*([A-Za-z0-9_]{6,})`)
)

type scanMatch struct {
	pos int
	id  string
}

// ScanIdentifiers returns every distinct identifier in text, in order of first
// appearance. Unlike ExtractIdentifier it does not stop at one per line. Digit runs,
// letter+digit tokens and values following a Reg/Roll/RN label are all collected.
func ScanIdentifiers(text string) []string {
	text = normalizeSpaces(text)
	var matches []scanMatch
	for _, loc := range scanDigits.FindAllStringIndex(text, -1) {
		matches = append(matches, scanMatch{pos: loc[0], id: text[loc[0]:loc[1]]})
	}
	for _, loc := range scanAlnum.FindAllStringIndex(text, -1) {
		if tok := text[loc[0]:loc[1]]; isAlnumIdentifier(tok) {
			matches = append(matches, scanMatch{pos: loc[0], id: tok})
		}
	}
	for _, loc := range scanKeyword.FindAllStringSubmatchIndex(text, -1) {
		if tok := text[loc[2]:loc[3]]; strings.ContainsAny(tok, "0123456789") {
			matches = append(matches, scanMatch{pos: loc[2], id: tok})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].pos < matches[j].pos })

	seen := make(map[string]struct{}, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, ok := seen[m.id]; ok {
			continue
		}
		seen[m.id] = struct{}{}
		out = append(out, m.id)
	}
	return out
}
