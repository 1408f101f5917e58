package repl

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/munge/lang"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{"help", "kind", "platform", "list", "edit", "reset", "clear", "quit"}

// isWordBoundary returns true if the rune delimits an identifier or literal
// of a statement.
func isWordBoundary(r rune) bool {
	switch r {
	case ' ', '\t',
		'(', ')', '{', '}',
		',', ';', '"', '\'':
		return true
	}

	return false
}

// wordBounds returns the current word at the cursor position and its byte
// boundaries within input.
// Returns an empty word when the cursor sits on a boundary.
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(cursor, len(input))

	start = cursor

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	end = cursor

	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// inArgs reports whether offset lies inside an open argument list.
func inArgs(input string, offset int) bool {
	depth := 0

	for _, r := range input[:offset] {
		switch r {
		case '(':
			depth++
		case ')':
			depth = max(depth-1, 0)
		}
	}

	return depth > 0
}

// ctrlCandidates returns the completions of the control-mode word at start.
// The first word completes to a command; the argument of kind and platform
// completes to their values.
func ctrlCandidates(input string, start int) []string {
	fields := strings.Fields(input[:start])

	switch {
	case len(fields) == 0:
		return ctrlCommands

	case len(fields) > 1:
		return nil

	case fields[0] == "kind":
		return slices.Collect(lang.Kinds())

	case fields[0] == "platform":
		names := make([]string, 0, len(lang.Platforms()))
		for _, p := range lang.Platforms() {
			names = append(names, string(p))
		}

		return names

	default:
		return nil
	}
}

// evalCandidates returns the statement names known to the session, after the
// entity keywords.
func evalCandidates(doc *lang.Document) []string {
	names := lang.Keywords()

	for inst := range doc.Instances() {
		if !slices.Contains(names, inst.Name) {
			names = append(names, inst.Name)
		}
	}

	return names
}

// computeMatches calculates the fuzzy match results for the word at the cursor.
// It returns the matches (ranked best-first) and the word boundaries.
// An empty word has no matches so the hint line stays visible.
func (m model) computeMatches() (matches fuzzy.Matches, wordStart, wordEnd int) {
	input := m.input.Value()

	word, ws, we := wordBounds(input, m.input.Position())
	if word == "" {
		return nil, ws, we
	}

	var candidates []string

	switch {
	case m.mode == modeCtrl:
		candidates = ctrlCandidates(input, ws)
	case !inArgs(input, ws):
		candidates = evalCandidates(m.session)
	}

	if len(candidates) == 0 {
		return nil, ws, we
	}

	return fuzzy.Find(word, candidates), ws, we
}

// renderCandidateBar builds the single-line completion bar, ellipsized to fit
// within the given terminal width. The selected candidate (when tabbing) uses
// the selected style.
func renderCandidateBar(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	ellipsis := hintStyle.Render("...")
	reserve := lipgloss.Width(sep) + lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		rendered := renderCandidate(match, tabActive && i == suggIdx)
		w := lipgloss.Width(rendered)

		if i > 0 {
			if i < len(matches)-1 && used+w+reserve > width {
				b.WriteString(sep + ellipsis)

				break
			}

			b.WriteString(sep)

			used += lipgloss.Width(sep)
		}

		b.WriteString(rendered)

		used += w
	}

	return b.String()
}

// renderCandidate renders a single candidate with matched characters
// highlighted.
func renderCandidate(match fuzzy.Match, selected bool) string {
	base, highlight := suggestionStyle, matchStyle
	if selected {
		base, highlight = selectedStyle, selectedMatchStyle
	}

	var b strings.Builder

	for i, r := range match.Str {
		if slices.Contains(match.MatchedIndexes, i) {
			b.WriteString(highlight.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}

	return b.String()
}
