// Package moderation censors forbidden words in text messages before they
// are persisted and broadcast. Matching runs over a normalized view of the
// input (lowercased, leet speak folded, punctuation skipped) so spaced or
// disguised spellings are still caught, while the replacement preserves
// the original rune positions.
package moderation

import (
	"log/slog"
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"

	"chat-relay/errors"
)

type Moderator struct {
	matcher     *goahocorasick.Machine
	replacement rune
	log         *slog.Logger
}

// NewModerator builds the Aho-Corasick automaton from the censored word
// list. The list must not be empty; callers that want moderation off
// simply do not construct a Moderator.
func NewModerator(words []string, replacement rune, log *slog.Logger) (*Moderator, error) {
	if len(words) == 0 {
		return nil, errors.ErrEmptyWords
	}
	patterns := make([][]rune, len(words))
	for i, word := range words {
		normalized, _ := normalize([]rune(word))
		patterns[i] = normalized
	}

	machine := new(goahocorasick.Machine)
	if err := machine.Build(patterns); err != nil {
		return nil, err
	}
	return &Moderator{matcher: machine, replacement: replacement, log: log}, nil
}

// Censor replaces every match with the replacement rune, keeping
// untouched characters (including spacing and punctuation inside a
// disguised match) at their original positions.
func (m *Moderator) Censor(original string) string {
	origRunes := []rune(original)
	normalized, origIdx := normalize(origRunes)
	if len(normalized) == 0 {
		return original
	}

	spans := m.matcher.MultiPatternSearch(normalized, false)
	if len(spans) == 0 {
		return original
	}

	for _, span := range spans {
		start := span.Pos
		end := start + len(span.Word)
		if start < 0 || end > len(origIdx) {
			continue
		}
		// Star out the original range covered by the normalized match,
		// interior noise characters included.
		for i := origIdx[start]; i <= origIdx[end-1]; i++ {
			origRunes[i] = m.replacement
		}
	}

	m.log.Debug("Censored message content", "matches", len(spans))
	return string(origRunes)
}

// normalize lowercases, folds leet speak, and drops noise runes. The
// second return value maps each normalized position back to the original
// rune index.
func normalize(input []rune) ([]rune, []int) {
	normalized := make([]rune, 0, len(input))
	origIdx := make([]int, 0, len(input))
	for i, r := range input {
		folded := foldLeet(r)
		if isNoise(folded) {
			continue
		}
		normalized = append(normalized, unicode.ToLower(folded))
		origIdx = append(origIdx, i)
	}
	return normalized, origIdx
}

func foldLeet(r rune) rune {
	switch r {
	case '4', '@':
		return 'a'
	case '3':
		return 'e'
	case '1', '!', '|':
		return 'i'
	case '0':
		return 'o'
	case '5', '$':
		return 's'
	default:
		return r
	}
}

func isNoise(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r)
}
