// Package moderation screens chat messages for banned words before they are
// stored.
package moderation

import (
	"context"
	"errors"
	"slices"
	"strings"
	"unicode"

	ahocorasick "github.com/anknown/ahocorasick"

	"github.com/iyunix/go-darkbin/internal/domain"
)

// ErrBannedWord is returned when a message is vetoed.
var ErrBannedWord = errors.New("message contains a banned word")

type Mode string

const (
	// ModeReject vetoes any message containing a banned word.
	ModeReject Mode = "reject"
	// ModeCensor masks banned words and lets the message through.
	ModeCensor Mode = "censor"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeReject:
		return ModeReject, nil
	case ModeCensor:
		return ModeCensor, nil
	}
	return "", errors.New("moderation mode must be reject or censor")
}

// Filter matches banned words ignoring case, spacing, punctuation and
// common digit or symbol substitutions.
type Filter struct {
	machine *ahocorasick.Machine
	mode    Mode
	mask    rune
}

// NewFilter builds a filter for words. It returns nil when words holds
// nothing to match, and a nil *Filter lets everything through.
func NewFilter(words []string, mode Mode) (*Filter, error) {
	var patterns [][]rune
	seen := map[string]bool{}
	for _, w := range words {
		p := normalize([]rune(w))
		if len(p) == 0 || seen[string(p)] {
			continue
		}
		seen[string(p)] = true
		patterns = append(patterns, p)
	}
	if len(patterns) == 0 {
		return nil, nil
	}

	m := new(ahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}
	return &Filter{machine: m, mode: mode, mask: '*'}, nil
}

// Validate vetoes or censors msg depending on the filter mode.
func (f *Filter) Validate(_ context.Context, msg *domain.ChatMessage) error {
	if f == nil {
		return nil
	}
	switch f.mode {
	case ModeCensor:
		msg.Content = f.Censor(msg.Content)
		return nil
	default:
		if f.Contains(msg.Content) {
			return ErrBannedWord
		}
		return nil
	}
}

func (f *Filter) Contains(text string) bool {
	if f == nil {
		return false
	}
	folded, _ := fold(text)
	if len(folded) == 0 {
		return false
	}
	return len(f.machine.MultiPatternSearch(folded, true)) > 0
}

// Censor replaces every matched span of text with the mask rune. Skipped
// characters inside a span are masked too.
func (f *Filter) Censor(text string) string {
	if f == nil {
		return text
	}
	folded, positions := fold(text)
	if len(folded) == 0 {
		return text
	}
	hits := f.machine.MultiPatternSearch(folded, false)
	if len(hits) == 0 {
		return text
	}

	out := []rune(text)
	for _, hit := range hits {
		end := hit.Pos + len(hit.Word)
		if hit.Pos < 0 || end > len(positions) || end <= hit.Pos {
			continue
		}
		for i := positions[hit.Pos]; i <= positions[end-1]; i++ {
			out[i] = f.mask
		}
	}
	return string(out)
}

// fold normalizes text and records, for every kept rune, its index in the
// original.
func fold(text string) ([]rune, []int) {
	src := []rune(text)
	folded := make([]rune, 0, len(src))
	positions := make([]int, 0, len(src))
	for i, r := range src {
		c, ok := foldRune(r)
		if !ok {
			continue
		}
		folded = append(folded, c)
		positions = append(positions, i)
	}
	return folded, positions
}

// normalize folds a banned word into its pattern. Words without a single
// letter produce no pattern, since substitution alone would turn them into
// short letter runs that match ordinary text.
func normalize(word []rune) []rune {
	if !slices.ContainsFunc(word, unicode.IsLetter) {
		return nil
	}
	out := make([]rune, 0, len(word))
	for _, r := range word {
		if c, ok := foldRune(r); ok {
			out = append(out, c)
		}
	}
	return out
}

func foldRune(r rune) (rune, bool) {
	switch r {
	case '4', '@':
		r = 'a'
	case '3':
		r = 'e'
	case '1', '!', '|':
		r = 'i'
	case '0':
		r = 'o'
	case '5', '$':
		r = 's'
	case '7':
		r = 't'
	}
	if unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r) {
		return 0, false
	}
	return unicode.ToLower(r), true
}
