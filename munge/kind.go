package munge

import (
	"log/slog"
	"slices"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/ardnew/munge/lang"
)

// Kind selects a munger.
type Kind string

// Munger kinds.
const (
	KindConfig   Kind = "config"
	KindPath     Kind = "path"
	KindPlanning Kind = "planning"
	KindWorld    Kind = "world"
	KindODF      Kind = "odf"
)

// Kinds returns every munger kind.
func Kinds() []Kind {
	return []Kind{KindConfig, KindPath, KindPlanning, KindWorld, KindODF}
}

// ParseKind returns the kind named s, ignoring case.
// An unknown name is [ErrUnknownKind], with a suggestion when one is close.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(Kinds(), k) {
		return k, nil
	}

	names := make([]string, 0, len(Kinds()))
	for _, k := range Kinds() {
		names = append(names, string(k))
	}

	err := ErrUnknownKind.With(slog.String("kind", s))
	if m, ok := Suggest(s, names); ok {
		err = err.With(slog.String("suggestion", m))
	}

	return "", err
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (k *Kind) UnmarshalText(text []byte) error {
	v, err := ParseKind(string(text))
	if err != nil {
		return err
	}

	*k = v

	return nil
}

// String returns the kind name.
func (k Kind) String() string { return string(k) }

// Document returns the parser kind of the kind's primary input.
func (k Kind) Document() lang.Kind {
	switch k {
	case KindConfig:
		return lang.KindConfig
	case KindPath:
		return lang.KindPath
	case KindPlanning:
		return lang.KindPlanning
	case KindWorld:
		return lang.KindWorld
	default:
		return lang.KindGeneric
	}
}

// Extension returns the default output file extension, without a dot.
func (k Kind) Extension() string {
	switch k {
	case KindPlanning:
		return "congraph"
	case KindODF:
		return "class"
	default:
		return string(k)
	}
}

// Suggest returns the candidate that best matches s as a fuzzy subsequence.
func Suggest(s string, candidates []string) (string, bool) {
	if s == "" {
		return "", false
	}

	matches := fuzzy.Find(strings.ToLower(s), candidates)
	if len(matches) == 0 {
		return "", false
	}

	return matches[0].Str, true
}
