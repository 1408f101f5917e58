package cmd

import "strings"

// ConfigScope is the name of the scoped instance holding flag values in a
// configuration file.
const ConfigScope = "Munge"

// PropertyName returns the configuration property name of a kebab-case flag
// name: "log-time-layout" becomes "LogTimeLayout".
func PropertyName(flag string) string {
	var sb strings.Builder

	for word := range strings.SplitSeq(flag, "-") {
		if word == "" {
			continue
		}

		sb.WriteString(strings.ToUpper(word[:1]))
		sb.WriteString(word[1:])
	}

	return sb.String()
}

// Key returns the lookup key shared by a flag name and its property names.
// Case, hyphens, and underscores are ignored.
func Key(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '-', '_':
			return -1
		}

		return r
	}, strings.ToLower(name))
}
