// Package odf reads object definition files.
//
// An object definition is an INI-like text file:
//
//	[GameObjectClass]
//	ClassLabel = "prop"
//	GeometryName = "tree.msh"
//
//	[Properties]
//	GeometryName = "tree"   // trailing comment
//
// Section headers are bracketed names. Every other line is a key = value
// pair; its value runs up to the first '/' and has surrounding quotes and
// whitespace trimmed. Lines starting with "//", pairs before the first
// header, and pairs with an empty value are ignored.
package odf

import (
	"bufio"
	"io"
	"log/slog"
	"strings"

	"github.com/ardnew/munge/pkg"
)

// Predefined errors (sentinel values).
var ErrRead = pkg.NewError("failed to read object definition")

// Keys that name the base class instead of defining a property.
const (
	ClassLabel  = "ClassLabel"
	ClassParent = "ClassParent"
)

// PropertiesSection is the section whose pairs become class properties.
const PropertiesSection = "Properties"

// Property is a key = value pair.
type Property struct {
	Key   string
	Value string
}

// Section is a named list of properties, in file order. Duplicate keys are
// kept.
type Section struct {
	Name       string
	Properties []Property
}

// Class is a parsed object definition.
type Class struct {
	// Base names the engine class or parent definition this one derives from.
	Base string
	// Parent reports whether Base came from ClassParent rather than
	// ClassLabel.
	Parent bool

	Sections []*Section
}

// Section returns the section with the given name, if present.
func (c *Class) Section(name string) (*Section, bool) {
	for _, s := range c.Sections {
		if s.Name == name {
			return s, true
		}
	}

	return nil, false
}

// Properties returns the pairs of the [PropertiesSection].
func (c *Class) Properties() []Property {
	if s, ok := c.Section(PropertiesSection); ok {
		return s.Properties
	}

	return nil
}

// Parse reads an object definition from r.
//
// A header repeated later in the file continues the existing section.
func Parse(r io.Reader) (*Class, error) {
	var (
		c       = new(Class)
		current *Section
		line    int
	)

	scan := bufio.NewScanner(r)

	for scan.Scan() {
		line++

		text := strings.Trim(scan.Text(), " \t\r\n")

		switch {
		case text == "", strings.HasPrefix(text, "//"):
			continue

		case strings.HasPrefix(text, "["):
			name, ok := header(text)
			if !ok {
				continue
			}

			s, ok := c.Section(name)
			if !ok {
				s = &Section{Name: name}
				c.Sections = append(c.Sections, s)
			}

			current = s

		case current != nil:
			key, value, ok := pair(text)
			if !ok {
				continue
			}

			if key == ClassLabel || key == ClassParent {
				c.Base, c.Parent = value, key == ClassParent

				continue
			}

			current.Properties = append(current.Properties, Property{key, value})
		}
	}

	if err := scan.Err(); err != nil {
		return nil, ErrRead.Wrap(err).With(slog.Int("line", line))
	}

	return c, nil
}

// header returns the name of a "[Name]" line.
func header(text string) (string, bool) {
	n := wordLen(text[1:])
	if n == 0 || !strings.HasPrefix(text[1+n:], "]") {
		return "", false
	}

	return text[1 : 1+n], true
}

// pair splits a "key = value" line.
func pair(text string) (key, value string, ok bool) {
	n := wordLen(text)
	if n == 0 {
		return "", "", false
	}

	rest := strings.TrimLeft(text[n:], " \t")
	if !strings.HasPrefix(rest, "=") {
		return "", "", false
	}

	rest = strings.TrimLeft(rest[1:], " \t")
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		rest = rest[:i]
	}

	value = strings.Trim(rest, "\" \t\r\n")
	if value == "" {
		return "", "", false
	}

	return text[:n], value, true
}

// wordLen returns the length of the leading run of [A-Za-z0-9_] in s.
func wordLen(s string) int {
	for i := range len(s) {
		c := s[i]
		if c != '_' && (c < '0' || c > '9') && (c < 'A' || c > 'Z') && (c < 'a' || c > 'z') {
			return i
		}
	}

	return len(s)
}
