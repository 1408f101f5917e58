// Package req reads and writes requirement (.req) sidecar files.
//
// A requirement file lists the assets a munged file depends on, grouped into
// named sections:
//
//	ucft
//	{
//		REQN
//		{
//			"class"
//			"com_bldg_controlzone"
//		}
//	}
//
// A section may carry a platform sub-header, written "platform=<name>" right
// after the section name.
package req

import (
	"io"
	"strings"
)

// Newline separates the lines of a written requirement file.
const Newline = "\r\n"

// PlatformPrefix introduces a section's platform sub-header.
const PlatformPrefix = "platform="

// Section is a named list of requirement entries.
type Section struct {
	Name     string
	Platform string
	Entries  []string
}

// Append adds each entry to s, lowercased, skipping empty entries and those
// already present.
func (s *Section) Append(entries ...string) {
	for _, e := range entries {
		e = strings.ToLower(strings.Trim(e, `"`))
		if e == "" || s.Contains(e) {
			continue
		}

		s.Entries = append(s.Entries, e)
	}
}

// AppendName adds name to s like [Section.Append], except that an empty name
// is kept as an empty entry. A world lists its unset light, terrain, sky, and
// path names this way.
func (s *Section) AppendName(name string) {
	if name = strings.Trim(name, `"`); name != "" {
		s.Append(name)

		return
	}

	if !s.Contains("") {
		s.Entries = append(s.Entries, "")
	}
}

// Contains reports whether s holds entry, compared case-insensitively.
func (s *Section) Contains(entry string) bool {
	for _, e := range s.Entries {
		if strings.EqualFold(e, entry) {
			return true
		}
	}

	return false
}

// Database is an ordered set of sections.
// The zero value is an empty database ready to use.
type Database struct {
	sections []*Section
}

// Section returns the section with the given name, creating it at the end if
// it does not exist.
func (d *Database) Section(name string) *Section {
	for _, s := range d.sections {
		if s.Name == name {
			return s
		}
	}

	s := &Section{Name: name}
	d.sections = append(d.sections, s)

	return s
}

// Lookup returns the section with the given name, if present.
func (d *Database) Lookup(name string) (*Section, bool) {
	for _, s := range d.sections {
		if s.Name == name {
			return s, true
		}
	}

	return nil, false
}

// Sections returns the sections in insertion order.
func (d *Database) Sections() []*Section { return d.sections }

// Len returns the number of sections.
func (d *Database) Len() int { return len(d.sections) }

// Lines returns the lines of the requirement file for d.
func (d *Database) Lines() []string {
	lines := []string{"", "ucft", "{"}

	for _, s := range d.sections {
		lines = append(lines, "\tREQN", "\t{", "\t\t"+quote(s.Name))

		if s.Platform != "" {
			lines = append(lines, "\t\t"+quote(PlatformPrefix+s.Platform))
		}

		for _, e := range s.Entries {
			lines = append(lines, "\t\t"+quote(e))
		}

		lines = append(lines, "\t}")
	}

	return append(lines, "}")
}

// WriteTo writes the requirement file for d to w.
// Lines are separated by [Newline], with no trailing line break.
func (d *Database) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, strings.Join(d.Lines(), Newline))

	return int64(n), err
}

// String returns the requirement file for d.
func (d *Database) String() string {
	var sb strings.Builder

	_, _ = d.WriteTo(&sb)

	return sb.String()
}

func quote(s string) string { return `"` + strings.Trim(s, `"`) + `"` }
