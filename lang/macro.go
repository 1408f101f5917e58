package lang

import (
	"log/slog"
	"strings"
)

// Platform names a build target whose macro blocks are inlined.
type Platform string

// Supported platforms.
const (
	PlatformPC   Platform = "pc"
	PlatformPS2  Platform = "ps2"
	PlatformXbox Platform = "xbox"

	DefaultPlatform = PlatformPC
)

// Platforms returns all supported platforms.
func Platforms() []Platform {
	return []Platform{PlatformPC, PlatformPS2, PlatformXbox}
}

// ParsePlatform returns the platform with the given name (case-insensitive).
func ParsePlatform(s string) (Platform, error) {
	for _, p := range Platforms() {
		if strings.EqualFold(s, string(p)) {
			return p, nil
		}
	}

	return "", ErrInvalidPlatform.With(slog.String("platform", s))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Platform) UnmarshalText(text []byte) error {
	v, err := ParsePlatform(string(text))
	if err != nil {
		return err
	}

	*p = v

	return nil
}

// isMacro reports whether inst is a platform macro block, and if so, which
// platform it targets.
func isMacro(inst *Instance) (Platform, bool) {
	if !inst.Scoped {
		return "", false
	}

	p, err := ParsePlatform(inst.Name)
	if err != nil {
		return "", false
	}

	return p, true
}

// Expand rewrites body by replacing every platform macro block with its
// children if it targets active, or dropping it otherwise.
// Macro blocks nested inside an inlined block are expanded the same way.
// Other instances are kept in order and left untouched.
func Expand(body []*Instance, active Platform) []*Instance {
	var out []*Instance

	for _, inst := range body {
		p, ok := isMacro(inst)
		if !ok {
			out = append(out, inst)

			continue
		}

		if p == active {
			out = append(out, Expand(inst.Body, active)...)
		}
	}

	return out
}
