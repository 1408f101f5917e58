package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"gopkg.in/yaml.v3"

	"github.com/ardnew/munge/cli/cmd"
	"github.com/ardnew/munge/lang"
	"github.com/ardnew/munge/log"
)

// resolve returns a [kong.ConfigurationLoader] that reads flag values from
// the scoped instance named scope in a file written in the munge language.
//
// It can be used with [kong.Configuration] like this:
//
//	kong.Configuration(resolve(ctx, "Munge"), "/path/to/config")
//
// Each property of the scope names a flag in PascalCase and holds its value
// as the first argument. Nested scopes prefix the names of their properties:
//
//	Munge()
//	{
//	  Platform("ps2");
//	  Log()
//	  {
//	    Level("debug");
//	    Pretty("false");
//	  }
//	}
//
// is applied as:
//
//	--platform=ps2 --log-level=debug --no-log-pretty
//
// Properties with several arguments set list flags. Command-line flags
// override config file values.
func resolve(ctx context.Context, scope string) kong.ConfigurationLoader {
	return func(r io.Reader) (kong.Resolver, error) {
		doc, err := lang.ParseReader(ctx, r, lang.WithStrings(true))
		if err != nil {
			log.WarnContext(ctx, "ignoring configuration",
				slog.String("scope", scope),
				slog.Any("error", err),
			)

			return config{}, nil
		}

		for inst := range doc.Instances() {
			if inst.Scoped && inst.Is(scope) {
				conf := config{}
				conf.flatten("", inst.Body)

				return conf, nil
			}
		}

		return config{}, nil
	}
}

// resolveYAML is a [kong.ConfigurationLoader] for YAML configuration files.
// Nested mappings prefix the keys of their members the same way scopes do
// in [resolve].
func resolveYAML(r io.Reader) (kong.Resolver, error) {
	var root map[string]any

	if err := yaml.NewDecoder(r).Decode(&root); err != nil && err != io.EOF {
		return nil, err
	}

	conf := config{}
	conf.merge("", root)

	return conf, nil
}

// config implements [kong.Resolver] for configuration files. Keys are
// normalized with [cmd.Key].
type config map[string]any

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (c config) Resolve(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
	if value, ok := c[cmd.Key(flag.Name)]; ok {
		return value, nil
	}

	return nil, nil
}

func (c config) flatten(prefix string, body []*lang.Instance) {
	for _, inst := range body {
		name := prefix + inst.Name

		if inst.Scoped {
			c.flatten(name, inst.Body)

			continue
		}

		if len(inst.Args) == 0 {
			continue
		}

		vals := make([]string, len(inst.Args))
		for i, arg := range inst.Args {
			vals[i] = arg.Text()
		}

		c[cmd.Key(name)] = strings.Join(vals, ",")
	}
}

func (c config) merge(prefix string, m map[string]any) {
	for key, val := range m {
		name := prefix + key

		switch v := val.(type) {
		case map[string]any:
			c.merge(name, v)

		case []any:
			vals := make([]string, len(v))
			for i, e := range v {
				vals[i] = scalar(e)
			}

			c[cmd.Key(name)] = strings.Join(vals, ",")

		case bool:
			c[cmd.Key(name)] = v

		case nil:

		default:
			c[cmd.Key(name)] = scalar(v)
		}
	}
}

// scalar returns the text of a decoded YAML scalar. Kong parses numbers from
// strings.
func scalar(v any) string {
	switch n := v.(type) {
	case string:
		return n
	case int:
		return strconv.Itoa(n)
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	default:
		return fmt.Sprint(n)
	}
}
