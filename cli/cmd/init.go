package cmd

import (
	"context"
	"encoding"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/munge/lang"
	"github.com/ardnew/munge/log"
	"github.com/ardnew/munge/profile"
)

// defaultConfigIndent is the number of spaces to use for indentation
// when generating the default configuration file.
const defaultConfigIndent = 2

// Init generates a default configuration file with current flag values.
type Init struct {
	Force bool `help:"Overwrite existing configuration file" short:"f"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)

	confPath, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok {
		panic("internal error: config path undefined")
	}

	_, err = os.Stat(confPath)
	if err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			With(slog.Bool("exists", true)).
			Wrap(ErrFileExists)
	}

	file, err := os.Create(confPath)
	if err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}
	defer file.Close()

	err = i.document(ktx).Format(ctx, file, defaultConfigIndent)
	if err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}

	log.DebugContext(
		ctx,
		"initialized configuration file",
		slog.String("path", confPath),
	)

	return nil
}

// document constructs the configuration from current flag values.
func (i *Init) document(ktx *kong.Context) *lang.Document {
	ignore := []string{"help", "version", profile.Tag}

	scope := &lang.Instance{Name: ConfigScope, Scoped: true}

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || slices.ContainsFunc(ignore, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			continue
		}

		if arg, ok := flagLiteral(ktx.FlagValue(flag)); ok {
			scope.Body = append(scope.Body, &lang.Instance{
				Name: PropertyName(flag.Name),
				Args: []lang.Literal{arg},
			})
		}
	}

	return &lang.Document{Entities: []lang.Entity{scope}}
}

// flagLiteral returns the literal written for a flag value, or false if the
// value is unset.
func flagLiteral(val any) (lang.Literal, bool) {
	switch v := val.(type) {
	case nil:
		return lang.Literal{}, false

	case bool:
		return lang.NewString(fmt.Sprint(v)), true

	case string:
		return lang.NewString(v), v != ""

	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32:
		return lang.NewInteger(toInt64(v)), true

	case float32:
		return lang.NewFloat(float64(v)), true

	case float64:
		return lang.NewFloat(v), true

	case encoding.TextMarshaler:
		b, err := v.MarshalText()

		return lang.NewString(string(b)), err == nil && len(b) > 0

	case fmt.Stringer:
		s := v.String()

		return lang.NewString(s), s != ""

	default:
		s := fmt.Sprint(v)

		return lang.NewString(s), s != ""
	}
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int8:
		return int64(n)
	case int16:
		return int64(n)
	case int32:
		return int64(n)
	case int64:
		return n
	case uint:
		return int64(n)
	case uint8:
		return int64(n)
	case uint16:
		return int64(n)
	case uint32:
		return int64(n)
	default:
		return 0
	}
}
