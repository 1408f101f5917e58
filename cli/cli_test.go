package cli

import (
	"reflect"
	"strings"
	"testing"

	"github.com/ardnew/munge/munge"
)

func TestCLI_OutputHelp(t *testing.T) {
	tests := []struct {
		field string
		kind  munge.Kind
	}{
		{"Config", munge.KindConfig},
		{"Path", munge.KindPath},
		{"Planning", munge.KindPlanning},
		{"World", munge.KindWorld},
		{"ODF", munge.KindODF},
	}

	typ := reflect.TypeFor[CLI]()

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			f, ok := typ.FieldByName(tt.field)
			if !ok {
				t.Fatalf("CLI has no %s command", tt.field)
			}

			help := f.Tag.Get("help")
			if want := "." + tt.kind.Extension() + " "; !strings.Contains(help, want) {
				t.Errorf("help = %q, does not name the %q output", help, strings.TrimSpace(want))
			}
		})
	}
}
