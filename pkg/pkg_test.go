package pkg

import (
	"errors"
	"os"
	"strings"
	"testing"
)

func TestVersion(t *testing.T) {
	buf, err := os.ReadFile("VERSION")
	if err != nil {
		t.Fatalf("read VERSION: %v", err)
	}

	if want := strings.TrimSpace(string(buf)); Version != want {
		t.Errorf("Version = %q, want %q", Version, want)
	}

	if strings.ContainsAny(Version, " \n") {
		t.Errorf("Version %q contains whitespace", Version)
	}
}

func TestIdentity(t *testing.T) {
	if Name != "munge" {
		t.Errorf("Name = %q", Name)
	}

	if Description == "" {
		t.Error("empty Description")
	}

	for i, a := range Author {
		if a.Name == "" && a.Email == "" {
			t.Errorf("Author[%d] is empty", i)
		}
	}
}

func TestError(t *testing.T) {
	sentinel := NewError("base")
	cause := NewError("cause")

	tests := []struct {
		name string
		err  *Error
		want string
		is   []error
	}{
		{"bare", sentinel, "base", []error{sentinel}},
		{"wrapped", sentinel.Wrap(cause), "base: cause", []error{sentinel, cause}},
		{"anonymous", WrapError(os.ErrNotExist), "file does not exist", []error{os.ErrNotExist}},
		{"found in chain", WrapError(sentinel.Wrap(os.ErrClosed)), "base: file already closed", []error{sentinel, os.ErrClosed}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}

			for _, target := range tt.is {
				if !errors.Is(tt.err, target) {
					t.Errorf("errors.Is(%v, %v) = false", tt.err, target)
				}
			}
		})
	}
}
