package cmd

import (
	"context"
	"fmt"

	"github.com/ardnew/munge/magic"
)

// Hash prints the tag each name hashes to.
type Hash struct {
	Names []string `arg:"" help:"Identifiers to hash." name:"name"`
}

// Run executes the hash command.
func (h *Hash) Run(ctx context.Context) error {
	w := outputFrom(ctx)

	for _, name := range h.Names {
		if _, err := fmt.Fprintf(w, "%s\t%s\n", name, magic.Hash(name)); err != nil {
			return err
		}
	}

	return nil
}
