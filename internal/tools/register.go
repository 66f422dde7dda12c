package tools

import (
	"fmt"

	"github.com/dgallion1/docedit/internal/chunker"
	"github.com/dgallion1/docedit/internal/search"
)

// Options tunes the read tools.
type Options struct {
	Limits             chunker.Limits
	SearchLimit        int
	SearchContextChars int
}

func (o Options) withDefaults() Options {
	if o.Limits == (chunker.Limits{}) {
		o.Limits = chunker.DefaultLimits()
	}
	if o.SearchLimit <= 0 {
		o.SearchLimit = search.DefaultLimit
	}
	if o.SearchContextChars <= 0 {
		o.SearchContextChars = search.DefaultContextChars
	}
	return o
}

// Definitions returns every document tool.
func Definitions(opts Options) []Tool {
	opts = opts.withDefaults()
	var all []Tool
	all = append(all, readTools(opts)...)
	all = append(all, insertTools()...)
	all = append(all, deleteTools()...)
	all = append(all, columnsTools()...)
	return all
}

// Register adds every document tool to r.
func Register(r *Registry, opts Options) error {
	for _, t := range Definitions(opts) {
		if err := r.Register(t); err != nil {
			return fmt.Errorf("register %s: %w", t.Name, err)
		}
	}
	return nil
}

// NewDefault returns a registry holding every document tool.
func NewDefault(opts Options, mw ...Middleware) *Registry {
	r := NewRegistry(mw...)
	if err := Register(r, opts); err != nil {
		panic(err)
	}
	return r
}
