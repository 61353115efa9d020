// Package pipeline composes HTTP middleware as an explicit, ordered list of
// named stages.
//
// Each stage either passes the request on to the next stage or answers it
// itself. Stops documents when a stage answers instead of passing on, so the
// behavior of the whole pipeline can be read (and logged) from the stage list
// alone.
package pipeline

import (
	"net/http"
	"strings"

	"github.com/urfave/negroni"
)

// Stage is one named step of the request pipeline.
type Stage struct {
	Name string
	// Stops describes when the stage answers the request instead of passing
	// it on. Empty means the stage always passes.
	Stops      string
	Middleware func(http.Handler) http.Handler
}

// Pipeline is an immutable ordered list of stages.
type Pipeline struct {
	stages []Stage
}

// New creates a pipeline running stages in the given order. Stages without a
// middleware are skipped, which is what When returns for a false condition.
func New(stages ...Stage) Pipeline {
	kept := make([]Stage, 0, len(stages))
	for _, s := range stages {
		if s.Middleware != nil {
			kept = append(kept, s)
		}
	}

	return Pipeline{stages: kept}
}

// When returns stage if cond holds and an empty stage otherwise.
func When(cond bool, stage Stage) Stage {
	if !cond {
		return Stage{}
	}

	return stage
}

// Stages returns a copy of the stage list.
func (p Pipeline) Stages() []Stage {
	out := make([]Stage, len(p.stages))
	copy(out, p.stages)

	return out
}

// Names returns the stage names in order.
func (p Pipeline) Names() []string {
	names := make([]string, 0, len(p.stages))
	for _, s := range p.stages {
		names = append(names, s.Name)
	}

	return names
}

// Describe renders the pipeline as "a -> b -> c".
func (p Pipeline) Describe() string {
	return strings.Join(p.Names(), " -> ")
}

// Then returns a handler running every stage before terminal.
func (p Pipeline) Then(terminal http.Handler) http.Handler {
	n := negroni.New()

	for _, s := range p.stages {
		n.Use(adapt(s.Middleware))
	}

	n.UseHandler(terminal)

	return n
}

// adapt turns a standard middleware into a negroni handler.
func adapt(mw func(http.Handler) http.Handler) negroni.Handler {
	return negroni.HandlerFunc(func(w http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
		mw(next).ServeHTTP(w, r)
	})
}
