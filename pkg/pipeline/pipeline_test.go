package pipeline

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func recordStage(name string, trace *[]string) Stage {
	return Stage{
		Name: name,
		Middleware: func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				*trace = append(*trace, name)
				next.ServeHTTP(w, r)
			})
		},
	}
}

func TestPipelineOrder(t *testing.T) {
	var trace []string

	p := New(
		recordStage("localization", &trace),
		recordStage("authentication", &trace),
		recordStage("routing", &trace),
	)

	h := p.Then(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		trace = append(trace, "dispatch")
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"localization", "authentication", "routing", "dispatch"}, trace)
	assert.Equal(t, "localization -> authentication -> routing", p.Describe())
}

func TestPipelineShortCircuit(t *testing.T) {
	var trace []string

	guard := Stage{
		Name:  "guard",
		Stops: "always, with 401",
		Middleware: func(http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				trace = append(trace, "guard")
				w.WriteHeader(http.StatusUnauthorized)
			})
		},
	}

	p := New(recordStage("first", &trace), guard, recordStage("never", &trace))

	h := p.Then(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		trace = append(trace, "dispatch")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, []string{"first", "guard"}, trace)
}

func TestWhen(t *testing.T) {
	var trace []string

	p := New(
		When(false, recordStage("skipped", &trace)),
		When(true, recordStage("kept", &trace)),
	)

	assert.Equal(t, []string{"kept"}, p.Names())

	stages := p.Stages()
	stages[0].Name = "changed"
	assert.Equal(t, []string{"kept"}, p.Names())
}

func TestEmptyPipeline(t *testing.T) {
	h := New().Then(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Empty(t, New().Describe())
}
