// Package guard evaluates ordered route predicates. A route lists its
// predicates most-general first; the first predicate that denies wins
// and later ones never run.
package guard

import (
	"context"
	"net/http"
)

// Subject is the request identity a pipeline evaluates against.
type Subject struct {
	UserID int64
	OrgID  int64
}

// Decision is the outcome of one predicate or a whole pipeline.
type Decision struct {
	Allow bool
	// RedirectTo sends browsers elsewhere instead of failing the request.
	RedirectTo string
	// Status is the HTTP status for API rejections (redirects win over it).
	Status int
	// Predicate names the denying check.
	Predicate string
}

// Allowed is the zero-friction pass decision.
func Allowed() Decision { return Decision{Allow: true} }

// Predicate is a single ordered check.
type Predicate interface {
	Name() string
	Check(ctx context.Context, subject Subject) (Decision, error)
}

// DenialRecorder counts guard denials per predicate.
type DenialRecorder interface {
	RecordGuardDenial(predicate string)
}

// Pipeline runs predicates in declaration order.
type Pipeline struct {
	predicates []Predicate
	recorder   DenialRecorder
}

func NewPipeline(recorder DenialRecorder, predicates ...Predicate) *Pipeline {
	return &Pipeline{predicates: predicates, recorder: recorder}
}

// Evaluate returns the first denial, or an allow when every predicate
// passes. Evaluation errors surface to the caller; they are not
// silently treated as denials.
func (p *Pipeline) Evaluate(ctx context.Context, subject Subject) (Decision, error) {
	for _, predicate := range p.predicates {
		decision, err := predicate.Check(ctx, subject)
		if err != nil {
			return Decision{}, err
		}
		if !decision.Allow {
			decision.Predicate = predicate.Name()
			if decision.Status == 0 && decision.RedirectTo == "" {
				decision.Status = http.StatusForbidden
			}
			if p.recorder != nil {
				p.recorder.RecordGuardDenial(predicate.Name())
			}
			return decision, nil
		}
	}
	return Allowed(), nil
}
