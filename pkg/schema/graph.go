package schema

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// ValidateGraph checks field rules and structural invariants of g.
// It returns nil or an *AggregateError listing every problem found.
func ValidateGraph(g *domain.Graph) error {
	if g == nil {
		return &AggregateError{Errors: []error{&ValidationError{Key: "graph", Reason: "is nil"}}}
	}

	var errs []error
	errs = append(errs, fieldErrors(g)...)
	errs = append(errs, structuralErrors(g)...)

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

func fieldErrors(g *domain.Graph) []error {
	err := validate.Struct(g)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []error{err}
	}

	out := make([]error, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, &ValidationError{
			Key:    fe.Namespace(),
			Reason: fieldMessage(fe),
			Value:  nonZero(fe.Value()),
		})
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field is required"
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	default:
		return fmt.Sprintf("validation failed: %s", fe.Tag())
	}
}

func nonZero(v any) any {
	if v == nil || reflect.ValueOf(v).IsZero() {
		return nil
	}
	return v
}

func structuralErrors(g *domain.Graph) []error {
	var errs []error

	nodes := make(map[string]domain.Node, len(g.Nodes))
	var triggers []string
	for _, n := range g.Nodes {
		if _, dup := nodes[n.ID]; dup && n.ID != "" {
			errs = append(errs, &ValidationError{Key: "node " + n.ID, Reason: "duplicate node id"})
		}
		nodes[n.ID] = n
		if n.Type == domain.NodeTypeTrigger {
			triggers = append(triggers, n.ID)
		}
	}

	switch len(triggers) {
	case 0:
		errs = append(errs, &ValidationError{Key: "flow " + g.Flow.ID, Reason: "has no trigger node"})
	case 1:
	default:
		errs = append(errs, &ValidationError{
			Key:    "flow " + g.Flow.ID,
			Reason: "has more than one trigger node",
			Value:  strings.Join(triggers, ", "),
		})
	}

	edgeIDs := make(map[string]bool, len(g.Edges))
	outgoing := make(map[string][]domain.Edge)
	for _, e := range g.Edges {
		key := "edge " + e.ID
		if edgeIDs[e.ID] && e.ID != "" {
			errs = append(errs, &ValidationError{Key: key, Reason: "duplicate edge id"})
		}
		edgeIDs[e.ID] = true

		if _, ok := nodes[e.Source]; !ok && e.Source != "" {
			errs = append(errs, &ValidationError{Key: key, Reason: "unknown source node", Value: e.Source})
		}
		target, ok := nodes[e.Target]
		if !ok && e.Target != "" {
			errs = append(errs, &ValidationError{Key: key, Reason: "unknown target node", Value: e.Target})
		}
		if ok && target.Type == domain.NodeTypeTrigger {
			errs = append(errs, &ValidationError{Key: key, Reason: "trigger node cannot have incoming edges", Value: e.Target})
		}
		outgoing[e.Source] = append(outgoing[e.Source], e)
	}

	for _, n := range g.Nodes {
		errs = append(errs, portErrors(n, outgoing[n.ID])...)
	}
	return errs
}

func portErrors(n domain.Node, out []domain.Edge) []error {
	key := "node " + n.ID
	var errs []error

	if n.Type != domain.NodeTypeCondition {
		if len(out) > 1 {
			errs = append(errs, &ValidationError{Key: key, Reason: "has more than one outgoing edge", Value: len(out)})
		}
		for _, e := range out {
			if e.Port != domain.PortNone {
				errs = append(errs, &ValidationError{Key: key, Reason: "only condition nodes may use ports", Value: string(e.Port)})
			}
		}
		return errs
	}

	if len(out) > 2 {
		errs = append(errs, &ValidationError{Key: key, Reason: "condition has more than two outgoing edges", Value: len(out)})
	}
	seen := make(map[domain.Port]bool, 2)
	for _, e := range out {
		switch e.Port {
		case domain.PortTrue, domain.PortFalse:
			if seen[e.Port] {
				errs = append(errs, &ValidationError{Key: key, Reason: "duplicate edge for port", Value: string(e.Port)})
			}
			seen[e.Port] = true
		default:
			errs = append(errs, &ValidationError{Key: key, Reason: "condition edges must use port true or false", Value: string(e.Port)})
		}
	}
	return errs
}
