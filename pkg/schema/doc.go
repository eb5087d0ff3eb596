// Package schema validates flow graphs before they reach the interpreter.
//
// Field-level rules (required ids, allowed port values) are expressed as struct tags
// on the domain types and checked with go-playground/validator. Structural rules are
// checked by walking the graph:
//
//   - node and edge ids are unique, and edges reference existing nodes;
//   - a flow has exactly one trigger, with no incoming edges and at most one
//     unconditional outgoing edge;
//   - non-condition nodes have at most one outgoing edge, without a port;
//   - condition nodes have at most two outgoing edges, one per port ("true", "false").
//
// All problems are reported together as an *AggregateError:
//
//	if err := schema.ValidateGraph(g); err != nil {
//	    for _, e := range schema.ValidationErrors(err) {
//	        fmt.Println(e)
//	    }
//	}
package schema
