/*
Package dsl provides a Go DSL (Domain Specific Language) for programmatically constructing chatflow flows.

It allows developers to define flows using a type-safe, fluent builder pattern
instead of authoring JSON or YAML documents. This is particularly useful for dynamic flow
generation, unit testing, and leveraging IDE autocompletion/type-checking.

Example usage:

	b := dsl.New("welcome").Name("Welcome")

	b.Trigger("start").Go("ask")

	b.Question("ask", "Do you want to continue?").
		SaveTo("answer").
		Go("check")

	b.Condition("check", domain.OpEquals, "yes").
		True("great").
		False("bye")

	b.Message("great", "Great!")
	b.Message("bye", "Bye!")

	// The resulting provider can be passed to chatflow.WithGraphProvider.
	provider, err := b.Build()
*/
package dsl
