/*
Package dsl provides a fluent builder for machi flow trees.

It is the Go alternative to flow files: the tree is declared in code, with
named conditions resolved from the ConditionsMap and inline predicates
checked by the compiler.

	b := dsl.New[Applicant, Screen]()

	b.Entry("How old are you?").DoneWhen("hasEnteredAge").Data(Screen{Path: "/age"})
	b.Fork("Is old enough").Requires("isOfLegalAge").Group("Applicant").Then(func(b *dsl.Builder[Applicant, Screen]) {
		b.Entry("What is your name?").DoneWhen("hasEnteredName")
	})
	b.Fork("Is too young").Requires("isTooYoung").Then(func(b *dsl.Builder[Applicant, Screen]) {
		b.Entry("You are too young")
	})

	tree, err := b.Build()
*/
package dsl
