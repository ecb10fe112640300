/*
Package machi resolves declarative, hierarchical flows.

A flow is a tree of entries (the steps a user goes through, typically
screens) and forks (decision points gating a subtree). Entries are complete
when all of their IsDone conditions hold; forks are entered when all of their
requirements hold. Given a context, a Machine finds the first incomplete
entry and the history of entries and forks that lead to it.

# Usage

	type Applicant struct {
		Age  *int
		Name string
	}

	conditions := domain.ConditionsMap[Applicant]{
		"hasEnteredAge": domain.Test(func(a Applicant) bool { return a.Age != nil }),
		"isOfLegalAge":  domain.Test(func(a Applicant) bool { return a.Age != nil && *a.Age >= 18 }),
		"hasName":       domain.Test(func(a Applicant) bool { return a.Name != "" }),
	}

	tree := []domain.Node[Applicant, any]{
		domain.NewEntry[Applicant, any]("How old are you?", "hasEnteredAge"),
		domain.NewFork[Applicant, any]("Is of legal age", []string{"isOfLegalAge"},
			domain.NewEntry[Applicant, any]("What is your name?", "hasName"),
		),
	}

	m, err := machi.New(tree, conditions)
	if err != nil {
		log.Fatal(err)
	}

	res, err := m.Execute(Applicant{}, "")
	// res.Entry.Label() == "How old are you?"

# Resuming

Passing the id of an entry the user is currently on makes Execute return the
entry following it in the resolved history, which lets users step back
through completed entries and forward again. When the context changed so
that the entry is no longer on the resolved path, the natural result is
returned.

# Charts

Mermaid renders the flow as a flowchart and Pathways lists every route to a
given state. Flows can also be written as YAML files, see package loader.
*/
package machi
