package runtime_test

import (
	"testing"

	"github.com/aretw0/machi/internal/compiler"
	"github.com/aretw0/machi/internal/runtime"
	"github.com/aretw0/machi/pkg/domain"
	"github.com/stretchr/testify/require"
)

type applicant struct {
	Age      int
	HasAge   bool
	Name     string
	Postcode string
}

func withAge(age int) applicant {
	return applicant{Age: age, HasAge: true}
}

func beerConditions() domain.ConditionsMap[applicant] {
	return domain.ConditionsMap[applicant]{
		"hasEnteredAge":        domain.Test(func(a applicant) bool { return a.HasAge }),
		"isOfLegalAge":         domain.Test(func(a applicant) bool { return a.HasAge && a.Age >= 18 }),
		"isTooYoung":           domain.Test(func(a applicant) bool { return a.HasAge && a.Age < 18 }),
		"hasEnteredName":       domain.Test(func(a applicant) bool { return a.Name != "" }),
		"hasEnteredPostcode":   domain.Test(func(a applicant) bool { return a.Postcode != "" }),
		"acknowledgedTooYoung": domain.Test(func(applicant) bool { return false }),
	}
}

func beerTree() []domain.Node[applicant, string] {
	return []domain.Node[applicant, string]{
		domain.NewEntry[applicant, string]("Age?", "hasEnteredAge"),
		domain.NewFork[applicant, string]("is of legal age?", []string{"isOfLegalAge"},
			domain.NewEntry[applicant, string]("Name?", "hasEnteredName"),
			domain.NewEntry[applicant, string]("Postcode?", "hasEnteredPostcode"),
		),
		domain.NewFork[applicant, string]("is too young?", []string{"isTooYoung"},
			domain.NewEntry[applicant, string]("Too young", "acknowledgedTooYoung"),
		),
	}
}

func newEngine[C, D any](t *testing.T, tree []domain.Node[C, D], conds domain.ConditionsMap[C], opts ...runtime.EngineOption) *runtime.Engine[C, D] {
	t.Helper()
	nodes, err := compiler.Normalize(tree)
	require.NoError(t, err)
	e, err := runtime.NewEngine(nodes, conds, opts...)
	require.NoError(t, err)
	return e
}

func entryID[C, D any](t *testing.T, res *domain.Result[C, D]) string {
	t.Helper()
	require.NotNil(t, res)
	if res.Entry == nil {
		return ""
	}
	return res.Entry.Label()
}
