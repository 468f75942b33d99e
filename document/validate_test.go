package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gettalong/hexapdf-sub005/config"
	"github.com/gettalong/hexapdf-sub005/objects"
)

func TestValidateReportsMissingRequiredFieldAsNonCorrectable(t *testing.T) {
	doc := New(config.Default())
	defer doc.Close()

	doc.Add(objects.Dict{"Type": objects.Name("Catalog")}) // no /Pages

	issues := doc.Validate(true)
	require.Len(t, issues, 1)
	assert.Equal(t, "Pages", issues[0].Issue.Field)
	assert.False(t, issues[0].Issue.Correctable)
}

func TestValidateAutoCorrectsMustBeIndirectFieldWhenAccepted(t *testing.T) {
	doc := New(config.Default())
	defer doc.Close()

	pagesRef := doc.Add(objects.Dict{"Type": objects.Name("Pages"), "Kids": objects.Array{}, "Count": objects.Integer(0)})
	pages, err := doc.Object(pagesRef)
	require.NoError(t, err)

	// Store /Pages as a direct value rather than a Reference so the
	// ClassDef's MustBeIndirect constraint is violated correctably.
	catalogRef := doc.Add(objects.Dict{"Type": objects.Name("Catalog"), "Pages": pages})

	issues := doc.Validate(true)
	assert.Empty(t, issues)

	catalog, err := doc.Object(catalogRef)
	require.NoError(t, err)
	dict := catalog.(objects.Dict)
	_, isRef := dict["Pages"].(objects.Reference)
	assert.True(t, isRef, "accepted correction should have replaced the direct value with a Reference")
}

func TestValidateConsultsOnCorrectableErrorCallback(t *testing.T) {
	doc := New(config.Default())
	defer doc.Close()

	pagesRef := doc.Add(objects.Dict{"Type": objects.Name("Pages"), "Kids": objects.Array{}, "Count": objects.Integer(0)})
	pages, err := doc.Object(pagesRef)
	require.NoError(t, err)
	catalogRef := doc.Add(objects.Dict{"Type": objects.Name("Catalog"), "Pages": pages})

	calls := 0
	doc.Config.OnCorrectableError = func(message string, offset int64) bool {
		calls++
		return false // decline every correction
	}

	issues := doc.Validate(true)
	require.Equal(t, 1, calls)
	require.Len(t, issues, 1)
	assert.Equal(t, "Pages", issues[0].Issue.Field)
	assert.True(t, issues[0].Issue.Correctable)

	catalog, err := doc.Object(catalogRef)
	require.NoError(t, err)
	dict := catalog.(objects.Dict)
	_, isRef := dict["Pages"].(objects.Reference)
	assert.False(t, isRef, "declined correction must leave the direct value untouched")
}
