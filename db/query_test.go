package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dentserver/models"
)

func TestParseFilters_Empty(t *testing.T) {
	conds, err := ParseFilters(nil)
	assert.NoError(t, err)
	assert.Nil(t, conds)
}

func TestParseFilters_Errors(t *testing.T) {
	for _, expr := range []string{
		"status",                   // too few parts
		"status eq",                // missing value
		"status like \"active\"",   // unknown operator
		"cost gt-i 100",            // no insensitive form for gt
		"status eq active",         // unquoted string
		"cost contains 100",        // contains needs a string
		"status eq \"a\" extra no", // trailing junk breaks the quoting
	} {
		_, err := ParseFilters([]string{expr})
		assert.Error(t, err, "expected %q to be rejected", expr)
	}
}

func TestMatchRecord_StringOps(t *testing.T) {
	p := models.Patient{ID: "p1", Name: "John Doe", Status: "active"}

	mustMatch := func(expr string) bool {
		t.Helper()
		conds, err := ParseFilters([]string{expr})
		require.NoError(t, err)
		return MatchRecord(p, conds, "", nil)
	}

	assert.True(t, mustMatch(`status eq "active"`))
	assert.False(t, mustMatch(`status eq "Active"`))
	assert.True(t, mustMatch(`status eq-i "Active"`))
	assert.True(t, mustMatch(`status ne "archived"`))
	assert.True(t, mustMatch(`name contains "John"`))
	assert.False(t, mustMatch(`name contains "john"`))
	assert.True(t, mustMatch(`name contains-i "JOHN"`))
	assert.True(t, mustMatch(`name eq "John Doe"`), "quoted values may contain spaces")
}

func TestMatchRecord_NumericOps(t *testing.T) {
	cost := 80.0
	inc := models.Incident{ID: "i1", Title: "Filling", Cost: &cost}

	mustMatch := func(expr string) bool {
		t.Helper()
		conds, err := ParseFilters([]string{expr})
		require.NoError(t, err)
		return MatchRecord(inc, conds, "", nil)
	}

	assert.True(t, mustMatch(`cost eq 80`))
	assert.True(t, mustMatch(`cost gte 80`))
	assert.True(t, mustMatch(`cost gt 79.5`))
	assert.False(t, mustMatch(`cost lt 80`))
	assert.True(t, mustMatch(`cost lte 80`))
	assert.True(t, mustMatch(`cost ne 100`))
}

func TestMatchRecord_NullAndMissing(t *testing.T) {
	inc := models.Incident{ID: "i1", Title: "No cost yet"} // cost is null

	mustMatch := func(expr string) bool {
		t.Helper()
		conds, err := ParseFilters([]string{expr})
		require.NoError(t, err)
		return MatchRecord(inc, conds, "", nil)
	}

	assert.True(t, mustMatch(`cost eq null`))
	assert.False(t, mustMatch(`cost ne null`))
	assert.True(t, mustMatch(`cost ne 80`), "ne against an absent number is trivially true")
	assert.False(t, mustMatch(`cost gte 0`))
}

func TestMatchRecord_NestedPath(t *testing.T) {
	inc := models.Incident{
		ID:    "i1",
		Files: []models.File{{Name: "xray.png", URL: "data:image/png;base64,AAAA"}},
	}

	conds, err := ParseFilters([]string{`files.0.name contains-i "XRAY"`})
	require.NoError(t, err)
	assert.True(t, MatchRecord(inc, conds, "", nil))
}

func TestMatchRecord_ConditionsAndTogether(t *testing.T) {
	p := models.Patient{ID: "p1", Name: "John Doe", Status: "active"}

	conds, err := ParseFilters([]string{`status eq "active"`, `name contains "Jane"`})
	require.NoError(t, err)
	assert.False(t, MatchRecord(p, conds, "", nil), "one failing condition fails the record")
}

func TestMatchRecord_Search(t *testing.T) {
	p := models.Patient{ID: "p1", Name: "John Doe", Email: "john@entnt.in", Contact: "1234567890"}
	paths := []string{"name", "email", "contact"}

	assert.True(t, MatchRecord(p, nil, "DOE", paths), "search is case-insensitive")
	assert.True(t, MatchRecord(p, nil, "entnt", paths))
	assert.True(t, MatchRecord(p, nil, "4567", paths))
	assert.False(t, MatchRecord(p, nil, "smith", paths))
	assert.False(t, MatchRecord(p, nil, "john", nil), "no search paths, no match")
}

func TestMatchRecord_NoConstraints(t *testing.T) {
	assert.True(t, MatchRecord(models.Patient{}, nil, "", nil))
}
