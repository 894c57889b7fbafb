package taxonomy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTablesAreComplete(t *testing.T) {
	all := All()
	require.Len(t, all.Branches, 13)
	assert.Equal(t, []int{3, 4, 5, 6, 7, 8}, all.Semesters)
	require.Len(t, all.Categories, 3)
	require.Len(t, all.Streams, 4)
	require.Len(t, all.Cycles, 2)

	seen := map[string]bool{}
	for _, b := range all.Branches {
		assert.False(t, seen[b.ID], "duplicate branch %s", b.ID)
		seen[b.ID] = true
		assert.NotEmpty(t, b.ShortName)
	}
	assert.False(t, seen[FirstYear])
}

func TestAllReturnsCopies(t *testing.T) {
	all := All()
	all.Branches[0].ShortName = "XX"
	assert.Equal(t, "CE", BranchLabel("civil-engineering"))
}

func TestLabelsFallBackToRawValue(t *testing.T) {
	assert.Equal(t, "CSE", BranchLabel("computer-science-engineering"))
	assert.Equal(t, "aerospace", BranchLabel("aerospace"))
	assert.Equal(t, "aerospace", BranchName("aerospace"))
	assert.Equal(t, "SEE PYQs", CategoryLabel("see-pyqs"))
	assert.Equal(t, "lab-manuals", CategoryLabel("lab-manuals"))
}

func TestLocationLabel(t *testing.T) {
	sem := 5
	assert.Equal(t, "ISE Sem 5", LocationLabel("information-science-engineering", &sem, "", ""))
	assert.Equal(t, "unknown-branch", LocationLabel("unknown-branch", nil, "", ""))
	assert.Equal(t, "1st Year CSE P - Cycle", LocationLabel(FirstYear, nil, "cse", "p-cycle"))
	assert.Equal(t, "1st Year chem x-cycle", LocationLabel(FirstYear, nil, "chem", "x-cycle"))
}
