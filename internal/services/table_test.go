package services

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/cv-reader/internal/models"
)

func TestBuildTable(t *testing.T) {
	candidates := []models.Candidate{
		{Name: "Jan Jansen", Email: "jan@x.nl", Gender: "male*"},
		{Name: "Anna Bakker", University: "Universiteit Utrecht"},
	}

	table := BuildTable(candidates)

	assert.Equal(t, []string{"Jan Jansen", "Anna Bakker"}, table.Columns)
	require.Len(t, table.Rows, len(models.CandidateFields))
	for i, field := range models.CandidateFields {
		assert.Equal(t, field.Key, table.Rows[i].Field)
		assert.Len(t, table.Rows[i].Values, 2)
	}

	assert.Equal(t, "email", table.Rows[3].Field)
	assert.Equal(t, []string{"jan@x.nl", ""}, table.Rows[3].Values)
	assert.Equal(t, []string{"male*", ""}, table.Rows[2].Values)
}

func TestTableCandidates_Verbatim(t *testing.T) {
	candidates := []models.Candidate{
		{
			Name:              "Jan Jansen",
			BirthDate:         "12-03-1994*",
			Gender:            "male",
			Email:             "jan@x.nl",
			PhoneNumber:       "+31 6 12345678",
			LinkedInProfile:   "https://www.linkedin.com/in/janjansen",
			University:        "TU Delft",
			Study:             "Computer Science",
			MScStartDate:      "01-09-2016",
			MScGraduationDate: "",
			CurrentEmployer:   "Example Corp*",
		},
		{Name: "Piet"},
	}

	assert.Equal(t, candidates, TableCandidates(BuildTable(candidates)))
}

func TestPlaceholderTable(t *testing.T) {
	table := PlaceholderTable()

	assert.Equal(t, []string{models.PlaceholderCandidate.Name}, table.Columns)
	assert.Equal(t, []models.Candidate{models.PlaceholderCandidate}, TableCandidates(table))
}

func TestWriteTableCSV(t *testing.T) {
	table := BuildTable([]models.Candidate{{Name: "Jan, Jr.", Email: "jan@x.nl"}})

	var buf bytes.Buffer
	require.NoError(t, WriteTableCSV(&buf, table))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1+len(models.CandidateFields))
	assert.Equal(t, []string{"Field", "Jan, Jr."}, records[0])
	assert.Equal(t, []string{"Name", "Jan, Jr."}, records[1])
	assert.Equal(t, []string{"Email", "jan@x.nl"}, records[4])
}
