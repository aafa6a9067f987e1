package services

import (
	"encoding/csv"
	"fmt"
	"io"

	"alfredoptarigan/cv-reader/internal/models"
)

// BuildTable lays candidates out with one row per field and one column per
// candidate. Values are copied verbatim.
func BuildTable(candidates []models.Candidate) *models.TableData {
	table := &models.TableData{
		Columns: make([]string, 0, len(candidates)),
		Rows:    make([]models.TableRow, 0, len(models.CandidateFields)),
	}

	for i := range candidates {
		table.Columns = append(table.Columns, candidates[i].Name)
	}

	for _, field := range models.CandidateFields {
		row := models.TableRow{
			Field:  field.Key,
			Label:  field.Label,
			Values: make([]string, 0, len(candidates)),
		}
		for i := range candidates {
			row.Values = append(row.Values, field.Get(&candidates[i]))
		}
		table.Rows = append(table.Rows, row)
	}

	return table
}

// PlaceholderTable is shown until a run produced candidates.
func PlaceholderTable() *models.TableData {
	return BuildTable([]models.Candidate{models.PlaceholderCandidate})
}

// TableCandidates reads the candidates back out of a table.
func TableCandidates(table *models.TableData) []models.Candidate {
	candidates := make([]models.Candidate, len(table.Columns))

	setters := make(map[string]func(*models.Candidate, string), len(models.CandidateFields))
	for _, field := range models.CandidateFields {
		setters[field.Key] = field.Set
	}

	for _, row := range table.Rows {
		set, ok := setters[row.Field]
		if !ok {
			continue
		}
		for i := 0; i < len(candidates) && i < len(row.Values); i++ {
			set(&candidates[i], row.Values[i])
		}
	}

	return candidates
}

// WriteTableCSV writes the table as CSV: a header with the candidate names,
// then one line per field.
func WriteTableCSV(w io.Writer, table *models.TableData) error {
	cw := csv.NewWriter(w)

	header := append([]string{"Field"}, table.Columns...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, row := range table.Rows {
		record := append([]string{row.Label}, row.Values...)
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row %s: %w", row.Field, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
