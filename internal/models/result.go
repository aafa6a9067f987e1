package models

type UploadRequest struct {
	Files []RawUpload `json:"files"`
}

type FileSummary struct {
	Filename   string `json:"filename"`
	Characters int    `json:"characters"`
}

type FilesResponse struct {
	Files []FileSummary `json:"files"`
}

type ProcessResponse struct {
	ID     string     `json:"id,omitempty"`
	Status string     `json:"status"`
	Table  *TableData `json:"table,omitempty"`
}

type RunResponse struct {
	ID           string       `json:"id"`
	Status       string       `json:"status"`
	FileCount    int          `json:"file_count"`
	Result       *OutcomeData `json:"result,omitempty"`
	ErrorMessage *string      `json:"error_message,omitempty"`
}

type OutcomeData struct {
	Kind        string      `json:"kind"`
	Candidates  []Candidate `json:"candidates,omitempty"`
	Table       *TableData  `json:"table,omitempty"`
	Explanation string      `json:"explanation,omitempty"`
}

// TableData is the results table: one row per candidate field and one
// column per candidate.
type TableData struct {
	Columns []string   `json:"columns"`
	Rows    []TableRow `json:"rows"`
}

type TableRow struct {
	Field  string   `json:"field"`
	Label  string   `json:"label"`
	Values []string `json:"values"`
}
