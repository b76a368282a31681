package model

// GenerateRequest asks the question generator to draft questions from a
// catalog source (course, subject or chapter).
type GenerateRequest struct {
	SourceType         string `json:"source_type"`
	SourceID           int64  `json:"source_id"`
	NumQuestions       int    `json:"num_questions"`
	Difficulty         string `json:"difficulty"`
	CustomInstructions string `json:"custom_instructions"`
}

// DraftQuestion is an editable question draft as produced by the generator
// or parsed from a CSV upload, before it is saved into an exam.
type DraftQuestion struct {
	QuestionText string   `json:"question_text"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
	Marks        float64  `json:"marks"`
	ImageURL     string   `json:"image_url"`
	Explanation  string   `json:"explanation"`
}

// SaveBulkRequest persists a batch of drafts into an existing exam or a
// freshly created one.
type SaveBulkRequest struct {
	ExamID       *int64          `json:"exam_id"`
	NewExamTitle *string         `json:"new_exam_title"`
	SourceType   string          `json:"source_type"`
	SourceID     int64           `json:"source_id"`
	Questions    []DraftQuestion `json:"questions"`
	Duration     int             `json:"duration"`
}

// SaveBulkResult reports the outcome of a bulk save.
type SaveBulkResult struct {
	Message string `json:"message"`
	ExamID  int64  `json:"exam_id"`
}

// CSVUploadResult reports how many rows a CSV import processed.
type CSVUploadResult struct {
	Added   int    `json:"added"`
	Message string `json:"message"`
}
