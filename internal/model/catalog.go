package model

// Course is the top of the content hierarchy: course → subjects → chapters
// → topics. The catalog endpoints return the whole tree nested.
type Course struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	IsPaid      bool      `json:"is_paid"`
	Subjects    []Subject `json:"subjects"`
}

type Subject struct {
	ID       int64     `json:"id"`
	Title    string    `json:"title"`
	Order    int       `json:"order"`
	Chapters []Chapter `json:"chapters"`
}

// Chapter groups topics and may carry its own study notes (the bulk notes
// importer writes at chapter granularity).
type Chapter struct {
	ID         int64   `json:"id"`
	Title      string  `json:"title"`
	Order      int     `json:"order"`
	StudyNotes string  `json:"study_notes,omitempty"`
	Topics     []Topic `json:"topics"`
}

// Topic is a leaf study unit. QuizID links to the topic's practice quiz
// when one exists.
type Topic struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Order      int    `json:"order"`
	StudyNotes string `json:"study_notes"`
	QuizID     *int64 `json:"quiz_id"`
}

// Banner is a promotional entry shown on the landing surface.
type Banner struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	ImageURL  string `json:"image_url"`
	TargetURL string `json:"target_url"`
	Active    bool   `json:"active"`
}
