package model

import "time"

// ExamType enumerates the exam variants served by the backend.
type ExamType string

const (
	ExamTypeTopicQuiz   ExamType = "TOPIC_QUIZ"
	ExamTypeSubjectTest ExamType = "SUBJECT_TEST"
	ExamTypeMockFull    ExamType = "MOCK_FULL"
	ExamTypePYQ         ExamType = "PYQ"
)

// IsPractice reports whether this exam variant allows checking an answer's
// correctness before final submission.
func (t ExamType) IsPractice() bool {
	return t == ExamTypeTopicQuiz
}

// Option is one answer choice. The backend never includes the correct flag
// in exam payloads; correctness only surfaces through check_answer or the
// final result.
type Option struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
}

// Question is a single multiple-choice question with rich-text content
// (may embed markdown or LaTeX).
type Question struct {
	ID          int64    `json:"id"`
	TextContent string   `json:"text_content"`
	Marks       float64  `json:"marks"`
	Options     []Option `json:"options"`
}

// Exam is the full exam definition as fetched at session start. Immutable
// for the duration of an attempt.
type Exam struct {
	ID              int64      `json:"id"`
	Title           string     `json:"title"`
	ExamType        ExamType   `json:"exam_type"`
	DurationMinutes int        `json:"duration_minutes"`
	TotalMarks      int        `json:"total_marks"`
	Questions       []Question `json:"questions"`
}

// AttemptStart is the backend's response to start_attempt.
type AttemptStart struct {
	AttemptID int64     `json:"attempt_id"`
	StartTime time.Time `json:"start_time"`
	Duration  int       `json:"duration"`
}

// AnswerMap maps question ID to the chosen option ID. encoding/json
// marshals integer keys as strings, which is exactly the wire shape the
// backend expects: {"12": 47}.
type AnswerMap map[int64]int64

// CheckAnswerRequest asks the backend to grade a single answer in
// practice mode.
type CheckAnswerRequest struct {
	QuestionID int64 `json:"question_id"`
	OptionID   int64 `json:"option_id"`
}

// AnswerVerdict is the backend's grading of one practice-mode answer.
type AnswerVerdict struct {
	IsCorrect       bool   `json:"is_correct"`
	CorrectOptionID int64  `json:"correct_option_id"`
	Explanation     string `json:"explanation"`
}

// SubmitExamRequest carries the attempt ID and the complete answer map.
type SubmitExamRequest struct {
	AttemptID int64     `json:"attempt_id"`
	Answers   AnswerMap `json:"answers"`
}

// ExamResult is the terminal outcome of an attempt. Score is fractional
// because wrong answers can carry negative marking.
type ExamResult struct {
	Score      float64 `json:"score"`
	TotalMarks float64 `json:"total_marks"`
	Status     string  `json:"status"`
}
