package model

import "time"

// AttemptRecord is one row of the user's attempt history.
type AttemptRecord struct {
	ID             int64     `json:"id"`
	ExamTitle      string    `json:"exam_title"`
	StartTime      time.Time `json:"start_time"`
	TotalScore     float64   `json:"total_score"`
	ExamTotalMarks int       `json:"exam_total_marks"`
	IsCompleted    bool      `json:"is_completed"`
}
