package session

import (
	"fmt"
	"math"

	"github.com/bitbybit-prep/bitbybit-cli/internal/model"
)

// Read-only accessors for rendering. None of these mutate session state.

// Phase returns the current lifecycle phase.
func (c *Controller) Phase() Phase { return c.phase }

// Exam returns the fetched exam definition, nil before initialization.
func (c *Controller) Exam() *model.Exam { return c.exam }

// AttemptID returns the server-assigned attempt identifier.
func (c *Controller) AttemptID() int64 { return c.attemptID }

// Current returns the displayed question index.
func (c *Controller) Current() int { return c.current }

// CurrentQuestion returns the displayed question, nil before initialization.
func (c *Controller) CurrentQuestion() *model.Question {
	if c.exam == nil || c.current >= len(c.exam.Questions) {
		return nil
	}
	return &c.exam.Questions[c.current]
}

// Answer returns the chosen option for a question, if any.
func (c *Controller) Answer(questionID int64) (int64, bool) {
	optionID, ok := c.answers[questionID]
	return optionID, ok
}

// Answers returns a copy of the answer map accumulated so far.
func (c *Controller) Answers() model.AnswerMap {
	out := make(model.AnswerMap, len(c.answers))
	for q, o := range c.answers {
		out[q] = o
	}
	return out
}

// AnsweredCount returns how many questions have a recorded answer.
func (c *Controller) AnsweredCount() int { return len(c.answers) }

// Verdict returns the stored practice feedback for a question, if any.
func (c *Controller) Verdict(questionID int64) (model.AnswerVerdict, bool) {
	v, ok := c.feedback[questionID]
	return v, ok
}

// IsMarked reports the local mark-for-review flag for a question.
func (c *Controller) IsMarked(questionID int64) bool { return c.review[questionID] }

// TimeLeft returns the remaining whole seconds.
func (c *Controller) TimeLeft() int { return c.timeLeft }

// Result returns the final score, nil until the session completes.
func (c *Controller) Result() *model.ExamResult { return c.result }

// FailReason returns the user-facing message for an Errored session.
func (c *Controller) FailReason() string { return c.failReason }

// Percentage returns the achieved score as a rounded percentage of the
// maximum, zero until a result exists.
func (c *Controller) Percentage() int {
	if c.result == nil || c.result.TotalMarks == 0 {
		return 0
	}
	return int(math.Round(c.result.Score / c.result.TotalMarks * 100))
}

// Passed reports whether the result clears the configured pass threshold.
func (c *Controller) Passed() bool {
	return c.result != nil && c.Percentage() >= c.passPct
}

// FormatTime renders whole seconds as m:ss with zero-padded seconds,
// matching the exam header clock.
func FormatTime(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
