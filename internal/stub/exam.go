package stub

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bitbybit-prep/bitbybit-cli/internal/model"
	"github.com/bitbybit-prep/bitbybit-cli/internal/validator"
)

// getExam returns the exam definition with correct answers withheld;
// stubExam's grading maps never serialize.
func (s *Server) getExam(c *gin.Context) {
	examID, ok := pathID(c, "exam_id")
	if !ok {
		return
	}
	exam := s.store.exam(examID)
	if exam == nil {
		fail(c, http.StatusNotFound, "exam not found")
		return
	}
	c.JSON(http.StatusOK, exam.Exam)
}

func (s *Server) startAttempt(c *gin.Context) {
	examID, ok := pathID(c, "exam_id")
	if !ok {
		return
	}
	exam := s.store.exam(examID)
	if exam == nil {
		fail(c, http.StatusNotFound, "exam not found")
		return
	}

	a := s.store.startAttempt(currentUser(c), examID)
	s.log.Info().Int64("attempt_id", a.ID).Int64("exam_id", examID).Msg("Attempt started")

	c.JSON(http.StatusOK, model.AttemptStart{
		AttemptID: a.ID,
		StartTime: a.StartTime,
		Duration:  exam.DurationMinutes,
	})
}

// checkAnswer grades one answer immediately. Only practice-type exams
// expose their correct option before submission.
func (s *Server) checkAnswer(c *gin.Context) {
	examID, ok := pathID(c, "exam_id")
	if !ok {
		return
	}
	exam := s.store.exam(examID)
	if exam == nil {
		fail(c, http.StatusNotFound, "exam not found")
		return
	}
	if !exam.ExamType.IsPractice() {
		fail(c, http.StatusBadRequest, "answer checking is not available for this exam type")
		return
	}

	var req model.CheckAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		c.JSON(http.StatusBadRequest, fields)
		return
	}

	correct, known := exam.Correct[req.QuestionID]
	if !known {
		fail(c, http.StatusBadRequest, "unknown question")
		return
	}

	c.JSON(http.StatusOK, model.AnswerVerdict{
		IsCorrect:       req.OptionID == correct,
		CorrectOptionID: correct,
		Explanation:     exam.Explanations[req.QuestionID],
	})
}

// submitExam scores the full answer map: full marks for a correct pick,
// the exam's negative ratio deducted for a wrong one, blanks ignored,
// floor at zero. A completed attempt rejects resubmission.
func (s *Server) submitExam(c *gin.Context) {
	examID, ok := pathID(c, "exam_id")
	if !ok {
		return
	}
	exam := s.store.exam(examID)
	if exam == nil {
		fail(c, http.StatusNotFound, "exam not found")
		return
	}

	var req model.SubmitExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		c.JSON(http.StatusBadRequest, fields)
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	a := s.store.attempts[req.AttemptID]
	if a == nil || a.UserID != currentUser(c) || a.ExamID != examID {
		fail(c, http.StatusBadRequest, "Invalid attempt")
		return
	}
	if a.Completed {
		fail(c, http.StatusBadRequest, "Exam already submitted")
		return
	}

	var score float64
	for _, q := range exam.Questions {
		chosen, answered := req.Answers[q.ID]
		if !answered {
			continue
		}
		if chosen == exam.Correct[q.ID] {
			score += q.Marks
		} else {
			score -= q.Marks * exam.NegativeRatio
		}
	}
	if score < 0 {
		score = 0
	}

	a.Score = score
	a.Completed = true

	s.log.Info().
		Int64("attempt_id", a.ID).
		Float64("score", score).
		Int("answered", len(req.Answers)).
		Msg("Attempt submitted")

	c.JSON(http.StatusOK, model.ExamResult{
		Score:      score,
		TotalMarks: float64(exam.TotalMarks),
		Status:     "Completed",
	})
}
