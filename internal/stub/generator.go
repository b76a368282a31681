package stub

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bitbybit-prep/bitbybit-cli/internal/model"
	"github.com/bitbybit-prep/bitbybit-cli/internal/validator"
)

// generate returns deterministic draft questions. The real backend calls
// an AI service here; the stub fabricates drafts from the request so admin
// tooling can be exercised offline.
func (s *Server) generate(c *gin.Context) {
	var req model.GenerateRequest
	if fields := validator.Bind(c, &req); fields != nil {
		c.JSON(http.StatusBadRequest, fields)
		return
	}
	if req.NumQuestions <= 0 || req.NumQuestions > 50 {
		fail(c, http.StatusBadRequest, "num_questions must be between 1 and 50")
		return
	}

	drafts := make([]model.DraftQuestion, 0, req.NumQuestions)
	for i := 1; i <= req.NumQuestions; i++ {
		drafts = append(drafts, model.DraftQuestion{
			QuestionText: fmt.Sprintf("[%s] Generated question %d for %s %d",
				req.Difficulty, i, req.SourceType, req.SourceID),
			Options:      []string{"Option A", "Option B", "Option C", "Option D"},
			CorrectIndex: (i - 1) % 4,
			Marks:        2,
			Explanation:  fmt.Sprintf("Explanation for generated question %d.", i),
		})
	}
	c.JSON(http.StatusOK, drafts)
}

// saveBulk replaces the question set of an existing exam or creates a new
// subject test from the drafts.
func (s *Server) saveBulk(c *gin.Context) {
	var req model.SaveBulkRequest
	if fields := validator.Bind(c, &req); fields != nil {
		c.JSON(http.StatusBadRequest, fields)
		return
	}
	if req.ExamID == nil && (req.NewExamTitle == nil || *req.NewExamTitle == "") {
		fail(c, http.StatusBadRequest, "exam_id or new_exam_title is required")
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	var exam *stubExam
	if req.ExamID != nil {
		exam = s.store.exams[*req.ExamID]
		if exam == nil {
			fail(c, http.StatusNotFound, "exam not found")
			return
		}
	} else {
		exam = &stubExam{
			Exam: model.Exam{
				ID:       s.store.id(),
				Title:    *req.NewExamTitle,
				ExamType: model.ExamTypeSubjectTest,
			},
			Correct:      map[int64]int64{},
			Explanations: map[int64]string{},
		}
		s.store.exams[exam.ID] = exam
	}

	exam.Questions = nil
	exam.Correct = map[int64]int64{}
	exam.Explanations = map[int64]string{}
	for _, d := range req.Questions {
		s.store.addQuestionLocked(exam, d)
	}
	if req.Duration > 0 {
		exam.DurationMinutes = req.Duration
	}
	s.store.retotalLocked(exam)

	c.JSON(http.StatusOK, model.SaveBulkResult{
		Message: fmt.Sprintf("Saved %d questions to '%s'", len(exam.Questions), exam.Title),
		ExamID:  exam.ID,
	})
}

// uploadQuestionsCSV imports rows shaped as:
// Question Text,Option A,Option B,Option C,Option D,Correct Option,Marks,Explanation
func (s *Server) uploadQuestionsCSV(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		fail(c, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	examIDStr := c.PostForm("exam_id")
	newTitle := c.PostForm("new_exam_title")
	if examIDStr == "" && newTitle == "" {
		fail(c, http.StatusBadRequest, "exam_id or new_exam_title is required")
		return
	}

	drafts, err := parseQuestionsCSV(file)
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	var exam *stubExam
	if examIDStr != "" {
		examID, convErr := strconv.ParseInt(examIDStr, 10, 64)
		if convErr != nil {
			fail(c, http.StatusBadRequest, "invalid exam_id")
			return
		}
		exam = s.store.exams[examID]
		if exam == nil {
			fail(c, http.StatusNotFound, "exam not found")
			return
		}
	} else {
		exam = &stubExam{
			Exam: model.Exam{
				ID:       s.store.id(),
				Title:    newTitle,
				ExamType: model.ExamTypeSubjectTest,
			},
			Correct:      map[int64]int64{},
			Explanations: map[int64]string{},
		}
		s.store.exams[exam.ID] = exam
	}

	for _, d := range drafts {
		s.store.addQuestionLocked(exam, d)
	}
	s.store.retotalLocked(exam)

	c.JSON(http.StatusOK, model.CSVUploadResult{
		Added:   len(drafts),
		Message: fmt.Sprintf("Added %d questions", len(drafts)),
	})
}

func parseQuestionsCSV(r io.Reader) ([]model.DraftQuestion, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	var drafts []model.DraftQuestion
	for i, row := range rows {
		if i == 0 && len(row) > 0 && strings.EqualFold(strings.TrimSpace(row[0]), "question text") {
			continue // header
		}
		if len(row) < 7 {
			return nil, fmt.Errorf("row %d: expected at least 7 columns, got %d", i+1, len(row))
		}

		correct := strings.ToUpper(strings.TrimSpace(row[5]))
		if len(correct) != 1 || correct[0] < 'A' || correct[0] > 'D' {
			return nil, fmt.Errorf("row %d: correct option must be A-D", i+1)
		}
		idx := int(correct[0] - 'A')

		marks, err := strconv.ParseFloat(strings.TrimSpace(row[6]), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid marks", i+1)
		}

		d := model.DraftQuestion{
			QuestionText: row[0],
			Options:      []string{row[1], row[2], row[3], row[4]},
			CorrectIndex: idx,
			Marks:        marks,
		}
		if len(row) > 7 {
			d.Explanation = row[7]
		}
		drafts = append(drafts, d)
	}
	return drafts, nil
}

// uploadNotesCSV imports chapter study notes from rows shaped as:
// Course,Subject,Chapter,Notes
// Unknown course/subject/chapter rows create the missing tree nodes.
func (s *Server) uploadNotesCSV(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		fail(c, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		fail(c, http.StatusBadRequest, "could not parse CSV")
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	updated := 0
	for i, row := range rows {
		if i == 0 && len(row) > 0 && strings.EqualFold(strings.TrimSpace(row[0]), "course") {
			continue
		}
		if len(row) < 4 {
			fail(c, http.StatusBadRequest, fmt.Sprintf("row %d: expected 4 columns", i+1))
			return
		}
		s.store.upsertChapterNotesLocked(row[0], row[1], row[2], row[3])
		updated++
	}

	c.JSON(http.StatusOK, model.CSVUploadResult{
		Added:   updated,
		Message: fmt.Sprintf("Imported notes for %d chapters", updated),
	})
}
