package stub

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/bitbybit-prep/bitbybit-cli/internal/config"
	"github.com/bitbybit-prep/bitbybit-cli/internal/model"
	"github.com/bitbybit-prep/bitbybit-cli/internal/validator"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	validator.Setup()

	cfg := &config.Config{
		GinMode:    "test",
		JWTSecret:  "test-secret",
		JWTExpiry:  time.Hour,
		BcryptCost: bcrypt.MinCost,
	}
	srv := NewServer(cfg, zerolog.Nop())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func request(t *testing.T, method, url, token string, body interface{}, out interface{}) int {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatal(err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "JWT "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s: %v", method, url, err)
		}
	}
	return resp.StatusCode
}

func login(t *testing.T, baseURL, username, password string) string {
	t.Helper()
	var pair model.TokenPair
	status := request(t, http.MethodPost, baseURL+"/api/auth/jwt/create/", "", map[string]string{
		"username": username,
		"password": password,
	}, &pair)
	if status != http.StatusOK {
		t.Fatalf("login %s: status %d", username, status)
	}
	return pair.Access
}

func TestLogin(t *testing.T) {
	_, ts := newTestServer(t)

	t.Run("valid credentials", func(t *testing.T) {
		if token := login(t, ts.URL, "student", "student123"); token == "" {
			t.Fatal("empty access token")
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		var body map[string]string
		status := request(t, http.MethodPost, ts.URL+"/api/auth/jwt/create/", "", map[string]string{
			"username": "student",
			"password": "wrong",
		}, &body)
		if status != http.StatusUnauthorized {
			t.Fatalf("status %d, want 401", status)
		}
		if body["detail"] != "No active account found with the given credentials" {
			t.Errorf("detail = %q", body["detail"])
		}
	})
}

func TestAuthRequired(t *testing.T) {
	_, ts := newTestServer(t)

	status := request(t, http.MethodGet, ts.URL+"/api/exams/301/", "", nil, nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("no token: status %d, want 401", status)
	}

	status = request(t, http.MethodGet, ts.URL+"/api/exams/301/", "garbage", nil, nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("bad token: status %d, want 401", status)
	}
}

func TestExamPayloadWithholdsAnswers(t *testing.T) {
	_, ts := newTestServer(t)
	token := login(t, ts.URL, "student", "student123")

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/exams/301/", nil)
	req.Header.Set("Authorization", "JWT "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	buf.ReadFrom(resp.Body)
	raw := buf.String()

	if strings.Contains(raw, "Correct") || strings.Contains(raw, "correct_option") {
		t.Errorf("exam payload leaks grading data: %s", raw)
	}

	var exam model.Exam
	if err := json.Unmarshal(buf.Bytes(), &exam); err != nil {
		t.Fatal(err)
	}
	if exam.Title != "Process Management Quiz" || len(exam.Questions) != 3 {
		t.Errorf("exam = %q with %d questions", exam.Title, len(exam.Questions))
	}
}

func TestPracticeCheckAnswer(t *testing.T) {
	srv, ts := newTestServer(t)
	token := login(t, ts.URL, "student", "student123")

	exam := srv.store.exam(301)
	q := exam.Questions[0]
	correct := exam.Correct[q.ID]

	var wrong int64
	for _, opt := range q.Options {
		if opt.ID != correct {
			wrong = opt.ID
			break
		}
	}

	t.Run("correct pick", func(t *testing.T) {
		var verdict model.AnswerVerdict
		status := request(t, http.MethodPost, ts.URL+"/api/exams/301/check_answer/", token,
			model.CheckAnswerRequest{QuestionID: q.ID, OptionID: correct}, &verdict)
		if status != http.StatusOK {
			t.Fatalf("status %d", status)
		}
		if !verdict.IsCorrect || verdict.CorrectOptionID != correct {
			t.Errorf("verdict = %+v", verdict)
		}
		if verdict.Explanation == "" {
			t.Error("explanation missing")
		}
	})

	t.Run("wrong pick", func(t *testing.T) {
		var verdict model.AnswerVerdict
		request(t, http.MethodPost, ts.URL+"/api/exams/301/check_answer/", token,
			model.CheckAnswerRequest{QuestionID: q.ID, OptionID: wrong}, &verdict)
		if verdict.IsCorrect || verdict.CorrectOptionID != correct {
			t.Errorf("verdict = %+v", verdict)
		}
	})

	t.Run("rejected for timed exams", func(t *testing.T) {
		var body map[string]string
		status := request(t, http.MethodPost, ts.URL+"/api/exams/302/check_answer/", token,
			model.CheckAnswerRequest{QuestionID: q.ID, OptionID: correct}, &body)
		if status != http.StatusBadRequest {
			t.Fatalf("status %d, want 400", status)
		}
	})
}

func startAttempt(t *testing.T, baseURL, token string, examID int64) model.AttemptStart {
	t.Helper()
	var start model.AttemptStart
	status := request(t, http.MethodPost, fmt.Sprintf("%s/api/exams/%d/start_attempt/", baseURL, examID), token, nil, &start)
	if status != http.StatusOK {
		t.Fatalf("start_attempt: status %d", status)
	}
	return start
}

func TestSubmitScoring(t *testing.T) {
	srv, ts := newTestServer(t)
	token := login(t, ts.URL, "student", "student123")

	// Quiz 301 has no negative marking: 2 correct + 1 wrong out of 6 marks.
	exam := srv.store.exam(301)
	answers := model.AnswerMap{}
	for i, q := range exam.Questions {
		correct := exam.Correct[q.ID]
		if i < 2 {
			answers[q.ID] = correct
			continue
		}
		for _, opt := range q.Options {
			if opt.ID != correct {
				answers[q.ID] = opt.ID
				break
			}
		}
	}

	start := startAttempt(t, ts.URL, token, 301)

	var result model.ExamResult
	status := request(t, http.MethodPost, ts.URL+"/api/exams/301/submit_exam/", token,
		model.SubmitExamRequest{AttemptID: start.AttemptID, Answers: answers}, &result)
	if status != http.StatusOK {
		t.Fatalf("submit: status %d", status)
	}
	if result.Score != 4 || result.TotalMarks != 6 || result.Status != "Completed" {
		t.Errorf("result = %+v, want 4/6 Completed", result)
	}

	t.Run("double submit rejected", func(t *testing.T) {
		var body map[string]string
		status := request(t, http.MethodPost, ts.URL+"/api/exams/301/submit_exam/", token,
			model.SubmitExamRequest{AttemptID: start.AttemptID, Answers: answers}, &body)
		if status != http.StatusBadRequest {
			t.Fatalf("status %d, want 400", status)
		}
		if body["error"] != "Exam already submitted" {
			t.Errorf("error = %q", body["error"])
		}
	})

	t.Run("history records the attempt", func(t *testing.T) {
		var records []model.AttemptRecord
		status := request(t, http.MethodGet, ts.URL+"/api/history/", token, nil, &records)
		if status != http.StatusOK {
			t.Fatalf("history: status %d", status)
		}
		if len(records) != 1 {
			t.Fatalf("history length = %d, want 1", len(records))
		}
		r := records[0]
		if r.ID != start.AttemptID || r.TotalScore != 4 || !r.IsCompleted {
			t.Errorf("record = %+v", r)
		}
	})
}

func TestNegativeMarking(t *testing.T) {
	srv, ts := newTestServer(t)
	token := login(t, ts.URL, "student", "student123")

	// Mock 302 deducts a quarter of the marks per wrong answer:
	// 1 correct (+2), 1 wrong (-0.5), 1 blank = 1.5.
	exam := srv.store.exam(302)
	answers := model.AnswerMap{}
	q0, q1 := exam.Questions[0], exam.Questions[1]
	answers[q0.ID] = exam.Correct[q0.ID]
	for _, opt := range q1.Options {
		if opt.ID != exam.Correct[q1.ID] {
			answers[q1.ID] = opt.ID
			break
		}
	}

	start := startAttempt(t, ts.URL, token, 302)
	var result model.ExamResult
	request(t, http.MethodPost, ts.URL+"/api/exams/302/submit_exam/", token,
		model.SubmitExamRequest{AttemptID: start.AttemptID, Answers: answers}, &result)
	if result.Score != 1.5 {
		t.Errorf("Score = %g, want 1.5", result.Score)
	}

	t.Run("score floors at zero", func(t *testing.T) {
		wrongOnly := model.AnswerMap{}
		for _, q := range exam.Questions {
			for _, opt := range q.Options {
				if opt.ID != exam.Correct[q.ID] {
					wrongOnly[q.ID] = opt.ID
					break
				}
			}
		}

		start := startAttempt(t, ts.URL, token, 302)
		var result model.ExamResult
		request(t, http.MethodPost, ts.URL+"/api/exams/302/submit_exam/", token,
			model.SubmitExamRequest{AttemptID: start.AttemptID, Answers: wrongOnly}, &result)
		if result.Score != 0 {
			t.Errorf("Score = %g, want 0", result.Score)
		}
	})
}

func TestSubmitRejectsForeignAttempt(t *testing.T) {
	_, ts := newTestServer(t)
	student := login(t, ts.URL, "student", "student123")
	admin := login(t, ts.URL, "admin", "admin123")

	start := startAttempt(t, ts.URL, student, 301)

	var body map[string]string
	status := request(t, http.MethodPost, ts.URL+"/api/exams/301/submit_exam/", admin,
		model.SubmitExamRequest{AttemptID: start.AttemptID, Answers: model.AnswerMap{}}, &body)
	if status != http.StatusBadRequest || body["error"] != "Invalid attempt" {
		t.Errorf("status %d error %q, want 400 Invalid attempt", status, body["error"])
	}
}

func TestStaffGate(t *testing.T) {
	_, ts := newTestServer(t)
	student := login(t, ts.URL, "student", "student123")

	status := request(t, http.MethodPost, ts.URL+"/api/ai-generator/generate/", student,
		model.GenerateRequest{SourceType: "chapter", SourceID: 101, NumQuestions: 2}, nil)
	if status != http.StatusForbidden {
		t.Fatalf("status %d, want 403", status)
	}
}

func uploadCSV(t *testing.T, url, token string, fields map[string]string, csv string) (int, model.CSVUploadResult) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	part, err := mw.CreateFormFile("file", "upload.csv")
	if err != nil {
		t.Fatal(err)
	}
	part.Write([]byte(csv))
	mw.Close()

	req, _ := http.NewRequest(http.MethodPost, url, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "JWT "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var result model.CSVUploadResult
	json.NewDecoder(resp.Body).Decode(&result)
	return resp.StatusCode, result
}

func TestQuestionsCSVUpload(t *testing.T) {
	srv, ts := newTestServer(t)
	admin := login(t, ts.URL, "admin", "admin123")

	csv := "Question Text,Option A,Option B,Option C,Option D,Correct Option,Marks,Explanation\n" +
		"What does LRU evict?,Least recent page,Largest page,Random page,Newest page,A,2,LRU drops the least recently used page.\n"

	t.Run("into existing exam", func(t *testing.T) {
		before := len(srv.store.exam(301).Questions)
		status, result := uploadCSV(t, ts.URL+"/api/ai-generator/upload_questions_csv/", admin,
			map[string]string{"exam_id": "301"}, csv)
		if status != http.StatusOK {
			t.Fatalf("status %d", status)
		}
		if result.Added != 1 {
			t.Errorf("Added = %d, want 1", result.Added)
		}
		exam := srv.store.exam(301)
		if len(exam.Questions) != before+1 {
			t.Errorf("question count = %d, want %d", len(exam.Questions), before+1)
		}
		if exam.TotalMarks != 8 {
			t.Errorf("TotalMarks = %d, want 8", exam.TotalMarks)
		}
	})

	t.Run("into new exam", func(t *testing.T) {
		status, result := uploadCSV(t, ts.URL+"/api/ai-generator/upload_questions_csv/", admin,
			map[string]string{"new_exam_title": "Paging Test"}, csv)
		if status != http.StatusOK || result.Added != 1 {
			t.Fatalf("status %d added %d", status, result.Added)
		}
	})

	t.Run("bad correct option", func(t *testing.T) {
		bad := "Question Text,Option A,Option B,Option C,Option D,Correct Option,Marks\nQ,A,B,C,D,Z,1\n"
		status, _ := uploadCSV(t, ts.URL+"/api/ai-generator/upload_questions_csv/", admin,
			map[string]string{"exam_id": "301"}, bad)
		if status != http.StatusBadRequest {
			t.Fatalf("status %d, want 400", status)
		}
	})
}

func TestNotesCSVUpload(t *testing.T) {
	srv, ts := newTestServer(t)
	admin := login(t, ts.URL, "admin", "admin123")

	csv := "Course,Subject,Chapter,Notes\n" +
		"Computer Science,Operating System,Processes and Threads,Updated notes body.\n" +
		"Computer Science,Networks,TCP Basics,Three-way handshake.\n"

	status, result := uploadCSV(t, ts.URL+"/api/bulk-notes/upload_csv/", admin, nil, csv)
	if status != http.StatusOK {
		t.Fatalf("status %d", status)
	}
	if result.Added != 2 {
		t.Errorf("Added = %d, want 2", result.Added)
	}

	if notes := srv.store.chapters[101].StudyNotes; notes != "Updated notes body." {
		t.Errorf("chapter notes = %q", notes)
	}

	// The second row creates a new subject and chapter under the course.
	course := srv.store.courses[0]
	if len(course.Subjects) != 2 || course.Subjects[1].Title != "Networks" {
		t.Errorf("subjects = %+v", course.Subjects)
	}
}

func TestChapterNotesPatch(t *testing.T) {
	srv, ts := newTestServer(t)
	student := login(t, ts.URL, "student", "student123")
	admin := login(t, ts.URL, "admin", "admin123")

	t.Run("staff only", func(t *testing.T) {
		status := request(t, http.MethodPatch, ts.URL+"/api/chapters/101/", student,
			map[string]string{"study_notes": "hijacked"}, nil)
		if status != http.StatusForbidden {
			t.Fatalf("status %d, want 403", status)
		}
	})

	t.Run("updates notes", func(t *testing.T) {
		status := request(t, http.MethodPatch, ts.URL+"/api/chapters/101/", admin,
			map[string]string{"study_notes": "fresh notes"}, nil)
		if status != http.StatusOK {
			t.Fatalf("status %d", status)
		}
		if srv.store.chapters[101].StudyNotes != "fresh notes" {
			t.Errorf("notes = %q", srv.store.chapters[101].StudyNotes)
		}
	})
}

func TestGeneratorPipeline(t *testing.T) {
	srv, ts := newTestServer(t)
	admin := login(t, ts.URL, "admin", "admin123")

	var drafts []model.DraftQuestion
	status := request(t, http.MethodPost, ts.URL+"/api/ai-generator/generate/", admin,
		model.GenerateRequest{SourceType: "chapter", SourceID: 101, NumQuestions: 3, Difficulty: "easy"}, &drafts)
	if status != http.StatusOK {
		t.Fatalf("generate: status %d", status)
	}
	if len(drafts) != 3 {
		t.Fatalf("drafts = %d, want 3", len(drafts))
	}
	for i, d := range drafts {
		if len(d.Options) != 4 || d.CorrectIndex < 0 || d.CorrectIndex > 3 {
			t.Errorf("draft %d = %+v", i, d)
		}
	}

	title := "Generated Exam"
	var saved model.SaveBulkResult
	status = request(t, http.MethodPost, ts.URL+"/api/ai-generator/save_bulk/", admin,
		model.SaveBulkRequest{NewExamTitle: &title, SourceType: "chapter", SourceID: 101, Questions: drafts, Duration: 20}, &saved)
	if status != http.StatusOK {
		t.Fatalf("save_bulk: status %d", status)
	}

	exam := srv.store.exam(saved.ExamID)
	if exam == nil {
		t.Fatal("saved exam not found")
	}
	if exam.Title != title || len(exam.Questions) != 3 || exam.DurationMinutes != 20 {
		t.Errorf("exam = %+v", exam.Exam)
	}
	if exam.ExamType != model.ExamTypeSubjectTest {
		t.Errorf("ExamType = %q", exam.ExamType)
	}
}
