package session

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/bitbybit-prep/bitbybit-cli/internal/model"
)

type fakeAPI struct {
	exam      *model.Exam
	attemptID int64
	verdict   model.AnswerVerdict
	result    model.ExamResult

	fetchErr  error
	startErr  error
	checkErr  error
	submitErr error

	checkCalls  int
	submitCalls int

	lastAttemptID int64
	lastAnswers   model.AnswerMap
}

func (f *fakeAPI) FetchExam(ctx context.Context, examID int64) (*model.Exam, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.exam, nil
}

func (f *fakeAPI) StartAttempt(ctx context.Context, examID int64) (*model.AttemptStart, error) {
	if f.startErr != nil {
		return nil, f.startErr
	}
	return &model.AttemptStart{AttemptID: f.attemptID}, nil
}

func (f *fakeAPI) CheckAnswer(ctx context.Context, examID, questionID, optionID int64) (*model.AnswerVerdict, error) {
	f.checkCalls++
	if f.checkErr != nil {
		return nil, f.checkErr
	}
	v := f.verdict
	return &v, nil
}

func (f *fakeAPI) SubmitExam(ctx context.Context, examID, attemptID int64, answers model.AnswerMap) (*model.ExamResult, error) {
	f.submitCalls++
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	f.lastAttemptID = attemptID
	f.lastAnswers = make(model.AnswerMap, len(answers))
	for q, o := range answers {
		f.lastAnswers[q] = o
	}
	r := f.result
	return &r, nil
}

func testExam(examType model.ExamType, questions, durationMinutes int) *model.Exam {
	exam := &model.Exam{
		ID:              7,
		Title:           "Operating Systems Quiz",
		ExamType:        examType,
		DurationMinutes: durationMinutes,
		TotalMarks:      questions * 2,
	}
	for i := 1; i <= questions; i++ {
		q := model.Question{ID: int64(i * 100), TextContent: "q", Marks: 2}
		for j := 1; j <= 4; j++ {
			q.Options = append(q.Options, model.Option{ID: int64(i*100 + j), Text: "opt"})
		}
		exam.Questions = append(exam.Questions, q)
	}
	return exam
}

func newStarted(t *testing.T, api *fakeAPI, opts Options) *Controller {
	t.Helper()
	opts.Logger = zerolog.Nop()
	c := New(api, 7, opts)
	if err := c.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return c
}

func TestSelectAnswerOverwrites(t *testing.T) {
	api := &fakeAPI{exam: testExam(model.ExamTypeMockFull, 3, 5), attemptID: 11}
	c := newStarted(t, api, Options{})

	c.SelectAnswer(100, 101)
	c.SelectAnswer(100, 103)
	c.SelectAnswer(100, 102)

	got, ok := c.Answer(100)
	if !ok || got != 102 {
		t.Fatalf("answer = %d, %v; want 102, true", got, ok)
	}
	if c.AnsweredCount() != 1 {
		t.Fatalf("answered count = %d, want 1", c.AnsweredCount())
	}
}

func TestSelectAnswerIgnoresUnknownQuestion(t *testing.T) {
	api := &fakeAPI{exam: testExam(model.ExamTypeMockFull, 2, 5), attemptID: 11}
	c := newStarted(t, api, Options{})

	c.SelectAnswer(999, 1)
	if c.AnsweredCount() != 0 {
		t.Fatalf("answered count = %d, want 0", c.AnsweredCount())
	}
}

func TestPracticeFeedbackLocksAnswer(t *testing.T) {
	api := &fakeAPI{
		exam:      testExam(model.ExamTypeTopicQuiz, 2, 5),
		attemptID: 11,
		verdict:   model.AnswerVerdict{IsCorrect: false, CorrectOptionID: 103, Explanation: "see notes"},
	}
	c := newStarted(t, api, Options{})

	c.SelectAnswer(100, 101)
	verdict, err := c.CheckAnswer(context.Background(), 100)
	if err != nil {
		t.Fatalf("check answer: %v", err)
	}
	if verdict.IsCorrect || verdict.CorrectOptionID != 103 {
		t.Fatalf("unexpected verdict %+v", verdict)
	}

	// Locked: the answer must not move.
	c.SelectAnswer(100, 104)
	if got, _ := c.Answer(100); got != 101 {
		t.Fatalf("answer changed after feedback: %d", got)
	}

	// Re-check returns the stored verdict without another call.
	if _, err := c.CheckAnswer(context.Background(), 100); err != nil {
		t.Fatalf("re-check: %v", err)
	}
	if api.checkCalls != 1 {
		t.Fatalf("check calls = %d, want 1", api.checkCalls)
	}
}

func TestCheckAnswerPreconditions(t *testing.T) {
	t.Run("no selection", func(t *testing.T) {
		api := &fakeAPI{exam: testExam(model.ExamTypeTopicQuiz, 1, 5), attemptID: 11}
		c := newStarted(t, api, Options{})

		if _, err := c.CheckAnswer(context.Background(), 100); !errors.Is(err, ErrNoSelection) {
			t.Fatalf("err = %v, want ErrNoSelection", err)
		}
	})

	t.Run("not practice", func(t *testing.T) {
		api := &fakeAPI{exam: testExam(model.ExamTypeMockFull, 1, 5), attemptID: 11}
		c := newStarted(t, api, Options{})

		c.SelectAnswer(100, 101)
		if _, err := c.CheckAnswer(context.Background(), 100); !errors.Is(err, ErrNotPractice) {
			t.Fatalf("err = %v, want ErrNotPractice", err)
		}
	})

	t.Run("network failure is retryable", func(t *testing.T) {
		api := &fakeAPI{
			exam:      testExam(model.ExamTypeTopicQuiz, 1, 5),
			attemptID: 11,
			checkErr:  errors.New("connection reset"),
		}
		c := newStarted(t, api, Options{})

		c.SelectAnswer(100, 101)
		if _, err := c.CheckAnswer(context.Background(), 100); err == nil {
			t.Fatal("expected error")
		}
		if _, ok := c.Verdict(100); ok {
			t.Fatal("verdict stored despite failure")
		}

		api.checkErr = nil
		if _, err := c.CheckAnswer(context.Background(), 100); err != nil {
			t.Fatalf("retry: %v", err)
		}
	})
}

func TestManualSubmitSendsFullAnswerMap(t *testing.T) {
	api := &fakeAPI{
		exam:      testExam(model.ExamTypeMockFull, 3, 5),
		attemptID: 42,
		result:    model.ExamResult{Score: 4, TotalMarks: 10},
	}
	c := newStarted(t, api, Options{})

	if c.TimeLeft() != 300 {
		t.Fatalf("timeLeft = %d, want 300", c.TimeLeft())
	}

	// Answer Q1 and Q2, leave Q3 blank, navigate away from both.
	c.SelectAnswer(100, 102)
	c.SelectAnswer(200, 201)
	if err := c.Navigate(2); err != nil {
		t.Fatalf("navigate: %v", err)
	}

	if err := c.Submit(context.Background(), false); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if api.lastAttemptID != 42 {
		t.Fatalf("attempt id = %d, want 42", api.lastAttemptID)
	}
	want := model.AnswerMap{100: 102, 200: 201}
	if len(api.lastAnswers) != len(want) {
		t.Fatalf("answers = %v, want %v", api.lastAnswers, want)
	}
	for q, o := range want {
		if api.lastAnswers[q] != o {
			t.Fatalf("answers = %v, want %v", api.lastAnswers, want)
		}
	}

	if c.Phase() != PhaseCompleted {
		t.Fatalf("phase = %s, want COMPLETED", c.Phase())
	}
	if c.Percentage() != 40 {
		t.Fatalf("percentage = %d, want 40", c.Percentage())
	}
	if !c.Passed() {
		t.Fatal("40%% should pass at the default threshold")
	}
}

func TestManualSubmitRespectsConfirm(t *testing.T) {
	api := &fakeAPI{exam: testExam(model.ExamTypeMockFull, 1, 5), attemptID: 1}
	declined := false
	c := newStarted(t, api, Options{Confirm: func() bool { declined = true; return false }})

	if err := c.Submit(context.Background(), false); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !declined {
		t.Fatal("confirm hook not invoked")
	}
	if c.Phase() != PhaseInProgress || api.submitCalls != 0 {
		t.Fatalf("declined submit must not leave InProgress (phase=%s calls=%d)", c.Phase(), api.submitCalls)
	}
}

func TestAutoSubmitFiresExactlyOnce(t *testing.T) {
	confirmCalls := 0
	api := &fakeAPI{
		exam:      testExam(model.ExamTypeMockFull, 2, 5),
		attemptID: 1,
		result:    model.ExamResult{Score: 2, TotalMarks: 4},
	}
	c := newStarted(t, api, Options{Confirm: func() bool { confirmCalls++; return true }})
	c.timeLeft = 5

	c.SelectAnswer(100, 101)

	ctx := context.Background()
	for i := 0; i < 10; i++ {
		if err := c.Tick(ctx); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
	}

	if api.submitCalls != 1 {
		t.Fatalf("submit calls = %d, want 1", api.submitCalls)
	}
	if confirmCalls != 0 {
		t.Fatalf("auto-submit must bypass confirmation, got %d calls", confirmCalls)
	}
	if c.TimeLeft() != 0 {
		t.Fatalf("timeLeft = %d, want 0", c.TimeLeft())
	}
	if len(api.lastAnswers) != 1 || api.lastAnswers[100] != 101 {
		t.Fatalf("partial answers = %v, want {100:101}", api.lastAnswers)
	}
	if c.Phase() != PhaseCompleted {
		t.Fatalf("phase = %s, want COMPLETED", c.Phase())
	}
}

func TestFailedAutoSubmitDoesNotRefire(t *testing.T) {
	api := &fakeAPI{
		exam:      testExam(model.ExamTypeMockFull, 1, 5),
		attemptID: 1,
		submitErr: errors.New("gateway timeout"),
	}
	c := newStarted(t, api, Options{})
	c.timeLeft = 1

	ctx := context.Background()
	if err := c.Tick(ctx); err == nil {
		t.Fatal("expected auto-submit failure")
	}
	if c.Phase() != PhaseInProgress {
		t.Fatalf("phase = %s, want IN_PROGRESS for manual retry", c.Phase())
	}

	// Stray ticks keep arriving; none may fire another submission.
	for i := 0; i < 5; i++ {
		if err := c.Tick(ctx); err != nil {
			t.Fatalf("stray tick: %v", err)
		}
	}
	if api.submitCalls != 1 {
		t.Fatalf("submit calls = %d, want 1", api.submitCalls)
	}

	// Manual retry succeeds with the answer map intact.
	c.SelectAnswer(100, 101) // still mutable after failed submit
	api.submitErr = nil
	api.result = model.ExamResult{Score: 2, TotalMarks: 2}
	if err := c.Submit(ctx, false); err != nil {
		t.Fatalf("retry submit: %v", err)
	}
	if api.lastAnswers[100] != 101 {
		t.Fatalf("answers lost across retry: %v", api.lastAnswers)
	}
}

func TestCompletedSessionIsTerminal(t *testing.T) {
	api := &fakeAPI{
		exam:      testExam(model.ExamTypeTopicQuiz, 2, 5),
		attemptID: 1,
		result:    model.ExamResult{Score: 2, TotalMarks: 4},
	}
	c := newStarted(t, api, Options{})
	c.SelectAnswer(100, 101)

	ctx := context.Background()
	if err := c.Submit(ctx, false); err != nil {
		t.Fatalf("submit: %v", err)
	}

	c.SelectAnswer(200, 201)
	if _, ok := c.Answer(200); ok {
		t.Fatal("selectAnswer mutated a completed session")
	}
	if _, err := c.CheckAnswer(ctx, 100); !errors.Is(err, ErrNotInProgress) {
		t.Fatalf("checkAnswer err = %v, want ErrNotInProgress", err)
	}
	if err := c.Submit(ctx, false); !errors.Is(err, ErrNotInProgress) {
		t.Fatalf("second submit err = %v, want ErrNotInProgress", err)
	}
	if api.submitCalls != 1 {
		t.Fatalf("submit calls = %d, want 1", api.submitCalls)
	}
	if err := c.Tick(ctx); err != nil {
		t.Fatalf("tick after completion: %v", err)
	}

	// Review navigation stays available.
	if err := c.Navigate(1); err != nil {
		t.Fatalf("navigate after completion: %v", err)
	}
}

func TestInitializationFailureIsFatal(t *testing.T) {
	api := &fakeAPI{
		exam:     testExam(model.ExamTypeMockFull, 1, 5),
		startErr: errors.New("401 unauthorized"),
	}
	c := New(api, 7, Options{Logger: zerolog.Nop()})

	if err := c.Initialize(context.Background()); err == nil {
		t.Fatal("expected initialize failure")
	}
	if c.Phase() != PhaseErrored {
		t.Fatalf("phase = %s, want ERRORED", c.Phase())
	}
	if c.FailReason() == "" {
		t.Fatal("missing user-facing failure reason")
	}

	// No InProgress processing may happen.
	if err := c.Tick(context.Background()); err != nil {
		t.Fatalf("tick on errored session: %v", err)
	}
	if c.TimeLeft() != 0 {
		t.Fatalf("timeLeft = %d, want 0", c.TimeLeft())
	}
	if api.submitCalls != 0 {
		t.Fatalf("submit calls = %d, want 0", api.submitCalls)
	}
}

func TestNavigateBounds(t *testing.T) {
	api := &fakeAPI{exam: testExam(model.ExamTypeMockFull, 3, 5), attemptID: 1}
	c := newStarted(t, api, Options{})

	if err := c.Navigate(-1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("navigate(-1) err = %v", err)
	}
	if err := c.Navigate(3); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("navigate(3) err = %v", err)
	}
	if c.Current() != 0 {
		t.Fatalf("failed navigation moved the pointer to %d", c.Current())
	}

	if err := c.Navigate(2); err != nil {
		t.Fatalf("navigate(2): %v", err)
	}
	if q := c.CurrentQuestion(); q == nil || q.ID != 300 {
		t.Fatalf("current question = %+v, want ID 300", q)
	}
}

func TestToggleReviewIsClientOnly(t *testing.T) {
	api := &fakeAPI{
		exam:      testExam(model.ExamTypeMockFull, 2, 5),
		attemptID: 1,
		result:    model.ExamResult{Score: 0, TotalMarks: 4},
	}
	c := newStarted(t, api, Options{})

	c.ToggleReview(100)
	if !c.IsMarked(100) {
		t.Fatal("question not marked")
	}
	c.ToggleReview(100)
	if c.IsMarked(100) {
		t.Fatal("mark did not toggle off")
	}

	c.ToggleReview(200)
	if err := c.Submit(context.Background(), false); err != nil {
		t.Fatalf("submit: %v", err)
	}
	// Review flags never reach the payload.
	if len(api.lastAnswers) != 0 {
		t.Fatalf("payload = %v, want empty", api.lastAnswers)
	}
}

func TestFormatTime(t *testing.T) {
	cases := []struct {
		seconds int
		want    string
	}{
		{300, "5:00"},
		{61, "1:01"},
		{9, "0:09"},
		{0, "0:00"},
		{-3, "0:00"},
		{3600, "60:00"},
	}
	for _, tc := range cases {
		if got := FormatTime(tc.seconds); got != tc.want {
			t.Errorf("FormatTime(%d) = %q, want %q", tc.seconds, got, tc.want)
		}
	}
}

func TestPassThresholdConfigurable(t *testing.T) {
	api := &fakeAPI{
		exam:      testExam(model.ExamTypeMockFull, 1, 5),
		attemptID: 1,
		result:    model.ExamResult{Score: 4, TotalMarks: 10},
	}
	c := newStarted(t, api, Options{PassThresholdPct: 50})

	if err := c.Submit(context.Background(), false); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if c.Percentage() != 40 {
		t.Fatalf("percentage = %d, want 40", c.Percentage())
	}
	if c.Passed() {
		t.Fatal("40%% must fail a 50%% threshold")
	}
}
