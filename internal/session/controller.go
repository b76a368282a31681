package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/bitbybit-prep/bitbybit-cli/internal/model"
)

// Phase enumerates the lifecycle states of an exam attempt.
type Phase string

const (
	PhaseInitializing Phase = "INITIALIZING"
	PhaseInProgress   Phase = "IN_PROGRESS"
	PhaseSubmitting   Phase = "SUBMITTING"
	PhaseCompleted    Phase = "COMPLETED"
	PhaseErrored      Phase = "ERRORED"
)

// Controller operation errors. Validation failures surface as inline
// messages and never change state.
var (
	ErrNotInProgress   = errors.New("exam session is not in progress")
	ErrNoSelection     = errors.New("select an option before checking")
	ErrNotPractice     = errors.New("answer checking is only available in practice quizzes")
	ErrIndexOutOfRange = errors.New("question index out of range")
)

// ExamAPI is the slice of the backend the controller depends on.
// *api.Client satisfies it.
type ExamAPI interface {
	FetchExam(ctx context.Context, examID int64) (*model.Exam, error)
	StartAttempt(ctx context.Context, examID int64) (*model.AttemptStart, error)
	CheckAnswer(ctx context.Context, examID, questionID, optionID int64) (*model.AnswerVerdict, error)
	SubmitExam(ctx context.Context, examID, attemptID int64, answers model.AnswerMap) (*model.ExamResult, error)
}

// Options tunes a Controller.
type Options struct {
	// Confirm is invoked before a manual submission goes out. Auto-submit
	// on timer expiry bypasses it. Nil defaults to always-confirm.
	Confirm func() bool

	// PassThresholdPct frames the result as pass/fail. The catalog carries
	// per-course passing marks that do not always match this value; the
	// result view applies its own threshold. Zero defaults to 40.
	PassThresholdPct int

	Logger zerolog.Logger
}

// Controller drives the lifecycle of exactly one exam attempt: fetch the
// exam, open a server-side attempt, collect answers, optionally grade them
// immediately in practice mode, enforce the countdown, and submit exactly
// once. It owns all session state; no globals, no timers. Time advances
// only through Tick, driven by whatever scheduler hosts the controller.
//
// The controller is not safe for concurrent use. It models a single
// cooperative UI event loop: at most one operation runs at a time and at
// most one network call of each kind is in flight, enforced by phase
// guards.
type Controller struct {
	api     ExamAPI
	examID  int64
	confirm func() bool
	passPct int
	log     zerolog.Logger

	phase     Phase
	exam      *model.Exam
	attemptID int64
	current   int

	answers  model.AnswerMap
	review   map[int64]bool
	feedback map[int64]model.AnswerVerdict

	timeLeft int
	expired  bool

	result     *model.ExamResult
	failReason string
}

// New creates a Controller for one exam. Call Initialize before anything else.
func New(api ExamAPI, examID int64, opts Options) *Controller {
	confirm := opts.Confirm
	if confirm == nil {
		confirm = func() bool { return true }
	}
	passPct := opts.PassThresholdPct
	if passPct == 0 {
		passPct = 40
	}

	return &Controller{
		api:      api,
		examID:   examID,
		confirm:  confirm,
		passPct:  passPct,
		log:      opts.Logger.With().Str("component", "exam_session").Int64("exam_id", examID).Logger(),
		phase:    PhaseInitializing,
		answers:  model.AnswerMap{},
		review:   map[int64]bool{},
		feedback: map[int64]model.AnswerVerdict{},
	}
}

// Initialize fetches the exam definition and opens a server-side attempt,
// in that order. Both must succeed before the session enters InProgress.
// Any failure is fatal to the session: the phase becomes Errored and the
// caller is expected to send the user back through authentication.
func (c *Controller) Initialize(ctx context.Context) error {
	if c.phase != PhaseInitializing {
		return fmt.Errorf("initialize called in phase %s", c.phase)
	}

	exam, err := c.api.FetchExam(ctx, c.examID)
	if err != nil {
		c.fail("failed to load exam")
		return fmt.Errorf("initialize session: %w", err)
	}

	start, err := c.api.StartAttempt(ctx, c.examID)
	if err != nil {
		c.fail("failed to start attempt")
		return fmt.Errorf("initialize session: %w", err)
	}

	c.exam = exam
	c.attemptID = start.AttemptID
	c.timeLeft = exam.DurationMinutes * 60
	c.phase = PhaseInProgress

	c.log.Info().
		Int64("attempt_id", c.attemptID).
		Int("questions", len(exam.Questions)).
		Int("seconds", c.timeLeft).
		Msg("Session started")
	return nil
}

func (c *Controller) fail(reason string) {
	c.phase = PhaseErrored
	c.failReason = reason
	c.log.Error().Str("reason", reason).Msg("Session errored")
}

// SelectAnswer records the chosen option for a question, overwriting any
// previous choice. It is silently ignored when the session is not in
// progress or the question has already been graded in practice mode.
func (c *Controller) SelectAnswer(questionID, optionID int64) {
	if c.phase != PhaseInProgress {
		return
	}
	if _, graded := c.feedback[questionID]; graded {
		return
	}
	if c.questionByID(questionID) == nil {
		return
	}
	c.answers[questionID] = optionID
}

// CheckAnswer grades the current answer for a question immediately. Only
// practice-type exams allow it, and it requires a selection. The verdict
// locks the question against further answer changes; re-checking a graded
// question returns the stored verdict without another network call.
// Network failures leave the session untouched and may be retried.
func (c *Controller) CheckAnswer(ctx context.Context, questionID int64) (*model.AnswerVerdict, error) {
	if c.phase != PhaseInProgress {
		return nil, ErrNotInProgress
	}
	if !c.exam.ExamType.IsPractice() {
		return nil, ErrNotPractice
	}
	if v, ok := c.feedback[questionID]; ok {
		return &v, nil
	}
	optionID, ok := c.answers[questionID]
	if !ok {
		return nil, ErrNoSelection
	}

	verdict, err := c.api.CheckAnswer(ctx, c.examID, questionID, optionID)
	if err != nil {
		return nil, fmt.Errorf("check answer: %w", err)
	}

	c.feedback[questionID] = *verdict
	return verdict, nil
}

// Navigate moves the displayed question pointer. It touches nothing else
// and stays available after completion so the user can review.
func (c *Controller) Navigate(index int) error {
	if c.exam == nil || index < 0 || index >= len(c.exam.Questions) {
		return ErrIndexOutOfRange
	}
	c.current = index
	return nil
}

// ToggleReview flips the local mark-for-review flag on a question. The flag
// never leaves the client; the submission payload does not carry it.
func (c *Controller) ToggleReview(questionID int64) {
	if c.phase != PhaseInProgress {
		return
	}
	if c.questionByID(questionID) == nil {
		return
	}
	c.review[questionID] = !c.review[questionID]
}

// Submit sends the full accumulated answer map together with the attempt
// ID. Manual submission asks the confirm hook first; auto-submit (timer
// expiry) proceeds unconditionally. On failure the session drops back to
// InProgress with all answers intact so the user can retry; nothing is
// retried automatically.
func (c *Controller) Submit(ctx context.Context, isAutomatic bool) error {
	if c.phase != PhaseInProgress {
		return ErrNotInProgress
	}
	if !isAutomatic && !c.confirm() {
		return nil
	}

	c.phase = PhaseSubmitting

	result, err := c.api.SubmitExam(ctx, c.examID, c.attemptID, c.answers)
	if err != nil {
		c.phase = PhaseInProgress
		return fmt.Errorf("submit exam: %w", err)
	}

	c.result = result
	c.phase = PhaseCompleted

	c.log.Info().
		Bool("auto", isAutomatic).
		Int("answered", len(c.answers)).
		Float64("score", result.Score).
		Msg("Exam submitted")
	return nil
}

// Tick advances the countdown by one second. When the clock reaches zero
// it fires auto-submit exactly once; stray ticks afterwards, including
// ticks arriving while a failed auto-submit awaits manual retry, do
// nothing.
func (c *Controller) Tick(ctx context.Context) error {
	if c.phase != PhaseInProgress || c.expired {
		return nil
	}

	c.timeLeft--
	if c.timeLeft > 0 {
		return nil
	}

	c.timeLeft = 0
	c.expired = true
	c.log.Info().Msg("Time expired, auto-submitting")
	return c.Submit(ctx, true)
}

func (c *Controller) questionByID(id int64) *model.Question {
	if c.exam == nil {
		return nil
	}
	for i := range c.exam.Questions {
		if c.exam.Questions[i].ID == id {
			return &c.exam.Questions[i]
		}
	}
	return nil
}
