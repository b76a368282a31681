package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bitbybit-prep/bitbybit-cli/internal/auth"
	"github.com/bitbybit-prep/bitbybit-cli/internal/model"
	"github.com/bitbybit-prep/bitbybit-cli/internal/session"
)

// examRunner hosts one session.Controller: it schedules the countdown,
// reads user input and renders state. The controller itself is
// single-threaded by contract, so every call into it happens under mu;
// the runner is the "event loop" the controller expects.
type examRunner struct {
	mu   sync.Mutex
	ctrl *session.Controller
	done chan struct{}
}

func (a *app) cmdExam(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: bitbybit exam <exam_id>")
	}
	examID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid exam id %q", args[0])
	}

	// Route guard: don't even start an attempt without a plausible session.
	if err := auth.RequireSession(a.store); err != nil {
		return err
	}

	ctrl := session.New(a.client, examID, session.Options{
		Confirm:          confirmSubmit,
		PassThresholdPct: a.cfg.PassThresholdPct,
		Logger:           a.log,
	})

	fmt.Println("Preparing your exam environment...")
	if err := ctrl.Initialize(context.Background()); err != nil {
		if reason := ctrl.FailReason(); reason != "" {
			fmt.Fprintln(os.Stderr, reason)
		}
		return err
	}

	r := &examRunner{ctrl: ctrl, done: make(chan struct{})}
	go r.runClock()
	r.loop()
	return nil
}

func confirmSubmit() bool {
	fmt.Print("Are you sure you want to finish the test? [y/N] ")
	reader := bufio.NewReader(os.Stdin)
	line, _ := reader.ReadString('\n')
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// runClock drives Tick once per second and stops as soon as the session
// leaves InProgress, so a stray tick can never fire a second auto-submit.
func (r *examRunner) runClock() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-r.done:
			return
		case <-ticker.C:
			r.mu.Lock()
			err := r.ctrl.Tick(context.Background())
			phase := r.ctrl.Phase()
			if phase == session.PhaseCompleted {
				r.renderResult()
			}
			r.mu.Unlock()

			if err != nil {
				fmt.Printf("\nAuto-submit failed: %v\nTime is up. Submit manually with 's'.\n", err)
			}
			if phase == session.PhaseCompleted {
				// Input reading is blocked on stdin; the session is over.
				os.Exit(0)
			}
			if phase != session.PhaseInProgress {
				return
			}
		}
	}
}

func (r *examRunner) loop() {
	reader := bufio.NewReader(os.Stdin)

	r.mu.Lock()
	r.renderQuestion()
	r.mu.Unlock()

	for {
		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			close(r.done)
			return
		}
		input := strings.ToLower(strings.TrimSpace(line))

		r.mu.Lock()
		quit := r.handle(input)
		r.mu.Unlock()

		if quit {
			close(r.done)
			return
		}
	}
}

// handle executes one command. Returns true when the runner should exit.
func (r *examRunner) handle(input string) bool {
	ctrl := r.ctrl
	exam := ctrl.Exam()

	switch {
	case input == "q":
		if ctrl.Phase() == session.PhaseInProgress {
			fmt.Println("Leaving without submitting. This attempt stays unscored.")
		}
		return true

	case input == "n":
		if err := ctrl.Navigate(ctrl.Current() + 1); err != nil {
			fmt.Println("Already at the last question.")
			return false
		}
		r.renderQuestion()

	case input == "p":
		if err := ctrl.Navigate(ctrl.Current() - 1); err != nil {
			fmt.Println("Already at the first question.")
			return false
		}
		r.renderQuestion()

	case strings.HasPrefix(input, "g "):
		n, err := strconv.Atoi(strings.TrimSpace(input[2:]))
		if err != nil || ctrl.Navigate(n-1) != nil {
			fmt.Printf("Enter a question number between 1 and %d.\n", len(exam.Questions))
			return false
		}
		r.renderQuestion()

	case input == "l":
		r.renderPalette()

	case input == "m":
		if q := ctrl.CurrentQuestion(); q != nil {
			ctrl.ToggleReview(q.ID)
			r.renderQuestion()
		}

	case input == "c":
		r.checkCurrent()

	case input == "s":
		if err := ctrl.Submit(context.Background(), false); err != nil {
			fmt.Printf("Submission failed. Please check your connection and retry: %v\n", err)
			return false
		}
		if ctrl.Phase() == session.PhaseCompleted {
			r.renderResult()
			return true
		}
		// Confirmation declined; carry on.

	case input == "" || input == "h":
		r.renderHelp()

	case len(input) == 1 && input[0] >= 'a' && input[0] <= 'z':
		r.selectOption(int(input[0] - 'a'))

	default:
		r.renderHelp()
	}
	return false
}

func (r *examRunner) selectOption(index int) {
	ctrl := r.ctrl
	q := ctrl.CurrentQuestion()
	if q == nil || index >= len(q.Options) {
		fmt.Println("No such option.")
		return
	}
	if _, graded := ctrl.Verdict(q.ID); graded {
		fmt.Println("This question is locked: its answer was already checked.")
		return
	}
	ctrl.SelectAnswer(q.ID, q.Options[index].ID)
	r.renderQuestion()
}

func (r *examRunner) checkCurrent() {
	ctrl := r.ctrl
	q := ctrl.CurrentQuestion()
	if q == nil {
		return
	}

	verdict, err := ctrl.CheckAnswer(context.Background(), q.ID)
	switch {
	case errors.Is(err, session.ErrNoSelection):
		fmt.Println("Select an option first.")
	case errors.Is(err, session.ErrNotPractice):
		fmt.Println("Answer checking is only available in practice quizzes.")
	case err != nil:
		fmt.Printf("Check failed, try again: %v\n", err)
	default:
		r.renderVerdict(q, verdict)
	}
}

func (r *examRunner) renderHelp() {
	fmt.Println("Commands: a-d select  n/p next/prev  g <n> goto  l palette  m mark  c check (practice)  s submit  q quit")
}

// renderPalette lists every question with its answered/marked status, like
// the side palette on the exam screen.
func (r *examRunner) renderPalette() {
	ctrl := r.ctrl
	for i, q := range ctrl.Exam().Questions {
		state := "unanswered"
		if _, ok := ctrl.Answer(q.ID); ok {
			state = "answered"
		}
		if ctrl.IsMarked(q.ID) {
			state += ", marked"
		}
		cursor := " "
		if i == ctrl.Current() {
			cursor = ">"
		}
		fmt.Printf(" %s %2d. %s\n", cursor, i+1, state)
	}
}

func (r *examRunner) renderQuestion() {
	ctrl := r.ctrl
	exam := ctrl.Exam()
	q := ctrl.CurrentQuestion()
	if q == nil {
		return
	}

	fmt.Printf("\n%s  |  %s  |  answered %d/%d\n",
		exam.Title, session.FormatTime(ctrl.TimeLeft()), ctrl.AnsweredCount(), len(exam.Questions))

	mark := ""
	if ctrl.IsMarked(q.ID) {
		mark = "  [review]"
	}
	fmt.Printf("\nQuestion %d / %d  (+%g marks)%s\n%s\n\n",
		ctrl.Current()+1, len(exam.Questions), q.Marks, mark, q.TextContent)

	chosen, _ := ctrl.Answer(q.ID)
	for i, opt := range q.Options {
		cursor := " "
		if opt.ID == chosen {
			cursor = "*"
		}
		fmt.Printf("  %s %c) %s\n", cursor, 'a'+i, opt.Text)
	}

	if verdict, ok := ctrl.Verdict(q.ID); ok {
		r.renderVerdict(q, &verdict)
	}
}

func (r *examRunner) renderVerdict(q *model.Question, verdict *model.AnswerVerdict) {
	if verdict.IsCorrect {
		fmt.Println("\nCorrect!")
	} else {
		correct := "?"
		for i, opt := range q.Options {
			if opt.ID == verdict.CorrectOptionID {
				correct = string(rune('a' + i))
			}
		}
		fmt.Printf("\nIncorrect. The right answer is %s).\n", correct)
	}
	if verdict.Explanation != "" {
		fmt.Printf("Explanation: %s\n", verdict.Explanation)
	}
}

func (r *examRunner) renderResult() {
	ctrl := r.ctrl
	result := ctrl.Result()
	if result == nil {
		return
	}

	headline := "Keep Practicing!"
	if ctrl.Passed() {
		headline = "Excellent Job!"
	}
	fmt.Printf("\n%s\nYour exam has been submitted.\nScore: %g / %g  (%d%%)\n",
		headline, result.Score, result.TotalMarks, ctrl.Percentage())
}
