package api

import (
	"context"
	"fmt"

	"github.com/bitbybit-prep/bitbybit-cli/internal/model"
)

// FetchExam retrieves the full exam definition, questions and options
// included, correct answers withheld.
func (c *Client) FetchExam(ctx context.Context, examID int64) (*model.Exam, error) {
	var exam model.Exam
	if err := c.get(ctx, fmt.Sprintf("/exams/%d/", examID), &exam); err != nil {
		return nil, fmt.Errorf("fetch exam %d: %w", examID, err)
	}
	return &exam, nil
}

// StartAttempt opens a server-side attempt record and returns its ID.
func (c *Client) StartAttempt(ctx context.Context, examID int64) (*model.AttemptStart, error) {
	var start model.AttemptStart
	if err := c.post(ctx, fmt.Sprintf("/exams/%d/start_attempt/", examID), nil, &start); err != nil {
		return nil, fmt.Errorf("start attempt for exam %d: %w", examID, err)
	}
	return &start, nil
}

// CheckAnswer grades a single answer immediately. Only practice-type exams
// accept this call.
func (c *Client) CheckAnswer(ctx context.Context, examID, questionID, optionID int64) (*model.AnswerVerdict, error) {
	req := model.CheckAnswerRequest{QuestionID: questionID, OptionID: optionID}
	var verdict model.AnswerVerdict
	if err := c.post(ctx, fmt.Sprintf("/exams/%d/check_answer/", examID), req, &verdict); err != nil {
		return nil, fmt.Errorf("check answer: %w", err)
	}
	return &verdict, nil
}

// SubmitExam sends the complete answer map for scoring and ends the attempt.
func (c *Client) SubmitExam(ctx context.Context, examID, attemptID int64, answers model.AnswerMap) (*model.ExamResult, error) {
	req := model.SubmitExamRequest{AttemptID: attemptID, Answers: answers}
	var result model.ExamResult
	if err := c.post(ctx, fmt.Sprintf("/exams/%d/submit_exam/", examID), req, &result); err != nil {
		return nil, fmt.Errorf("submit exam %d: %w", examID, err)
	}
	return &result, nil
}
