package api

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/bitbybit-prep/bitbybit-cli/internal/model"
)

// GenerateQuestions asks the backend's question generator for drafts.
func (c *Client) GenerateQuestions(ctx context.Context, req model.GenerateRequest) ([]model.DraftQuestion, error) {
	var drafts []model.DraftQuestion
	if err := c.post(ctx, "/ai-generator/generate/", req, &drafts); err != nil {
		return nil, fmt.Errorf("generate questions: %w", err)
	}
	return drafts, nil
}

// SaveBulk persists drafted questions into an exam.
func (c *Client) SaveBulk(ctx context.Context, req model.SaveBulkRequest) (*model.SaveBulkResult, error) {
	var result model.SaveBulkResult
	if err := c.post(ctx, "/ai-generator/save_bulk/", req, &result); err != nil {
		return nil, fmt.Errorf("save bulk: %w", err)
	}
	return &result, nil
}

// UploadQuestionsCSV imports questions from a CSV file into an existing
// exam (examID set) or a new one (newExamTitle set).
func (c *Client) UploadQuestionsCSV(ctx context.Context, examID *int64, newExamTitle, filename string, file io.Reader) (*model.CSVUploadResult, error) {
	fields := map[string]string{}
	if examID != nil {
		fields["exam_id"] = strconv.FormatInt(*examID, 10)
	}
	if newExamTitle != "" {
		fields["new_exam_title"] = newExamTitle
	}

	var result model.CSVUploadResult
	if err := c.postMultipart(ctx, "/ai-generator/upload_questions_csv/", fields, "file", filename, file, &result); err != nil {
		return nil, fmt.Errorf("upload questions csv: %w", err)
	}
	return &result, nil
}

// UploadNotesCSV bulk-imports chapter study notes from a CSV file with
// Course,Subject,Chapter,Notes columns.
func (c *Client) UploadNotesCSV(ctx context.Context, filename string, file io.Reader) (*model.CSVUploadResult, error) {
	var result model.CSVUploadResult
	if err := c.postMultipart(ctx, "/bulk-notes/upload_csv/", nil, "file", filename, file, &result); err != nil {
		return nil, fmt.Errorf("upload notes csv: %w", err)
	}
	return &result, nil
}
