package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/bitbybit-prep/bitbybit-cli/internal/auth"
	"github.com/bitbybit-prep/bitbybit-cli/internal/model"
)

func (a *app) cmdAdmin(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: bitbybit admin <generate|save-bulk|upload-questions|upload-notes|edit-notes>")
	}
	if err := auth.RequireSession(a.store); err != nil {
		return err
	}

	switch args[0] {
	case "edit-notes":
		return a.cmdEditNotes(args[1:])
	case "generate":
		return a.cmdGenerate(args[1:])
	case "save-bulk":
		return a.cmdSaveBulk(args[1:])
	case "upload-questions":
		return a.cmdUploadQuestions(args[1:])
	case "upload-notes":
		return a.cmdUploadNotes(args[1:])
	default:
		return fmt.Errorf("unknown admin command %q", args[0])
	}
}

// cmdEditNotes replaces a chapter's study notes with the contents of a
// markdown file.
func (a *app) cmdEditNotes(args []string) error {
	if len(args) != 2 {
		return errors.New("usage: bitbybit admin edit-notes <chapter_id> <notes.md>")
	}
	chapterID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid chapter id %q", args[0])
	}
	notes, err := os.ReadFile(args[1])
	if err != nil {
		return err
	}

	if err := a.client.UpdateChapterNotes(context.Background(), chapterID, string(notes)); err != nil {
		return err
	}
	fmt.Printf("Notes updated for chapter %d.\n", chapterID)
	return nil
}

func (a *app) cmdGenerate(args []string) error {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	sourceType := fs.String("source-type", "chapter", "course, subject or chapter")
	sourceID := fs.Int64("source-id", 0, "catalog id of the source")
	count := fs.Int("count", 5, "number of questions to draft")
	difficulty := fs.String("difficulty", "medium", "easy, medium or hard")
	instructions := fs.String("instructions", "", "extra drafting instructions")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *sourceID == 0 {
		return errors.New("generate: --source-id is required")
	}

	drafts, err := a.client.GenerateQuestions(context.Background(), model.GenerateRequest{
		SourceType:         *sourceType,
		SourceID:           *sourceID,
		NumQuestions:       *count,
		Difficulty:         *difficulty,
		CustomInstructions: *instructions,
	})
	if err != nil {
		return err
	}

	for i, d := range drafts {
		fmt.Printf("%d. %s  (+%g marks)\n", i+1, d.QuestionText, d.Marks)
		for j, opt := range d.Options {
			cursor := " "
			if j == d.CorrectIndex {
				cursor = "*"
			}
			fmt.Printf("   %s %c) %s\n", cursor, 'a'+j, opt)
		}
		if d.Explanation != "" {
			fmt.Printf("   Explanation: %s\n", d.Explanation)
		}
	}
	fmt.Printf("\n%d draft(s). Save them with: bitbybit admin save-bulk\n", len(drafts))
	return nil
}

func (a *app) cmdSaveBulk(args []string) error {
	fs := flag.NewFlagSet("save-bulk", flag.ContinueOnError)
	examID := fs.Int64("exam-id", 0, "existing exam to replace questions in")
	newTitle := fs.String("new-title", "", "create a new exam with this title")
	sourceType := fs.String("source-type", "chapter", "course, subject or chapter")
	sourceID := fs.Int64("source-id", 0, "catalog id of the source")
	count := fs.Int("count", 5, "number of questions to draft")
	difficulty := fs.String("difficulty", "medium", "easy, medium or hard")
	duration := fs.Int("duration", 30, "exam duration in minutes")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if (*examID == 0) == (*newTitle == "") {
		return errors.New("save-bulk: pass exactly one of --exam-id or --new-title")
	}
	if *sourceID == 0 {
		return errors.New("save-bulk: --source-id is required")
	}

	// Re-generate server side, then persist: the CLI has no draft editor,
	// so generate and save run as one pipeline.
	drafts, err := a.client.GenerateQuestions(context.Background(), model.GenerateRequest{
		SourceType:   *sourceType,
		SourceID:     *sourceID,
		NumQuestions: *count,
		Difficulty:   *difficulty,
	})
	if err != nil {
		return err
	}

	req := model.SaveBulkRequest{
		SourceType: *sourceType,
		SourceID:   *sourceID,
		Questions:  drafts,
		Duration:   *duration,
	}
	if *examID != 0 {
		req.ExamID = examID
	} else {
		req.NewExamTitle = newTitle
	}

	result, err := a.client.SaveBulk(context.Background(), req)
	if err != nil {
		return err
	}
	fmt.Printf("%s (exam %d)\n", result.Message, result.ExamID)
	return nil
}

func (a *app) cmdUploadQuestions(args []string) error {
	fs := flag.NewFlagSet("upload-questions", flag.ContinueOnError)
	examID := fs.Int64("exam-id", 0, "existing exam to append questions to")
	newTitle := fs.String("new-title", "", "create a new exam with this title")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: bitbybit admin upload-questions [--exam-id N | --new-title T] <file.csv>")
	}
	if (*examID == 0) == (*newTitle == "") {
		return errors.New("upload-questions: pass exactly one of --exam-id or --new-title")
	}

	path := fs.Arg(0)
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var target *int64
	if *examID != 0 {
		target = examID
	}
	result, err := a.client.UploadQuestionsCSV(context.Background(), target, *newTitle, filepath.Base(path), f)
	if err != nil {
		return err
	}
	fmt.Printf("%s (%d question(s) added)\n", result.Message, result.Added)
	return nil
}

func (a *app) cmdUploadNotes(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: bitbybit admin upload-notes <file.csv>")
	}

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	result, err := a.client.UploadNotesCSV(context.Background(), filepath.Base(args[0]), f)
	if err != nil {
		return err
	}
	fmt.Printf("%s (%d chapter(s) updated)\n", result.Message, result.Added)
	return nil
}
