package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/bitbybit-prep/bitbybit-cli/internal/auth"
	"github.com/bitbybit-prep/bitbybit-cli/internal/model"
)

func (a *app) cmdCourses(args []string) error {
	ctx := context.Background()

	var courses []model.Course
	if len(args) == 1 {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid course id %q", args[0])
		}
		course, err := a.client.GetCourse(ctx, id)
		if err != nil {
			return err
		}
		courses = []model.Course{*course}
	} else {
		// The landing surface shows banners above the catalog.
		if banners, err := a.client.ListBanners(ctx); err == nil {
			for _, b := range banners {
				if b.Active {
					fmt.Printf("** %s -> %s\n", b.Title, b.TargetURL)
				}
			}
		}

		var err error
		courses, err = a.client.ListCourses(ctx)
		if err != nil {
			return err
		}
	}

	for _, course := range courses {
		paid := ""
		if course.IsPaid {
			paid = " [premium]"
		}
		fmt.Printf("Course %d: %s%s\n", course.ID, course.Title, paid)
		for _, subject := range course.Subjects {
			fmt.Printf("  Subject %d: %s\n", subject.ID, subject.Title)
			for _, chapter := range subject.Chapters {
				fmt.Printf("    Chapter %d: %s\n", chapter.ID, chapter.Title)
				for _, topic := range chapter.Topics {
					quiz := ""
					if topic.QuizID != nil {
						quiz = fmt.Sprintf(" (quiz: exam %d)", *topic.QuizID)
					}
					fmt.Printf("      Topic %d: %s%s\n", topic.ID, topic.Title, quiz)
				}
			}
		}
	}
	return nil
}

func (a *app) cmdNotes(args []string) error {
	if len(args) != 2 {
		return errors.New("usage: bitbybit notes <topic|chapter> <id>")
	}
	if err := auth.RequireSession(a.store); err != nil {
		return err
	}

	id, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %q", args[1])
	}

	ctx := context.Background()
	switch args[0] {
	case "topic":
		topic, err := a.client.GetTopic(ctx, id)
		if err != nil {
			return err
		}
		fmt.Printf("# %s\n\n%s\n", topic.Title, topic.StudyNotes)
		if topic.QuizID != nil {
			fmt.Printf("\nPractice quiz available: bitbybit exam %d\n", *topic.QuizID)
		}
	case "chapter":
		chapter, err := a.client.GetChapter(ctx, id)
		if err != nil {
			return err
		}
		fmt.Printf("# %s\n\n%s\n", chapter.Title, chapter.StudyNotes)
	default:
		return errors.New("usage: bitbybit notes <topic|chapter> <id>")
	}
	return nil
}

func (a *app) cmdHistory() error {
	if err := auth.RequireSession(a.store); err != nil {
		return err
	}

	records, err := a.client.ListHistory(context.Background())
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No attempts yet.")
		return nil
	}

	passed := 0
	var sum float64
	for _, r := range records {
		status := "in progress"
		if r.IsCompleted {
			status = fmt.Sprintf("%.1f / %d", r.TotalScore, r.ExamTotalMarks)
		}
		fmt.Printf("%s  %-40s %s\n", r.StartTime.Format("2006-01-02 15:04"), r.ExamTitle, status)

		if r.IsCompleted && r.ExamTotalMarks > 0 {
			pct := r.TotalScore / float64(r.ExamTotalMarks) * 100
			if int(pct+0.5) >= a.cfg.PassThresholdPct {
				passed++
			}
			sum += r.TotalScore
		}
	}
	fmt.Printf("\nAttempts: %d  Passed: %d  Avg score: %.1f\n",
		len(records), passed, sum/float64(len(records)))
	return nil
}
