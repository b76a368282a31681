package api

import (
	"context"
	"fmt"

	"github.com/bitbybit-prep/bitbybit-cli/internal/model"
)

// ListCourses returns the full course catalog with its nested subject →
// chapter → topic tree.
func (c *Client) ListCourses(ctx context.Context) ([]model.Course, error) {
	var courses []model.Course
	if err := c.get(ctx, "/courses/", &courses); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// GetCourse returns one course with its full nested tree.
func (c *Client) GetCourse(ctx context.Context, courseID int64) (*model.Course, error) {
	var course model.Course
	if err := c.get(ctx, fmt.Sprintf("/courses/%d/", courseID), &course); err != nil {
		return nil, fmt.Errorf("get course %d: %w", courseID, err)
	}
	return &course, nil
}

// GetTopic returns one topic including its study notes.
func (c *Client) GetTopic(ctx context.Context, topicID int64) (*model.Topic, error) {
	var topic model.Topic
	if err := c.get(ctx, fmt.Sprintf("/topics/%d/", topicID), &topic); err != nil {
		return nil, fmt.Errorf("get topic %d: %w", topicID, err)
	}
	return &topic, nil
}

// GetChapter returns one chapter including chapter-level study notes.
func (c *Client) GetChapter(ctx context.Context, chapterID int64) (*model.Chapter, error) {
	var chapter model.Chapter
	if err := c.get(ctx, fmt.Sprintf("/chapters/%d/", chapterID), &chapter); err != nil {
		return nil, fmt.Errorf("get chapter %d: %w", chapterID, err)
	}
	return &chapter, nil
}

// UpdateChapterNotes replaces a chapter's study notes (admin notes editor).
func (c *Client) UpdateChapterNotes(ctx context.Context, chapterID int64, notes string) error {
	body := map[string]string{"study_notes": notes}
	if err := c.patch(ctx, fmt.Sprintf("/chapters/%d/", chapterID), body, nil); err != nil {
		return fmt.Errorf("update chapter %d notes: %w", chapterID, err)
	}
	return nil
}

// ListHistory returns the authenticated user's attempt history, newest first.
func (c *Client) ListHistory(ctx context.Context) ([]model.AttemptRecord, error) {
	var records []model.AttemptRecord
	if err := c.get(ctx, "/history/", &records); err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return records, nil
}

// ListBanners returns active promotional banners.
func (c *Client) ListBanners(ctx context.Context) ([]model.Banner, error) {
	var banners []model.Banner
	if err := c.get(ctx, "/banners/", &banners); err != nil {
		return nil, fmt.Errorf("list banners: %w", err)
	}
	return banners, nil
}
