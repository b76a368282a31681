package stub

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bitbybit-prep/bitbybit-cli/internal/model"
	"github.com/bitbybit-prep/bitbybit-cli/internal/validator"
)

func (s *Server) listCourses(c *gin.Context) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	c.JSON(http.StatusOK, s.store.courses)
}

func (s *Server) listBanners(c *gin.Context) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	c.JSON(http.StatusOK, s.store.banners)
}

func (s *Server) getCourse(c *gin.Context) {
	courseID, ok := pathID(c, "course_id")
	if !ok {
		return
	}
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	for i := range s.store.courses {
		if s.store.courses[i].ID == courseID {
			c.JSON(http.StatusOK, s.store.courses[i])
			return
		}
	}
	fail(c, http.StatusNotFound, "course not found")
}

func (s *Server) getTopic(c *gin.Context) {
	topicID, ok := pathID(c, "topic_id")
	if !ok {
		return
	}
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	topic := s.store.topics[topicID]
	if topic == nil {
		fail(c, http.StatusNotFound, "topic not found")
		return
	}
	c.JSON(http.StatusOK, topic)
}

func (s *Server) getChapter(c *gin.Context) {
	chapterID, ok := pathID(c, "chapter_id")
	if !ok {
		return
	}
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	chapter := s.store.chapters[chapterID]
	if chapter == nil {
		fail(c, http.StatusNotFound, "chapter not found")
		return
	}
	c.JSON(http.StatusOK, chapter)
}

func (s *Server) updateChapter(c *gin.Context) {
	chapterID, ok := pathID(c, "chapter_id")
	if !ok {
		return
	}

	var req struct {
		StudyNotes string `json:"study_notes"`
	}
	if fields := validator.Bind(c, &req); fields != nil {
		c.JSON(http.StatusBadRequest, fields)
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	chapter := s.store.chapters[chapterID]
	if chapter == nil {
		fail(c, http.StatusNotFound, "chapter not found")
		return
	}
	chapter.StudyNotes = req.StudyNotes
	c.JSON(http.StatusOK, chapter)
}

func (s *Server) listHistory(c *gin.Context) {
	records := s.store.historyFor(currentUser(c))
	if records == nil {
		records = []model.AttemptRecord{}
	}
	c.JSON(http.StatusOK, records)
}
