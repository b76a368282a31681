package stub

import (
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/bitbybit-prep/bitbybit-cli/internal/model"
)

// stubUser is a seeded account.
type stubUser struct {
	model.User
	PasswordHash string
}

// stubExam pairs the public exam payload with the grading data the real
// backend keeps server-side: correct option per question, explanations,
// and the negative marking ratio.
type stubExam struct {
	model.Exam
	Correct       map[int64]int64
	Explanations  map[int64]string
	NegativeRatio float64
}

// attempt mirrors the backend's attempt record.
type attempt struct {
	ID        int64
	UserID    int64
	ExamID    int64
	StartTime time.Time
	Score     float64
	Completed bool
}

// store is the in-memory state behind the stub API. Unlike the session
// controller, the store is hit by concurrent HTTP handlers and needs a lock.
type store struct {
	mu sync.Mutex

	users    map[int64]*stubUser
	byName   map[string]*stubUser
	courses  []model.Course
	chapters map[int64]*model.Chapter
	topics   map[int64]*model.Topic
	exams    map[int64]*stubExam
	attempts map[int64]*attempt
	banners  []model.Banner

	nextID int64
}

func newStore(bcryptCost int) *store {
	s := &store{
		users:    map[int64]*stubUser{},
		byName:   map[string]*stubUser{},
		chapters: map[int64]*model.Chapter{},
		topics:   map[int64]*model.Topic{},
		exams:    map[int64]*stubExam{},
		attempts: map[int64]*attempt{},
		nextID:   1000,
	}
	s.seed(bcryptCost)
	return s
}

func (s *store) id() int64 {
	s.nextID++
	return s.nextID
}

// seed loads a small deterministic fixture set: two accounts, one course
// tree, a practice quiz and a timed mock.
func (s *store) seed(bcryptCost int) {
	addUser := func(id int64, username, email, password string, staff bool) {
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
		u := &stubUser{
			User: model.User{
				ID:       id,
				Username: username,
				Email:    email,
				IsStaff:  staff,
			},
			PasswordHash: string(hash),
		}
		s.users[id] = u
		s.byName[username] = u
	}
	addUser(1, "student", "student@example.com", "student123", false)
	addUser(2, "admin", "admin@example.com", "admin123", true)

	quiz := &stubExam{
		Exam: model.Exam{
			ID:              301,
			Title:           "Process Management Quiz",
			ExamType:        model.ExamTypeTopicQuiz,
			DurationMinutes: 10,
			TotalMarks:      6,
		},
		Correct:       map[int64]int64{},
		Explanations:  map[int64]string{},
		NegativeRatio: 0,
	}
	mock := &stubExam{
		Exam: model.Exam{
			ID:              302,
			Title:           "Operating Systems Mock Test",
			ExamType:        model.ExamTypeMockFull,
			DurationMinutes: 30,
			TotalMarks:      6,
		},
		Correct:       map[int64]int64{},
		Explanations:  map[int64]string{},
		NegativeRatio: 0.25,
	}

	questions := []struct {
		text        string
		options     [4]string
		correct     int
		explanation string
	}{
		{
			"Which scheduling algorithm can cause starvation?",
			[4]string{"Round Robin", "FCFS", "Priority Scheduling", "Multilevel Feedback"},
			2,
			"Low-priority processes may wait indefinitely under pure priority scheduling.",
		},
		{
			"A process in the waiting state moves to ready when:",
			[4]string{"Its time slice expires", "Its I/O completes", "It is created", "It terminates"},
			1,
			"Completion of the awaited event makes the process runnable again.",
		},
		{
			"Which of these is NOT shared between threads of a process?",
			[4]string{"Heap", "Global variables", "Stack", "Open file descriptors"},
			2,
			"Each thread keeps its own stack; the rest of the address space is shared.",
		},
	}

	for _, ex := range []*stubExam{quiz, mock} {
		for _, qs := range questions {
			qID := s.id()
			q := model.Question{ID: qID, TextContent: qs.text, Marks: 2}
			for i, label := range qs.options {
				optID := s.id()
				q.Options = append(q.Options, model.Option{ID: optID, Text: label})
				if i == qs.correct {
					ex.Correct[qID] = optID
				}
			}
			ex.Explanations[qID] = qs.explanation
			ex.Questions = append(ex.Questions, q)
		}
		s.exams[ex.ID] = ex
	}

	topicQuizID := quiz.ID
	topic := model.Topic{
		ID:         201,
		Title:      "Process Management",
		Order:      1,
		StudyNotes: "# Process Management\n\nA process is a program in execution...",
		QuizID:     &topicQuizID,
	}
	chapter := model.Chapter{
		ID:     101,
		Title:  "Processes and Threads",
		Order:  1,
		Topics: []model.Topic{topic},
	}
	s.topics[topic.ID] = &topic
	s.chapters[chapter.ID] = &chapter
	s.courses = []model.Course{
		{
			ID:          11,
			Title:       "Computer Science",
			Description: "GATE CS preparation track",
			Subjects: []model.Subject{
				{ID: 51, Title: "Operating System", Order: 1, Chapters: []model.Chapter{chapter}},
			},
		},
	}

	s.banners = []model.Banner{
		{ID: 1, Title: "Mock test season", ImageURL: "/static/banners/mock.png", TargetURL: "/courses", Active: true},
	}
}

func (s *store) userByName(username string) *stubUser {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.byName[username]
}

func (s *store) user(id int64) *stubUser {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[id]
}

func (s *store) exam(id int64) *stubExam {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exams[id]
}

func (s *store) startAttempt(userID, examID int64) *attempt {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := &attempt{
		ID:        s.id(),
		UserID:    userID,
		ExamID:    examID,
		StartTime: time.Now().UTC(),
	}
	s.attempts[a.ID] = a
	return a
}

func (s *store) attempt(id int64) *attempt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts[id]
}

// addQuestionLocked materializes a draft into exam questions and grading
// maps. Caller holds s.mu.
func (s *store) addQuestionLocked(exam *stubExam, d model.DraftQuestion) {
	text := d.QuestionText
	if d.ImageURL != "" {
		text += "\n\n![Diagram](" + d.ImageURL + ")"
	}

	q := model.Question{ID: s.id(), TextContent: text, Marks: d.Marks}
	for i, label := range d.Options {
		opt := model.Option{ID: s.id(), Text: label}
		q.Options = append(q.Options, opt)
		if i == d.CorrectIndex {
			exam.Correct[q.ID] = opt.ID
		}
	}
	exam.Explanations[q.ID] = d.Explanation
	exam.Questions = append(exam.Questions, q)
}

// retotalLocked recomputes the exam's total marks. Caller holds s.mu.
func (s *store) retotalLocked(exam *stubExam) {
	total := 0.0
	for _, q := range exam.Questions {
		total += q.Marks
	}
	exam.TotalMarks = int(total)
}

// upsertChapterNotesLocked writes chapter notes, creating missing course,
// subject and chapter nodes on the way. Caller holds s.mu.
func (s *store) upsertChapterNotesLocked(courseTitle, subjectTitle, chapterTitle, notes string) {
	var course *model.Course
	for i := range s.courses {
		if s.courses[i].Title == courseTitle {
			course = &s.courses[i]
			break
		}
	}
	if course == nil {
		s.courses = append(s.courses, model.Course{ID: s.id(), Title: courseTitle})
		course = &s.courses[len(s.courses)-1]
	}

	var subject *model.Subject
	for i := range course.Subjects {
		if course.Subjects[i].Title == subjectTitle {
			subject = &course.Subjects[i]
			break
		}
	}
	if subject == nil {
		course.Subjects = append(course.Subjects, model.Subject{
			ID:    s.id(),
			Title: subjectTitle,
			Order: len(course.Subjects) + 1,
		})
		subject = &course.Subjects[len(course.Subjects)-1]
	}

	for i := range subject.Chapters {
		if subject.Chapters[i].Title == chapterTitle {
			subject.Chapters[i].StudyNotes = notes
			if stored := s.chapters[subject.Chapters[i].ID]; stored != nil {
				stored.StudyNotes = notes
			}
			return
		}
	}

	chapter := model.Chapter{
		ID:         s.id(),
		Title:      chapterTitle,
		Order:      len(subject.Chapters) + 1,
		StudyNotes: notes,
	}
	subject.Chapters = append(subject.Chapters, chapter)
	s.chapters[chapter.ID] = &chapter
}

func (s *store) historyFor(userID int64) []model.AttemptRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	var records []model.AttemptRecord
	for _, a := range s.attempts {
		if a.UserID != userID {
			continue
		}
		exam := s.exams[a.ExamID]
		if exam == nil {
			continue
		}
		records = append(records, model.AttemptRecord{
			ID:             a.ID,
			ExamTitle:      exam.Title,
			StartTime:      a.StartTime,
			TotalScore:     a.Score,
			ExamTotalMarks: exam.TotalMarks,
			IsCompleted:    a.Completed,
		})
	}
	// Newest first, matching the backend ordering.
	for i := 0; i < len(records); i++ {
		for j := i + 1; j < len(records); j++ {
			if records[j].StartTime.After(records[i].StartTime) {
				records[i], records[j] = records[j], records[i]
			}
		}
	}
	return records
}
