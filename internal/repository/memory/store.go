// Package memory keeps the whole data set in process memory. It backs the
// "memory" database driver and the service tests.
//
// Ownership is explicit: a genre owns question ids and a question owns
// choice ids, and deletes walk those indexes instead of relying on
// foreign-key cascades.
package memory

import (
	"sync"
	"time"

	"github.com/yourusername/quizbank-api/internal/domain/entity"
)

// Store is the shared state behind the memory repositories.
type Store struct {
	mu sync.RWMutex

	genres    map[string]entity.Genre
	questions map[string]entity.Question
	choices   map[string]entity.Choice
	users     map[uint]entity.User

	genreQuestions  map[string]map[string]struct{}
	questionChoices map[string]map[string]struct{}

	attempts []entity.UserAttempt
	sessions []entity.QuizSession
	progress []entity.UserProgress

	nextUserID uint
	now        func() time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		genres:          make(map[string]entity.Genre),
		questions:       make(map[string]entity.Question),
		choices:         make(map[string]entity.Choice),
		users:           make(map[uint]entity.User),
		genreQuestions:  make(map[string]map[string]struct{}),
		questionChoices: make(map[string]map[string]struct{}),
		nextUserID:      1,
		now:             time.Now,
	}
}

// SetClock overrides the time source used for timestamps.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// AddAttempt records learner activity. The memory driver has no quiz flow,
// so tests and fixtures seed activity through these helpers.
func (s *Store) AddAttempt(a entity.UserAttempt) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = uint(len(s.attempts) + 1)
	s.attempts = append(s.attempts, a)
}

// AddSession records a quiz session.
func (s *Store) AddSession(qs entity.QuizSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	qs.ID = uint(len(s.sessions) + 1)
	s.sessions = append(s.sessions, qs)
}

// AddProgress records a per-genre tally.
func (s *Store) AddProgress(p entity.UserProgress) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = uint(len(s.progress) + 1)
	s.progress = append(s.progress, p)
}

func link(index map[string]map[string]struct{}, parent, child string) {
	set, ok := index[parent]
	if !ok {
		set = make(map[string]struct{})
		index[parent] = set
	}
	set[child] = struct{}{}
}

func unlink(index map[string]map[string]struct{}, parent, child string) {
	if set, ok := index[parent]; ok {
		delete(set, child)
		if len(set) == 0 {
			delete(index, parent)
		}
	}
}

// deleteQuestionLocked removes a question with its choices and attempts.
func (s *Store) deleteQuestionLocked(id string) bool {
	q, ok := s.questions[id]
	if !ok {
		return false
	}
	s.deleteChoicesLocked(id)
	unlink(s.genreQuestions, q.GenreID, id)
	kept := s.attempts[:0]
	for _, a := range s.attempts {
		if a.QuestionID != id {
			kept = append(kept, a)
		}
	}
	s.attempts = kept
	delete(s.questions, id)
	return true
}

func (s *Store) deleteChoicesLocked(questionID string) {
	for cid := range s.questionChoices[questionID] {
		delete(s.choices, cid)
	}
	delete(s.questionChoices, questionID)
}

func (s *Store) insertChoicesLocked(questionID string, choices []entity.Choice) {
	now := s.now()
	for _, c := range choices {
		c.QuestionID = questionID
		if c.CreatedAt.IsZero() {
			c.CreatedAt = now
		}
		s.choices[c.ID] = c
		link(s.questionChoices, questionID, c.ID)
	}
}

// hydrateLocked returns a copy of q with genre, author and choices attached.
func (s *Store) hydrateLocked(q entity.Question) entity.Question {
	if g, ok := s.genres[q.GenreID]; ok {
		g := g
		q.Genre = &g
	}
	q.Author = nil
	if q.AuthorID != nil {
		if u, ok := s.users[*q.AuthorID]; ok {
			u := u
			q.Author = &u
		}
	}
	q.Choices = make([]entity.Choice, 0, len(s.questionChoices[q.ID]))
	for cid := range s.questionChoices[q.ID] {
		q.Choices = append(q.Choices, s.choices[cid])
	}
	q.Choices = sortChoices(q.Choices)
	return q
}
