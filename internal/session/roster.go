package session

import "live-polling-service/internal/domain"

// Roster tracks connected students in insertion order. It is a pure
// state holder; the Coordinator owns it and broadcasts changes.
type Roster struct {
	students []*domain.Student
}

func NewRoster() *Roster {
	return &Roster{}
}

// Admit registers a student. A duplicate display name rebinds the
// existing record to the new connection instead of creating a second
// entry, so a page reload keeps the student's place in the roster.
func (r *Roster) Admit(name, connID string) domain.Student {
	for _, s := range r.students {
		if s.Name == name {
			s.ConnID = connID
			return *s
		}
	}
	s := &domain.Student{ConnID: connID, Name: name}
	r.students = append(r.students, s)
	return *s
}

// Remove drops the student bound to connID. No-op if absent.
func (r *Roster) Remove(connID string) {
	for i, s := range r.students {
		if s.ConnID == connID {
			r.students = append(r.students[:i], r.students[i+1:]...)
			return
		}
	}
}

// Kick removes the student and reports the display name so the caller
// can purge scores and in-flight answers.
func (r *Roster) Kick(connID string) (string, bool) {
	for i, s := range r.students {
		if s.ConnID == connID {
			name := s.Name
			r.students = append(r.students[:i], r.students[i+1:]...)
			return name, true
		}
	}
	return "", false
}

// List returns a snapshot in insertion order.
func (r *Roster) List() []domain.Student {
	out := make([]domain.Student, 0, len(r.students))
	for _, s := range r.students {
		out = append(out, *s)
	}
	return out
}

// Len reports the number of connected students.
func (r *Roster) Len() int {
	return len(r.students)
}
