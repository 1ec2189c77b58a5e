package models

import "time"

// ClassSubject is a subject taught to one class with a weekly hour target.
type ClassSubject struct {
	ID          string    `db:"id" json:"id"`
	ClassID     string    `db:"class_id" json:"class_id"`
	Name        string    `db:"name" json:"name"`
	WeeklyHours int       `db:"weekly_hours" json:"weekly_hours"`
	TeacherID   *string   `db:"teacher_id" json:"teacher_id,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// SubjectTeacher links a class subject to a teacher qualified to teach it.
type SubjectTeacher struct {
	ClassSubjectID string `db:"class_subject_id" json:"class_subject_id"`
	TeacherID      string `db:"teacher_id" json:"teacher_id"`
}

// ClassSubjectDetail extends ClassSubject with the qualification pool and
// the pre-assigned teacher's display name when present.
type ClassSubjectDetail struct {
	ClassSubject
	TeacherName         *string  `db:"teacher_name" json:"teacher_name,omitempty"`
	QualifiedTeacherIDs []string `db:"-" json:"qualified_teacher_ids"`
}
