package dto

// ClassQuery filters the class listing.
type ClassQuery struct {
	Search string `form:"search" json:"search"`
	Grade  string `form:"grade" json:"grade"`
	Page   int    `form:"page" json:"page"`
	Size   int    `form:"size" json:"size"`
}

// ClassSubjectItem is one row of a class's subject plan, including the
// assigned teacher's display name and the ids of everyone qualified to
// cover the subject.
type ClassSubjectItem struct {
	ID                  string   `json:"id"`
	Name                string   `json:"name"`
	WeeklyHours         int      `json:"weeklyHours"`
	TeacherID           *string  `json:"teacherId,omitempty"`
	TeacherName         *string  `json:"teacherName,omitempty"`
	QualifiedTeacherIDs []string `json:"qualifiedTeacherIds"`
}
