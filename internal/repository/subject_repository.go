package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/teachflow/teachflow-api/internal/models"
)

// SubjectRepository manages persistence for class subjects and their
// qualification links.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository constructs a SubjectRepository.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// ListByClass returns the subject plan for one class, each row carrying the
// assigned teacher's name and the full qualification pool.
func (r *SubjectRepository) ListByClass(ctx context.Context, classID string) ([]models.ClassSubjectDetail, error) {
	const query = `SELECT cs.id, cs.class_id, cs.name, cs.weekly_hours, cs.teacher_id, cs.created_at, t.full_name AS teacher_name
		FROM class_subjects cs
		LEFT JOIN teachers t ON t.id = cs.teacher_id
		WHERE cs.class_id = $1
		ORDER BY cs.name ASC`
	var subjects []models.ClassSubjectDetail
	if err := r.db.SelectContext(ctx, &subjects, query, classID); err != nil {
		return nil, fmt.Errorf("list class subjects: %w", err)
	}
	if len(subjects) == 0 {
		return subjects, nil
	}

	pools, err := r.qualificationPools(ctx, classID)
	if err != nil {
		return nil, err
	}
	for i := range subjects {
		subject := &subjects[i]
		subject.QualifiedTeacherIDs = pools[subject.ID]
		// A directly assigned teacher always belongs to the pool.
		if subject.TeacherID != nil && !containsID(subject.QualifiedTeacherIDs, *subject.TeacherID) {
			subject.QualifiedTeacherIDs = append(subject.QualifiedTeacherIDs, *subject.TeacherID)
		}
	}
	return subjects, nil
}

// qualificationPools loads the subject_teachers links for every subject of
// the class, grouped by class subject id.
func (r *SubjectRepository) qualificationPools(ctx context.Context, classID string) (map[string][]string, error) {
	const query = `SELECT st.class_subject_id, st.teacher_id
		FROM subject_teachers st
		JOIN class_subjects cs ON cs.id = st.class_subject_id
		JOIN teachers t ON t.id = st.teacher_id
		WHERE cs.class_id = $1 AND t.active = TRUE
		ORDER BY st.class_subject_id, st.teacher_id`
	var links []models.SubjectTeacher
	if err := r.db.SelectContext(ctx, &links, query, classID); err != nil {
		return nil, fmt.Errorf("list subject qualification pools: %w", err)
	}

	pools := make(map[string][]string, len(links))
	for _, link := range links {
		pools[link.ClassSubjectID] = append(pools[link.ClassSubjectID], link.TeacherID)
	}
	return pools, nil
}

func containsID(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
