package timetable

import "sync"

type occupancyKey struct {
	TeacherID string
	Day       string
	Period    int
}

// Occupancy is the cross-class reservation table: it records which teacher
// is committed where, across every class scheduled by this instance, so
// concurrent builds cannot double-book anyone. All methods are safe for
// concurrent use.
type Occupancy struct {
	mu   sync.Mutex
	busy map[occupancyKey]string // value: owning class id
}

// NewOccupancy returns an empty reservation table.
func NewOccupancy() *Occupancy {
	return &Occupancy{busy: make(map[occupancyKey]string)}
}

// Reserve claims (teacher, day, period) for classID. It reports false when
// another class already holds the slot; re-reserving for the same class is
// a no-op that succeeds.
func (o *Occupancy) Reserve(teacherID, day string, period int, classID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	key := occupancyKey{TeacherID: teacherID, Day: day, Period: period}
	if owner, exists := o.busy[key]; exists {
		return owner == classID
	}
	o.busy[key] = classID
	return true
}

// Busy reports whether any class other than classID holds the slot.
func (o *Occupancy) Busy(teacherID, day string, period int, classID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	owner, exists := o.busy[occupancyKey{TeacherID: teacherID, Day: day, Period: period}]
	return exists && owner != classID
}

// Release frees a single slot regardless of owner.
func (o *Occupancy) Release(teacherID, day string, period int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.busy, occupancyKey{TeacherID: teacherID, Day: day, Period: period})
}

// ReleaseClass drops every reservation held by classID. Called before a
// rebuild so stale placements do not block their own replacement.
func (o *Occupancy) ReleaseClass(classID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for key, owner := range o.busy {
		if owner == classID {
			delete(o.busy, key)
		}
	}
}

// Len returns the number of live reservations.
func (o *Occupancy) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.busy)
}
