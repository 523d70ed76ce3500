package schedule

import "strings"

// HasConflict reports whether the candidate overlaps any session of the given classes.
// Windows are half-open: a session ending at 09:30 does not conflict with one starting at 09:30.
// Classes are not excluded, callers drop the candidate's own class when it matters.
func HasConflict(candidate Session, classes []ClassSchedule) bool {
	_, found := FindConflict(candidate, classes)
	return found
}

// FindConflict returns the first session overlapping the candidate.
// Input is expected to be validated; sessions whose times cannot be parsed never match.
func FindConflict(candidate Session, classes []ClassSchedule) (Conflict, bool) {
	cStart, cEnd, err := candidate.Window()
	if err != nil {
		return Conflict{}, false
	}
	for _, class := range classes {
		for _, sess := range class.Sessions {
			if sess.DayOfWeek != candidate.DayOfWeek {
				continue
			}
			start, end, err := sess.Window()
			if err != nil {
				continue
			}
			if cStart < end && cEnd > start {
				return Conflict{ClassID: class.ID, ClassName: class.Name, Session: sess}, true
			}
		}
	}
	return Conflict{}, false
}

// Overlaps reports whether two sessions conflict.
func Overlaps(a, b Session) bool {
	return HasConflict(a, []ClassSchedule{{Sessions: []Session{b}}})
}

// Registry is the set of classes a candidate session is checked against.
// It is an immutable value: With and Without return new registries.
type Registry struct {
	classes []ClassSchedule
}

func NewRegistry(classes ...ClassSchedule) Registry {
	cp := make([]ClassSchedule, len(classes))
	copy(cp, classes)
	return Registry{classes: cp}
}

func (r Registry) Classes() []ClassSchedule {
	cp := make([]ClassSchedule, len(r.classes))
	copy(cp, r.classes)
	return cp
}

func (r Registry) Len() int { return len(r.classes) }

func (r Registry) With(class ClassSchedule) Registry {
	classes := make([]ClassSchedule, 0, len(r.classes)+1)
	classes = append(classes, r.classes...)
	classes = append(classes, class)
	return Registry{classes: classes}
}

// Without returns the registry minus the class with the given ID.
func (r Registry) Without(id string) Registry {
	classes := make([]ClassSchedule, 0, len(r.classes))
	for _, c := range r.classes {
		if id != "" && c.ID == id {
			continue
		}
		classes = append(classes, c)
	}
	return Registry{classes: classes}
}

func (r Registry) HasConflict(candidate Session) bool {
	return HasConflict(candidate, r.classes)
}

func (r Registry) FindConflict(candidate Session) (Conflict, bool) {
	return FindConflict(candidate, r.classes)
}

// HasName reports whether a class is already named name, ignoring case.
func (r Registry) HasName(name string) bool {
	for _, c := range r.classes {
		if strings.EqualFold(c.Name, name) {
			return true
		}
	}
	return false
}
