package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/hocdan/guitarschool/core"
	"github.com/hocdan/guitarschool/core/schedule"
)

type classRepository struct {
	db *classTable
}

var _ schedule.Repository = (*classRepository)(nil) // interface compliance check

func NewClassRepository(db *DB) schedule.Repository {
	return &classRepository{db: db.class}
}

func cloneClass(c schedule.ClassSchedule) schedule.ClassSchedule {
	c.Sessions = append([]schedule.Session(nil), c.Sessions...)
	return c
}

func (repo *classRepository) CreateClass(_ context.Context, class schedule.ClassSchedule) (schedule.ClassSchedule, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	class = cloneClass(class)
	class.ID = uuid.NewString()
	repo.db.table[class.ID] = &class
	return cloneClass(class), nil
}

func (repo *classRepository) QueryClasses(
	_ context.Context,
	filter *schedule.QueryFilter,
	ordering []core.DBOrdering,
) ([]schedule.ClassSchedule, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	classes := make([]schedule.ClassSchedule, 0, len(repo.db.table))
	for _, c := range repo.db.table {
		if filter == nil || filter.Match(*c) {
			classes = append(classes, cloneClass(*c))
		}
	}
	sortClasses(classes, ordering)
	return classes, nil
}

// sortClasses orders by the given fields, falling back to the name for a stable listing.
func sortClasses(classes []schedule.ClassSchedule, ordering []core.DBOrdering) {
	ordering = append(append([]core.DBOrdering(nil), ordering...), core.DBOrdering{Field: "name", Ascending: true})
	sort.SliceStable(classes, func(i, j int) bool {
		a, b := classes[i], classes[j]
		for _, o := range ordering {
			var cmp int
			switch o.Field {
			case "name":
				cmp = strings.Compare(a.Name, b.Name)
			case "grade":
				cmp = a.Grade - b.Grade
			case "created_at":
				cmp = a.CreatedAt.Compare(b.CreatedAt)
			case "updated_at":
				cmp = a.UpdatedAt.Compare(b.UpdatedAt)
			}
			if cmp != 0 {
				return (cmp < 0) == o.Ascending
			}
		}
		return a.ID < b.ID
	})
}

func (repo *classRepository) GetClass(_ context.Context, id string) (schedule.ClassSchedule, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if c, ok := repo.db.table[id]; ok {
		return cloneClass(*c), nil
	}
	return schedule.ClassSchedule{}, schedule.ErrNotFound
}

func (repo *classRepository) UpdateClass(_ context.Context, class schedule.ClassSchedule) (schedule.ClassSchedule, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[class.ID]; !ok {
		return schedule.ClassSchedule{}, schedule.ErrNotFound
	}
	class = cloneClass(class)
	repo.db.table[class.ID] = &class
	return cloneClass(class), nil
}

func (repo *classRepository) DeleteClassesByID(_ context.Context, ids ...string) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	deleted := 0
	for _, id := range ids {
		if _, ok := repo.db.table[id]; ok {
			delete(repo.db.table, id)
			deleted++
		}
	}
	return deleted, nil
}
