package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/hocdan/guitarschool/core"
)

var ErrNotFound = errors.New("class not found")

type (
	Repository interface {
		CreateClass(ctx context.Context, class ClassSchedule) (ClassSchedule, error)
		// QueryClasses applies AND operation on available QueryFilter fields.
		QueryClasses(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]ClassSchedule, error)
		GetClass(ctx context.Context, id string) (ClassSchedule, error)
		UpdateClass(ctx context.Context, class ClassSchedule) (ClassSchedule, error)
		DeleteClassesByID(ctx context.Context, ids ...string) (int, error)
	}

	Service interface {
		Create(ctx context.Context, nc NewClass) (ClassSchedule, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]ClassSchedule, error)
		GetByID(ctx context.Context, id string) (ClassSchedule, error)
		Update(ctx context.Context, id string, uc UpdateClass) (ClassSchedule, error)
		Delete(ctx context.Context, ids ...string) error
		Registry(ctx context.Context) (Registry, error)
		CheckConflict(ctx context.Context, candidate Session, excludeID string) (*Conflict, error)
		Seed(ctx context.Context, opts GenerateOptions) ([]GenerateResult, error)
	}

	service struct {
		repo     Repository
		validate *validator.Validate
		logger   core.Logger

		// serializes conflict checks with the writes depending on them
		mu sync.Mutex
	}
)

var _ Service = (*service)(nil)

var nowFunc = time.Now // mockable

func NewService(repo Repository, validate *validator.Validate, logger core.Logger) Service {
	return &service{
		repo:     repo,
		validate: validate,
		logger:   logger,
	}
}

func (svc *service) Registry(ctx context.Context) (Registry, error) {
	classes, err := svc.repo.QueryClasses(ctx, nil, nil)
	if err != nil {
		return Registry{}, errors.Wrap(err, "loading registry")
	}
	return NewRegistry(classes...), nil
}

// checkSessions returns a ValidationError for the first session overlapping the registry.
func (svc *service) checkSessions(reg Registry, sessions []Session) error {
	for i, s := range sessions {
		if conflict, found := reg.FindConflict(s); found {
			return core.NewValidationError(nil, core.FieldError{
				Field: fmt.Sprintf("sessions[%d]", i),
				Error: conflict.String(),
			})
		}
	}
	return nil
}

func (svc *service) Create(ctx context.Context, nc NewClass) (ClassSchedule, error) {
	if err := nc.Validate(svc.validate); err != nil {
		return ClassSchedule{}, err
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()

	reg, err := svc.Registry(ctx)
	if err != nil {
		return ClassSchedule{}, err
	}
	if err = svc.checkSessions(reg, nc.Sessions); err != nil {
		return ClassSchedule{}, err
	}

	now := nowFunc().UTC()
	class := ClassSchedule{
		Name:      nc.Name,
		Grade:     nc.Grade,
		Sessions:  nc.Sessions,
		CreatedAt: now,
		UpdatedAt: now,
	}
	SortSessions(class.Sessions)
	class, err = svc.repo.CreateClass(ctx, class)
	if err != nil {
		return ClassSchedule{}, errors.Wrap(err, "creating class")
	}
	return class, nil
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]ClassSchedule, error) {
	return svc.repo.QueryClasses(ctx, filter, ordering)
}

func (svc *service) GetByID(ctx context.Context, id string) (ClassSchedule, error) {
	return svc.repo.GetClass(ctx, id)
}

func (svc *service) Update(ctx context.Context, id string, uc UpdateClass) (ClassSchedule, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	orig, err := svc.repo.GetClass(ctx, id)
	if err != nil {
		return ClassSchedule{}, err
	}
	if err = uc.Validate(orig, svc.validate); err != nil {
		return ClassSchedule{}, err
	}

	reg, err := svc.Registry(ctx)
	if err != nil {
		return ClassSchedule{}, err
	}
	// a class never conflicts with its previous self
	if err = svc.checkSessions(reg.Without(id), uc.Sessions); err != nil {
		return ClassSchedule{}, err
	}

	class := ClassSchedule{
		ID:        id,
		Name:      uc.Name,
		Grade:     uc.Grade,
		Sessions:  uc.Sessions,
		CreatedAt: orig.CreatedAt,
		UpdatedAt: nowFunc().UTC(),
	}
	SortSessions(class.Sessions)
	class, err = svc.repo.UpdateClass(ctx, class)
	if err != nil {
		return ClassSchedule{}, errors.Wrap(err, "updating class")
	}
	return class, nil
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := svc.repo.DeleteClassesByID(ctx, ids...); err != nil {
		return errors.Wrap(err, "deleting classes")
	}
	return nil
}

// CheckConflict validates the candidate and returns the first session it overlaps, if any.
// The class identified by excludeID (if any) is left out of the check.
func (svc *service) CheckConflict(ctx context.Context, candidate Session, excludeID string) (*Conflict, error) {
	if err := ValidateSession(svc.validate, candidate); err != nil {
		return nil, err
	}
	reg, err := svc.Registry(ctx)
	if err != nil {
		return nil, err
	}
	if conflict, found := reg.Without(excludeID).FindConflict(candidate); found {
		return &conflict, nil
	}
	return nil, nil
}

// Seed generates classes around the stored ones and saves them.
// Partially scheduled classes are saved too and reported as warnings. Classes that got
// no session at all are reported but not saved, their Class.ID stays empty.
func (svc *service) Seed(ctx context.Context, opts GenerateOptions) ([]GenerateResult, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	reg, err := svc.Registry(ctx)
	if err != nil {
		return nil, err
	}
	_, results, err := Generate(reg, opts)
	if err != nil {
		return nil, err
	}

	now := nowFunc().UTC()
	for i, res := range results {
		if len(res.Class.Sessions) == 0 {
			svc.logger.Warn(fmt.Sprintf("class %s not created: no free slot found", res.Class.Name))
			continue
		}
		res.Class.CreatedAt = now
		res.Class.UpdatedAt = now
		class, err := svc.repo.CreateClass(ctx, res.Class)
		if err != nil {
			return results[:i], errors.Wrapf(err, "saving class %s", res.Class.Name)
		}
		results[i].Class = class
		if res.Partial {
			svc.logger.Warn(fmt.Sprintf(
				"class %s partially scheduled: %d/%d sessions", class.Name, len(class.Sessions), res.Target,
			))
		}
	}
	return results, nil
}
