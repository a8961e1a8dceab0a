package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Astemirdum/booth-service/booth/internal/cache"
	"github.com/Astemirdum/booth-service/booth/internal/errs"
	"github.com/Astemirdum/booth-service/booth/internal/model"
	"github.com/Astemirdum/booth-service/booth/internal/repository"
)

type CourseCatalog struct {
	repo   repository.Repository
	cache  cache.Courses
	policy TimeoutPolicy
	now    func() time.Time
	log    *zap.Logger
}

func NewCourseCatalog(repo repository.Repository, c cache.Courses, policy TimeoutPolicy, log *zap.Logger) *CourseCatalog {
	if c == nil {
		c = cache.Noop{}
	}
	return &CourseCatalog{
		repo:   repo,
		cache:  c,
		policy: policy,
		now:    time.Now,
		log:    log.Named("courses"),
	}
}

func (c *CourseCatalog) List(ctx context.Context) ([]model.Course, error) {
	if cs, ok := c.cache.Get(ctx); ok {
		return cs, nil
	}
	cs, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	c.cache.Set(ctx, cs)
	return cs, nil
}

func (c *CourseCatalog) load(ctx context.Context) ([]model.Course, error) {
	var cs []model.Course
	err := c.policy.Do(ctx, OpRead, func(ctx context.Context) error {
		var err error
		cs, err = c.repo.Courses(ctx)
		return err
	})
	return cs, err
}

func paletteColor(color string) (model.PaletteColor, bool) {
	for _, p := range model.Palette {
		if strings.EqualFold(p.Value, color) || p.Name == color {
			return p, true
		}
	}
	return model.PaletteColor{}, false
}

// Add appends a course at the end of the display order. color is a palette
// value or palette name.
func (c *CourseCatalog) Add(ctx context.Context, name, color string) (model.Course, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Course{}, errs.NewValidation(errs.CodeEmptyName, "course name is required")
	}
	pc, ok := paletteColor(strings.TrimSpace(color))
	if !ok {
		return model.Course{}, errs.NewValidation(errs.CodeInvalidColor, "unknown color %q", color)
	}
	existing, err := c.load(ctx)
	if err != nil {
		return model.Course{}, err
	}
	order := len(existing)
	course := model.Course{
		Name:      name,
		Color:     pc.Value,
		ColorName: pc.Name,
		Order:     &order,
		CreatedAt: c.now(),
	}
	err = c.policy.Do(ctx, OpWrite, func(ctx context.Context) error {
		var err error
		course, err = c.repo.CreateCourse(ctx, course)
		return err
	})
	if err != nil {
		return model.Course{}, err
	}
	c.cache.Invalidate(ctx)
	return course, nil
}

func (c *CourseCatalog) Rename(ctx context.Context, id, name string) (model.Course, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Course{}, errs.NewValidation(errs.CodeEmptyName, "course name is required")
	}
	course, err := c.repo.Course(ctx, id)
	if err != nil {
		return model.Course{}, err
	}
	if course.Name == name {
		return course, nil
	}
	course.Name = name
	course.UpdatedAt = c.now()
	if err := c.policy.Do(ctx, OpWrite, func(ctx context.Context) error {
		return c.repo.SaveCourse(ctx, course)
	}); err != nil {
		return model.Course{}, err
	}
	c.cache.Invalidate(ctx)
	return course, nil
}

func (c *CourseCatalog) Delete(ctx context.Context, id string) error {
	if err := c.policy.Do(ctx, OpWrite, func(ctx context.Context) error {
		return c.repo.DeleteCourse(ctx, id)
	}); err != nil {
		return err
	}
	c.cache.Invalidate(ctx)
	return nil
}

// Move swaps the course with its neighbour in direction (-1 up, 1 down) and
// renumbers every course in one batch. Moving past either end is a no-op.
func (c *CourseCatalog) Move(ctx context.Context, id string, direction int) ([]model.Course, error) {
	if direction != -1 && direction != 1 {
		return nil, errs.NewValidation(errs.CodeInvalidMove, "direction must be -1 or 1")
	}
	cs, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	idx := -1
	for i, course := range cs {
		if course.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, errs.ErrNotFound
	}
	next := idx + direction
	if next < 0 || next >= len(cs) {
		return cs, nil
	}
	cs[idx], cs[next] = cs[next], cs[idx]
	for i := range cs {
		order := i
		cs[i].Order = &order
	}
	if err := c.policy.Do(ctx, OpWrite, func(ctx context.Context) error {
		return c.repo.SaveCourses(ctx, cs)
	}); err != nil {
		return nil, err
	}
	c.cache.Invalidate(ctx)
	return cs, nil
}
