package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/Joseda-hg/lazytareas/internal/model"
)

var ErrNoViews = errors.New("saved views are not available")

// ViewStore persists named filters. *db.Store satisfies it.
type ViewStore interface {
	SaveView(ctx context.Context, view model.View) (model.View, error)
	ListViews(ctx context.Context) ([]model.View, error)
	GetViewByName(ctx context.Context, name string) (model.View, error)
	DeleteView(ctx context.Context, viewID int64) error
}

// SaveView stores the active filter under name, overwriting a view with the
// same name.
func (c *Controller) SaveView(ctx context.Context, name string) (model.View, error) {
	if c.views == nil {
		return model.View{}, ErrNoViews
	}
	view, err := c.views.SaveView(ctx, model.View{Name: name, Filter: c.Filter()})
	if err != nil {
		c.notifier.Error(fmt.Sprintf("Could not save view: %v", err))
		return model.View{}, err
	}
	c.notifier.Success(fmt.Sprintf("View %q saved", view.Name))
	return view, nil
}

func (c *Controller) Views(ctx context.Context) ([]model.View, error) {
	if c.views == nil {
		return nil, ErrNoViews
	}
	return c.views.ListViews(ctx)
}

// ApplyView replaces the active filter with the saved one and reloads.
func (c *Controller) ApplyView(ctx context.Context, name string) error {
	if c.views == nil {
		return ErrNoViews
	}
	view, err := c.views.GetViewByName(ctx, name)
	if err != nil {
		c.notifier.Error(fmt.Sprintf("Could not open view %q", name))
		return err
	}
	return c.ApplyFilters(ctx, view.Filter)
}

// NextView applies the saved view after current in name order, wrapping
// around. It returns the name of the view applied.
func (c *Controller) NextView(ctx context.Context, current string) (string, error) {
	views, err := c.Views(ctx)
	if err != nil {
		return "", err
	}
	if len(views) == 0 {
		c.notifier.Error("No saved views yet")
		return "", ErrNoViews
	}
	next := views[0]
	for i, view := range views {
		if view.Name == current {
			next = views[(i+1)%len(views)]
			break
		}
	}
	if err := c.ApplyFilters(ctx, next.Filter); err != nil {
		return next.Name, err
	}
	return next.Name, nil
}

func (c *Controller) DeleteView(ctx context.Context, name string) error {
	if c.views == nil {
		return ErrNoViews
	}
	view, err := c.views.GetViewByName(ctx, name)
	if err != nil {
		return err
	}
	if err := c.views.DeleteView(ctx, view.ID); err != nil {
		c.notifier.Error(fmt.Sprintf("Could not delete view %q", name))
		return err
	}
	c.notifier.Success(fmt.Sprintf("View %q deleted", name))
	return nil
}
