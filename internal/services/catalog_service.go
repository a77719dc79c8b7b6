package services

import (
	"context"
	"fmt"
	"log/slog"

	"gagyebu/internal/core"
	"gagyebu/internal/storage"
)

// CatalogService keeps the category and card records entries point at.
type CatalogService struct {
	uow storage.UnitOfWork
}

func NewCatalogService(uow storage.UnitOfWork) *CatalogService {
	return &CatalogService{uow: uow}
}

func (s *CatalogService) CreateCategory(ctx context.Context, name string, t core.CategoryType) (core.Category, error) {
	c := core.Category{Name: name, Type: t}
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	err := s.uow.WithinTx(ctx, func(tx storage.Tx) error {
		return tx.CreateCategory(ctx, &c)
	})
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id int64, name string, t core.CategoryType) (core.Category, error) {
	c := core.Category{ID: id, Name: name, Type: t}
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	err := s.uow.WithinTx(ctx, func(tx storage.Tx) error {
		return tx.UpdateCategory(ctx, c)
	})
	if err != nil {
		return core.Category{}, fmt.Errorf("update category %d: %w", id, err)
	}
	return c, nil
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]core.Category, error) {
	var out []core.Category
	err := s.uow.WithinTx(ctx, func(tx storage.Tx) error {
		var err error
		out, err = tx.ListCategories(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return out, nil
}

// DeleteCategory refuses while entries or templates still use the category.
func (s *CatalogService) DeleteCategory(ctx context.Context, id int64) error {
	err := s.uow.WithinTx(ctx, func(tx storage.Tx) error {
		if _, err := tx.GetCategory(ctx, id); err != nil {
			return err
		}
		inUse, err := tx.CategoryInUse(ctx, id)
		if err != nil {
			return err
		}
		if inUse {
			return core.ErrCategoryInUse
		}
		return tx.DeleteCategory(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("delete category %d: %w", id, err)
	}
	slog.InfoContext(ctx, "Category deleted", "id", id)
	return nil
}

func (s *CatalogService) CreateCard(ctx context.Context, name string, t core.CardType) (core.Card, error) {
	c := core.Card{Name: name, Type: t}
	if err := c.Validate(); err != nil {
		return core.Card{}, err
	}
	err := s.uow.WithinTx(ctx, func(tx storage.Tx) error {
		return tx.CreateCard(ctx, &c)
	})
	if err != nil {
		return core.Card{}, fmt.Errorf("create card: %w", err)
	}
	return c, nil
}

func (s *CatalogService) ListCards(ctx context.Context) ([]core.Card, error) {
	var out []core.Card
	err := s.uow.WithinTx(ctx, func(tx storage.Tx) error {
		var err error
		out, err = tx.ListCards(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	return out, nil
}

// DeleteCard removes the card; entries and templates paid with it keep
// existing without a card.
func (s *CatalogService) DeleteCard(ctx context.Context, id int64) error {
	err := s.uow.WithinTx(ctx, func(tx storage.Tx) error {
		return tx.DeleteCard(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("delete card %d: %w", id, err)
	}
	slog.InfoContext(ctx, "Card deleted", "id", id)
	return nil
}
