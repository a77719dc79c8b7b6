package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"gagyebu/internal/core"
	"gagyebu/internal/storage"
)

type AssetRequest struct {
	Type          core.AssetType      `json:"type"`
	Name          string              `json:"name"`
	Balance       decimal.Decimal     `json:"balance"`
	PurchasePrice decimal.NullDecimal `json:"purchasePrice"`
}

// AssetService manages balance containers. Balances move through entries;
// Update overwrites them directly and does not recompute history.
type AssetService struct {
	uow storage.UnitOfWork
}

func NewAssetService(uow storage.UnitOfWork) *AssetService {
	return &AssetService{uow: uow}
}

func (s *AssetService) Create(ctx context.Context, req AssetRequest) (core.Asset, error) {
	a := core.Asset{Type: req.Type, Name: req.Name, Balance: req.Balance, PurchasePrice: req.PurchasePrice}
	if err := a.Validate(); err != nil {
		return core.Asset{}, err
	}
	err := s.uow.WithinTx(ctx, func(tx storage.Tx) error {
		return tx.CreateAsset(ctx, &a)
	})
	if err != nil {
		return core.Asset{}, fmt.Errorf("create asset: %w", err)
	}
	slog.InfoContext(ctx, "Asset created", "id", a.ID, "type", a.Type, "name", a.Name)
	return a, nil
}

// Update edits name, balance and purchase price. The type is fixed at creation.
func (s *AssetService) Update(ctx context.Context, id int64, req AssetRequest) (core.Asset, error) {
	var a core.Asset
	err := s.uow.WithinTx(ctx, func(tx storage.Tx) error {
		var err error
		if a, err = tx.GetAsset(ctx, id); err != nil {
			return err
		}
		a.Name = req.Name
		a.Balance = req.Balance
		a.PurchasePrice = req.PurchasePrice
		if err := a.Validate(); err != nil {
			return err
		}
		return tx.UpdateAsset(ctx, a)
	})
	if err != nil {
		return core.Asset{}, fmt.Errorf("update asset %d: %w", id, err)
	}
	return a, nil
}

func (s *AssetService) Get(ctx context.Context, id int64) (core.Asset, error) {
	var a core.Asset
	err := s.uow.WithinTx(ctx, func(tx storage.Tx) error {
		var err error
		a, err = tx.GetAsset(ctx, id)
		return err
	})
	return a, err
}

func (s *AssetService) List(ctx context.Context) ([]core.Asset, error) {
	var out []core.Asset
	err := s.uow.WithinTx(ctx, func(tx storage.Tx) error {
		var err error
		out, err = tx.ListAssets(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	return out, nil
}

// SetDefault moves the default flag to id.
func (s *AssetService) SetDefault(ctx context.Context, id int64) (core.Asset, error) {
	var a core.Asset
	err := s.uow.WithinTx(ctx, func(tx storage.Tx) error {
		var err error
		if a, err = tx.GetAsset(ctx, id); err != nil {
			return err
		}
		if a.IsDefault {
			return nil
		}
		if err := tx.ClearDefaultAsset(ctx); err != nil {
			return err
		}
		a.IsDefault = true
		return tx.UpdateAsset(ctx, a)
	})
	if err != nil {
		return core.Asset{}, fmt.Errorf("set default asset %d: %w", id, err)
	}
	slog.InfoContext(ctx, "Default asset changed", "id", id, "name", a.Name)
	return a, nil
}

// Delete removes a non-default asset and unlinks it from entries.
func (s *AssetService) Delete(ctx context.Context, id int64) error {
	err := s.uow.WithinTx(ctx, func(tx storage.Tx) error {
		a, err := tx.GetAsset(ctx, id)
		if err != nil {
			return err
		}
		if a.IsDefault {
			return core.ErrDefaultAssetDelete
		}
		if err := tx.ClearAssetReferences(ctx, id); err != nil {
			return err
		}
		return tx.DeleteAsset(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("delete asset %d: %w", id, err)
	}
	slog.InfoContext(ctx, "Asset deleted", "id", id)
	return nil
}

func (s *AssetService) NetWorth(ctx context.Context) (core.NetWorth, error) {
	assets, err := s.List(ctx)
	if err != nil {
		return core.NetWorth{}, err
	}
	return core.ComputeNetWorth(assets), nil
}
