package ports

import (
	"context"

	"github.com/Apurer/campus-canteen/internal/domains/inventory/application/types"
	"github.com/Apurer/campus-canteen/internal/domains/inventory/domain"
	"github.com/Apurer/campus-canteen/internal/shared/auth"
)

// Service exposes inventory use cases. Every call requires a staff or admin caller.
type Service interface {
	ListItems(ctx context.Context, caller auth.Principal, input types.ListItemsInput) ([]*domain.Item, error)
	Categories(ctx context.Context, caller auth.Principal) ([]domain.Category, error)
	LowStock(ctx context.Context, caller auth.Principal) ([]*domain.Item, error)
	WastageReport(ctx context.Context, caller auth.Principal, input types.WastageReportInput) (*domain.WastageReport, error)
	GetItem(ctx context.Context, caller auth.Principal, id int64) (*domain.Item, error)
	CreateItem(ctx context.Context, caller auth.Principal, input types.ItemInput) (*domain.Item, error)
	UpdateItem(ctx context.Context, caller auth.Principal, id int64, input types.ItemInput) (*domain.Item, error)
	DeleteItem(ctx context.Context, caller auth.Principal, id int64) error
	AdjustStock(ctx context.Context, caller auth.Principal, input types.AdjustStockInput) (*domain.Item, error)
	RecordWastage(ctx context.Context, caller auth.Principal, input types.WastageInput) (*domain.Item, error)
}
