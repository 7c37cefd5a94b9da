// Package customers resolves order owners through the user store.
package customers

import (
	"context"

	"github.com/Apurer/campus-canteen/internal/domains/orders/application/types"
	"github.com/Apurer/campus-canteen/internal/domains/orders/ports"
	userports "github.com/Apurer/campus-canteen/internal/domains/users/ports"
)

var _ ports.CustomerDirectory = (*Directory)(nil)

// Directory adapts the user repository to the order service's customer lookups.
type Directory struct {
	users userports.Repository
}

func NewDirectory(users userports.Repository) *Directory {
	return &Directory{users: users}
}

func (d *Directory) LookupCustomers(ctx context.Context, ids []int64) (map[int64]types.Customer, error) {
	out := make(map[int64]types.Customer, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	users, err := d.users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		out[u.ID] = types.Customer{
			ID:        u.ID,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Email:     u.Email,
			StudentID: u.StudentID,
		}
	}
	return out, nil
}
