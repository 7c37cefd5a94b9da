package canteenserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	inventoryhttpmapper "github.com/Apurer/campus-canteen/internal/domains/inventory/adapters/http/mapper"
	"github.com/Apurer/campus-canteen/internal/domains/inventory/application/types"
	inventoryports "github.com/Apurer/campus-canteen/internal/domains/inventory/ports"
)

// InventoryAPI implements the kitchen stock section. Every route is staff only.
type InventoryAPI struct {
	service inventoryports.Service
}

func NewInventoryAPI(service inventoryports.Service) InventoryAPI {
	return InventoryAPI{service: service}
}

// Get /api/inventory
func (api *InventoryAPI) ListItems(c *gin.Context) {
	items, err := api.service.ListItems(c.Request.Context(), principal(c), types.ListItemsInput{
		Category: c.Query("category"),
		LowStock: c.Query("lowStock") == "true",
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"count": len(items), "inventory": inventoryhttpmapper.FromDomainItems(items)})
}

// Get /api/inventory/categories
func (api *InventoryAPI) Categories(c *gin.Context) {
	categories, err := api.service.Categories(c.Request.Context(), principal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"categories": categories})
}

// Get /api/inventory/low-stock
func (api *InventoryAPI) LowStock(c *gin.Context) {
	items, err := api.service.LowStock(c.Request.Context(), principal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"count": len(items), "lowStockItems": inventoryhttpmapper.FromDomainItems(items)})
}

// Get /api/inventory/wastage-report
func (api *InventoryAPI) WastageReport(c *gin.Context) {
	report, err := api.service.WastageReport(c.Request.Context(), principal(c), types.WastageReportInput{
		StartDate: c.Query("startDate"),
		EndDate:   c.Query("endDate"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"wastageReport": report.Items, "totalWastageCost": report.TotalCost})
}

// Get /api/inventory/:id
func (api *InventoryAPI) GetItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	item, err := api.service.GetItem(c.Request.Context(), principal(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"item": inventoryhttpmapper.FromDomainItem(item)})
}

// Post /api/inventory
func (api *InventoryAPI) CreateItem(c *gin.Context) {
	var payload inventoryhttpmapper.MutationItem
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindingError(c, err)
		return
	}
	item, err := api.service.CreateItem(c.Request.Context(), principal(c), inventoryhttpmapper.ToItemInput(payload))
	if err != nil {
		respondError(c, err)
		return
	}
	created(c, gin.H{"message": "Inventory item created successfully", "item": inventoryhttpmapper.FromDomainItem(item)})
}

// Put /api/inventory/:id
func (api *InventoryAPI) UpdateItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var payload inventoryhttpmapper.MutationItem
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindingError(c, err)
		return
	}
	item, err := api.service.UpdateItem(c.Request.Context(), principal(c), id, inventoryhttpmapper.ToItemInput(payload))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"message": "Inventory item updated successfully", "item": inventoryhttpmapper.FromDomainItem(item)})
}

// Delete /api/inventory/:id
func (api *InventoryAPI) DeleteItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := api.service.DeleteItem(c.Request.Context(), principal(c), id); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"message": "Inventory item deleted successfully"})
}

// Patch /api/inventory/:id/stock
func (api *InventoryAPI) AdjustStock(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var payload inventoryhttpmapper.StockAdjustment
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindingError(c, err)
		return
	}
	item, err := api.service.AdjustStock(c.Request.Context(), principal(c), types.AdjustStockInput{
		ID:        id,
		Operation: payload.Operation,
		Quantity:  payload.Quantity,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"message": "Stock updated successfully", "item": inventoryhttpmapper.FromDomainItem(item)})
}

// Post /api/inventory/:id/wastage
func (api *InventoryAPI) RecordWastage(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var payload inventoryhttpmapper.Wastage
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindingError(c, err)
		return
	}
	item, err := api.service.RecordWastage(c.Request.Context(), principal(c), types.WastageInput{
		ID:       id,
		Quantity: payload.Quantity,
		Reason:   payload.Reason,
		Notes:    payload.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"message": "Wastage recorded successfully", "item": inventoryhttpmapper.FromDomainItem(item)})
}
