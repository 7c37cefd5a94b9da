package canteenserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	menuhttpmapper "github.com/Apurer/campus-canteen/internal/domains/catalog/adapters/http/mapper"
	"github.com/Apurer/campus-canteen/internal/domains/catalog/application/types"
	catalogports "github.com/Apurer/campus-canteen/internal/domains/catalog/ports"
)

// MenuAPI implements the menu section. Reads are public.
type MenuAPI struct {
	service catalogports.Service
}

func NewMenuAPI(service catalogports.Service) MenuAPI {
	return MenuAPI{service: service}
}

// Get /api/menu
// Lists dishes, most popular first
func (api *MenuAPI) ListMenu(c *gin.Context) {
	input := types.ListMenuInput{
		Category:    c.Query("category"),
		DietaryTags: splitList(c.Query("dietaryTags")),
	}
	if raw := c.Query("available"); raw != "" {
		available, err := strconv.ParseBool(raw)
		if err != nil {
			respondBadRequest(c, "available must be true or false")
			return
		}
		input.Available = &available
	}
	items, err := api.service.ListMenu(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"count": len(items), "menuItems": menuhttpmapper.FromDomainMenuItems(items)})
}

// Get /api/menu/categories
func (api *MenuAPI) Categories(c *gin.Context) {
	respondOK(c, http.StatusOK, gin.H{"categories": api.service.Categories(c.Request.Context())})
}

// Get /api/menu/:id
func (api *MenuAPI) GetMenuItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	item, err := api.service.GetMenuItem(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"menuItem": menuhttpmapper.FromDomainMenuItem(item)})
}

// Post /api/menu
func (api *MenuAPI) CreateMenuItem(c *gin.Context) {
	var payload menuhttpmapper.MutationMenuItem
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindingError(c, err)
		return
	}
	item, err := api.service.CreateMenuItem(c.Request.Context(), principal(c), menuhttpmapper.ToMutationInput(payload))
	if err != nil {
		respondError(c, err)
		return
	}
	created(c, gin.H{"message": "Menu item created successfully", "menuItem": menuhttpmapper.FromDomainMenuItem(item)})
}

// Put /api/menu/:id
func (api *MenuAPI) UpdateMenuItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var payload menuhttpmapper.MutationMenuItem
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindingError(c, err)
		return
	}
	item, err := api.service.UpdateMenuItem(c.Request.Context(), principal(c), types.UpdateMenuItemInput{
		ID:                    id,
		MenuItemMutationInput: menuhttpmapper.ToMutationInput(payload),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"message": "Menu item updated successfully", "menuItem": menuhttpmapper.FromDomainMenuItem(item)})
}

// Patch /api/menu/:id/availability
func (api *MenuAPI) ToggleAvailability(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	item, err := api.service.ToggleAvailability(c.Request.Context(), principal(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	message := "Menu item is now unavailable"
	if item.Available {
		message = "Menu item is now available"
	}
	respondOK(c, http.StatusOK, gin.H{"message": message, "menuItem": menuhttpmapper.FromDomainMenuItem(item)})
}

// Patch /api/menu/:id/quantity
func (api *MenuAPI) UpdateQuantity(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var payload menuhttpmapper.QuantityUpdate
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindingError(c, err)
		return
	}
	item, err := api.service.UpdateQuantities(c.Request.Context(), principal(c), types.UpdateQuantitiesInput{
		ID:                id,
		DailyQuantity:     *payload.DailyQuantity,
		RemainingQuantity: payload.RemainingQuantity,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"message": "Quantity updated successfully", "menuItem": menuhttpmapper.FromDomainMenuItem(item)})
}

// Delete /api/menu/:id
func (api *MenuAPI) DeleteMenuItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := api.service.DeleteMenuItem(c.Request.Context(), principal(c), id); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"message": "Menu item deleted successfully"})
}
