package inventory

import (
	fiosvc "exohub-backend/internal/application/fio"
	"exohub-backend/internal/domain"
	"exohub-backend/internal/middleware"
	"exohub-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type Handlers struct {
	DB   *gorm.DB
	Sync *fiosvc.SyncService
}

// GET /api/v1/inventory — the caller's synced snapshot rows.
func (h *Handlers) GetMyInventory(c *fiber.Ctx) error {
	var rows []domain.InventorySnapshot
	err := h.DB.WithContext(c.Context()).
		Where("user_id = ?", middleware.GetActor(c).UserID).
		Order("location_id, commodity_ticker").
		Find(&rows).Error
	if err != nil {
		return response.Error(c, err.Error(), 500, nil)
	}
	return response.Success(c, "Inventory fetched successfully", rows, nil)
}

// POST /api/v1/inventory/sync — pull fresh FIO data for the caller.
func (h *Handlers) SyncMyInventory(c *fiber.Ctx) error {
	a := middleware.GetActor(c)

	var user domain.User
	if err := h.DB.WithContext(c.Context()).Where("user_id = ?", a.UserID).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.Error(c, "User not found", 404, nil)
		}
		return response.Error(c, err.Error(), 500, nil)
	}
	if user.FIOUsername == "" {
		return response.Error(c, "No FIO account linked", 400, nil)
	}

	n, err := h.Sync.SyncUser(c.Context(), user.UserID, user.FIOUsername)
	if err != nil {
		return response.Error(c, "FIO sync failed: "+err.Error(), 502, nil)
	}
	return response.Success(c, "Inventory synced successfully", fiber.Map{"rows": n}, nil)
}

// POST /api/v1/inventory/admin-sync — refresh every linked account.
func (h *Handlers) AdminSync(c *fiber.Ctx) error {
	n, err := h.Sync.SyncAll(c.Context())
	if err != nil {
		return response.Error(c, "FIO sync failed: "+err.Error(), 502, nil)
	}
	return response.Success(c, "Inventory synced successfully", fiber.Map{"rows": n}, nil)
}
