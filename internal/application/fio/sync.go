package fio

import (
	"context"
	"time"

	"exohub-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StorageFetcher abstracts the FIO API for tests.
type StorageFetcher interface {
	GetStorage(username string) ([]Storage, error)
}

// SyncService pulls FIO storage data and upserts inventory snapshot rows.
// The reservation engine only ever reads the rows; this job is the producer.
type SyncService struct {
	DB  *gorm.DB
	FIO StorageFetcher
	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

func (s *SyncService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// SyncUser refreshes all snapshot rows for one user from FIO. Rows for
// containers no longer present are removed so stale stock cannot back a
// listing. Returns how many rows were written.
func (s *SyncService) SyncUser(ctx context.Context, userID uuid.UUID, fioUsername string) (int, error) {
	storages, err := s.FIO.GetStorage(fioUsername)
	if err != nil {
		return 0, err
	}

	syncedAt := s.now()
	written := 0
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&domain.InventorySnapshot{}).Error; err != nil {
			return err
		}
		for _, storage := range storages {
			if storage.LocationNaturalID == "" {
				continue
			}
			uploadedAt := storage.UploadedAt()
			for _, item := range storage.Items {
				if item.MaterialTicker == "" || item.MaterialAmount <= 0 {
					continue
				}
				row := &domain.InventorySnapshot{
					UserID:          userID,
					CommodityTicker: item.MaterialTicker,
					LocationID:      storage.LocationNaturalID,
					StoreID:         storage.StorageID,
					Quantity:        item.MaterialAmount,
					LastSyncedAt:    syncedAt,
					FIOUploadedAt:   uploadedAt,
				}
				if err := tx.Clauses(clause.OnConflict{
					Columns: []clause.Column{
						{Name: "user_id"}, {Name: "commodity_ticker"},
						{Name: "location_id"}, {Name: "store_id"},
					},
					DoUpdates: clause.AssignmentColumns([]string{"quantity", "last_synced_at", "fio_uploaded_at"}),
				}).Create(row).Error; err != nil {
					return err
				}
				written++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return written, nil
}

// SyncAll refreshes snapshots for every user with a linked FIO account.
func (s *SyncService) SyncAll(ctx context.Context) (int, error) {
	var users []domain.User
	if err := s.DB.WithContext(ctx).Where("fio_username <> ''").Find(&users).Error; err != nil {
		return 0, err
	}

	total := 0
	for i := range users {
		n, err := s.SyncUser(ctx, users[i].UserID, users[i].FIOUsername)
		if err != nil {
			log.Error().Err(err).Str("user", users[i].Username).Msg("FIO sync failed for user")
			continue
		}
		total += n
	}
	return total, nil
}

// RunSync pulls inventory on every tick until ctx is done.
func (s *SyncService) RunSync(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.SyncAll(ctx)
			if err != nil {
				log.Error().Err(err).Msg("FIO sync sweep failed")
				continue
			}
			log.Info().Int("rows", n).Msg("FIO inventory sync complete")
		}
	}
}
