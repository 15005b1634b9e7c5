package reservations

import (
	"context"
	"encoding/json"
	"time"

	"exohub-backend/internal/domain"

	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ExpireStale transitions pending reservations past their expires_at to
// expired and records an event per reservation. Returns how many expired.
func (s *Service) ExpireStale(ctx context.Context, now time.Time) (int, error) {
	var expired int
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var stale []domain.Reservation
		if err := tx.Where("status = ? AND expires_at < ?", domain.ReservationPending, now).
			Find(&stale).Error; err != nil {
			return err
		}

		for i := range stale {
			update := tx.Model(&domain.Reservation{}).
				Where("reservation_id = ? AND status = ?", stale[i].ReservationID, domain.ReservationPending).
				Updates(map[string]interface{}{"status": domain.ReservationExpired, "updated_at": now})
			if update.Error != nil {
				return update.Error
			}
			if update.RowsAffected == 0 {
				// Transitioned concurrently; skip.
				continue
			}

			eventDataBytes, _ := json.Marshal(map[string]interface{}{
				"expires_at": stale[i].ExpiresAt,
				"expired_at": now,
			})
			if err := tx.Create(&domain.ReservationEvent{
				ReservationID: stale[i].ReservationID,
				EventType:     domain.ReservationEventExpired,
				EventData:     datatypes.JSON(eventDataBytes),
			}).Error; err != nil {
				return err
			}
			expired++
		}
		return nil
	})
	return expired, err
}

// RunSweeper expires stale reservations on every tick until ctx is done.
func (s *Service) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.ExpireStale(ctx, s.now())
			if err != nil {
				log.Error().Err(err).Msg("Reservation sweeper failed")
				continue
			}
			if n > 0 {
				log.Info().Int("expired", n).Msg("Expired stale reservations")
			}
		}
	}
}
