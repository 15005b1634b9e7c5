package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a trader account. Authentication happens upstream at the gateway;
// this row carries identity, FIO linkage and role only.
type User struct {
	UserID      uuid.UUID      `gorm:"column:user_id;type:uuid;primaryKey" json:"user_id"`
	Username    string         `gorm:"column:username;not null;uniqueIndex" json:"username"`
	FIOUsername string         `gorm:"column:fio_username" json:"fio_username"`
	Role        string         `gorm:"column:role;type:varchar(20);default:'trader'" json:"role"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "Users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.UserID == uuid.Nil {
		u.UserID = uuid.New()
	}
	return nil
}
