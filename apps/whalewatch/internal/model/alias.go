package model

import (
	"time"
)

type Alias struct {
	Address   string    `db:"address"` // lowercase hex address
	Name      string    `db:"alias"`
	UpdatedAt time.Time `db:"updated_at"`
}
