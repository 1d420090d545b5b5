// internal/model/influencer.go
package model

import (
	"time"

	"github.com/google/uuid"
)

type Influencer struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Handle    string    `db:"handle" json:"handle"`
	Platform  string    `db:"platform" json:"platform"`
	Followers int64     `db:"followers" json:"followers"`
	Niche     string    `db:"niche" json:"niche"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
