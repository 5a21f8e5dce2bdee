package models

import "time"

// Player представляет постоянную запись игрока в реестре.
// Идентичность валидируется снаружи (формат national_id, дат и имён);
// ядро турнира только читает эти поля.
type Player struct {
	ID         int       `json:"id" db:"id"`
	NationalID string    `json:"national_id" db:"national_id"`
	LastName   string    `json:"last_name" db:"last_name"`
	FirstName  string    `json:"first_name" db:"first_name"`
	BirthDate  string    `json:"birth_date" db:"birth_date"` // YYYY-MM-DD
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

func (p Player) FullName() string {
	return p.FirstName + " " + p.LastName
}
