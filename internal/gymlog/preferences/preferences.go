package preferences

import "time"

const (
	UnitKg  = "kg"
	UnitLbs = "lbs"
)

type Preferences struct {
	DefaultUnit string     `json:"defaultUnit"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

// Defaults are returned for users who never saved preferences.
func Defaults() Preferences {
	return Preferences{
		DefaultUnit: UnitKg,
	}
}

type UpdateRequest struct {
	DefaultUnit string `json:"defaultUnit" validate:"required,oneof=kg lbs"`
}
