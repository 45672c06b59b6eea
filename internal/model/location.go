package model

// Location is a physical business location.
type Location struct {
	Name    string         `json:"name" yaml:"name" db:"name" validate:"required"`
	Address string         `json:"address" yaml:"address" db:"address"`
	Phone   string         `json:"phone,omitempty" yaml:"phone" db:"phone"`
	Email   string         `json:"email,omitempty" yaml:"email" db:"email" validate:"omitempty,email"`
	Booking string         `json:"booking_url,omitempty" yaml:"booking_url" db:"booking_url"`
	Hours   []OpeningHours `json:"hours,omitempty" yaml:"hours" db:"-"`
}

// OpeningHours is the schedule of a single day.
type OpeningHours struct {
	Day   string `json:"day" yaml:"day"`
	Hours string `json:"hours" yaml:"hours"`
}
