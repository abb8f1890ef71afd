package model

import "time"

type Venue struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name        string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	NameKey     string    `json:"-" bson:"name_key"`
	Description string    `json:"description,omitempty" bson:"description,omitempty" validate:"omitempty,max=1000"`
	Location    string    `json:"location,omitempty" bson:"location,omitempty" validate:"omitempty,max=200"`
	Capacity    int       `json:"capacity" bson:"capacity" validate:"required,min=1,max=10000"`
	Amenities   []string  `json:"amenities,omitempty" bson:"amenities,omitempty" validate:"omitempty,max=30,dive,required,max=50"`
	Active      bool      `json:"active" bson:"active"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

type VenueUpdate struct {
	Name        string    `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Description *string   `json:"description,omitempty" validate:"omitempty,max=1000"`
	Location    *string   `json:"location,omitempty" validate:"omitempty,max=200"`
	Capacity    *int      `json:"capacity,omitempty" validate:"omitempty,min=1,max=10000"`
	Amenities   *[]string `json:"amenities,omitempty" validate:"omitempty,max=30,dive,required,max=50"`
	Active      *bool     `json:"active,omitempty"`
}
