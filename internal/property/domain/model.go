package domain

import "time"

type PropertyType string

const (
	TypeHouse      PropertyType = "House"
	TypeApartment  PropertyType = "Apartment"
	TypeCondo      PropertyType = "Condo"
	TypeTownhouse  PropertyType = "Townhouse"
	TypeCommercial PropertyType = "Commercial"
)

type PropertyStatus string

const (
	StatusAvailable PropertyStatus = "Available"
	StatusSold      PropertyStatus = "Sold"
	StatusRented    PropertyStatus = "Rented"
	StatusPending   PropertyStatus = "Pending"
)

// Property mirrors the PropertyDto served by the property API.
type Property struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Address      string         `json:"address"`
	Price        float64        `json:"price"`
	Description  string         `json:"description,omitempty"`
	Bedrooms     int            `json:"bedrooms,omitempty"`
	Bathrooms    int            `json:"bathrooms,omitempty"`
	Area         float64        `json:"area,omitempty"`
	PropertyType PropertyType   `json:"propertyType,omitempty"`
	Status       PropertyStatus `json:"status,omitempty"`
	ImageURL     string         `json:"imageUrl,omitempty"`
	Images       []string       `json:"images,omitempty"`
	OwnerID      string         `json:"idOwner,omitempty"`
	CodeInternal string         `json:"codeInternal,omitempty"`
	Year         int            `json:"year,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// PropertyInput is the body of create and update requests.
type PropertyInput struct {
	Name         string         `json:"name" validate:"notblank"`
	Address      string         `json:"address" validate:"notblank"`
	Price        float64        `json:"price" validate:"gt=0"`
	OwnerID      string         `json:"idOwner" validate:"notblank"`
	CodeInternal string         `json:"codeInternal" validate:"notblank"`
	Year         int            `json:"year"`
	Description  string         `json:"description,omitempty"`
	ImageURL     string         `json:"imageUrl,omitempty" validate:"omitempty,url"`
	Bedrooms     int            `json:"bedrooms,omitempty" validate:"gte=0"`
	Bathrooms    int            `json:"bathrooms,omitempty" validate:"gte=0"`
	Area         float64        `json:"area,omitempty" validate:"gte=0"`
	PropertyType PropertyType   `json:"propertyType,omitempty" validate:"omitempty,oneof=House Apartment Condo Townhouse Commercial"`
	Status       PropertyStatus `json:"status,omitempty" validate:"omitempty,oneof=Available Sold Rented Pending"`
}

// ContactMessage is a submission of the public contact form.
type ContactMessage struct {
	ID          string    `json:"id,omitempty"`
	Name        string    `json:"name" validate:"notblank"`
	Email       string    `json:"email" validate:"required,email"`
	Phone       string    `json:"phone,omitempty" validate:"omitempty,phone"`
	Subject     string    `json:"subject" validate:"notblank"`
	Message     string    `json:"message" validate:"notblank,max=5000"`
	SubmittedAt time.Time `json:"submittedAt,omitempty"`
}
