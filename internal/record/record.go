package record

import (
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Status is the lifecycle state of a customer or supplier
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Valid reports whether s is a known status
func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

// Fields maps a target field name to its resolved value
type Fields map[string]any

// String returns the string value stored under key, or "" if absent
func (f Fields) String(key string) string {
	switch v := f[key].(type) {
	case string:
		return v
	case Status:
		return string(v)
	}
	return ""
}

// Float returns the numeric value stored under key, or 0 if absent
func (f Fields) Float(key string) float64 {
	switch v := f[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		n, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return n
		}
	}
	return 0
}

// Customer is a stored customer document
type Customer struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Name      string             `json:"name" bson:"name"`
	Email     string             `json:"email" bson:"email"`
	Phone     string             `json:"phone" bson:"phone"`
	Address   string             `json:"address" bson:"address"`
	City      string             `json:"city" bson:"city"`
	State     string             `json:"state" bson:"state"`
	Status    Status             `json:"status" bson:"status"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// CustomerFromFields builds a customer from mapped import fields
func CustomerFromFields(f Fields) Customer {
	return Customer{
		Name:    f.String("name"),
		Email:   f.String("email"),
		Phone:   f.String("phone"),
		Address: f.String("address"),
		City:    f.String("city"),
		State:   f.String("state"),
		Status:  statusOf(f),
	}
}

// Stamp assigns an id (if missing) and timestamps before the first write
func (c *Customer) Stamp(now time.Time) {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	if c.Status == "" {
		c.Status = StatusActive
	}
}

// Supplier is a stored supplier document
type Supplier struct {
	ID             primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Company        string             `json:"company" bson:"company"`
	Mobile         string             `json:"mobile" bson:"mobile"`
	Email          string             `json:"email" bson:"email"`
	Phone          string             `json:"phone" bson:"phone"`
	GSTNumber      string             `json:"gstNumber" bson:"gstNumber"`
	TaxNumber      string             `json:"taxNumber" bson:"taxNumber"`
	State          string             `json:"state" bson:"state"`
	Postcode       string             `json:"postcode" bson:"postcode"`
	Address        string             `json:"address" bson:"address"`
	OpeningBalance float64            `json:"openingBalance" bson:"openingBalance"`
	Status         Status             `json:"status" bson:"status"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// SupplierFromFields builds a supplier from mapped import fields
func SupplierFromFields(f Fields) Supplier {
	return Supplier{
		Company:        f.String("company"),
		Mobile:         f.String("mobile"),
		Email:          f.String("email"),
		Phone:          f.String("phone"),
		GSTNumber:      f.String("gstNumber"),
		TaxNumber:      f.String("taxNumber"),
		State:          f.String("state"),
		Postcode:       f.String("postcode"),
		Address:        f.String("address"),
		OpeningBalance: f.Float("openingBalance"),
		Status:         statusOf(f),
	}
}

// Stamp assigns an id (if missing) and timestamps before the first write
func (s *Supplier) Stamp(now time.Time) {
	if s.ID.IsZero() {
		s.ID = primitive.NewObjectID()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now
	if s.Status == "" {
		s.Status = StatusActive
	}
}

func statusOf(f Fields) Status {
	s := Status(f.String("status"))
	if !s.Valid() {
		return StatusActive
	}
	return s
}
