// Package record defines the typed documents the content store persists
// and the codec that moves them in and out of the store's flat value
// representation.
package record

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	KindPost     = "post"
	KindCategory = "category"
	KindTag      = "tag"
	KindCar      = "car"
	KindRental   = "rental"
	KindInvoice  = "invoice"
)

// Meta is the part every record shares. A record exists exactly when its
// primary key is present in the store.
type Meta struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Rec exposes the shared part to generic code. The embedded field is
// named Meta, so the accessor needs a distinct name to be promoted.
func (m *Meta) Rec() *Meta { return m }

// Entity is implemented by all record pointer types.
type Entity interface {
	Rec() *Meta
	Kind() string
	// Validate reports the first missing or malformed required field.
	// Optional fields (e.g. a post's scheduledAt while it is not
	// scheduled) are exempt.
	Validate() error
}

type PostStatus string

const (
	StatusDraft     PostStatus = "draft"
	StatusScheduled PostStatus = "scheduled"
	StatusPublished PostStatus = "published"
)

func (s PostStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusScheduled, StatusPublished:
		return true
	}
	return false
}

type Post struct {
	Meta
	Title       string     `json:"title"`
	Body        string     `json:"body"`
	Status      PostStatus `json:"status"`
	ScheduledAt *time.Time `json:"scheduledAt,omitempty"`
	CategoryIDs []string   `json:"categoryIds"`
	TagIDs      []string   `json:"tagIds"`
}

func (p *Post) Kind() string { return KindPost }

func (p *Post) Validate() error {
	switch {
	case p.ID == "":
		return missing(KindPost, "id")
	case p.Title == "":
		return missing(KindPost, "title")
	case !p.Status.Valid():
		return malformed(KindPost, "status", string(p.Status))
	case p.Status == StatusScheduled && p.ScheduledAt == nil:
		return missing(KindPost, "scheduledAt")
	}
	return nil
}

type Category struct {
	Meta
	Name string `json:"name"`
	// PostCount is derived from the membership index and repaired by the
	// count resync; it can lag behind briefly after a partial failure.
	PostCount int `json:"postCount"`
}

func (c *Category) Kind() string { return KindCategory }

func (c *Category) Validate() error {
	switch {
	case c.ID == "":
		return missing(KindCategory, "id")
	case c.Name == "":
		return missing(KindCategory, "name")
	}
	return nil
}

type Tag struct {
	Meta
	Name      string `json:"name"`
	PostCount int    `json:"postCount"`
}

func (t *Tag) Kind() string { return KindTag }

func (t *Tag) Validate() error {
	switch {
	case t.ID == "":
		return missing(KindTag, "id")
	case t.Name == "":
		return missing(KindTag, "name")
	}
	return nil
}

type Car struct {
	Meta
	Make      string          `json:"make"`
	Model     string          `json:"model"`
	Year      int             `json:"year"`
	DailyRate decimal.Decimal `json:"dailyRate"`
	Available bool            `json:"available"`
	ImageURLs []string        `json:"imageUrls,omitempty"`
}

func (c *Car) Kind() string { return KindCar }

func (c *Car) Validate() error {
	switch {
	case c.ID == "":
		return missing(KindCar, "id")
	case c.Make == "":
		return missing(KindCar, "make")
	case c.Model == "":
		return missing(KindCar, "model")
	}
	return nil
}

type RentalStatus string

const (
	RentalPending   RentalStatus = "pending"
	RentalActive    RentalStatus = "active"
	RentalCompleted RentalStatus = "completed"
	RentalCancelled RentalStatus = "cancelled"
)

func (s RentalStatus) Valid() bool {
	switch s {
	case RentalPending, RentalActive, RentalCompleted, RentalCancelled:
		return true
	}
	return false
}

type Rental struct {
	Meta
	CarID           string          `json:"carId"`
	CustomerEmail   string          `json:"customerEmail"`
	StartDate       time.Time       `json:"startDate"`
	EndDate         time.Time       `json:"endDate"`
	Status          RentalStatus    `json:"status"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	PaymentIntentID string          `json:"paymentIntentId,omitempty"`
}

func (r *Rental) Kind() string { return KindRental }

func (r *Rental) Validate() error {
	switch {
	case r.ID == "":
		return missing(KindRental, "id")
	case r.CarID == "":
		return missing(KindRental, "carId")
	case r.CustomerEmail == "":
		return missing(KindRental, "customerEmail")
	case r.StartDate.IsZero():
		return missing(KindRental, "startDate")
	case r.EndDate.IsZero():
		return missing(KindRental, "endDate")
	case !r.Status.Valid():
		return malformed(KindRental, "status", string(r.Status))
	}
	return nil
}

type InvoiceStatus string

const (
	InvoiceDraft InvoiceStatus = "draft"
	InvoiceSent  InvoiceStatus = "sent"
	InvoicePaid  InvoiceStatus = "paid"
	InvoiceVoid  InvoiceStatus = "void"
)

func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceDraft, InvoiceSent, InvoicePaid, InvoiceVoid:
		return true
	}
	return false
}

type Invoice struct {
	Meta
	RentalID string          `json:"rentalId"`
	Amount   decimal.Decimal `json:"amount"`
	Status   InvoiceStatus   `json:"status"`
	DueDate  time.Time       `json:"dueDate"`
}

func (i *Invoice) Kind() string { return KindInvoice }

func (i *Invoice) Validate() error {
	switch {
	case i.ID == "":
		return missing(KindInvoice, "id")
	case i.RentalID == "":
		return missing(KindInvoice, "rentalId")
	case !i.Status.Valid():
		return malformed(KindInvoice, "status", string(i.Status))
	}
	return nil
}
