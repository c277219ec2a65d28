// model/rental.go
package model

import "time"

type PaymentMethod string

const (
	PayEsewa  PaymentMethod = "Esewa"
	PayKhalti PaymentMethod = "Khalti"
	PayCash   PaymentMethod = "Cash"
	PayCard   PaymentMethod = "Card"
)

// Trusted reports whether the method is confirmed by the caller and
// persisted synchronously, without a gateway round trip.
func (m PaymentMethod) Trusted() bool {
	return m == PayKhalti || m == PayCash || m == PayCard
}

type Rental struct {
	ID            int64         `json:"id"`
	UserID        int64         `json:"user_id"`
	MangaID       int64         `json:"manga_id"`
	RentedAt      time.Time     `json:"rented_at"`
	ExpiresAt     time.Time     `json:"expires_at"`
	Price         float64       `json:"price"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	PhoneNumber   string        `json:"phone_number"`
	Location      string        `json:"location,omitempty"`
}

type PendingStatus string

const (
	PendingOpen      PendingStatus = "PENDING"
	PendingCompleted PendingStatus = "COMPLETED"
	PendingFailed    PendingStatus = "FAILED"
)

// PendingPayment is the server-side record of a gateway dispatch. The
// success callback resolves the rental from this row, never from the
// redirect's query string.
type PendingPayment struct {
	TransactionUUID string        `json:"transaction_uuid"`
	UserID          int64         `json:"user_id"`
	MangaID         int64         `json:"manga_id"`
	RentedAt        time.Time     `json:"rented_at"`
	ExpiresAt       time.Time     `json:"expires_at"`
	Price           float64       `json:"price"`
	PhoneNumber     string        `json:"phone_number"`
	Location        string        `json:"location,omitempty"`
	Signature       string        `json:"-"`
	Status          PendingStatus `json:"status"`
	CreatedAt       time.Time     `json:"created_at"`
}
