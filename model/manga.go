// model/manga.go
package model

import "time"

type DurationUnit string

const (
	UnitHours DurationUnit = "hours"
	UnitDays  DurationUnit = "days"
)

type RentalDetails struct {
	Price         float64      `json:"price"`
	DurationValue int          `json:"duration_value"`
	DurationUnit  DurationUnit `json:"duration_unit"`
}

type Manga struct {
	ID            int64          `json:"id"`
	Title         string         `json:"title"`
	Author        string         `json:"author"`
	Genre         []string       `json:"genre"`
	Description   string         `json:"description"`
	CoverImage    string         `json:"cover_image"`
	IsRentable    bool           `json:"is_rentable"`
	RentalDetails *RentalDetails `json:"rental_details,omitempty"`
	AvgRating     float64        `json:"avg_rating"`
	CreatedAt     time.Time      `json:"created_at"`
}

type Chapter struct {
	ID        int64     `json:"id"`
	MangaID   int64     `json:"manga_id"`
	Title     string    `json:"title"`
	ImageURLs []string  `json:"image_urls"`
	CreatedAt time.Time `json:"created_at"`
}

type Comment struct {
	ID        int64     `json:"id"`
	MangaID   int64     `json:"manga_id"`
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	Avatar    int       `json:"avatar"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type Rating struct {
	MangaID   int64     `json:"manga_id"`
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username,omitempty"`
	Rating    int       `json:"rating"`
	Review    string    `json:"review,omitempty"`
	Avatar    int       `json:"avatar"`
	CreatedAt time.Time `json:"created_at"`
}

// Renter is one entry of a manga's rentedBy list.
type Renter struct {
	UserID    int64     `json:"user_id"`
	RentedAt  time.Time `json:"rented_at"`
	ExpiresAt time.Time `json:"expires_at"`
}
