package manga

// rentalDetailsIn mirrors the nested rentalDetails JSON sent as a
// multipart form field alongside the cover image.
type rentalDetailsIn struct {
	Price    float64 `json:"price" validate:"gte=0"`
	Duration struct {
		Value int    `json:"value" validate:"gt=0"`
		Unit  string `json:"unit" validate:"oneof=hours days"`
	} `json:"duration"`
}

type CommentReq struct {
	UserID int64  `json:"userId" validate:"required,gt=0"`
	Text   string `json:"text" validate:"required"`
}

type UserRef struct {
	UserID int64 `json:"userId" validate:"required,gt=0"`
}

type RateReq struct {
	UserID int64  `json:"userId" validate:"required,gt=0"`
	Rating int    `json:"rating" validate:"required,min=1,max=5"`
	Review string `json:"review"`
}
