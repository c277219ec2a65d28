package rental

// RentReq is the rent-request body. Phone must be exactly 10 digits;
// the duration unit is re-checked by the pricing calculator.
type RentReq struct {
	UserID        int64  `json:"userId" validate:"required,gt=0"`
	DurationValue int    `json:"durationValue" validate:"required,gt=0"`
	DurationUnit  string `json:"durationUnit" validate:"required"`
	PaymentMethod string `json:"paymentMethod" validate:"required"`
	PhoneNumber   string `json:"phoneNumber" validate:"required,len=10,numeric"`
	Location      string `json:"location"`
}
