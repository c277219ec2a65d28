package auth

type UpdateUserReq struct {
	Name   *string `json:"name" validate:"omitempty,min=1"`
	Email  *string `json:"email" validate:"omitempty,email"`
	Avatar *int    `json:"avatar"`
}

type ForgotPasswordReq struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordReq struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}
