package domain

import "context"

type RegisterRequest struct {
	Email        string `json:"email" binding:"required"`
	DisplayName  string `json:"display_name"`
	ReferralCode string `json:"referral_code"`
}

type RegisterResponse struct {
	User         User   `json:"user"`
	ReferralCode string `json:"referral_code"`
}

type LoginRequest struct {
	Email string `json:"email" binding:"required"`
}

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (RegisterResponse, error)
	Login(ctx context.Context, req LoginRequest) (User, error)
	Get(ctx context.Context, email string) (User, error)
	List(ctx context.Context) ([]User, error)
}
