package model

import "github.com/golang-jwt/jwt/v5"

// AdminClaims are JWT claims for admin authentication
type AdminClaims struct {
	AdminID string `json:"adminId"`
	jwt.RegisteredClaims
}

// ClientClaims are JWT claims for an approved client
type ClientClaims struct {
	ClientID string `json:"clientId"`
	jwt.RegisteredClaims
}

// LoginRequest is the request body for admin login
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is returned after successful login
type LoginResponse struct {
	Token   string `json:"token"`
	AdminID string `json:"adminId"`
}

// ClientTokenResponse is returned when an admin approves a client
type ClientTokenResponse struct {
	ClientID string `json:"clientId"`
	Token    string `json:"token"`
}
