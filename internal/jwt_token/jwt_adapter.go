package jwttoken

import (
	authmw "authgate/pkg/platform/middleware/auth"
)

func ToMiddlewareClaims(claims *AccessClaims) *authmw.JWTClaims {
	return &authmw.JWTClaims{
		UserID: claims.Subject,
		Email:  claims.Email,
		Name:   claims.Name,
		JTI:    claims.ID,
	}
}

// JWTServiceAdapter exposes access token verification to the auth middleware.
type JWTServiceAdapter struct {
	service *Service
}

func NewJWTServiceAdapter(service *Service) *JWTServiceAdapter {
	return &JWTServiceAdapter{service: service}
}

func (a *JWTServiceAdapter) ValidateToken(tokenString string) (*authmw.JWTClaims, error) {
	claims, err := a.service.VerifyAccess(tokenString)
	if err != nil {
		return nil, err
	}
	return ToMiddlewareClaims(claims), nil
}
