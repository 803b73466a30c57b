package auth

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/forkline/storefront/pkg/enums"
)

// StaffTokenPayload captures the data available when minting a back-office JWT.
type StaffTokenPayload struct {
	Subject string
	Email   string
	Role    enums.StaffRole
	JTI     string
}

// StaffClaims represents the typed JWT presented on admin routes.
type StaffClaims struct {
	Email string          `json:"email,omitempty"`
	Role  enums.StaffRole `json:"role"`
	jwt.RegisteredClaims
}
