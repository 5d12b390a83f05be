package auth

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/medsupply/cotizaciones-api/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID   int64
	Username string
	Role     enums.Role
}

// AccessTokenClaims is the signed principal carried by every request.
type AccessTokenClaims struct {
	UserID   int64      `json:"id"`
	Username string     `json:"usuario"`
	Role     enums.Role `json:"rol"`
	jwt.RegisteredClaims
}
