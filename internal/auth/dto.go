package auth

import "github.com/medsupply/cotizaciones-api/pkg/enums"

// LoginRequest captures the credentials sent to the login endpoint.
type LoginRequest struct {
	Username string `json:"usuario"`
	Password string `json:"password"`
}

// Principal is the public view of the authenticated account.
type Principal struct {
	ID       int64      `json:"id"`
	Username string     `json:"usuario"`
	Role     enums.Role `json:"rol"`
}

// LoginResponse contains the signed token and the account it was minted for.
type LoginResponse struct {
	Message string    `json:"mensaje"`
	Token   string    `json:"token"`
	User    Principal `json:"usuario"`
}
