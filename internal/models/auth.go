package models

import "github.com/golang-jwt/jwt/v5"

// Claims is the access-token payload issued by the external identity
// provider. The API only validates tokens; it never issues them.
type Claims struct {
	EmployeeID string       `json:"employee_id"`
	Email      string       `json:"email"`
	Role       EmployeeRole `json:"role"`
	jwt.RegisteredClaims
}
