package model

import "strings"

// Role is the account type chosen at registration.  Customers reserve
// seats; airlines publish flights.
type Role uint8

const (
	RoleCustomer Role = iota + 1
	RoleAirline
)

// String returns the wire spelling of the role (CUSTOMER or AIRLINE).
func (r Role) String() string {
	switch r {
	case RoleCustomer:
		return "CUSTOMER"
	case RoleAirline:
		return "AIRLINE"
	}
	return ""
}

// ParseRole accepts the wire spelling of a role.  Matching is exact;
// "customer" is not a role.
func ParseRole(s string) (Role, bool) {
	switch strings.TrimSpace(s) {
	case "CUSTOMER":
		return RoleCustomer, true
	case "AIRLINE":
		return RoleAirline, true
	}
	return 0, false
}

// User represents a registered account.  Users are created by REGISTER
// and are never modified or deleted for the lifetime of the process.
//
// Fields:
//  Username – unique key chosen by the client.
//  Secret   – the stored password: the opaque secret itself, or its
//             bcrypt hash when password hashing is enabled.
//  Role     – CUSTOMER or AIRLINE.
type User struct {
	Username string
	Secret   string
	Role     Role
}
