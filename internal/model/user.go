package model

import "time"

// User represents an operator account as returned by the remote user
// service.  The terminal never stores password material; Password is only
// populated on outgoing create/update requests and is omitted from every
// response the service sends back.
//
// Fields:
//  ID         – identifier assigned by the remote service (nil until created).
//  Name       – display name of the operator.
//  Username   – login name, unique within the remote service.
//  Email      – contact address.
//  Role       – role name as stored by the service (e.g. ADMIN, VENDEDOR).
//  Active     – false once the account has been deactivated.
//  LastAccess – timestamp of the last successful login, if any.
//  Branch     – store branch the operator belongs to, if any.
type User struct {
	ID         *int64     `json:"id"`
	Name       string     `json:"name"`
	Username   string     `json:"username"`
	Email      string     `json:"email"`
	Password   string     `json:"password,omitempty"`
	Role       string     `json:"role"`
	Active     bool       `json:"active"`
	LastAccess *time.Time `json:"lastAccess,omitempty"`
	Branch     string     `json:"branch,omitempty"`
}

// HasID reports whether u has been assigned an identifier equal to id.
func (u *User) HasID(id int64) bool {
	return u != nil && u.ID != nil && *u.ID == id
}

// Clone returns a deep copy so callers can hand out users without sharing
// the pointer fields.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.ID != nil {
		id := *u.ID
		c.ID = &id
	}
	if u.LastAccess != nil {
		t := *u.LastAccess
		c.LastAccess = &t
	}
	return &c
}

// Credentials is the payload sent to the remote login endpoint.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResult is the remote login response.  Token is empty when the
// service did not issue one.
type LoginResult struct {
	User  User   `json:"user"`
	Token string `json:"token,omitempty"`
}

// Role names used by the back office.
const (
	RoleAdmin  = "ADMIN"
	RoleSeller = "VENDEDOR"
	RoleUser   = "USER"
)
