package pricing

import (
	"strings"
	"time"
)

type PaymentMethod string

const (
	PaymentCard   PaymentMethod = "card"
	PaymentCrypto PaymentMethod = "crypto"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentCard || m == PaymentCrypto
}

// Role is the community role held by whoever asks for the quote. The empty
// role means an anonymous requester.
type Role string

const (
	RoleNone       Role = "none"
	RoleCoDesigner Role = "co-designer"
	RoleCoCurator  Role = "co-curator"
)

// DefaultEligibleRoles are the roles that unlock role-based discounts.
var DefaultEligibleRoles = []Role{RoleCoDesigner, RoleCoCurator}

// NormalizeRole lowercases and trims a raw role; blank input maps to RoleNone.
func NormalizeRole(raw string) Role {
	r := strings.ToLower(strings.TrimSpace(raw))
	if r == "" {
		return RoleNone
	}
	return Role(r)
}

type StayRequest struct {
	CheckIn       time.Time
	CheckOut      time.Time
	RoomCategory  string
	PaymentMethod PaymentMethod
	RequesterRole Role
}
