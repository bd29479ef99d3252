package domain

// Role is the privilege level embedded into an RTC token.
type Role int

// Numeric values match the role constants RTC token builders expect on the wire.
const (
	RolePublisher  Role = 1
	RoleSubscriber Role = 2
)

// String returns the canonical lower-case role name.
func (r Role) String() string {
	switch r {
	case RolePublisher:
		return "publisher"
	case RoleSubscriber:
		return "subscriber"
	default:
		return "unknown"
	}
}
