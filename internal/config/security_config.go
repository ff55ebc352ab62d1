// config/security_config.go
package config

type SecurityLevel int

const (
	SecurityPublic SecurityLevel = iota // No authentication
	SecurityAccess                      // Access token required
	SecurityAdmin                       // Access token with the ADMIN role
)

// EndpointSecurityConfig maps "METHOD /route/template" to its required security level
var EndpointSecurityConfig = map[string]SecurityLevel{
	// Health - Public
	"GET /healthz": SecurityPublic,
	"GET /metrics": SecurityPublic,

	// Availability - Access Protected
	"GET /tools/{id}/availability":         SecurityAccess,
	"GET /tools/{id}/availability/summary": SecurityAccess,
	"GET /tools/{id}/availability/days":    SecurityAccess,
	"GET /tools/{id}/overlap":              SecurityAccess,

	// Availability - Admin
	"GET /tools/{id}/commitments": SecurityAdmin,
	"GET /tools/{id}/status-log":  SecurityAdmin,

	// Reservations
	"POST /reservations":              SecurityAccess,
	"POST /reservations/{id}/cancel":  SecurityAccess,
	"POST /reservations/{id}/approve": SecurityAdmin,
	"POST /reservations/{id}/decline": SecurityAdmin,

	// Allocations - ownership is checked by the engine
	"POST /allocations/{id}/transition": SecurityAccess,

	// Policy - Admin
	"POST /auto-approval/evaluate": SecurityAdmin,

	// Calendar - Access Protected
	"GET /calendar/validate": SecurityAccess,
	"GET /calendar/holidays": SecurityAccess,
	"GET /calendar/closed":   SecurityAccess,

	// Notifications - Access Protected
	"GET /notifications":            SecurityAccess,
	"POST /notifications/{id}/read": SecurityAccess,
}

// GetSecurityLevel returns the security level for a given route
func GetSecurityLevel(method, pathTemplate string) SecurityLevel {
	if level, exists := EndpointSecurityConfig[method+" "+pathTemplate]; exists {
		return level
	}
	// Default to highest security for unknown endpoints
	return SecurityAdmin
}
