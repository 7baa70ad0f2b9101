package domain

// AccessLevel is what a route prefix demands before the request may be
// forwarded downstream.
type AccessLevel int

const (
	AccessPublic AccessLevel = iota
	AccessAuthenticated
	AccessOrganization
)

func (a AccessLevel) String() string {
	switch a {
	case AccessPublic:
		return "public"
	case AccessAuthenticated:
		return "authenticated"
	case AccessOrganization:
		return "organization"
	default:
		return "unknown"
	}
}

// RouteBinding maps a URL prefix to a downstream base address. Bindings
// are immutable after process start.
type RouteBinding struct {
	Name    string
	Prefix  string
	BaseURL string
	Access  AccessLevel
}
