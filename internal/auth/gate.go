package auth

// Gate is the shared-secret check guarding mutating admin routes. It holds
// the single password configured at startup; there are no users, sessions or
// tokens.
type Gate struct {
	password string
}

func NewGate(password string) *Gate {
	return &Gate{password: password}
}

// Authorize reports whether the supplied password matches the configured
// secret. An empty configured secret never authorizes.
func (g *Gate) Authorize(supplied string) bool {
	if g.password == "" {
		return false
	}
	return supplied == g.password
}
