package capabilities

// Grant is the set of namespace mounts a user approved for writable access.
type Grant []string

// NewGrant creates a new empty Grant.
func NewGrant() Grant {
	return make(Grant, 0)
}

// Add adds a mount to the grant if it's not already present.
func (g *Grant) Add(mount string) {
	if g.Contains(mount) {
		return
	}
	*g = append(*g, mount)
}

// Contains checks if the grant contains a mount.
func (g Grant) Contains(mount string) bool {
	for _, existing := range g {
		if existing == mount {
			return true
		}
	}
	return false
}

// Remove removes a mount from the grant.
func (g *Grant) Remove(mount string) {
	for i, existing := range *g {
		if existing == mount {
			*g = append((*g)[:i], (*g)[i+1:]...)
			return
		}
	}
}
