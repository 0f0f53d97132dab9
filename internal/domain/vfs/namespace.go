package vfs

import "path"

// Namespace is a directory mounted into the guest at a fixed path.
type Namespace struct {
	Directory *Directory
	Mount     string // guest path, e.g. "/counter"
	Plugin    string
	Version   string
}

// MountPath returns the cleaned, absolute guest path of the namespace.
func (n Namespace) MountPath() string {
	return path.Clean("/" + n.Mount)
}
