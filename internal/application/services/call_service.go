package services

import (
	"context"
	"path"
	"strings"

	"github.com/reglet-dev/capbridge/internal/domain/capabilities"
	"github.com/reglet-dev/capbridge/internal/domain/vfs"
)

// CallService exchanges requests with capabilities from the host, using the
// same directories guests see.
type CallService struct {
	namespaces map[string]*vfs.Directory
}

// NewCallService creates a call service over the given namespaces.
func NewCallService(namespaces []vfs.Namespace) *CallService {
	byMount := make(map[string]*vfs.Directory, len(namespaces))
	for _, ns := range namespaces {
		byMount[ns.MountPath()] = ns.Directory
	}
	return &CallService{namespaces: byMount}
}

// Call resolves target ("counter/incr" or "/counter/incr") and performs one
// exchange. A nil input issues a read-only query.
func (s *CallService) Call(ctx context.Context, target string, input []byte) ([]byte, error) {
	mount, name := splitTarget(target)
	dir, ok := s.namespaces[mount]
	if !ok || name == "" {
		return nil, capabilities.NewError(capabilities.KindNotFound, "open", target, nil)
	}
	return dir.Call(ctx, name, input)
}

// splitTarget splits a capability path into its mount and name.
func splitTarget(target string) (mount, name string) {
	cleaned := path.Clean("/" + strings.TrimSpace(target))
	i := strings.LastIndexByte(cleaned, '/')
	mount, name = cleaned[:i], cleaned[i+1:]
	if mount == "" {
		mount = "/"
	}
	return mount, name
}
