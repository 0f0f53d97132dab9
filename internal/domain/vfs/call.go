package vfs

import (
	"bytes"
	"context"
	"errors"

	"github.com/reglet-dev/capbridge/internal/domain/capabilities"
)

// Call performs one host-side exchange with a capability: open, write the
// request when input is non-nil, drain the response and close. Read intent
// is requested whenever the capability's mode allows it, so write-only
// capabilities return an empty response.
func (d *Directory) Call(ctx context.Context, name string, input []byte) (_ []byte, err error) {
	c, ok := d.table.Lookup(name)
	if !ok {
		return nil, capabilities.NewError(capabilities.KindNotFound, "open", name, nil)
	}

	wantRead := c.Mode().Readable()
	wantWrite := input != nil
	h, err := d.Open(ctx, name, wantRead, wantWrite)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = errors.Join(err, h.Close())
	}()

	if wantWrite {
		if _, err := h.Write(ctx, input); err != nil {
			return nil, err
		}
	}
	if !wantRead {
		return nil, nil
	}

	var out bytes.Buffer
	buf := make([]byte, 4096)
	for {
		n, err := h.Read(ctx, buf)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return out.Bytes(), nil
		}
		out.Write(buf[:n])
	}
}
