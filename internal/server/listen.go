// internal/server/listen.go
package server

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
)

// Listen registers the endpoint name as a Unix socket at path.
// A stale socket left by a previous run is removed; any other file at
// path is an error. The socket is opened to every local user (0666).
func Listen(path string) (net.Listener, error) {
	if path == "" {
		return nil, errors.New("server: endpoint path required")
	}

	if fi, err := os.Lstat(path); err == nil {
		if fi.Mode().Type() != fs.ModeSocket {
			return nil, fmt.Errorf("server: %s exists and is not a socket", path)
		}
		if err := os.Remove(path); err != nil {
			return nil, fmt.Errorf("server: remove stale socket: %w", err)
		}
	}

	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("server: listen %s: %w", path, err)
	}

	if err := os.Chmod(path, 0o666); err != nil {
		_ = ln.Close()
		return nil, fmt.Errorf("server: chmod %s: %w", path, err)
	}
	return ln, nil
}
