package server

import (
	"context"
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

// NewReusePortListener opens a TCP listener with SO_REUSEPORT so every
// worker process can bind the same port and let the kernel balance accepts.
func NewReusePortListener(ctx context.Context, addr string) (net.Listener, error) {
	lc := net.ListenConfig{
		Control: func(network, address string, conn syscall.RawConn) error {
			var opErr error
			if err := conn.Control(func(fd uintptr) {
				opErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1)
			}); err != nil {
				return err
			}
			return opErr
		},
	}
	return lc.Listen(ctx, "tcp", addr)
}
