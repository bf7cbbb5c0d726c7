package minicluster

import (
	"fmt"
	"net"
)

// FreePort asks the OS for an unused TCP port by binding a throwaway
// listener to port 0 and reading back the assigned port. The port was free
// at the instant of the call only: nothing reserves it afterwards, so two
// callers racing between allocation and bind can still collide. Good enough
// for a test utility, and inherent to any "ask the OS" approach.
func FreePort() (int, error) {
	listener, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		return 0, fmt.Errorf("binding ephemeral port: %w", err)
	}
	defer listener.Close()
	addr, ok := listener.Addr().(*net.TCPAddr)
	if !ok {
		return 0, fmt.Errorf("unexpected listener address type %T", listener.Addr())
	}
	return addr.Port, nil
}
