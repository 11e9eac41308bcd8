// Where: cli/internal/domain/runcontext/ports.go
// What: Free host port discovery on loopback.
// Why: Avoid collisions when several contexts run side by side.
package runcontext

import (
	"errors"
	"fmt"
	"net"
	"strconv"
)

var ErrNoFreePort = errors.New("no free port")

const DefaultPortSearch = 100

// FindFreePort returns the first port in [start, start+maxTries) that can be
// bound on 127.0.0.1.
func FindFreePort(start, maxTries int) (int, error) {
	if maxTries <= 0 {
		maxTries = DefaultPortSearch
	}
	for port := start; port < start+maxTries && port <= 65535; port++ {
		listener, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)))
		if err != nil {
			continue
		}
		_ = listener.Close()
		return port, nil
	}
	return 0, fmt.Errorf("%w in %d-%d", ErrNoFreePort, start, start+maxTries-1)
}
