package server

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
)

// First file descriptor handed over by systemd socket activation.
const activationFD = 3

// openListener prefers an inherited systemd socket, then a "unix:" path, then TCP.
func openListener(address string) (net.Listener, error) {
	ln, err := inheritedListener()
	if err != nil || ln != nil {
		return ln, err
	}
	if sock, ok := strings.CutPrefix(address, "unix:"); ok {
		if err := os.Remove(sock); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("remove stale socket %s: %w", sock, err)
		}
		return net.Listen("unix", sock)
	}
	return net.Listen("tcp", address)
}

// inheritedListener returns nil without error when the process was not
// socket activated.
func inheritedListener() (net.Listener, error) {
	pid, err := strconv.Atoi(strings.TrimSpace(os.Getenv("LISTEN_PID")))
	if err != nil || pid != os.Getpid() {
		return nil, nil
	}
	count, err := strconv.Atoi(strings.TrimSpace(os.Getenv("LISTEN_FDS")))
	if err != nil {
		return nil, fmt.Errorf("socket activation: bad LISTEN_FDS: %w", err)
	}
	if count < 1 {
		return nil, nil
	}

	f := os.NewFile(uintptr(activationFD), "listen-fd")
	if f == nil {
		return nil, fmt.Errorf("socket activation: fd %d unavailable", activationFD)
	}
	defer f.Close()

	ln, err := net.FileListener(f)
	if err != nil {
		return nil, fmt.Errorf("socket activation: %w", err)
	}
	for _, key := range []string{"LISTEN_PID", "LISTEN_FDS", "LISTEN_FDNAMES"} {
		_ = os.Unsetenv(key)
	}
	return ln, nil
}
