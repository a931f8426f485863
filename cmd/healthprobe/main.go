package main

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

// healthprobe exists because the runtime image carries no curl or wget.
// The container HEALTHCHECK runs it against the daemon's liveness
// endpoint: exit 0 when healthy, 1 otherwise.
func main() {
	addr := os.Getenv("STATUS_ADDR")
	if addr == "" {
		addr = ":9090"
	}
	if strings.HasPrefix(addr, ":") {
		addr = "127.0.0.1" + addr
	}

	client := &http.Client{Timeout: 3 * time.Second}
	resp, err := client.Get("http://" + addr + "/healthz")
	if err != nil {
		fmt.Fprintf(os.Stderr, "probe failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(os.Stderr, "unhealthy: %s\n", resp.Status)
		os.Exit(1)
	}
}
