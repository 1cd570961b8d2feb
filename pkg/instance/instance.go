package instance

import "os"

// ID returns the worker instance identifier. Deployments set SMS_WORKER_ID;
// otherwise the hostname serves as a stable fallback.
func ID() string {
	if id := os.Getenv("SMS_WORKER_ID"); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "worker-0"
}
