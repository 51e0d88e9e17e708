// Package instance identifies the running process for log correlation.
package instance

import "github.com/youscore/youscore-backend/pkg/env"

// GetID returns the instance identifier, preferring an explicit
// INSTANCE_ID over the platform-assigned DYNO name.
func GetID() string {
	return env.First("local", "INSTANCE_ID", "DYNO")
}
