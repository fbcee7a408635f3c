// Package env provides the runtime environment shared by the daemon and tools.
package env

import (
	"os"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

// AppID scopes the machine ID so it is not exposed raw.
const AppID = "n2cmu"

// MachineID retrieves the unique ID identifying the machine.
// It falls back to the host name when the machine ID is unavailable.
func MachineID() string {
	id, err := machineid.ProtectedID(AppID)
	if err == nil {
		return id[:16]
	}
	glog.Warningf("machine id unavailable: %v", err)
	if host, err := os.Hostname(); err == nil {
		return host
	}
	return "localhost"
}
