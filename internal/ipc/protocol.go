package ipc

// Request is one daemon control command.
type Request struct {
	Command string `json:"command"`
}

// Response carries the daemon's state alongside the command outcome so the
// CLI can render status without a second roundtrip.
type Response struct {
	OK         bool   `json:"ok"`
	State      string `json:"state,omitempty"`
	Count      int    `json:"count,omitempty"`
	Threshold  int    `json:"threshold,omitempty"`
	CurrentApp string `json:"currentApp,omitempty"`
	Monitored  int    `json:"monitoredAppCount,omitempty"`
	Message    string `json:"message,omitempty"`
	Error      string `json:"error,omitempty"`
}
