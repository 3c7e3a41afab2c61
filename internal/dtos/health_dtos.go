package dtos

type HealthCheckResponse struct {
	Status string `json:"status"`
}

type EnvironmentResponse struct {
	Environment string `json:"environment"`
	DeployTime  string `json:"deployTime"`
}

// DebugResponse is served by the optional debug route.
type DebugResponse struct {
	Success     bool   `json:"success"`
	AppName     string `json:"appName"`
	Environment string `json:"environment"`
	Database    string `json:"database"`
	Collection  string `json:"collection"`
	Connected   bool   `json:"connected"`
}
