package routes

const (
	// Health
	Health = "/health"

	// Form intake
	SubmitForm = "/api/submit-form"
	Users      = "/api/users"

	// Runtime metadata
	Environment = "/api/environment"
	Debug       = "/api/debug"

	Dashboard = "/dashboard"

	// APIPrefix is matched after every API route; anything left is a JSON 404.
	APIPrefix = "/api/"
)
