package models

// Health is the body returned by the health check endpoint, consumed by
// load balancers and deployment automation.
type Health struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}
