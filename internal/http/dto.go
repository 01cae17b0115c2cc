package http

type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	Status            string   `json:"status"`
	DefaultComponents int      `json:"default_components"`
	Metrics           []string `json:"metrics"`
}
