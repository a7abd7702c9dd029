package dto

// ChatRequest payload for the assistant endpoint.
type ChatRequest struct {
	Question string `json:"question"`
}

// ChatResponse response.
type ChatResponse struct {
	Answer string `json:"answer"`
}
