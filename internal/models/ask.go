package models

// AskRequest is the payload sent to the knowledge assistant endpoint.
type AskRequest struct {
	Question string `json:"question"`
}

// AskResponse carries the assistant's answer, the knowledge snippets it was
// based on, and a short note describing how the answer was produced.
type AskResponse struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
	Mode    string   `json:"mode"`
}
