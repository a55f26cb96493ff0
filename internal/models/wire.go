package models

// NoteInput is the body of create and update requests.
type NoteInput struct {
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

// NoteList is the body of a list response.
type NoteList struct {
	Notes []Note `json:"notes"`
}

// Session identifies the caller of the API.
type Session struct {
	UserID string `json:"user_id"`
}

// SuggestRequest asks for tags matching Content.
type SuggestRequest struct {
	Content string `json:"content"`
}

// SuggestResponse carries suggested tags, possibly none.
type SuggestResponse struct {
	Tags []string `json:"tags"`
}

// ErrorBody is the JSON shape of every API error.
type ErrorBody struct {
	Error string `json:"error"`
}
