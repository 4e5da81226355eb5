package semanticscholar

// searchResponse is the top-level response from the paper search endpoint.
type searchResponse struct {
	Total  int           `json:"total"`
	Offset int           `json:"offset"`
	Next   int           `json:"next"`
	Data   []PaperResult `json:"data"`
}

// PaperResult is a single paper as returned by the Semantic Scholar Graph API.
type PaperResult struct {
	PaperID         string     `json:"paperId"`
	Title           string     `json:"title"`
	Abstract        string     `json:"abstract"`
	URL             string     `json:"url"`
	Venue           string     `json:"venue"`
	PublicationDate string     `json:"publicationDate"`
	CitationCount   int        `json:"citationCount"`
	FieldsOfStudy   []string   `json:"fieldsOfStudy"`
	Authors         []Author   `json:"authors"`
	TLDR            *TLDR      `json:"tldr"`
	OpenAccessPDF   *PDFInfo   `json:"openAccessPdf"`
	Embedding       *Embedding `json:"embedding"`
}

// Author is a paper author entry.
type Author struct {
	AuthorID string `json:"authorId"`
	Name     string `json:"name"`
}

// TLDR is the AI-generated one-line summary attached to a paper.
type TLDR struct {
	Model string `json:"model"`
	Text  string `json:"text"`
}

// PDFInfo describes an open access PDF location.
type PDFInfo struct {
	URL    string `json:"url"`
	Status string `json:"status"`
}

// Embedding is the dense paper embedding attached to search results.
type Embedding struct {
	Model  string    `json:"model"`
	Vector []float64 `json:"vector"`
}

// ErrorResponse is an error payload from the API.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
