package domain

// Chunk is a sub-document fragment returned by the internal vector search,
// indexed within its source document. Score is the similarity to the query as
// reported by the provider; the service treats higher as more relevant and
// does not validate the range.
type Chunk struct {
	DocumentID string
	Content    string
	Index      int
	Score      float64
}

// Reference is a document-level aggregation of one or more chunks, built
// fresh per query and never persisted. Chunks are ordered ascending by index.
type Reference struct {
	PaperID         string
	Title           string
	Authors         []string
	PublicationDate string
	Chunks          []Chunk
}

// SimilarityLink is an undirected edge between two documents in a result set
// whose embedding similarity meets the configured threshold. Similarity is in
// [0, 1] and rounded to four decimal places.
type SimilarityLink struct {
	Source     string
	Target     string
	Similarity float64
}

// Recommendation pairs a paper with a normalized score and a short
// human-readable explanation of the rule that produced it.
type Recommendation struct {
	Paper  *Paper
	Score  float64
	Reason string
}
