package domain

// PaperDetail is a paper snapshot enriched with its citation-graph degree.
type PaperDetail struct {
	Paper
	ReferenceCount int // outgoing citations
	CitedByCount   int // incoming citations
}

// NetworkNode is a paper appearing in a citation network view.
type NetworkNode struct {
	PaperID       string
	Title         string
	Year          int
	CitationCount int
	Depth         int // hops from the root paper
}

// CitationNetwork is the neighborhood of a paper in the citation graph,
// assembled for visualization.
type CitationNetwork struct {
	RootID string
	Nodes  []NetworkNode
	Edges  []CitationEdge
}

// CollectionStats summarizes the papers in a collection.
type CollectionStats struct {
	CollectionID   string
	PaperCount     int
	TotalCitations int
	AvgCitations   float64
	MinYear        int // 0 when no paper has a known year
	MaxYear        int
}
