// Package domain defines the core entities of the literature search service:
// papers and citation edges owned by the citation-graph store, and the
// transient search artifacts (chunks, references, similarity links,
// recommendations) built per request.
package domain

import "strings"

// Paper is an immutable snapshot of an academic paper fetched from the
// citation-graph store. Identifiers are opaque strings (DOI, provider ID, etc.).
type Paper struct {
	ID            string
	Title         string
	Abstract      string
	Year          int // 0 when the publication year is unknown
	CitationCount int
	Authors       []Author
}

// Author represents a paper author.
type Author struct {
	ID   string
	Name string
}

// CitationEdge is a directed edge in the citation graph: the citing paper
// references the cited paper. A pair exists at most once per direction; the
// composite key is enforced by the store, not here.
type CitationEdge struct {
	CitingPaperID string
	CitedPaperID  string
	Relationship  string
	Similarity    *float64
}

// AuthorNames returns the ordered list of author names.
func (p *Paper) AuthorNames() []string {
	names := make([]string, len(p.Authors))
	for i, a := range p.Authors {
		names[i] = a.Name
	}
	return names
}

// SplitAuthors splits a comma-separated author string into trimmed names.
// An empty input yields an empty list. Empty segments are dropped.
func SplitAuthors(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if name := strings.TrimSpace(p); name != "" {
			names = append(names, name)
		}
	}
	return names
}
