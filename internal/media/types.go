// Package media defines the shared envelope types exchanged between
// providers, the aggregation engine, and the download manager.
package media

// Type distinguishes movie from episodic content.
type Type string

const (
	TypeMovie  Type = "movie"
	TypeSeries Type = "series"
)

// ContentItem is a single search hit from one provider.
type ContentItem struct {
	Title    string `json:"title"`
	Link     string `json:"link"`
	Poster   string `json:"poster,omitempty"`
	Provider string `json:"provider"`
}

// EpisodeLink points at one watchable entry on a content page
// (a movie has exactly one, a series one per episode).
type EpisodeLink struct {
	Title string `json:"title"`
	Link  string `json:"link"`
	Type  Type   `json:"type"`
}

// Metadata is the detailed view of one content item.
type Metadata struct {
	Title    string        `json:"title"`
	Link     string        `json:"link"`
	Synopsis string        `json:"synopsis,omitempty"`
	Image    string        `json:"image,omitempty"`
	Links    []EpisodeLink `json:"links,omitempty"`
	Cast     []string      `json:"cast,omitempty"`
	Year     string        `json:"year,omitempty"`
	Rating   string        `json:"rating,omitempty"`
	Provider string        `json:"provider"`
}

// Subtitle is one subtitle track attached to a stream.
type Subtitle struct {
	Language string `json:"language"`
	URL      string `json:"url"`
}

// Stream is a resolved, directly playable or downloadable URL.
type Stream struct {
	Server    string            `json:"server"`
	Link      string            `json:"link"`
	Type      string            `json:"type"` // "hls" or "file"
	Quality   string            `json:"quality,omitempty"`
	Headers   map[string]string `json:"headers,omitempty"`
	Subtitles []Subtitle        `json:"subtitles,omitempty"`
}

// IsHLS reports whether the stream is a segmented HLS playlist rather
// than a direct file.
func (s Stream) IsHLS() bool {
	return s.Type == "hls"
}
