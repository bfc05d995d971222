package v1

import (
	"github.com/streamdex/streamdex/internal/media"
)

type providerResponse struct {
	Value        string   `json:"value"`
	Name         string   `json:"name"`
	Capabilities []string `json:"capabilities"`
}

type searchRequest struct {
	Query string `json:"query"`
	Page  int    `json:"page"`
}

type providerResult struct {
	Provider string `json:"provider"`
	Status   string `json:"status"`
	Items    int    `json:"items"`
	Error    string `json:"error,omitempty"`
}

type searchResponse struct {
	RequestID string              `json:"request_id"`
	Items     []media.ContentItem `json:"items"`
	Providers []providerResult    `json:"providers"`
}

type streamsRequest struct {
	Provider string `json:"provider"`
	Link     string `json:"link"`
	Type     string `json:"type"`
}

type streamsResponse struct {
	Streams []media.Stream `json:"streams"`
}

type downloadRequest struct {
	URL      string            `json:"url"`
	FileName string            `json:"file_name"`
	FileType string            `json:"file_type"`
	Kind     string            `json:"kind"`
	Headers  map[string]string `json:"headers,omitempty"`
}

type downloadResponse struct {
	ID int64 `json:"id"`
}

type statusResponse struct {
	Status    string `json:"status"`
	Providers int    `json:"providers"`
	Downloads int    `json:"downloads"`
}
