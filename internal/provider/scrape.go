package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/streamdex/streamdex/internal/media"
)

// Selectors configures how ScrapeProvider extracts data from the
// source's HTML. The defaults match the common film-list layout.
type Selectors struct {
	SearchItem   string // one element per search hit
	ItemTitle    string // anchor carrying title text and href
	ItemPoster   string // img carrying the poster URL
	DetailTitle  string
	Synopsis     string
	DetailImage  string
	CastItem     string
	Year         string
	Rating       string
	WatchLink    string // one element per watchable entry
	StreamSource string // element carrying the resolved stream URL
}

// DefaultSelectors returns the film-list selector set.
func DefaultSelectors() Selectors {
	return Selectors{
		SearchItem:   ".film-list .film-item",
		ItemTitle:    ".film-name a",
		ItemPoster:   ".film-poster img",
		DetailTitle:  ".detail .heading-name",
		Synopsis:     ".detail .description",
		DetailImage:  ".detail .film-poster img",
		CastItem:     ".detail .cast a",
		Year:         ".detail .released",
		Rating:       ".detail .rating",
		WatchLink:    ".episodes a",
		StreamSource: ".watch source",
	}
}

// ScrapeProvider adapts an HTML website into the Provider interface
// with goquery DOM parsing. It is the adapter kind used for sources
// without an API.
type ScrapeProvider struct {
	desc       Descriptor
	baseURL    string
	sel        Selectors
	timeout    time.Duration
	httpClient *http.Client
	log        *slog.Logger
}

// NewScrapeProvider creates an adapter for an HTML source.
func NewScrapeProvider(desc Descriptor, baseURL string, timeout time.Duration, log *slog.Logger) *ScrapeProvider {
	if log == nil {
		log = slog.Default()
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &ScrapeProvider{
		desc:    desc,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		sel:     DefaultSelectors(),
		timeout: timeout,
		log:     log.With("component", "provider", "provider", desc.Value),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Search scrapes the provider's search page.
func (p *ScrapeProvider) Search(ctx context.Context, query string, page int) ([]media.ContentItem, error) {
	if !p.desc.Supports(CapSearch) {
		return nil, Unsupported(p.desc.Value, CapSearch)
	}

	searchURL := fmt.Sprintf("%s/search?q=%s&page=%d", p.baseURL, url.QueryEscape(query), page)
	doc, err := p.fetchDocument(ctx, searchURL)
	if err != nil {
		return nil, err
	}

	var items []media.ContentItem
	doc.Find(p.sel.SearchItem).Each(func(_ int, s *goquery.Selection) {
		link := s.Find(p.sel.ItemTitle)
		item := media.ContentItem{
			Title:    strings.TrimSpace(link.Text()),
			Provider: p.desc.Value,
		}
		if href, ok := link.Attr("href"); ok {
			item.Link = p.absolute(href)
		}
		if poster, ok := s.Find(p.sel.ItemPoster).Attr("data-src"); ok {
			item.Poster = poster
		} else if poster, ok := s.Find(p.sel.ItemPoster).Attr("src"); ok {
			item.Poster = poster
		}
		if item.Title != "" && item.Link != "" {
			items = append(items, item)
		}
	})
	return items, nil
}

// GetMetadata scrapes the detail page for a content link.
func (p *ScrapeProvider) GetMetadata(ctx context.Context, link string) (*media.Metadata, error) {
	if !p.desc.Supports(CapMetadata) {
		return nil, Unsupported(p.desc.Value, CapMetadata)
	}

	doc, err := p.fetchDocument(ctx, p.absolute(link))
	if err != nil {
		return nil, err
	}

	md := &media.Metadata{
		Title:    strings.TrimSpace(doc.Find(p.sel.DetailTitle).First().Text()),
		Link:     link,
		Synopsis: strings.TrimSpace(doc.Find(p.sel.Synopsis).First().Text()),
		Year:     strings.TrimSpace(doc.Find(p.sel.Year).First().Text()),
		Rating:   strings.TrimSpace(doc.Find(p.sel.Rating).First().Text()),
		Provider: p.desc.Value,
	}
	if img, ok := doc.Find(p.sel.DetailImage).Attr("src"); ok {
		md.Image = img
	}
	doc.Find(p.sel.CastItem).Each(func(_ int, s *goquery.Selection) {
		if name := strings.TrimSpace(s.Text()); name != "" {
			md.Cast = append(md.Cast, name)
		}
	})
	doc.Find(p.sel.WatchLink).Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		el := media.EpisodeLink{
			Title: strings.TrimSpace(s.Text()),
			Link:  p.absolute(href),
			Type:  media.TypeMovie,
		}
		if strings.Contains(href, "/tv/") || strings.Contains(href, "episode") {
			el.Type = media.TypeSeries
		}
		md.Links = append(md.Links, el)
	})

	if md.Title == "" {
		return nil, fmt.Errorf("%s metadata %s: %w", p.desc.Value, link, ErrNotFound)
	}
	return md, nil
}

// ResolveStreams scrapes the watch page for playable sources.
func (p *ScrapeProvider) ResolveStreams(ctx context.Context, link string, mediaType media.Type) ([]media.Stream, error) {
	if !p.desc.Supports(CapStream) {
		return nil, Unsupported(p.desc.Value, CapStream)
	}

	doc, err := p.fetchDocument(ctx, p.absolute(link))
	if err != nil {
		return nil, err
	}

	var streams []media.Stream
	doc.Find(p.sel.StreamSource).Each(func(i int, s *goquery.Selection) {
		src, ok := s.Attr("src")
		if !ok || src == "" {
			return
		}
		st := media.Stream{
			Server: s.AttrOr("data-server", "server "+strconv.Itoa(i+1)),
			Link:   src,
			Type:   "file",
		}
		if strings.Contains(src, ".m3u8") {
			st.Type = "hls"
		}
		if q, ok := s.Attr("data-quality"); ok {
			st.Quality = q
		}
		streams = append(streams, st)
	})
	return streams, nil
}

func (p *ScrapeProvider) absolute(href string) string {
	if strings.HasPrefix(href, "http") {
		return href
	}
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return p.baseURL + href
}

func (p *ScrapeProvider) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, NewError(p.desc.Value, KindNetwork, err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/121.0")
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	start := time.Now()
	resp, err := p.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, context.Canceled
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, NewError(p.desc.Value, KindTimeout, err)
		}
		return nil, NewError(p.desc.Value, KindNetwork, err)
	}
	defer func() { _ = resp.Body.Close() }()

	p.log.Debug("provider request", "url", pageURL, "status", resp.StatusCode, "duration_ms", time.Since(start).Milliseconds())

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%s %s: %w", p.desc.Value, pageURL, ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return nil, NewError(p.desc.Value, KindNetwork, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, NewError(p.desc.Value, KindParse, err)
	}
	return doc, nil
}
