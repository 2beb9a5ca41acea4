// Package lineup reads festival artist lineups from Songkick pages or from hand-entered text.
package lineup

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/festlist/internal/models"
	"github.com/desertthunder/festlist/internal/shared"
)

// DefaultFestivalName is used when the URL carries no festival slug.
const DefaultFestivalName = "your music festival"

const (
	userAgent = "Mozilla/5.0 (X11; Ubuntu; Linux x86_64; rv:52.0) Gecko/20100101 Firefox/52.0"
	selector  = "ul.festival a"
)

// Scraper fetches lineups over HTTP.
type Scraper struct {
	client *http.Client
	logger *log.Logger
}

// NewScraper creates a Scraper. A nil client gets a 10 second timeout; a nil logger gets [shared.NewLogger].
func NewScraper(client *http.Client, logger *log.Logger) *Scraper {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Scraper{client: client, logger: logger}
}

// Fetch downloads a Songkick festival page and extracts its lineup.
func (s *Scraper) Fetch(ctx context.Context, url string) (*models.Lineup, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	s.logger.Debug("fetching lineup page", "url", url)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: lineup page returned HTTP %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	lineup, err := Parse(resp.Body, url)
	if err != nil {
		return nil, err
	}

	s.logger.Info("lineup scraped", "festival", lineup.Festival, "artists", len(lineup.Artists))
	return lineup, nil
}

// Parse extracts the lineup from an HTML document. The url is only used to name the festival.
//
// Artist names are the anchor texts inside the "festival" list, trimmed, deduplicated and sorted.
func Parse(r io.Reader, url string) (*models.Lineup, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	if doc.Find("ul.festival").Length() == 0 {
		return nil, fmt.Errorf("%w: no festival list on page", shared.ErrLineupNotFound)
	}

	seen := make(map[string]bool)
	var names []string
	doc.Find(selector).Each(func(_ int, a *goquery.Selection) {
		name := strings.TrimSpace(a.Text())
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		names = append(names, name)
	})

	if len(names) == 0 {
		return nil, fmt.Errorf("%w: festival list is empty", shared.ErrLineupNotFound)
	}

	sort.Strings(names)
	return &models.Lineup{Festival: FestivalName(url), URL: url, Artists: names}, nil
}

var festivalSlug = regexp.MustCompile(`id/\d+-([^/?#]+)`)

// FestivalName derives a display name from a Songkick festival URL.
//
//	.../id/41123551-austin-city-limits-music-festival-2023 -> Austin City Limits Music Festival 2023
func FestivalName(url string) string {
	m := festivalSlug.FindStringSubmatch(url)
	if m == nil {
		return DefaultFestivalName
	}
	return shared.TitleCase(strings.ReplaceAll(m[1], "-", " "))
}

// ParseNames splits hand-entered artist names on newlines and commas.
//
// Input order is kept; repeats are dropped case-insensitively.
func ParseNames(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool { return r == '\n' || r == ',' || r == '\r' })

	seen := make(map[string]bool)
	var names []string
	for _, f := range fields {
		name := strings.Join(strings.Fields(f), " ")
		key := shared.NormalizeName(name)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		names = append(names, name)
	}
	return names
}

// Manual builds a lineup from hand-entered names.
func Manual(festival, text string) *models.Lineup {
	if strings.TrimSpace(festival) == "" {
		festival = DefaultFestivalName
	}
	return &models.Lineup{Festival: festival, Artists: ParseNames(text)}
}
