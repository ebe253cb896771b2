// Package scrape retrieves and parses the remote outage listings.
package scrape

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Shared client with a sane timeout to avoid long hangs and allow retries
// on the next cycle.
const fetchTimeout = 30 * time.Second

// Fetcher loads a listing page and extracts one of the three source
// shapes. Pages missing the expected structure yield empty results, not
// errors; matching simply proceeds over zero rows.
type Fetcher struct {
	client *http.Client
}

func NewFetcher() *Fetcher {
	return &Fetcher{client: &http.Client{Timeout: fetchTimeout}}
}

func (f *Fetcher) load(ctx context.Context, url string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}
	return goquery.NewDocumentFromReader(resp.Body)
}

// TableRows returns the cell texts of every table row on the page.
func (f *Fetcher) TableRows(ctx context.Context, url string) ([][]string, error) {
	doc, err := f.load(ctx, url)
	if err != nil {
		return nil, err
	}
	return parseTableRows(doc), nil
}

// Blocks returns the text of every planned-works block on the page.
func (f *Fetcher) Blocks(ctx context.Context, url string) ([]string, error) {
	doc, err := f.load(ctx, url)
	if err != nil {
		return nil, err
	}
	return parseBlocks(doc), nil
}

// ListItems returns the text of every failure-list item on the page.
func (f *Fetcher) ListItems(ctx context.Context, url string) ([]string, error) {
	doc, err := f.load(ctx, url)
	if err != nil {
		return nil, err
	}
	return parseListItems(doc), nil
}

func parseTableRows(doc *goquery.Document) [][]string {
	var rows [][]string
	doc.Find("table tr").Each(func(_ int, tr *goquery.Selection) {
		var cells []string
		tr.Find("td").Each(func(_ int, td *goquery.Selection) {
			cells = append(cells, strings.TrimSpace(td.Text()))
		})
		if len(cells) > 0 {
			rows = append(rows, cells)
		}
	})
	return rows
}

func parseBlocks(doc *goquery.Document) []string {
	var blocks []string
	doc.Find("div.toggle_content").Each(func(_ int, div *goquery.Selection) {
		blocks = append(blocks, div.Text())
	})
	return blocks
}

func parseListItems(doc *goquery.Document) []string {
	var items []string
	doc.Find(`div.toggle_content[itemprop="text"] ul li`).Each(func(_ int, li *goquery.Selection) {
		items = append(items, li.Text())
	})
	return items
}
