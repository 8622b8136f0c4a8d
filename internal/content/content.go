// Package content serves the storefront's static pages (size guide, FAQ,
// delivery info) from local markdown files with YAML front matter, falling
// back to built-in copies when no file exists.
package content

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"gopkg.in/yaml.v3"
)

// ErrPageNotFound is returned for slugs with neither a file nor a fallback.
var ErrPageNotFound = errors.New("content: page not found")

const defaultCacheTTL = 5 * time.Minute

// Page is one rendered static page. Body is sanitized HTML.
type Page struct {
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary,omitempty"`
	Body      string    `json:"body"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

type frontMatter struct {
	Title     string `yaml:"title"`
	Summary   string `yaml:"summary"`
	UpdatedAt string `yaml:"updated_at"`
}

// Store loads, renders, and caches content pages.
type Store struct {
	dir      string
	markdown goldmark.Markdown
	policy   *bluemonday.Policy

	mu       sync.RWMutex
	cache    map[string]cacheEntry
	cacheTTL time.Duration
	now      func() time.Time
}

type cacheEntry struct {
	page    Page
	expires time.Time
}

// NewStore constructs a content store over the given directory. An empty
// directory serves fallback pages only.
func NewStore(dir string) *Store {
	return &Store{
		dir:      strings.TrimSpace(dir),
		markdown: goldmark.New(),
		policy:   bluemonday.UGCPolicy(),
		cache:    make(map[string]cacheEntry),
		cacheTTL: defaultCacheTTL,
		now:      time.Now,
	}
}

// SetCacheTTL overrides the render cache duration, primarily for tests.
func (s *Store) SetCacheTTL(d time.Duration) {
	if d <= 0 {
		d = time.Minute
	}
	s.mu.Lock()
	s.cacheTTL = d
	s.mu.Unlock()
}

// Page returns the rendered page for a slug.
func (s *Store) Page(slug string) (Page, error) {
	slug = normalizeSlug(slug)
	if slug == "" {
		return Page{}, ErrPageNotFound
	}

	s.mu.RLock()
	entry, ok := s.cache[slug]
	s.mu.RUnlock()
	if ok && s.now().Before(entry.expires) {
		return entry.page, nil
	}

	page, err := s.load(slug)
	if err != nil {
		if fallback, ok := fallbackPages[slug]; ok {
			return fallback, nil
		}
		return Page{}, err
	}

	s.mu.Lock()
	s.cache[slug] = cacheEntry{page: page, expires: s.now().Add(s.cacheTTL)}
	s.mu.Unlock()
	return page, nil
}

// Slugs lists every available page slug, files and fallbacks combined.
func (s *Store) Slugs() []string {
	seen := make(map[string]bool)
	slugs := make([]string, 0, len(fallbackPages))

	if s.dir != "" {
		if entries, err := os.ReadDir(s.dir); err == nil {
			for _, entry := range entries {
				name := entry.Name()
				if entry.IsDir() || !strings.HasSuffix(name, ".md") {
					continue
				}
				slug := normalizeSlug(strings.TrimSuffix(name, ".md"))
				if slug != "" && !seen[slug] {
					seen[slug] = true
					slugs = append(slugs, slug)
				}
			}
		}
	}
	for slug := range fallbackPages {
		if !seen[slug] {
			seen[slug] = true
			slugs = append(slugs, slug)
		}
	}
	return slugs
}

func (s *Store) load(slug string) (Page, error) {
	if s.dir == "" {
		return Page{}, ErrPageNotFound
	}
	raw, err := os.ReadFile(filepath.Join(s.dir, slug+".md"))
	if err != nil {
		if os.IsNotExist(err) {
			return Page{}, fmt.Errorf("%w: %s", ErrPageNotFound, slug)
		}
		return Page{}, fmt.Errorf("content: read %s: %w", slug, err)
	}

	meta, body := splitFrontMatter(raw)
	var fm frontMatter
	if len(meta) > 0 {
		if err := yaml.Unmarshal(meta, &fm); err != nil {
			return Page{}, fmt.Errorf("content: front matter %s: %w", slug, err)
		}
	}

	var rendered bytes.Buffer
	if err := s.markdown.Convert(body, &rendered); err != nil {
		return Page{}, fmt.Errorf("content: render %s: %w", slug, err)
	}

	page := Page{
		Slug:    slug,
		Title:   strings.TrimSpace(fm.Title),
		Summary: strings.TrimSpace(fm.Summary),
		Body:    s.policy.Sanitize(rendered.String()),
	}
	if page.Title == "" {
		page.Title = titleFromSlug(slug)
	}
	if fm.UpdatedAt != "" {
		if ts, err := time.Parse("2006-01-02", fm.UpdatedAt); err == nil {
			page.UpdatedAt = ts
		}
	}
	return page, nil
}

// splitFrontMatter separates a leading "---" YAML block from the body.
func splitFrontMatter(raw []byte) (meta, body []byte) {
	const marker = "---"
	text := string(raw)
	if !strings.HasPrefix(text, marker) {
		return nil, raw
	}
	rest := text[len(marker):]
	end := strings.Index(rest, "\n"+marker)
	if end < 0 {
		return nil, raw
	}
	meta = []byte(rest[:end])
	body = []byte(strings.TrimPrefix(rest[end+1+len(marker):], "\n"))
	return meta, body
}

func normalizeSlug(slug string) string {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" || strings.ContainsAny(slug, "/\\.") {
		return ""
	}
	return slug
}

func titleFromSlug(slug string) string {
	words := strings.Split(strings.ReplaceAll(slug, "-", " "), " ")
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
