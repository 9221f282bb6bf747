package listing

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// letterboxdBaseURL redirects to the film page for a TMDB identifier.
const letterboxdBaseURL = "https://letterboxd.com/tmdb/"

// Record is one scraped screening of a film at one venue, date, and time.
// Scrapers produce the declared fields; enrichment fills the tmdb_* fields
// in place when resolution succeeds. Absent enrichment is a normal state.
type Record struct {
	Venue     string `json:"cinema_name"`
	Title     string `json:"movie_title"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Year      string `json:"year,omitempty"`
	Runtime   string `json:"runtime_min,omitempty"`
	DetailURL string `json:"detail_url,omitempty"`

	TMDBID         int64    `json:"tmdb_id,omitempty"`
	TMDBTitle      string   `json:"tmdb_title,omitempty"`
	OriginalTitle  string   `json:"tmdb_original_title,omitempty"`
	Director       string   `json:"director,omitempty"`
	RuntimeMinutes int      `json:"runtime,omitempty"`
	Genres         []string `json:"genres,omitempty"`
	PosterPath     string   `json:"tmdb_poster_path,omitempty"`
	BackdropPath   string   `json:"tmdb_backdrop_path,omitempty"`
	Overview       string   `json:"tmdb_overview,omitempty"`
	VoteAverage    float64  `json:"vote_average,omitempty"`
	LetterboxdLink string   `json:"letterboxd_link,omitempty"`
}

// DeclaredYear parses the scraper-provided year, returning 0 when it is
// absent or implausible. Scrapers sometimes report the screening year rather
// than the release year, so callers must not treat this as authoritative.
func (r Record) DeclaredYear() int {
	return ParseYear(r.Year)
}

// DeclaredRuntime parses the scraper-provided runtime in minutes, 0 when
// absent or unparseable.
func (r Record) DeclaredRuntime() int {
	value := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(r.Runtime), "min"))
	if value == "" {
		return 0
	}
	minutes, err := strconv.Atoi(value)
	if err != nil || minutes <= 0 {
		return 0
	}
	return minutes
}

// ParseYear validates a year string against the plausible release range.
func ParseYear(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	if year < 1880 || year > time.Now().Year()+3 {
		return 0
	}
	return year
}

// Film is the accepted enrichment for one resolved title.
type Film struct {
	TMDBID        int64    `json:"tmdb_id"`
	Title         string   `json:"tmdb_title"`
	OriginalTitle string   `json:"tmdb_original_title"`
	ReleaseDate   string   `json:"release_date,omitempty"`
	Director      string   `json:"director,omitempty"`
	Runtime       int      `json:"runtime,omitempty"`
	Genres        []string `json:"genres,omitempty"`
	PosterPath    string   `json:"poster_path,omitempty"`
	BackdropPath  string   `json:"backdrop_path,omitempty"`
	Overview      string   `json:"overview,omitempty"`
	VoteAverage   float64  `json:"vote_average,omitempty"`
}

// Year returns the release year, 0 when the release date is missing.
func (f *Film) Year() int {
	if f == nil || len(f.ReleaseDate) < 4 {
		return 0
	}
	year, err := strconv.Atoi(f.ReleaseDate[:4])
	if err != nil {
		return 0
	}
	return year
}

// LetterboxdURL builds the Letterboxd redirect link for the film.
func (f *Film) LetterboxdURL() string {
	if f == nil || f.TMDBID <= 0 {
		return ""
	}
	return fmt.Sprintf("%s%d", letterboxdBaseURL, f.TMDBID)
}

// Apply back-fills enrichment into the record, only filling fields the
// scraper left empty.
func (r *Record) Apply(film *Film) {
	if film == nil {
		return
	}
	if r.TMDBID == 0 {
		r.TMDBID = film.TMDBID
	}
	if r.TMDBTitle == "" {
		r.TMDBTitle = film.Title
	}
	if r.OriginalTitle == "" {
		r.OriginalTitle = film.OriginalTitle
	}
	if r.Director == "" {
		r.Director = film.Director
	}
	if r.RuntimeMinutes == 0 {
		r.RuntimeMinutes = film.Runtime
	}
	if len(r.Genres) == 0 {
		r.Genres = append([]string(nil), film.Genres...)
	}
	if r.PosterPath == "" {
		r.PosterPath = film.PosterPath
	}
	if r.BackdropPath == "" {
		r.BackdropPath = film.BackdropPath
	}
	if r.Overview == "" {
		r.Overview = film.Overview
	}
	if r.VoteAverage == 0 {
		r.VoteAverage = film.VoteAverage
	}
	if r.LetterboxdLink == "" {
		r.LetterboxdLink = film.LetterboxdURL()
	}
	if r.Year == "" && film.Year() > 0 {
		r.Year = strconv.Itoa(film.Year())
	}
}

// ReadFile loads listings from the collaborators' JSON exchange format.
func ReadFile(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read listings: %w", err)
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse listings %s: %w", path, err)
	}
	return records, nil
}

// WriteFile persists listings as indented JSON, atomically.
func WriteFile(path string, records []Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal listings: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create listings directory: %w", err)
		}
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
