// Package main provides a CLI tool to import courses from a CSV file into the
// catalog API. It makes authenticated API calls, so every imported course goes
// through the normal create path and gets its embedding job enqueued.
//
// Usage:
//
//	go run cmd/import-courses/main.go -file /path/to/courses.csv -api-url http://localhost:8080 -api-key YOUR_API_KEY
//
// CSV columns: title, description, category, tags (tags separated by ";").
// The first row is treated as a header and skipped.
package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// Config holds the CLI configuration
type Config struct {
	FilePath   string
	APIBaseURL string
	APIKey     string
	DelayMS    int
	DryRun     bool
}

// CourseRequest matches the CreateCourseRequest model
type CourseRequest struct {
	Title       string   `json:"title"`
	Description *string  `json:"description,omitempty"`
	Category    *string  `json:"category,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// Stats tracks import statistics
type Stats struct {
	TotalRows       int
	SkippedEmpty    int
	SuccessfulPosts int
	FailedPosts     int
}

const (
	colTitle       = 0
	colDescription = 1
	colCategory    = 2
	colTags        = 3
)

func main() {
	cfg := parseFlags()

	file, err := os.Open(cfg.FilePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open %s: %v\n", cfg.FilePath, err)
		os.Exit(1)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	client := &http.Client{Timeout: 30 * time.Second}

	var stats Stats

	header := true

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}

		if err != nil {
			fmt.Fprintf(os.Stderr, "csv read error: %v\n", err)
			os.Exit(1)
		}

		if header {
			header = false

			continue
		}

		stats.TotalRows++

		req, ok := rowToCourse(row)
		if !ok {
			stats.SkippedEmpty++

			continue
		}

		if cfg.DryRun {
			fmt.Printf("would import: %s\n", req.Title)
			stats.SuccessfulPosts++

			continue
		}

		if err := postCourse(client, cfg, req); err != nil {
			fmt.Fprintf(os.Stderr, "failed to import %q: %v\n", req.Title, err)
			stats.FailedPosts++
		} else {
			stats.SuccessfulPosts++
		}

		if cfg.DelayMS > 0 {
			time.Sleep(time.Duration(cfg.DelayMS) * time.Millisecond)
		}
	}

	fmt.Printf("\nimport complete: %d rows, %d imported, %d skipped, %d failed\n",
		stats.TotalRows, stats.SuccessfulPosts, stats.SkippedEmpty, stats.FailedPosts)

	if stats.FailedPosts > 0 {
		os.Exit(1)
	}
}

func parseFlags() Config {
	var cfg Config

	flag.StringVar(&cfg.FilePath, "file", "", "path to the CSV file (required)")
	flag.StringVar(&cfg.APIBaseURL, "api-url", "http://localhost:8080", "catalog API base URL")
	flag.StringVar(&cfg.APIKey, "api-key", os.Getenv("API_KEY"), "API key (defaults to API_KEY env var)")
	flag.IntVar(&cfg.DelayMS, "delay-ms", 0, "delay between requests in milliseconds")
	flag.BoolVar(&cfg.DryRun, "dry-run", false, "parse and report without calling the API")
	flag.Parse()

	if cfg.FilePath == "" {
		fmt.Fprintln(os.Stderr, "-file is required")
		flag.Usage()
		os.Exit(2)
	}

	if !cfg.DryRun && cfg.APIKey == "" {
		fmt.Fprintln(os.Stderr, "-api-key or API_KEY env var is required")
		os.Exit(2)
	}

	return cfg
}

// rowToCourse maps one CSV row to a create request. Rows without a title are
// skipped.
func rowToCourse(row []string) (CourseRequest, bool) {
	get := func(idx int) string {
		if idx < len(row) {
			return strings.TrimSpace(row[idx])
		}

		return ""
	}

	title := get(colTitle)
	if title == "" {
		return CourseRequest{}, false
	}

	req := CourseRequest{Title: title}

	if description := get(colDescription); description != "" {
		req.Description = &description
	}

	if category := get(colCategory); category != "" {
		req.Category = &category
	}

	if rawTags := get(colTags); rawTags != "" {
		for _, tag := range strings.Split(rawTags, ";") {
			if tag = strings.TrimSpace(tag); tag != "" {
				req.Tags = append(req.Tags, tag)
			}
		}
	}

	return req, true
}

func postCourse(client *http.Client, cfg Config, course CourseRequest) error {
	body, err := json.Marshal(course)
	if err != nil {
		return fmt.Errorf("marshal course: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, cfg.APIBaseURL+"/v1/courses", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cfg.APIKey)

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("post course: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	return nil
}
