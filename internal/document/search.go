package document

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileInfo describes one scanned document on disk.
type FileInfo struct {
	Path         string `json:"path"`
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	ModifiedTime string `json:"modified_time"`
}

// Search discovers scanned documents in the configured directory.
type Search struct {
	maxFileSize int64
	validator   *Validator
}

// NewSearch creates a document search handler with the specified constraints.
func NewSearch(maxFileSize int64) *Search {
	return &Search{
		maxFileSize: maxFileSize,
		validator:   NewValidator(maxFileSize),
	}
}

// SearchResult is the outcome of a directory search.
type SearchResult struct {
	Files       []FileInfo `json:"files"`
	TotalCount  int        `json:"total_count"`
	Directory   string     `json:"directory"`
	SearchQuery string     `json:"search_query,omitempty"`
}

// SearchDirectory finds document files under directory, optionally filtered
// by a fuzzy filename query.
func (s *Search) SearchDirectory(directory, query string) (*SearchResult, error) {
	if directory == "" {
		return nil, fmt.Errorf("directory cannot be empty")
	}
	if _, err := os.Stat(directory); os.IsNotExist(err) {
		return nil, fmt.Errorf("directory does not exist: %s", directory)
	}

	absDirectory, err := filepath.Abs(directory)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve directory path: %w", err)
	}

	var files []FileInfo
	normQuery := strings.ToLower(strings.TrimSpace(query))

	err = filepath.Walk(absDirectory, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			// Continue walking even if one entry fails.
			return nil
		}

		// Symlinks must not let the walk escape the configured directory.
		withinDir, err := s.isPathWithinDirectory(path, absDirectory)
		if err != nil || !withinDir {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if info.IsDir() {
			if strings.HasPrefix(info.Name(), ".") && path != absDirectory {
				return filepath.SkipDir
			}
			return nil
		}
		if !isDocumentFile(info.Name()) {
			return nil
		}
		if err := s.validator.ValidateFileInfo(path, info); err != nil {
			// Skip invalid files but keep walking.
			return nil
		}
		if normQuery != "" && !matchesQuery(info.Name(), normQuery) {
			return nil
		}

		files = append(files, FileInfo{
			Path:         path,
			Name:         info.Name(),
			Size:         info.Size(),
			ModifiedTime: info.ModTime().Format("2006-01-02 15:04:05"),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking directory: %w", err)
	}

	return &SearchResult{
		Files:       files,
		TotalCount:  len(files),
		Directory:   absDirectory,
		SearchQuery: query,
	}, nil
}

// FindDocuments finds all document files in a directory without filtering.
func (s *Search) FindDocuments(directory string) ([]FileInfo, error) {
	result, err := s.SearchDirectory(directory, "")
	if err != nil {
		return nil, err
	}
	return result.Files, nil
}

// CountDocuments counts the valid document files in a directory.
func (s *Search) CountDocuments(directory string) (int, error) {
	files, err := s.FindDocuments(directory)
	if err != nil {
		return 0, err
	}
	return len(files), nil
}

// isPathWithinDirectory checks that path resolves inside directory.
func (s *Search) isPathWithinDirectory(path, directory string) (bool, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false, fmt.Errorf("failed to resolve path: %w", err)
	}
	absDir, err := filepath.Abs(directory)
	if err != nil {
		return false, fmt.Errorf("failed to resolve directory: %w", err)
	}

	realPath, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return false, fmt.Errorf("failed to evaluate symlinks: %w", err)
		}
		realPath = absPath
	}
	realDir, err := filepath.EvalSymlinks(absDir)
	if err != nil {
		return false, fmt.Errorf("failed to evaluate directory symlinks: %w", err)
	}

	realPath = filepath.Clean(realPath)
	realDir = filepath.Clean(realDir)
	if !strings.HasSuffix(realDir, string(filepath.Separator)) {
		realDir += string(filepath.Separator)
	}
	return strings.HasPrefix(realPath, realDir) ||
		realPath == strings.TrimSuffix(realDir, string(filepath.Separator)), nil
}

func isDocumentFile(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".pdf")
}

// matchesQuery performs fuzzy matching on the filename: substring first,
// then all query words against filename words.
func matchesQuery(filename, query string) bool {
	if query == "" {
		return true
	}
	name := strings.ToLower(filename)
	if strings.Contains(name, query) {
		return true
	}
	name = strings.TrimSuffix(name, ".pdf")
	if strings.Contains(name, query) {
		return true
	}

	words := splitIntoWords(name)
	for _, queryWord := range splitIntoWords(query) {
		found := false
		for _, word := range words {
			if strings.Contains(word, queryWord) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// splitIntoWords splits a string on common filename separators.
func splitIntoWords(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		switch r {
		case ' ', '_', '-', '.', '(', ')', '[', ']':
			return true
		}
		return false
	})
}
