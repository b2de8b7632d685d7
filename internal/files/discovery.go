package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Suffixes of files written next to each input. Discovery skips them so a
// second batch run does not enrich its own output.
const (
	AppendedSuffix = "-appended"
	SummarySuffix  = "-summary"
)

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Discovery provides file discovery operations
type Discovery struct {
	basePath   string
	extensions []string
}

// NewDiscovery creates a discovery rooted at basePath that accepts the given
// extensions (".csv", ".xlsx").
func NewDiscovery(basePath string, extensions ...string) *Discovery {
	exts := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		exts = append(exts, strings.ToLower(ext))
	}
	return &Discovery{basePath: basePath, extensions: exts}
}

func (d *Discovery) accepts(name string) bool {
	// Office lock files
	if strings.HasPrefix(name, "~$") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(name))
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	if strings.HasSuffix(stem, AppendedSuffix) || strings.HasSuffix(stem, SummarySuffix) {
		return false
	}
	for _, e := range d.extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// FindInputs lists the processable files in dir, oldest first.
func (d *Discovery) FindInputs(dir string) ([]FileInfo, error) {
	fullPath := dir
	if !filepath.IsAbs(dir) && d.basePath != "" {
		fullPath = filepath.Join(d.basePath, dir)
	}

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() || !d.accepts(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Path:    filepath.Join(fullPath, entry.Name()),
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		if files[i].ModTime.Equal(files[j].ModTime) {
			return files[i].Name < files[j].Name
		}
		return files[i].ModTime.Before(files[j].ModTime)
	})
	return files, nil
}

// DerivedPath names a file written beside input: the input's base name
// plus suffix, with ext (or the input's extension when ext is empty).
func DerivedPath(input, suffix, ext string) string {
	base := filepath.Base(input)
	inputExt := filepath.Ext(base)
	if ext == "" {
		ext = inputExt
	}
	return filepath.Join(filepath.Dir(input), strings.TrimSuffix(base, inputExt)+suffix+ext)
}
