package datasource

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"biometric-insights/src/interfaces"
	"biometric-insights/src/logger"
	"biometric-insights/src/models"
)

// exportTimestamp is the export time embedded in archive file names.
var exportTimestamp = regexp.MustCompile(`(\d{4}-\d{2}-\d{2}T\d{2}-\d{2}-\d{2})`)

// MultiSourceLoader finds the latest export of every source in a profile
// directory and reads them concurrently.
type MultiSourceLoader struct {
	Patterns map[models.SourceKey]*regexp.Regexp
	Reader   interfaces.ITableReader
	Logger   *logger.Logger
	mu       sync.Mutex
}

// -----------------------------------------------------------------------------

// NewMultiSourceLoader compiles the file patterns. Patterns match from the
// start of the file name.
func NewMultiSourceLoader(patterns map[models.SourceKey]string, reader interfaces.ITableReader, log *logger.Logger) (*MultiSourceLoader, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}
	m := &MultiSourceLoader{
		Patterns: make(map[models.SourceKey]*regexp.Regexp, len(patterns)),
		Reader:   reader,
		Logger:   log,
	}

	for key, p := range patterns {
		re, err := regexp.Compile(`^(?:` + p + `)`)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern for source %s: %w", key, err)
		}
		m.Patterns[key] = re
	}
	return m, nil
}

// -----------------------------------------------------------------------------

// FindLatest returns the matching file with the greatest export timestamp.
// Names without a timestamp sort before those with one; ties are broken by
// name. ok is false when nothing matches.
func FindLatest(dir string, pattern *regexp.Regexp) (string, bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false, err
	}

	var matches []string
	for _, e := range entries {
		if e.IsDir() || !pattern.MatchString(e.Name()) {
			continue
		}
		matches = append(matches, e.Name())
	}
	if len(matches) == 0 {
		return "", false, nil
	}

	sort.Slice(matches, func(i, j int) bool {
		ti, tj := timestampOf(matches[i]), timestampOf(matches[j])
		if ti != tj {
			return ti > tj
		}
		return matches[i] > matches[j]
	})
	return filepath.Join(dir, matches[0]), true, nil
}

func timestampOf(name string) string {
	return exportTimestamp.FindString(name)
}

// -----------------------------------------------------------------------------

// LocateAll resolves the file of every configured source. Sources without a
// file are logged and left out.
func (m *MultiSourceLoader) LocateAll(profileDir string) (map[models.SourceKey]string, error) {
	info, err := os.Stat(profileDir)
	if err != nil {
		return nil, fmt.Errorf("profile directory %s: %w", profileDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("profile directory %s is not a directory", profileDir)
	}

	paths := make(map[models.SourceKey]string, len(m.Patterns))
	for _, key := range models.AllSources {
		re, ok := m.Patterns[key]
		if !ok {
			continue
		}
		path, found, err := FindLatest(profileDir, re)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", profileDir, err)
		}
		if !found {
			m.Logger.Warning("No %s file found for this user.", key)
			continue
		}
		paths[key] = path
	}
	return paths, nil
}

// -----------------------------------------------------------------------------

// LoadAll fans out one read per located file and collects the tables. A
// source whose file cannot be read is logged and treated as absent.
func (m *MultiSourceLoader) LoadAll(ctx context.Context, profileDir string) (models.MSourceTables, error) {
	paths, err := m.LocateAll(profileDir)
	if err != nil {
		return nil, err
	}

	results := make(models.MSourceTables, len(paths))
	var wg sync.WaitGroup

	for key, path := range paths {
		wg.Add(1)
		go func(key models.SourceKey, path string) {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			table, err := m.Reader.ReadTable(key, path)
			if err != nil {
				m.Logger.Error("Error loading %s data: %v", key, err)
				return
			}
			m.mu.Lock()
			results[key] = table
			m.mu.Unlock()
			m.Logger.Info("Loaded %s data: %s", key, path)
		}(key, path)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// -----------------------------------------------------------------------------

// Loaded lists the present sources in load order, for logging.
func Loaded(tables models.MSourceTables) string {
	var names []string
	for _, key := range models.AllSources {
		if tables[key] != nil {
			names = append(names, string(key))
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}
