package files

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"crickalytics/internal/dataset"
)

// Source roles.
const (
	RolePlayers        = "players"
	RoleBowling        = "bowling"
	RoleFallOfWickets  = "fall_of_wickets"
	RolePartnerships   = "partnerships"
	RoleMatchSummaries = "match_summaries"
)

// FileInfo represents information about a discovered file
type FileInfo struct {
	Role     string    `json:"role,omitempty"`
	Path     string    `json:"path"`
	Name     string    `json:"name"`
	Size     int64     `json:"size"`
	ModTime  time.Time `json:"mod_time,omitempty"`
	Present  bool      `json:"present"`
	Required bool      `json:"required"`
}

// Inventory is the state of the data directory.
type Inventory struct {
	Dir     string     `json:"dir"`
	Sources []FileInfo `json:"sources"`
	// Extra lists CSV files in Dir that no source refers to.
	Extra []FileInfo `json:"extra"`
}

// Missing returns the names of required sources that are absent.
func (inv Inventory) Missing() []string {
	var missing []string
	for _, f := range inv.Sources {
		if f.Required && !f.Present {
			missing = append(missing, f.Name)
		}
	}
	return missing
}

// Discovery provides file discovery operations
type Discovery struct {
	sources dataset.Sources
}

// NewDiscovery creates a new file discovery instance
func NewDiscovery(sources dataset.Sources) *Discovery {
	return &Discovery{sources: sources}
}

// Inventory stats every configured source and lists the remaining CSV files
// of the data directory. A missing directory is an error.
func (d *Discovery) Inventory() (Inventory, error) {
	inv := Inventory{Dir: d.sources.Dir, Sources: []FileInfo{}, Extra: []FileInfo{}}

	known := make(map[string]struct{})
	for _, src := range d.roles() {
		if src.name == "" {
			continue
		}
		path := d.sources.Path(src.name)
		known[filepath.Clean(path)] = struct{}{}

		info := FileInfo{
			Role:     src.role,
			Path:     path,
			Name:     filepath.Base(path),
			Required: src.required,
		}
		st, err := os.Stat(path)
		switch {
		case err == nil && !st.IsDir():
			info.Present = st.Size() > 0
			info.Size = st.Size()
			info.ModTime = st.ModTime()
		case err != nil && !errors.Is(err, fs.ErrNotExist):
			return inv, fmt.Errorf("failed to stat %s: %w", path, err)
		}
		inv.Sources = append(inv.Sources, info)
	}

	csvs, err := d.FindCSVFiles(d.sources.Dir)
	if err != nil {
		return inv, err
	}
	for _, f := range csvs {
		if _, ok := known[filepath.Clean(f.Path)]; !ok {
			inv.Extra = append(inv.Extra, f)
		}
	}
	return inv, nil
}

type sourceRole struct {
	role     string
	name     string
	required bool
}

func (d *Discovery) roles() []sourceRole {
	return []sourceRole{
		{RolePlayers, d.sources.Players, true},
		{RoleBowling, d.sources.Bowling, true},
		{RoleFallOfWickets, d.sources.FallOfWickets, true},
		{RolePartnerships, d.sources.Partnerships, true},
		{RoleMatchSummaries, d.sources.MatchSummaries, false},
	}
}

// FindCSVFiles finds all CSV files in the specified directory, sorted by name
func (d *Discovery) FindCSVFiles(dir string) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if !strings.HasSuffix(strings.ToLower(name), ".csv") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}

		files = append(files, FileInfo{
			Path:    filepath.Join(dir, name),
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime(),
			Present: info.Size() > 0,
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})
	return files, nil
}

// GetLatestFile returns the most recently modified present file from a list
func GetLatestFile(files []FileInfo) (FileInfo, bool) {
	var (
		latest FileInfo
		found  bool
	)
	for _, file := range files {
		if !file.Present {
			continue
		}
		if !found || file.ModTime.After(latest.ModTime) {
			latest = file
			found = true
		}
	}
	return latest, found
}
