package scan

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"shoebox/internal/ledger"
	"shoebox/internal/sidecar"
)

// ExtensionOf returns the lowercased extension of a file name, dot included.
func ExtensionOf(name string) string {
	return strings.ToLower(filepath.Ext(name))
}

// File is one classified entry from a walk of a batch root.
type File struct {
	Path string
	Dir  string
	Name string
	Size int64
}

// Listing is the classified file inventory of a batch root. Everything that
// is not JSON counts as media; JSON splits into sidecars and album metadata.
type Listing struct {
	Root        string
	Media       []File
	Sidecars    []File
	Albums      []File
	Directories int
}

// Walk inventories a batch root. The per-root state directory and hidden
// entries are skipped.
func Walk(root string) (*Listing, error) {
	listing := &Listing{Root: root}

	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := entry.Name()
		if entry.IsDir() {
			if path != root && (name == ledger.StateDirName || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			listing.Directories++
			return nil
		}
		if strings.HasPrefix(name, ".") {
			return nil
		}

		info, err := entry.Info()
		if err != nil {
			return err
		}
		file := File{
			Path: path,
			Dir:  filepath.Dir(path),
			Name: name,
			Size: info.Size(),
		}

		switch {
		case !strings.EqualFold(filepath.Ext(name), ".json"):
			listing.Media = append(listing.Media, file)
		case sidecar.IsAlbumMetadata(name):
			listing.Albums = append(listing.Albums, file)
		default:
			listing.Sidecars = append(listing.Sidecars, file)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	sort.Slice(listing.Media, func(i, j int) bool { return listing.Media[i].Path < listing.Media[j].Path })
	sort.Slice(listing.Sidecars, func(i, j int) bool { return listing.Sidecars[i].Path < listing.Sidecars[j].Path })
	sort.Slice(listing.Albums, func(i, j int) bool { return listing.Albums[i].Path < listing.Albums[j].Path })
	return listing, nil
}
