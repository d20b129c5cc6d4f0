// Package corpus reads a tree of stored documents from a hackpadfs FS.
//
// Every *.html, *.htm and *.json file is one document. Its id is the
// slash-separated path relative to the root without the extension, and its
// title is the base name without the extension. Content is passed through
// untouched; format detection is the extractor's job.
package corpus

import (
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hack-pad/hackpadfs"
	osfs "github.com/hack-pad/hackpadfs/os"
)

// Extensions lists the file extensions treated as documents
var Extensions = []string{".html", ".htm", ".json"}

// Document is one file of the corpus
type Document struct {
	ID      string
	Title   string
	Content string
}

// OpenDir returns the host directory dir as a hackpadfs FS
func OpenDir(dir string) (hackpadfs.FS, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	fsys := osfs.NewFS()
	sub, err := fsys.FromOSPath(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to map %s: %w", dir, err)
	}
	return fsys.Sub(sub)
}

// Load reads every document under root, sorted by id. Hidden files and
// directories are skipped.
func Load(fsys hackpadfs.FS, root string) ([]Document, error) {
	if root == "" {
		root = "."
	}

	var docs []Document
	if err := walk(fsys, root, &docs); err != nil {
		return nil, err
	}

	for i := range docs {
		rel := strings.TrimPrefix(docs[i].ID, root+"/")
		if root == "." {
			rel = docs[i].ID
		}
		docs[i].ID = rel
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].ID < docs[j].ID
	})
	return docs, nil
}

func walk(fsys hackpadfs.FS, dir string, docs *[]Document) error {
	entries, err := hackpadfs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", dir, err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		p := path.Join(dir, name)

		if entry.IsDir() {
			if err := walk(fsys, p, docs); err != nil {
				return err
			}
			continue
		}

		ext := strings.ToLower(path.Ext(name))
		if !isDocument(ext) {
			continue
		}
		data, err := hackpadfs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", p, err)
		}
		*docs = append(*docs, Document{
			ID:      strings.TrimSuffix(p, path.Ext(p)),
			Title:   strings.TrimSuffix(name, path.Ext(name)),
			Content: string(data),
		})
	}
	return nil
}

func isDocument(ext string) bool {
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}
