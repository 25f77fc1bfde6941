// Package filetree projects flat file change lists into the folder/file
// forest shown by the explorer.
package filetree

import (
	"sort"
	"strings"

	"github.com/yaguaretech/builder/log"
	"github.com/yaguaretech/builder/models"
)

// Projection is the tree view state derived from a file change list
type Projection struct {
	Nodes []models.FileNode `json:"nodes"`
	// Expanded lists the folder paths a tree view should open so every
	// changed file is visible
	Expanded []string `json:"expanded"`
	// Selected is the first created file, if any
	Selected string `json:"selected,omitempty"`
}

// node is the mutable build-time form of models.FileNode
type node struct {
	name     string
	path     string
	folder   bool
	explicit bool // folder declared by the baseline; survives becoming empty
	children map[string]*node
}

func newFolder(name, path string) *node {
	return &node{name: name, path: path, folder: true, children: make(map[string]*node)}
}

// Project merges changes over baseline and returns the resulting forest.
// Folders exist for every path prefix exactly once; each file appears once
// as a leaf and later changes to a path replace earlier ones. Delete actions
// remove the leaf. Malformed paths are skipped.
func Project(baseline []models.FileNode, changes []models.FileChange) Projection {
	root := newFolder("", "")

	for _, p := range flattenBaseline(baseline) {
		if p.folder {
			f := ensureFolder(root, p.path)
			if f != nil {
				f.explicit = true
			}
			continue
		}
		insertFile(root, p.path)
	}

	expanded := make(map[string]struct{})
	var created []string

	for _, c := range changes {
		path, err := models.NormalizePath(c.Path)
		if err != nil {
			log.Debug().Err(err).Str("path", c.Path).Msg("skipping file change with malformed path")
			continue
		}

		if c.Action == models.ActionDelete {
			removeFile(root, path)
			continue
		}

		if !insertFile(root, path) {
			continue
		}
		for _, dir := range ancestors(path) {
			expanded[dir] = struct{}{}
		}
		if c.Action == models.ActionCreate {
			created = append(created, path)
		}
	}

	// A later delete may have removed an expanded folder
	dirs := make([]string, 0, len(expanded))
	for dir := range expanded {
		if lookup(root, dir) != nil {
			dirs = append(dirs, dir)
		}
	}
	sort.Strings(dirs)

	selected := ""
	for _, path := range created {
		if n := lookup(root, path); n != nil && !n.folder {
			selected = path
			break
		}
	}

	return Projection{
		Nodes:    freeze(root),
		Expanded: dirs,
		Selected: selected,
	}
}

// Leaves returns the sorted file paths contained in a forest
func Leaves(nodes []models.FileNode) []string {
	var out []string
	var walk func([]models.FileNode)
	walk = func(ns []models.FileNode) {
		for _, n := range ns {
			if n.IsFolder() {
				walk(n.Children)
				continue
			}
			out = append(out, n.Path)
		}
	}
	walk(nodes)
	sort.Strings(out)
	return out
}

// ancestors returns every proper directory prefix of path, shallowest first
func ancestors(path string) []string {
	segments := strings.Split(path, "/")
	out := make([]string, 0, len(segments)-1)
	for i := 1; i < len(segments); i++ {
		out = append(out, strings.Join(segments[:i], "/"))
	}
	return out
}

// ensureFolder walks path creating folders as needed. A file sitting where a
// folder is needed is replaced by the folder.
func ensureFolder(root *node, path string) *node {
	cur := root
	for _, seg := range strings.Split(path, "/") {
		next, ok := cur.children[seg]
		if !ok || !next.folder {
			p := seg
			if cur.path != "" {
				p = cur.path + "/" + seg
			}
			next = newFolder(seg, p)
			cur.children[seg] = next
		}
		cur = next
	}
	return cur
}

// insertFile places a leaf at path. Returns false when a folder already owns
// the path; the change is dropped rather than destroying the folder.
func insertFile(root *node, path string) bool {
	parent := root
	name := path
	if i := strings.LastIndex(path, "/"); i >= 0 {
		parent = ensureFolder(root, path[:i])
		name = path[i+1:]
	}

	if existing, ok := parent.children[name]; ok && existing.folder {
		log.Debug().Str("path", path).Msg("file change collides with folder, skipping")
		return false
	}
	parent.children[name] = &node{name: name, path: path}
	return true
}

func removeFile(root *node, path string) {
	segments := strings.Split(path, "/")
	chain := []*node{root}
	cur := root
	for _, seg := range segments[:len(segments)-1] {
		next, ok := cur.children[seg]
		if !ok || !next.folder {
			return
		}
		chain = append(chain, next)
		cur = next
	}

	name := segments[len(segments)-1]
	if leaf, ok := cur.children[name]; !ok || leaf.folder {
		return
	}
	delete(cur.children, name)

	// Prune folders emptied by the removal, deepest first
	for i := len(chain) - 1; i > 0; i-- {
		f := chain[i]
		if len(f.children) > 0 || f.explicit {
			break
		}
		delete(chain[i-1].children, f.name)
	}
}

func lookup(root *node, path string) *node {
	cur := root
	for _, seg := range strings.Split(path, "/") {
		next, ok := cur.children[seg]
		if !ok {
			return nil
		}
		cur = next
	}
	return cur
}

// freeze converts the build tree into sorted immutable FileNodes:
// folders first, then files, each group by name
func freeze(n *node) []models.FileNode {
	if len(n.children) == 0 {
		return nil
	}

	kids := make([]*node, 0, len(n.children))
	for _, c := range n.children {
		kids = append(kids, c)
	}
	sort.Slice(kids, func(i, j int) bool {
		if kids[i].folder != kids[j].folder {
			return kids[i].folder
		}
		return kids[i].name < kids[j].name
	})

	out := make([]models.FileNode, 0, len(kids))
	for _, c := range kids {
		fn := models.FileNode{Name: c.name, Path: c.path, Type: models.NodeFile}
		if c.folder {
			fn.Type = models.NodeFolder
			fn.Children = freeze(c)
		}
		out = append(out, fn)
	}
	return out
}

type baselinePath struct {
	path   string
	folder bool
}

// flattenBaseline lists the baseline's leaves and empty folders using each
// node's own path, renormalized
func flattenBaseline(nodes []models.FileNode) []baselinePath {
	var out []baselinePath
	var walk func([]models.FileNode)
	walk = func(ns []models.FileNode) {
		for _, n := range ns {
			path, err := models.NormalizePath(n.Path)
			if err != nil {
				continue
			}
			if n.IsFolder() {
				out = append(out, baselinePath{path: path, folder: true})
				walk(n.Children)
				continue
			}
			out = append(out, baselinePath{path: path})
		}
	}
	walk(nodes)
	return out
}
