package commands

import (
	"embed"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

//go:embed all:templates
var templateFS embed.FS

// copyTemplate copies an embedded template directory to the target path.
// Existing files are kept unless force is set.
func copyTemplate(templateName, targetDir string, force bool) error {
	root := path.Join("templates", templateName)

	return fs.WalkDir(templateFS, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel := strings.TrimPrefix(strings.TrimPrefix(p, root), "/")
		if rel == "" {
			return nil
		}
		targetPath := filepath.Join(targetDir, filepath.FromSlash(renameSpecialFiles(rel)))

		if d.IsDir() {
			return os.MkdirAll(targetPath, 0750)
		}

		if !force {
			if _, err := os.Stat(targetPath); err == nil {
				return nil // Skip existing files
			}
		}

		content, err := templateFS.ReadFile(p)
		if err != nil {
			return err
		}
		return os.WriteFile(targetPath, content, 0600)
	})
}

// renameSpecialFiles maps template names to dotfiles ("gitignore" -> ".gitignore").
func renameSpecialFiles(p string) string {
	if path.Base(p) == "gitignore" {
		return path.Join(path.Dir(p), ".gitignore")
	}
	return p
}

// listTemplateFiles returns all files in a template, slash-separated.
func listTemplateFiles(templateName string) ([]string, error) {
	var files []string
	root := path.Join("templates", templateName)

	err := fs.WalkDir(templateFS, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			rel := strings.TrimPrefix(strings.TrimPrefix(p, root), "/")
			files = append(files, renameSpecialFiles(rel))
		}
		return nil
	})

	return files, err
}

// groupTemplateFiles groups files by their top-level directory; files at
// the root are "config".
func groupTemplateFiles(files []string) map[string][]string {
	groups := map[string][]string{}
	for _, f := range files {
		group := "config"
		if dir, _, ok := strings.Cut(f, "/"); ok {
			group = dir
		}
		groups[group] = append(groups[group], f)
	}
	return groups
}
