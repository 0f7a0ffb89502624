package commands

import (
	"embed"
	"io/fs"
	"os"
	"path"
	"path/filepath"
)

//go:embed all:templates
var templateFS embed.FS

// copyTemplate copies an embedded template directory to targetDir. Existing
// files are kept unless force is set.
func copyTemplate(templateName, targetDir string, force bool) error {
	root := path.Join("templates", templateName)

	return fs.WalkDir(templateFS, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}

		target := filepath.Join(targetDir, renameSpecialFiles(rel))
		if d.IsDir() {
			return os.MkdirAll(target, 0o750)
		}
		if !force {
			if _, err := os.Stat(target); err == nil {
				return nil
			}
		}

		content, err := templateFS.ReadFile(p)
		if err != nil {
			return err
		}
		return os.WriteFile(target, content, 0o600)
	})
}

// renameSpecialFiles maps embedded names to dotfiles.
func renameSpecialFiles(p string) string {
	if filepath.Base(p) == "gitignore" {
		return filepath.Join(filepath.Dir(p), ".gitignore")
	}
	return p
}

// listTemplateFiles returns the files a template creates, relative to the
// target directory.
func listTemplateFiles(templateName string) ([]string, error) {
	var files []string
	root := path.Join("templates", templateName)

	err := fs.WalkDir(templateFS, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			rel, _ := filepath.Rel(root, p)
			files = append(files, renameSpecialFiles(rel))
		}
		return nil
	})
	return files, err
}
