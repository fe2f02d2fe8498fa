package box

import (
	"os"
	"path/filepath"
)

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// evalSymlinksLenient resolves symlinks on the longest existing prefix of
// path (so a not-yet-created [save] target still canonicalizes) and
// reattaches the remaining, nonexistent suffix unresolved.
func evalSymlinksLenient(path string) (string, error) {
	if _, err := os.Lstat(path); err == nil {
		return filepath.EvalSymlinks(path)
	}

	dir, base := filepath.Dir(path), filepath.Base(path)
	if dir == path {
		return path, nil
	}
	resolvedDir, err := evalSymlinksLenient(dir)
	if err != nil {
		return "", err
	}
	return filepath.Join(resolvedDir, base), nil
}
