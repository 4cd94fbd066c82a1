package ioutils

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"syscall"
)

// ErrExists is returned by MoveFile when the destination already exists.
var ErrExists = errors.New("destination already exists")

var (
	invalidChars  = regexp.MustCompile(`[<>:"\\|?*\x00-\x1f]`)
	trailingDots  = regexp.MustCompile(`\.+$`)
	repeatedSpace = regexp.MustCompile(`\s+`)
)

// MoveFile renames src to dst, creating the parent directories of dst.
//
// An existing dst is never overwritten. When src and dst are on different
// devices the file is copied and the source removed.
//
// Example:
//
//	err := MoveFile("/music/Rock/a.mp3", "/music/Rock/Artist/2002 Album/01 - a.mp3")
func MoveFile(src, dst string) error {
	if _, err := os.Lstat(dst); err == nil {
		return fmt.Errorf("%s: %w", dst, ErrExists)
	}

	if err := EnsureDir(filepath.Dir(dst)); err != nil {
		return err
	}

	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return err
	}

	if err := copyFile(src, dst); err != nil {
		os.Remove(dst)
		return err
	}
	return os.Remove(src)
}

// copyFile copies src to dst, keeping the source permissions.
func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	info, err := sourceFile.Stat()
	if err != nil {
		return err
	}

	destFile, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		destFile.Close()
		return err
	}
	return destFile.Close()
}

// SanitizePath cleans every "/"-separated level of a relative path.
//
// The following transformations are applied to each level:
//   - Invalid characters (<>:"\|?* and control chars 0x00-0x1f) → underscore
//   - Trailing dots → removed, except on the last level where they may
//     precede the extension
//   - Multiple whitespace → single space
//   - Leading and trailing whitespace → removed
//
// Empty, "." and ".." levels are dropped, so "a//b/" becomes "a/b" and the
// result never leaves the directory it is joined to.
//
// Example:
//
//	SanitizePath("Rock/Artist:  Live/01 - Song?.mp3") // "Rock/Artist_ Live/01 - Song_.mp3"
func SanitizePath(rel string) string {
	levels := strings.Split(rel, "/")
	out := make([]string, 0, len(levels))
	for i, level := range levels {
		level = invalidChars.ReplaceAllString(level, "_")
		if i < len(levels)-1 {
			level = trailingDots.ReplaceAllString(level, "")
		}
		level = repeatedSpace.ReplaceAllString(level, " ")
		level = strings.TrimSpace(level)
		if level != "" && level != "." && level != ".." {
			out = append(out, level)
		}
	}
	return strings.Join(out, "/")
}

// EnsureDir creates a directory and all parent directories if they don't exist.
//
// Directories are created with mode 0755 (rwxr-xr-x).
// If the directory already exists, no error is returned.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}
