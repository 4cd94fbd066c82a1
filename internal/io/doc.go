// Package ioutils provides the file system operations used when correcting
// misnamed files.
//
// This package contains functions for:
//   - Moving files, across devices if needed
//   - Path sanitization
//   - Directory creation
//
// # File Operations
//
//	// Move a file into place, creating parent directories
//	err := ioutils.MoveFile("/music/Rock/a.mp3", "/music/Rock/Artist/2002 Album/01 - a.mp3")
//
//	// Ensure directory exists
//	err := ioutils.EnsureDir("/path/to/new/directory")
//
// # Path Sanitization
//
// Use SanitizePath to clean a relative path typed by the user:
//
//	safe := ioutils.SanitizePath("Rock/Artist: Live/01.mp3") // "Rock/Artist_ Live/01.mp3"
package ioutils
