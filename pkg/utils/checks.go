package utils

import "os"

// FileExist reports whether path exists and is a regular file.
func FileExist(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// FileIsExecutable reports whether path is a regular file with any execute
// bit set.
func FileIsExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Mode().Perm()&0111 != 0
}
