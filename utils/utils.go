package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"invisiguard/models"
)

var invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)

func ValidateFile(filename string) error {
	if filename == "" {
		return fmt.Errorf("filename cannot be empty")
	}

	info, err := os.Stat(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file does not exist: %s", filename)
		}
		return fmt.Errorf("cannot access file %s: %w", filename, err)
	}

	if info.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", filename)
	}

	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("cannot open file %s: %w", filename, err)
	}
	defer file.Close()

	return nil
}

func EnsureDirectory(dirPath string) error {
	if dirPath == "" {
		return fmt.Errorf("directory path cannot be empty")
	}

	absPath, err := filepath.Abs(dirPath)
	if err != nil {
		return fmt.Errorf("cannot resolve absolute path for %s: %w", dirPath, err)
	}

	if err := os.MkdirAll(absPath, 0755); err != nil {
		return fmt.Errorf("cannot create directory %s: %w", absPath, err)
	}

	return nil
}

// ExpandFileArgs turns command line arguments into a file selection. Each
// argument may be a path, a glob or a comma separated list of either.
// Order follows the arguments, globs expand sorted, and duplicates are
// dropped.
func ExpandFileArgs(args []string) (models.SelectedFiles, error) {
	var selected models.SelectedFiles
	seen := make(map[string]bool)

	for _, arg := range args {
		for _, pattern := range ParseCommaSeparatedList(arg) {
			paths := []string{pattern}
			if strings.ContainsAny(pattern, "*?[") {
				matches, err := filepath.Glob(pattern)
				if err != nil {
					return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
				}
				if len(matches) == 0 {
					return nil, fmt.Errorf("no files match %s", pattern)
				}
				sort.Strings(matches)
				paths = matches
			}

			for _, path := range paths {
				if seen[path] {
					continue
				}
				if err := ValidateFile(path); err != nil {
					return nil, err
				}
				seen[path] = true
				selected = append(selected, models.LocalFile{Path: path})
			}
		}
	}

	return selected, nil
}

func FormatDuration(duration time.Duration) string {
	if duration < time.Second {
		return fmt.Sprintf("%d ms", duration.Milliseconds())
	}

	if duration < time.Minute {
		return fmt.Sprintf("%.1f sec", duration.Seconds())
	}

	if duration < time.Hour {
		return fmt.Sprintf("%.1f min", duration.Minutes())
	}

	return fmt.Sprintf("%.1f hrs", duration.Hours())
}

func FormatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}

	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	units := []string{"KB", "MB", "GB", "TB", "PB"}
	return fmt.Sprintf("%.1f %s", float64(size)/float64(div), units[exp])
}

func ParseCommaSeparatedList(input string) []string {
	if input == "" {
		return nil
	}

	parts := strings.Split(input, ",")
	var result []string

	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

func SanitizeFilename(filename string) string {
	filename = strings.TrimSpace(filename)
	filename = invalidFilenameChars.ReplaceAllString(filename, "_")

	if len(filename) > 255 {
		ext := filepath.Ext(filename)
		base := filename[:255-len(ext)]
		filename = base + ext
	}

	if filename == "" {
		filename = "unnamed"
	}

	return filename
}

func TruncateString(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}

	if maxLength <= 3 {
		return s[:maxLength]
	}

	return s[:maxLength-3] + "..."
}

func GenerateTimestamp(t time.Time) string {
	return t.Format("2006-01-02_15-04-05")
}

func GenerateOutputFilename(baseName string, extension string, at time.Time) string {
	timestamp := GenerateTimestamp(at)
	sanitizedName := SanitizeFilename(baseName)

	if extension != "" && !strings.HasPrefix(extension, ".") {
		extension = "." + extension
	}

	return fmt.Sprintf("%s_%s%s", sanitizedName, timestamp, extension)
}
