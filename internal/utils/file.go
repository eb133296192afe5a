package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// RegionSuffix names the sidecar file holding an image's region.
const RegionSuffix = ".region.json"

var imageExts = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "gif": true,
	"bmp": true, "tiff": true, "webp": true,
}

// EnsureDir creates a directory if it doesn't exist
func EnsureDir(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}

// GetFileExtension returns the file extension without the dot
func GetFileExtension(filename string) string {
	ext := filepath.Ext(filename)
	if len(ext) > 0 {
		return strings.ToLower(ext[1:])
	}
	return ""
}

// IsImageFile checks if a file has an image extension
func IsImageFile(filename string) bool {
	return imageExts[GetFileExtension(filename)]
}

// GenerateOutputFilename generates an output filename based on input and parameters
func GenerateOutputFilename(inputFile, outputDir, prefix, suffix, format string) string {
	baseName := filepath.Base(inputFile)
	nameWithoutExt := strings.TrimSuffix(baseName, filepath.Ext(baseName))
	return outputPath(nameWithoutExt, outputDir, prefix, suffix, outputFormat(inputFile, format))
}

func outputFormat(inputFile, format string) string {
	if format != "" {
		return format
	}
	if ext := GetFileExtension(inputFile); ext != "" {
		return ext
	}
	return "jpg"
}

func outputPath(name, outputDir, prefix, suffix, format string) string {
	return filepath.Join(outputDir, fmt.Sprintf("%s%s%s.%s", prefix, name, suffix, format))
}

// OutputPaths assigns every input a distinct output path. Inputs whose
// default names collide (photo.jpg and photo.png, or the same name in two
// directories) keep their extension in the name and, if still taken, get a
// numeric suffix. Inputs are processed in order, so sorted inputs give
// stable names.
func OutputPaths(inputs []string, outputDir, prefix, suffix, format string) map[string]string {
	counts := make(map[string]int, len(inputs))
	for _, in := range inputs {
		counts[GenerateOutputFilename(in, outputDir, prefix, suffix, format)]++
	}

	used := make(map[string]bool, len(inputs))
	out := make(map[string]string, len(inputs))
	for _, in := range inputs {
		base := filepath.Base(in)
		name := strings.TrimSuffix(base, filepath.Ext(base))
		f := outputFormat(in, format)
		if counts[outputPath(name, outputDir, prefix, suffix, f)] > 1 {
			if ext := GetFileExtension(in); ext != "" {
				name += "_" + ext
			}
		}
		p := outputPath(name, outputDir, prefix, suffix, f)
		for i := 2; used[p]; i++ {
			p = outputPath(fmt.Sprintf("%s_%d", name, i), outputDir, prefix, suffix, f)
		}
		used[p] = true
		out[in] = p
	}
	return out
}

// RegionFileFor returns the sidecar region path for an image:
// photo.jpg -> photo.jpg.region.json in the same directory. The full file
// name is kept so photo.jpg and photo.png get separate regions.
func RegionFileFor(imagePath string) string {
	return imagePath + RegionSuffix
}

// ListImageFiles recursively lists all image files in a directory
func ListImageFiles(dir string) ([]string, error) {
	var files []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && IsImageFile(path) {
			files = append(files, path)
		}
		return nil
	})

	return files, err
}

// ResolveInputs expands directories into the image files they contain and
// returns a sorted, de-duplicated list. Plain files are kept as given.
func ResolveInputs(inputs []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, in := range inputs {
		switch {
		case DirExists(in):
			files, err := ListImageFiles(in)
			if err != nil {
				return nil, fmt.Errorf("list %s: %w", in, err)
			}
			for _, f := range files {
				add(f)
			}
		case FileExists(in):
			add(in)
		default:
			return nil, fmt.Errorf("input not found: %s", in)
		}
	}

	sort.Strings(out)
	return out, nil
}

// FileExists checks if a file exists and is not a directory
func FileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// DirExists checks if a directory exists
func DirExists(dirname string) bool {
	info, err := os.Stat(dirname)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// FormatFileSize formats file size in human-readable format
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

	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
