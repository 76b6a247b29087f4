package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/yildizm/BugFinder/internal/bugapi"
	"github.com/yildizm/BugFinder/internal/config"
)

// maxSourceBytes bounds how much code is read from a file or stdin
const maxSourceBytes = 512 * 1024

// source is a snippet ready for submission
type source struct {
	code     string
	language bugapi.Language
	name     string
}

// readSource reads code from the file in args, or from stdin when args is empty.
// The language comes from langFlag, then the file extension, then the config.
func readSource(stdin io.Reader, args []string, langFlag string, cfg *config.Config) (*source, error) {
	src := &source{name: "stdin"}

	if len(args) == 0 {
		if isVerbose() {
			fmt.Fprintf(os.Stderr, "Reading from stdin...\n")
		}
		code, err := readLimited(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		src.code = code
	} else {
		filename := args[0]
		if err := validateFilePath(filename); err != nil {
			return nil, fmt.Errorf("invalid file path: %w", err)
		}

		cleanPath := filepath.Clean(filename)
		// #nosec G304 - path is validated above
		file, err := os.Open(cleanPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open file %s: %w", filename, err)
		}
		defer func() {
			if err := file.Close(); err != nil && isVerbose() {
				fmt.Fprintf(os.Stderr, "Warning: failed to close file: %v\n", err)
			}
		}()

		code, err := readLimited(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
		}
		src.code = code
		src.name = filepath.Base(cleanPath)
	}

	lang, err := resolveLanguage(langFlag, args, cfg)
	if err != nil {
		return nil, err
	}
	src.language = lang

	return src, nil
}

// resolveLanguage picks the submission language
func resolveLanguage(langFlag string, args []string, cfg *config.Config) (bugapi.Language, error) {
	if langFlag != "" {
		return bugapi.ParseLanguage(langFlag)
	}
	if len(args) > 0 {
		if lang, ok := bugapi.LanguageForFile(args[0]); ok {
			return lang, nil
		}
	}
	return cfg.Language(), nil
}

func readLimited(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxSourceBytes+1))
	if err != nil {
		return "", err
	}
	if len(data) > maxSourceBytes {
		return "", fmt.Errorf("input exceeds %d bytes", maxSourceBytes)
	}
	return string(data), nil
}

// validateFilePath validates that a file path is safe to read
func validateFilePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("empty file path")
	}

	info, err := os.Stat(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("cannot access file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("path is a directory, must be a file")
	}

	return nil
}
