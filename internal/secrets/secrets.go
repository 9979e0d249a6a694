// Package secrets resolves credentials from mounted files (Docker and
// Kubernetes secrets) or from values with ${VAR} references.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sofi-fitness/studio-landing/internal/errors"
)

// maxSecretFileSize bounds secret file reads; tokens and DSNs are small.
const maxSecretFileSize = 64 * 1024

// ExpandString replaces ${VAR} and ${VAR:-default} references with values
// from the environment. A reference without a default to an unset variable
// is an error.
func ExpandString(s string) (string, error) {
	if s == "" {
		return "", nil
	}

	var missing []string
	expanded := os.Expand(s, func(key string) string {
		name, fallback, hasFallback := strings.Cut(key, ":-")
		if value := os.Getenv(name); value != "" {
			return value
		}
		if hasFallback {
			return fallback
		}
		missing = append(missing, name)
		return ""
	})

	if len(missing) > 0 {
		return "", errors.Newf("missing environment variable(s): %s", strings.Join(missing, ", ")).
			Component("secrets").
			Category(errors.CategoryConfiguration).
			Build()
	}
	return expanded, nil
}

// File is a secret read from disk.
type File struct {
	Value string
	// Permissive is set when group or other may read the file.
	Permissive bool
}

// ReadFile reads a secret file and trims trailing newlines.
func ReadFile(path string) (File, error) {
	if path == "" {
		return File{}, fileError(fmt.Errorf("secret file path is empty"), path)
	}
	clean := filepath.Clean(path)

	info, err := os.Stat(clean)
	if err != nil {
		return File{}, fileError(err, clean)
	}
	if !info.Mode().IsRegular() {
		return File{}, fileError(fmt.Errorf("not a regular file"), clean)
	}
	if info.Size() > maxSecretFileSize {
		return File{}, fileError(fmt.Errorf("file larger than %d bytes", maxSecretFileSize), clean)
	}

	data, err := os.ReadFile(clean)
	if err != nil {
		return File{}, fileError(err, clean)
	}
	value := strings.TrimRight(string(data), "\r\n")
	if value == "" {
		return File{}, fileError(fmt.Errorf("file is empty"), clean)
	}
	return File{Value: value, Permissive: info.Mode().Perm()&0o077 != 0}, nil
}

// Resolve returns the secret from filePath when set, otherwise value with
// environment references expanded.
func Resolve(filePath, value string) (string, error) {
	if filePath != "" {
		f, err := ReadFile(filePath)
		if err != nil {
			return "", err
		}
		return f.Value, nil
	}
	return ExpandString(value)
}

func fileError(err error, path string) error {
	return errors.New(fmt.Errorf("secret file: %w", err)).
		Component("secrets").
		Category(errors.CategoryConfiguration).
		Context("path", path).
		Build()
}
