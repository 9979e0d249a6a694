package httpcontroller

import (
	"bufio"
	"fmt"
	"io/fs"
	"regexp"
	"slices"
	"strings"

	"github.com/sofi-fitness/studio-landing/internal/content"
)

// TemplateIssue represents a template validation issue
type TemplateIssue struct {
	File    string
	Line    int
	Content string
	Issue   string
}

// TemplateValidationResult holds the results of template validation
type TemplateValidationResult struct {
	Issues       []TemplateIssue
	FilesScanned int
}

var (
	// data-track-section values must be section ids known to the analytics pipeline.
	trackSectionPattern = regexp.MustCompile(`data-track-section="([^"{]+)"`)
	// Pages get settings through PageData, never the raw Settings struct.
	settingsPattern = regexp.MustCompile(`\{\{[^}]*\.Settings\.`)
)

// ValidateTemplates scans the HTML templates under root for tracked sections
// that the analytics pipeline does not know and for direct settings access.
func ValidateTemplates(fsys fs.FS, root string) (*TemplateValidationResult, error) {
	result := &TemplateValidationResult{
		Issues: make([]TemplateIssue, 0),
	}

	err := fs.WalkDir(fsys, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".html") {
			return nil
		}

		result.FilesScanned++

		issues, scanErr := scanTemplateFile(fsys, path)
		if scanErr != nil {
			return fmt.Errorf("error scanning %s: %w", path, scanErr)
		}

		result.Issues = append(result.Issues, issues...)
		return nil
	})

	return result, err
}

// scanTemplateFile scans a single template file
func scanTemplateFile(fsys fs.FS, path string) ([]TemplateIssue, error) {
	file, err := fsys.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var issues []TemplateIssue
	scanner := bufio.NewScanner(file)
	lineNum := 1

	for scanner.Scan() {
		line := scanner.Text()

		for _, m := range trackSectionPattern.FindAllStringSubmatch(line, -1) {
			if !slices.Contains(content.SectionIDs, m[1]) {
				issues = append(issues, TemplateIssue{
					File:    path,
					Line:    lineNum,
					Content: strings.TrimSpace(line),
					Issue:   fmt.Sprintf("Unknown tracked section %q", m[1]),
				})
			}
		}

		if settingsPattern.MatchString(line) {
			issues = append(issues, TemplateIssue{
				File:    path,
				Line:    lineNum,
				Content: strings.TrimSpace(line),
				Issue:   "Uses .Settings directly - pass the value through PageData instead",
			})
		}

		lineNum++
	}

	return issues, scanner.Err()
}

// HasIssues returns true if validation found any issues
func (r *TemplateValidationResult) HasIssues() bool {
	return len(r.Issues) > 0
}

// String formats the validation result as a string
func (r *TemplateValidationResult) String() string {
	if !r.HasIssues() {
		return fmt.Sprintf("Template validation passed: %d files scanned, no issues found", r.FilesScanned)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Template validation found %d issues in %d files:\n", len(r.Issues), r.FilesScanned)

	for _, issue := range r.Issues {
		fmt.Fprintf(&sb, "  %s:%d - %s\n", issue.File, issue.Line, issue.Issue)
		fmt.Fprintf(&sb, "    Content: %s\n", issue.Content)
	}

	return sb.String()
}
