package extract

import (
	"os"
	"strings"

	"github.com/lantern-study/lantern/utils"
)

// PlainTextExtractor reads .txt files verbatim
type PlainTextExtractor struct{}

func (e *PlainTextExtractor) Name() string { return "plain-text" }

func (e *PlainTextExtractor) CanExtract(path string) bool {
	return utils.FileTypeTag(path) == "plain-text"
}

func (e *PlainTextExtractor) Extract(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// MarkdownExtractor reads .md files and normalizes their structure: headings
// and list items are kept with their markers, fenced code blocks are replaced
// by a marker line, everything else passes through.
type MarkdownExtractor struct{}

func (e *MarkdownExtractor) Name() string { return "structured-text" }

func (e *MarkdownExtractor) CanExtract(path string) bool {
	return utils.FileTypeTag(path) == "structured-text"
}

func (e *MarkdownExtractor) Extract(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, line := range strings.Split(string(data), "\n") {
		switch {
		case strings.HasPrefix(line, "# "):
			b.WriteString("\n# " + line[2:] + "\n\n")
		case strings.HasPrefix(line, "## "):
			b.WriteString("\n## " + line[3:] + "\n\n")
		case strings.HasPrefix(line, "### "):
			b.WriteString("\n### " + line[4:] + "\n\n")
		case strings.HasPrefix(line, "- "), strings.HasPrefix(line, "* "):
			b.WriteString("- " + line[2:] + "\n")
		case strings.HasPrefix(line, "```"):
			b.WriteString("\n--- Code Block ---\n")
		case strings.TrimSpace(line) != "":
			b.WriteString(line + "\n")
		default:
			b.WriteString("\n")
		}
	}
	return b.String(), nil
}
