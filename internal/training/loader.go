package training

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

var (
	headPattern  = regexp.MustCompile(`^(\d+)\.\s*(.+)`)
	splitPattern = regexp.MustCompile(`\n\s*(\d+\.\s)`)
)

// ParseQuestionBank reads a plain-text question bank of the form
//
//	1. What is phishing?
//	An attempt to obtain sensitive information by impersonating
//	a trustworthy party.
//
//	2. ...
//
// Each numbered line starts a question; the lines until the next number are
// its reference answer. All parsed questions get level 1, module "general".
func ParseQuestionBank(r io.Reader) ([]Question, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read question bank: %w", err)
	}

	// Leading newline simplifies splitting on numbered headings.
	text := "\n" + strings.TrimSpace(string(data))

	// Re-attach the heading that the split consumes.
	indices := splitPattern.FindAllStringSubmatchIndex(text, -1)
	var blocks []string
	for i, loc := range indices {
		start := loc[2] // start of the "N. " capture
		end := len(text)
		if i+1 < len(indices) {
			end = indices[i+1][2]
		}
		blocks = append(blocks, strings.TrimSpace(text[start:end]))
	}

	var questions []Question
	for _, block := range blocks {
		if block == "" {
			continue
		}
		lines := strings.Split(block, "\n")
		head := headPattern.FindStringSubmatch(strings.TrimSpace(lines[0]))
		if head == nil {
			continue
		}

		number, err := strconv.Atoi(head[1])
		if err != nil {
			continue
		}

		var answerParts []string
		for _, line := range lines[1:] {
			if line = strings.TrimSpace(line); line != "" {
				answerParts = append(answerParts, line)
			}
		}

		questions = append(questions, Question{
			Number:   number,
			Question: strings.TrimSpace(head[2]),
			Answer:   strings.Join(answerParts, " "),
			Level:    1,
			Module:   "general",
		})
	}

	if len(questions) == 0 {
		return nil, fmt.Errorf("no questions detected, check the file format")
	}
	return questions, nil
}
