package training

import (
	"encoding/json"
	"fmt"
	"strings"
)

// MCQ is a multiple-choice rendering of a bank question, produced by the LLM.
type MCQ struct {
	Question      string            `json:"question"`
	Options       map[string]string `json:"options"`
	CorrectOption string            `json:"correct_option"`
}

var optionLetters = []string{"A", "B", "C", "D"}

// mcqPrompt asks the model to turn a bank question into a four-option MCQ in
// strict JSON. Models still wrap responses in code fences often enough that
// sanitizeJSON has to undo it.
func mcqPrompt(q Question) string {
	var b strings.Builder
	b.WriteString("You are a cybersecurity training assistant.\n")
	b.WriteString("You will receive a training item from the database.\n")
	b.WriteString("Create ONE multiple-choice question with exactly four options A, B, C, and D.\n")
	b.WriteString("Make sure exactly ONE option is clearly correct.\n")
	b.WriteString("Respond STRICTLY in this JSON format (no extra text, no markdown, no code fences):\n\n")
	b.WriteString("{\n")
	b.WriteString("  \"question\": \"...\",\n")
	b.WriteString("  \"options\": {\"A\": \"...\", \"B\": \"...\", \"C\": \"...\", \"D\": \"...\"},\n")
	b.WriteString("  \"correct_option\": \"A\" | \"B\" | \"C\" | \"D\"\n")
	b.WriteString("}\n\n")
	b.WriteString("Do NOT add ```json or ``` anywhere.\n\n")
	fmt.Fprintf(&b, "Database question: %s\n", q.Question)
	fmt.Fprintf(&b, "Reference answer: %s\n", q.Answer)
	return b.String()
}

// parseMCQ sanitizes and decodes the model's reply. It returns an error when
// the reply is not a usable MCQ; the caller falls back to the open question.
func parseMCQ(raw string) (MCQ, error) {
	clean := sanitizeJSON(raw)

	var mcq MCQ
	if err := json.Unmarshal([]byte(clean), &mcq); err != nil {
		return MCQ{}, fmt.Errorf("decode mcq json: %w", err)
	}

	mcq.CorrectOption = strings.ToUpper(strings.TrimSpace(mcq.CorrectOption))
	if !validOption(mcq.CorrectOption) {
		return MCQ{}, fmt.Errorf("invalid correct_option %q", mcq.CorrectOption)
	}
	if mcq.Question == "" {
		return MCQ{}, fmt.Errorf("empty question")
	}
	for _, letter := range optionLetters {
		if mcq.Options[letter] == "" {
			return MCQ{}, fmt.Errorf("missing option %s", letter)
		}
	}
	return mcq, nil
}

// sanitizeJSON strips code fences and isolates the outermost JSON object.
func sanitizeJSON(raw string) string {
	clean := strings.TrimSpace(raw)

	if strings.HasPrefix(clean, "```") {
		if idx := strings.IndexByte(clean, '\n'); idx >= 0 {
			clean = clean[idx+1:]
		}
	}
	clean = strings.TrimSuffix(strings.TrimSpace(clean), "```")

	start := strings.IndexByte(clean, '{')
	end := strings.LastIndexByte(clean, '}')
	if start != -1 && end > start {
		clean = clean[start : end+1]
	}
	return clean
}

func validOption(letter string) bool {
	switch letter {
	case "A", "B", "C", "D":
		return true
	}
	return false
}

// detectChoice extracts the A–D answer from a trainee's message. Accepts a
// bare letter, a letter starting the message, or a letter surrounded by
// spaces. Returns "" when no clear choice is present.
func detectChoice(text string) string {
	upper := strings.ToUpper(strings.TrimSpace(text))
	for _, letter := range optionLetters {
		if upper == letter ||
			strings.HasPrefix(upper, letter+" ") ||
			strings.Contains(upper, " "+letter+" ") {
			return letter
		}
	}
	return ""
}

// formatMCQ renders the question for the channel.
func formatMCQ(level, number int, mcq MCQ) string {
	return fmt.Sprintf(
		"*Training mode* — Level %d\n\nQuestion #%d:\n%s\n\nA) %s\nB) %s\nC) %s\nD) %s\n\nPlease answer by typing A, B, C or D.",
		level, number, mcq.Question,
		mcq.Options["A"], mcq.Options["B"], mcq.Options["C"], mcq.Options["D"],
	)
}
