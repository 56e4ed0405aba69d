package console

import (
	"strings"

	"github.com/chzyer/readline"
)

const (
	Yes = "y"
	No  = "n"
)

var yesNoConstraints = []string{No, Yes}

// Confirm asks a yes/no question defaulting to no.
func Confirm(question string) (bool, error) {
	answer, err := Prompt(question, yesNoConstraints...)
	if err != nil {
		return false, err
	}
	return answer == Yes, nil
}

// Prompt reads a line. When constraints are given the answer is one of them
// and the first one is the default.
func Prompt(question string, constraints ...string) (string, error) {
	rl, err := readline.New(promptText(question, constraints))
	if err != nil {
		return "", err
	}
	defer rl.Close()
	response, err := rl.Readline()
	if err != nil {
		return "", err
	}
	if len(constraints) == 0 {
		return response, nil
	}
	return pick(response, constraints), nil
}

func promptText(question string, constraints []string) string {
	if len(constraints) == 0 {
		return question
	}
	var prompt strings.Builder
	prompt.WriteString(question)
	prompt.WriteString(" [")
	prompt.WriteString(strings.ToUpper(constraints[0]))
	for i := 1; i < len(constraints); i++ {
		prompt.WriteString("/")
		prompt.WriteString(constraints[i])
	}
	prompt.WriteString("]:")
	return prompt.String()
}

// pick falls back to the default on empty or unknown input.
func pick(response string, constraints []string) string {
	normalized := strings.ToLower(strings.TrimSpace(response))
	for _, c := range constraints {
		if normalized == c {
			return normalized
		}
	}
	return constraints[0]
}
