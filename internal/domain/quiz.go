package domain

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed quizbank.yaml
var defaultQuizBank []byte

var validate = validator.New()

// QuizQuestion is a static multiple-choice question.
type QuizQuestion struct {
	Question           string   `yaml:"question"             json:"question"    validate:"required"`
	Options            []string `yaml:"options"              json:"options"     validate:"len=4,dive,required"`
	CorrectAnswerIndex int      `yaml:"correct_answer_index" json:"-"           validate:"gte=0"`
	Explanation        string   `yaml:"explanation"          json:"explanation" validate:"required"`
}

// Validate checks the question shape and that the correct answer index
// points at one of the options.
func (q QuizQuestion) Validate() error {
	if err := validate.Struct(q); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if q.CorrectAnswerIndex >= len(q.Options) {
		return fmt.Errorf("%w: %d with %d options", ErrInvalidAnswerIndex, q.CorrectAnswerIndex, len(q.Options))
	}
	return nil
}

// CorrectOption returns the text of the correct option.
func (q QuizQuestion) CorrectOption() string {
	return q.Options[q.CorrectAnswerIndex]
}

type quizBankFile struct {
	Questions []QuizQuestion `yaml:"questions"`
}

// ParseQuizBank decodes and validates a YAML question bank.
func ParseQuizBank(data []byte) ([]QuizQuestion, error) {
	var bank quizBankFile
	if err := yaml.Unmarshal(data, &bank); err != nil {
		return nil, fmt.Errorf("failed to decode quiz bank: %w", err)
	}

	if len(bank.Questions) == 0 {
		return nil, ErrEmptyQuizBank
	}

	for i, q := range bank.Questions {
		if err := q.Validate(); err != nil {
			return nil, fmt.Errorf("question %d: %w", i+1, err)
		}
	}

	return bank.Questions, nil
}

// LoadQuizBank reads the question bank at path, or the embedded bank when
// path is empty.
func LoadQuizBank(path string) ([]QuizQuestion, error) {
	if path == "" {
		return ParseQuizBank(defaultQuizBank)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read quiz bank %s: %w", path, err)
	}
	return ParseQuizBank(data)
}
