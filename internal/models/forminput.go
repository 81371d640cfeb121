package models

// The questionnaire a user fills in before generation.
type FormInput struct {
	Name       string `json:"name" binding:"required"`
	Class      string `json:"class" binding:"required"`
	Subject    string `json:"subject" binding:"required"`
	Topic      string `json:"topic" binding:"required"`
	Difficulty string `json:"difficulty" binding:"required"`
}

// One generated quiz question with four options.
type QuizQuestion struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   string   `json:"answer"`
}
