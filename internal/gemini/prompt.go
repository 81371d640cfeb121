package gemini

import (
	"fmt"

	"github.com/examgen/examgen/internal/models"
)

func quizPrompt(form models.FormInput) string {
	return fmt.Sprintf(`Generate a json for quiz questions with answers based on the following parameters:
Name: %s
Class: %s
Subject: %s
Topic: %s
Difficulty Level: %s
The difficulty and the number of questions should be corresponding, like easy mode means less questions plus easier questions, while hard mode means more questions plus harder questions.
The output should be only a JSON array of objects, each containing "question" and four "options" fields. Also there should be a correct "answer" field indicating the correct option. There should be no markdown formatting or any other text outside the JSON array.`,
		form.Name, form.Class, form.Subject, form.Topic, form.Difficulty)
}

func testPaperPrompt(form models.FormInput) string {
	return fmt.Sprintf(`Generate LaTeX code for a test paper with the following parameters:
Name: %s
Class: %s
Subject: %s
Topic: %s
Difficulty Level: %s

CRITICAL REQUIREMENTS:
1. Output ONLY valid LaTeX code - no explanations, no markdown formatting, no code blocks and the latex version should be compatible with the texlive 2016 engine
2. Start directly with \documentclass and end with \end{document}
3. Use proper LaTeX syntax that compiles without errors
4. Ensure every \begin{enumerate} has a matching \end{enumerate}
5. Do not use any markdown formatting like `+"```latex or ```"+`
6. The question set should be a mix of different types like (MCQs, short answer, long answer), don't just stick to one format, each paper should have a unique set of problems
7. The maximum marks should be corresponding to the choosen dificulty level, easy=15, medium=20, hard=30, the difficulty level of the questions should be relevant to the difficulty level of the paper
8. Include the Name, Class, Subject, Maximum Marks, and the choosen "Difficulty" level in the beggining just like a typical school exam format where the details are given in the top middle and so on, take care of the spacing and formatting

Example structure:
\documentclass{article}
\usepackage[utf8]{inputenc}
\usepackage{amsmath}
\begin{document}
\title{%s Test}
\author{%s}
\date{\today}
\maketitle
[content here]
\end{document}`,
		form.Name, form.Class, form.Subject, form.Topic, form.Difficulty,
		form.Subject, form.Name)
}
