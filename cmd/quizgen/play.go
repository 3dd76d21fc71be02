package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"precisionquiz-backend/internal/services"
)

var optionLetters = []string{"A", "B", "C", "D"}

func printQuestion(out io.Writer, number, total int, question string, options []string) {
	fmt.Fprintf(out, "Question %d/%d:\n", number, total)
	fmt.Fprintf(out, "%s\n\n", question)
	for i, option := range options {
		fmt.Fprintf(out, "%s) %s\n", optionLetters[i], option)
	}
}

// play drives an active session to completion from line-oriented input.
// Each answer is a letter A-D; anything else is asked again.
func play(session *services.QuizSession, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)

	for {
		view, err := session.CurrentView()
		if errors.Is(err, services.ErrSessionComplete) {
			break
		}
		if err != nil {
			return err
		}

		printQuestion(out, view.Number, view.Total, view.Question, view.Options)

		var selected string
		for selected == "" {
			fmt.Fprint(out, "\nYour answer (A-D): ")
			if !scanner.Scan() {
				if err := scanner.Err(); err != nil {
					return err
				}
				return io.ErrUnexpectedEOF
			}
			choice := strings.ToUpper(strings.TrimSpace(scanner.Text()))
			for i, letter := range optionLetters {
				if choice == letter && i < len(view.Options) {
					selected = view.Options[i]
				}
			}
			if selected == "" {
				fmt.Fprintln(out, "Please enter A, B, C or D.")
			}
		}

		answer, err := session.SubmitAnswer(selected)
		if err != nil {
			return err
		}
		if answer.IsCorrect {
			fmt.Fprintln(out, "✅ Correct!")
		} else {
			fmt.Fprintf(out, "❌ Incorrect. The correct answer was: %s\n", answer.CorrectAnswer)
		}
		fmt.Fprintln(out)

		if err := session.Advance(); err != nil {
			return err
		}
	}

	result, err := session.Result()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "🏁 Quiz complete! %s\n", services.ResultsSummary(result))
	return nil
}
