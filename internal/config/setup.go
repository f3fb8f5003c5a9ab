package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Selection is the result of the interactive language setup.
type Selection struct {
	Source  Language
	Targets []Language // 1-4, deduplicated, order preserved
	Display []Language // the targets shown on the live display (at most 2)
}

// ErrSetupCancelled is returned when the operator cancels the setup dialog.
var ErrSetupCancelled = errors.New("setup cancelled")

// RunSetup walks the operator through source/target/display language
// selection on the given reader/writer (stdin/stdout in production). The
// whole dialog restarts on "redo" and aborts with ErrSetupCancelled on
// "cancel".
func RunSetup(r io.Reader, w io.Writer) (*Selection, error) {
	scanner := bufio.NewScanner(r)

	for {
		source, err := pickSource(scanner, w)
		if err != nil {
			return nil, err
		}

		targets, err := pickTargets(scanner, w)
		if err != nil {
			return nil, err
		}

		display, err := pickDisplay(scanner, w, targets)
		if err != nil {
			return nil, err
		}

		sel := &Selection{Source: source, Targets: targets, Display: display}

		fmt.Fprintln(w, "\nConfiguration summary")
		fmt.Fprintln(w, strings.Repeat("-", 40))
		fmt.Fprintf(w, "Source:  %s (%s)\n", sel.Source.Name, sel.Source.Code)
		names := make([]string, len(sel.Targets))
		for i, t := range sel.Targets {
			names[i] = t.Name
		}
		fmt.Fprintf(w, "Targets: %s\n", strings.Join(names, ", "))
		names = names[:0]
		for _, d := range sel.Display {
			names = append(names, d.Name)
		}
		fmt.Fprintf(w, "Display: %s\n", strings.Join(names, ", "))
		fmt.Fprint(w, "\nProceed? (y = start, r = redo, c = cancel): ")

		switch strings.ToLower(readLine(scanner)) {
		case "y", "yes", "":
			return sel, nil
		case "r", "redo":
			continue
		default:
			return nil, ErrSetupCancelled
		}
	}
}

func pickSource(scanner *bufio.Scanner, w io.Writer) (Language, error) {
	fmt.Fprintln(w, "\nSource language (spoken input):")
	for i, lang := range SourceLanguages {
		fmt.Fprintf(w, "  %2d. %s\n", i+1, lang.Name)
	}
	fmt.Fprintf(w, "  %2d. Other (enter code)\n", len(SourceLanguages)+1)

	for {
		fmt.Fprintf(w, "Select source language (1-%d): ", len(SourceLanguages)+1)
		line := readLine(scanner)
		if line == "" {
			return Language{}, ErrSetupCancelled
		}
		n, err := strconv.Atoi(line)
		if err != nil || n < 1 || n > len(SourceLanguages)+1 {
			fmt.Fprintln(w, "Invalid choice.")
			continue
		}
		if n == len(SourceLanguages)+1 {
			fmt.Fprint(w, "Enter source language code (e.g. en-US): ")
			code := readLine(scanner)
			if code == "" {
				return Language{}, ErrSetupCancelled
			}
			return Language{Code: code, Name: code}, nil
		}
		return SourceLanguages[n-1], nil
	}
}

func pickTargets(scanner *bufio.Scanner, w io.Writer) ([]Language, error) {
	fmt.Fprintln(w, "\nTarget languages (translation output, pick 1-4, comma separated):")
	for i, lang := range TargetLanguages {
		fmt.Fprintf(w, "  %2d. %s\n", i+1, lang.Name)
	}

	for {
		fmt.Fprint(w, "Select target languages: ")
		line := readLine(scanner)
		if line == "" {
			return nil, ErrSetupCancelled
		}
		targets, err := ParseTargetChoices(line)
		if err != nil {
			fmt.Fprintf(w, "%v\n", err)
			continue
		}
		return targets, nil
	}
}

// ParseTargetChoices turns "1, 5, 5, 3" into a deduplicated list of 1-4
// target languages.
func ParseTargetChoices(line string) ([]Language, error) {
	var targets []Language
	seen := make(map[string]bool)
	for _, part := range strings.Split(line, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 1 || n > len(TargetLanguages) {
			return nil, fmt.Errorf("invalid choice: %q", part)
		}
		lang := TargetLanguages[n-1]
		if seen[lang.Code] {
			continue
		}
		seen[lang.Code] = true
		targets = append(targets, lang)
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("select at least one target language")
	}
	if len(targets) > 4 {
		return nil, fmt.Errorf("maximum 4 target languages allowed, got %d", len(targets))
	}
	return targets, nil
}

func pickDisplay(scanner *bufio.Scanner, w io.Writer, targets []Language) ([]Language, error) {
	if len(targets) <= 2 {
		return targets, nil
	}

	fmt.Fprintln(w, "\nDisplay languages (pick exactly 2 for the live window):")
	for i, lang := range targets {
		fmt.Fprintf(w, "  %2d. %s\n", i+1, lang.Name)
	}

	for {
		fmt.Fprint(w, "Select 2 display languages (comma separated): ")
		line := readLine(scanner)
		if line == "" {
			return nil, ErrSetupCancelled
		}
		var display []Language
		seen := make(map[string]bool)
		ok := true
		for _, part := range strings.Split(line, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			n, err := strconv.Atoi(part)
			if err != nil || n < 1 || n > len(targets) {
				ok = false
				break
			}
			if seen[targets[n-1].Code] {
				continue
			}
			seen[targets[n-1].Code] = true
			display = append(display, targets[n-1])
		}
		if !ok || len(display) != 2 {
			fmt.Fprintln(w, "Pick exactly 2 distinct display languages.")
			continue
		}
		return display, nil
	}
}

func readLine(scanner *bufio.Scanner) string {
	if !scanner.Scan() {
		return ""
	}
	return strings.TrimSpace(scanner.Text())
}
