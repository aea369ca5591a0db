package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// readPassword reads the login password without echo. Tests swap it out so
// they never touch the terminal.
var readPassword = term.ReadPassword

// GetSimpleText shows prompt on w and reads one line, such as the username
// at the login prompt, from reader. Surrounding whitespace is trimmed; a last
// line ended by EOF instead of a newline is still returned.
//
// Prompt format:
//
//	Enter username
//	> _
func GetSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// GetPassword asks for the login password on w and reads it from the
// terminal without echo. The caller owns the returned slice and wipes it;
// ConsoleService.Login does so once the credentials are exchanged.
func GetPassword(w io.Writer) ([]byte, error) {
	if _, err := fmt.Fprint(w, "Enter password: "); err != nil {
		return nil, err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	return pw, nil
}
