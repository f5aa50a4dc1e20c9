// Command hashpass prints the bcrypt hash of a password so operators can seed
// rows of the users table. The password is read from the terminal without
// echo, or from the first line of stdin when it is not a terminal.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmitrijs2005/finauth/internal/server/config"
	"github.com/dmitrijs2005/finauth/internal/server/password"
	"golang.org/x/term"
)

// Test seams for the terminal.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string, stdin *os.File, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("hashpass", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cost := fs.Int("b", config.DefaultBcryptCost, "bcrypt cost")
	if err := fs.Parse(args); err != nil {
		return err
	}

	v, err := password.NewVerifier(*cost)
	if err != nil {
		return err
	}

	pw, err := readInput(stdin, stderr)
	if err != nil {
		return err
	}
	defer wipe(pw)

	hash, err := v.Hash(string(pw))
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(stdout, hash)
	return err
}

func readInput(stdin *os.File, prompt io.Writer) ([]byte, error) {
	fd := int(stdin.Fd())
	if isTerminal(fd) {
		fmt.Fprint(prompt, "Enter password: ")
		pw, err := readPassword(fd)
		fmt.Fprintln(prompt)
		return pw, err
	}

	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return []byte(strings.TrimRight(line, "\r\n")), nil
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
