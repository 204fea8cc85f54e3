package main

import (
	"fmt"
	"log"
	"os"
	"runtime/debug"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
)

const usage = `Usage: console <command> [flags]

Commands:
  login             Sign in and store the credential bundle
  register          Create an account and store its credential bundle
  forgot-password   Ask the backend to email a password reset link
  reset-password    Set a new password using an emailed reset token
  logout            Forget the stored credential bundle
  whoami            Verify the stored bundle and print the current user
  serve             Run the local console server
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func run(args []string) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		fmt.Fprint(os.Stderr, usage)
		return nil
	}

	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
	return cmd(args[1:])
}
