package main

import (
	"errors"
	"flag"
	"fmt"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/trezcool/wordwise/core"
	"github.com/trezcool/wordwise/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	deps   core.Deps
	usrSvc *user.Service
}

func newCommandLine(deps core.Deps) *commandLine {
	return &commandLine{
		deps:   deps,
		usrSvc: user.NewService(deps.Store, deps.Validate, deps.Translator),
	}
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  adduser -email EMAIL -name NAME -role teacher|student|admin - create a user; the password is prompted next")
	fmt.Println("  resetpassword -email EMAIL - reset user's password")
	fmt.Println("  assign -student EMAIL -type homework|classwork -description TEXT -words a,b,c - assign work to a student")
	fmt.Println("  addword -text WORD -definition TEXT [-sentence TEXT] - add a vocabulary word")
}

// promptPassword reads a password without echoing it.
func promptPassword() (string, error) {
	fmt.Print("Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := flag.NewFlagSet("adduser", flag.ExitOnError)
	addUserEmail := addUserCmd.String("email", "", "The user's email.")
	addUserName := addUserCmd.String("name", "", "The user's full name.")
	addUserRole := addUserCmd.String("role", "student", "One of teacher, student or admin.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ExitOnError)
	resetPasswordEmail := resetPasswordCmd.String("email", "", "The user's email. The password will be prompted next.")

	assignCmd := flag.NewFlagSet("assign", flag.ExitOnError)
	assignStudent := assignCmd.String("student", "", "The student's email.")
	assignType := assignCmd.String("type", "homework", "homework or classwork.")
	assignDescription := assignCmd.String("description", "", "What the student has to do.")
	assignWords := assignCmd.String("words", "", "Comma separated words to practice.")

	addWordCmd := flag.NewFlagSet("addword", flag.ExitOnError)
	addWordText := addWordCmd.String("text", "", "The word.")
	addWordDefinition := addWordCmd.String("definition", "", "Its definition.")
	addWordSentence := addWordCmd.String("sentence", "", "An example sentence (optional).")

	switch args[1] {
	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserEmail == "" || *addUserName == "" {
			addUserCmd.Usage()
			return errHelp
		}
		pwd, err := promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			addUserCmd.Usage()
			return errHelp
		}
		return cli.addUser(*addUserName, *addUserEmail, *addUserRole, pwd)
	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordEmail == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(*resetPasswordEmail, pwd)
	case "assign":
		if err := assignCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *assignStudent == "" || *assignDescription == "" {
			assignCmd.Usage()
			return errHelp
		}
		return cli.assign(*assignStudent, *assignType, *assignDescription, strings.Split(*assignWords, ","))
	case "addword":
		if err := addWordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addWordText == "" || *addWordDefinition == "" {
			addWordCmd.Usage()
			return errHelp
		}
		return cli.addWord(*addWordText, *addWordDefinition, *addWordSentence)
	default:
		cli.printUsage()
		return errHelp
	}
}
