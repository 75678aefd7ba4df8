package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/abatilo/dash/internal/config"
	dasherrors "github.com/abatilo/dash/internal/errors"
	"github.com/abatilo/dash/internal/session"
)

// readPassword takes the password from the flag. Otherwise it prompts without
// echo on a terminal, or reads the first line of piped stdin.
func readPassword(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	fd := int(os.Stdin.Fd()) //nolint:gosec // stdin descriptor fits in an int
	if term.IsTerminal(fd) {
		os.Stderr.WriteString("Password: ") //nolint:gosec // stderr write errors are unrecoverable
		pw, err := term.ReadPassword(fd)
		os.Stderr.WriteString("\n") //nolint:gosec // stderr write errors are unrecoverable
		if err != nil {
			printError(err)
		}
		return string(pw)
	}
	pw, err := readLine(os.Stdin)
	if err != nil {
		printError(err)
	}
	return pw
}

// readLine returns the first line of r without its line ending.
func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && line == "" {
		return "", dasherrors.ValidationError{Field: "password", Reason: "must not be empty"}
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func storeSession(cfg config.Config, sess *session.Session) {
	if err := getGate(cfg).Store(sess); err != nil {
		printError(err)
	}
	printOutput(formatter.FormatMessage(fmt.Sprintf("Logged in as %s (%s)", sess.User.FullName, sess.User.Email)))
}

// loginCmd implements 'dash login'.
func loginCmd() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "login <email>",
		Short: "Sign in to the dashboard API",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			cfg := loadConfig()
			pw := readPassword(password)

			auth := session.NewAuthenticator(anonymousClient(cfg))
			sess, err := auth.Login(cmd.Context(), args[0], pw)
			if err != nil {
				printError(err)
			}
			storeSession(cfg, sess)
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "Password (read from stdin when omitted)")
	return cmd
}

// registerCmd implements 'dash register'.
func registerCmd() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "register <email> <full-name>",
		Short: "Create an account and sign in",
		Args:  cobra.ExactArgs(2), //nolint:mnd // CLI takes 2 positional args
		Run: func(cmd *cobra.Command, args []string) {
			cfg := loadConfig()
			pw := readPassword(password)

			auth := session.NewAuthenticator(anonymousClient(cfg))
			sess, err := auth.Register(cmd.Context(), args[0], pw, args[1])
			if err != nil {
				printError(err)
			}
			storeSession(cfg, sess)
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "Password (read from stdin when omitted)")
	return cmd
}

// logoutCmd implements 'dash logout'.
func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Run: func(_ *cobra.Command, _ []string) {
			cfg := loadConfig()
			dir := cfg.Layout().SessionDir(cfg.APIURL)
			if !session.Exists(dir) {
				printOutput(formatter.FormatMessage("Not logged in"))
				return
			}
			if err := getGate(cfg).Invalidate(); err != nil {
				printError(err)
			}
			printOutput(formatter.FormatMessage("Logged out"))
		},
	}
}

// whoamiCmd implements 'dash whoami'.
func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Run: func(_ *cobra.Command, _ []string) {
			cfg := loadConfig()
			sess, err := getGate(cfg).Session()
			if err != nil {
				printError(err)
			}
			msg := fmt.Sprintf("%s <%s> on %s", sess.User.FullName, sess.User.Email, sess.APIURL)
			if claims, claimsErr := session.Claims(sess.AccessToken); claimsErr == nil && claims.ExpiresAt != nil {
				msg += fmt.Sprintf(" (token expires %s)", claims.ExpiresAt.Time.Format("2006-01-02 15:04"))
			}
			printOutput(formatter.FormatMessage(msg))
		},
	}
}
