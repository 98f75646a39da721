package cli

import (
	"errors"
	"fmt"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/lenteapp/lente/internal/api"
	"github.com/lenteapp/lente/internal/session"
)

func newAuthCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage authentication",
	}

	cmd.AddCommand(newAuthLoginCommand())
	cmd.AddCommand(newAuthLogoutCommand())
	cmd.AddCommand(newAuthStatusCommand())
	cmd.AddCommand(newAuthTokenCommand())

	return cmd
}

func newAuthLoginCommand() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with email and password",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := getCliContext(cmd)

			var err error
			if email == "" {
				email, err = promptLine("Email: ")
				if err != nil {
					return err
				}
			}

			password, err := promptPassword("Password: ")
			if err != nil {
				return err
			}

			resp, err := ctx.Sessions.Login(cmd.Context(), email, password)
			if err != nil {
				if api.IsInvalidCredentials(err) {
					return fmt.Errorf("invalid credentials, please try again")
				}
				return fmt.Errorf("login failed: %w", err)
			}

			// Remember who logged in; best-effort, the session works without it.
			if err := ctx.Credentials.SetIdentity(resp.User.Name, resp.User.Email); err != nil {
				ctx.Logger.Debug("failed to record identity", "error", err)
			}

			fmt.Printf("Logged in as %s <%s>\n", resp.User.Name, resp.User.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email (prompted when omitted)")

	return cmd
}

func newAuthLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and discard stored credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := getCliContext(cmd)

			// Local termination always succeeds; the server notification
			// inside is best-effort.
			ctx.Sessions.Logout(cmd.Context())

			fmt.Println("Logged out")
			return nil
		},
	}
}

func newAuthStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current session status",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := getCliContext(cmd)

			creds, err := ctx.Credentials.Describe()
			if err != nil {
				if errors.Is(err, session.ErrNoToken) {
					fmt.Println("Not logged in")
					return nil
				}
				return err
			}

			if creds.Email != "" {
				fmt.Printf("Logged in as %s <%s>\n", creds.Name, creds.Email)
			} else {
				fmt.Println("Logged in")
			}

			now := time.Now()
			switch {
			case creds.ExpiresAt.IsZero():
				// Token carries no exp claim; the server decides.
			case now.After(creds.ExpiresAt):
				fmt.Println("✗  Access token expired (it will be refreshed on the next request)")
			default:
				fmt.Printf("✓  Access token valid for %s\n", formatDuration(creds.ExpiresAt.Sub(now)))
			}

			result := ctx.Sessions.CheckAuthentication(cmd.Context())
			if result.Authenticated {
				fmt.Println("✓  Server confirms the session is valid")
			} else {
				fmt.Println("✗  Server rejects the session; run 'lente auth login'")
			}
			return nil
		},
	}
}

func newAuthTokenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Display the current access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := getCliContext(cmd)

			token, err := ctx.Sessions.AccessToken()
			if err != nil {
				return fmt.Errorf("not logged in: %w", err)
			}

			fmt.Println(token)
			return nil
		},
	}
}

func promptLine(prompt string) (string, error) {
	fmt.Print(prompt)
	var value string
	if _, err := fmt.Scanln(&value); err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(value), nil
}

func promptPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println() // newline after password input
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(passwordBytes), nil
}

// formatDuration renders a duration as a compact "2h 13m" style string
func formatDuration(d time.Duration) string {
	d = d.Round(time.Minute)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	if m > 0 {
		return fmt.Sprintf("%dm", m)
	}
	return "less than a minute"
}
