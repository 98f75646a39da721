package cli

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lenteapp/lente/internal/api"
)

func newRegisterCommand() *cobra.Command {
	var (
		name  string
		email string
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new account",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := getCliContext(cmd)

			var err error
			if name == "" {
				name, err = promptLine("Name: ")
				if err != nil {
					return err
				}
			}
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
			confirm, err := promptPassword("Confirm password: ")
			if err != nil {
				return err
			}
			if password != confirm {
				return fmt.Errorf("passwords do not match")
			}

			if err := validateRegistration(name, email, password); err != nil {
				return err
			}

			resp, err := ctx.Sessions.API().Register(cmd.Context(), name, email, password)
			if err != nil {
				if api.IsValidation(err) {
					return registrationError(err)
				}
				return fmt.Errorf("registration failed: %w", err)
			}

			fmt.Printf("Account created for %s <%s>\n", resp.User.Name, resp.User.Email)
			fmt.Println("Run 'lente auth login' to start a session")
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name (prompted when omitted)")
	cmd.Flags().StringVar(&email, "email", "", "Account email (prompted when omitted)")

	return cmd
}

// validateRegistration applies the backend's account rules locally so the
// common mistakes fail before a network round trip.
func validateRegistration(name, email, password string) error {
	if len(strings.TrimSpace(name)) < 3 {
		return fmt.Errorf("name must be at least 3 characters")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("invalid email address: %q", email)
	}
	if len(password) < 6 || len(password) > 20 {
		return fmt.Errorf("password must be between 6 and 20 characters")
	}
	return nil
}

// registrationError flattens the server's per-field validation details into
// a readable multi-line error.
func registrationError(err error) error {
	var apiErr *api.Error
	if !errors.As(err, &apiErr) || len(apiErr.Details) == 0 {
		return fmt.Errorf("registration rejected: %w", err)
	}

	var b strings.Builder
	b.WriteString("registration rejected:")
	for field, messages := range apiErr.Details {
		for _, msg := range messages {
			fmt.Fprintf(&b, "\n  %s: %s", field, msg)
		}
	}
	return fmt.Errorf("%s", b.String())
}
