package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/existflow/diary/internal/credentials"
	"github.com/existflow/diary/internal/session"
)

func newAuthCmd(a *app) *cobra.Command {
	authCmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage your account",
		Long:  `Register, verify your email and log in to the journal server.`,
	}

	authCmd.AddCommand(
		newRegisterCmd(a),
		newVerifyCmd(a),
		newResendCmd(a),
		newLoginCmd(a),
		newLogoutCmd(a),
		newStatusCmd(a),
	)
	return authCmd
}

func newRegisterCmd(a *app) *cobra.Command {
	var username, email string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" {
				username = a.prompt("Username: ")
			}
			if email == "" {
				email = a.prompt("Email: ")
			}
			password := a.promptPassword("Password: ")
			confirm := a.promptPassword("Confirm Password: ")
			if password != confirm {
				return fmt.Errorf("passwords do not match")
			}

			a.println("🔄 Creating account...")
			if err := a.session.Register(cmd.Context(), username, email, password); err != nil {
				return err
			}
			a.printf("📬 Verification code sent to %s\n", a.session.Email())

			code := a.prompt("Enter verification code (empty to skip): ")
			if code == "" {
				a.printf("Run 'diary auth verify --email %s' once the code arrives.\n", a.session.Email())
				return nil
			}
			return submitCode(cmd.Context(), a, code)
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	return cmd
}

func newVerifyCmd(a *app) *cobra.Command {
	var email, code string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify your email with the emailed code",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				email = a.prompt("Email: ")
			}
			if err := a.session.StartVerification(email); err != nil {
				return err
			}
			if code == "" {
				code = a.prompt("Verification code: ")
			}
			return submitCode(cmd.Context(), a, code)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email the code was sent to")
	cmd.Flags().StringVar(&code, "code", "", "Six digit verification code")
	return cmd
}

func submitCode(ctx context.Context, a *app, code string) error {
	a.println("🔄 Verifying...")
	if err := a.session.SubmitCode(ctx, code); err != nil {
		return err
	}
	if msg := a.session.Notice(); msg != "" {
		a.printf("✅ %s\n", msg)
	} else {
		a.println("✅ Account verified!")
	}
	return nil
}

func newResendCmd(a *app) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "resend",
		Short: "Send a new verification code",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				email = a.prompt("Email: ")
			}
			if err := a.session.StartVerification(email); err != nil {
				return err
			}
			if err := a.session.Resend(cmd.Context()); err != nil {
				return err
			}
			a.printf("📬 %s\n", a.session.ResendMessage())
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email the code should go to")
	return cmd
}

func newLoginCmd(a *app) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with email and password",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				email = a.prompt("Email: ")
			}
			password := a.promptPassword("Password: ")

			a.println("🔄 Logging in...")
			if err := a.session.Login(cmd.Context(), email, password); err != nil {
				return err
			}

			a.println("✅ Logged in successfully!")
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !credentials.Authenticated(a.creds) {
				a.println("Not logged in.")
				return nil
			}
			if err := a.session.Logout(); err != nil {
				return err
			}
			a.println("✅ Logged out successfully.")
			return nil
		},
	}
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show server and session state",
		RunE: func(cmd *cobra.Command, args []string) error {
			a.printf("Server:  %s\n", a.client.BaseURL())
			a.printf("Store:   %s\n", a.cfg.CredentialStore)
			if a.session.State().State == session.Authenticated {
				a.println("Status:  ✓ Logged in")
			} else {
				a.println("Status:  Not logged in")
			}
			return nil
		},
	}
}
