package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/spec-kit/account-service/internal/client"
)

type signupConfig struct {
	name        string
	email       string
	contact     string
	acceptTerms bool
}

func newSignupCmd(sess *session) *cobra.Command {
	cfg := &signupConfig{}

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		Long: `Create an account. Missing fields are prompted for; passwords are
always prompted. On success you are signed in and taken to the dashboard.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSignup(cmd, sess, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.name, "name", "", "full name")
	cmd.Flags().StringVar(&cfg.email, "email", "", "email address")
	cmd.Flags().StringVar(&cfg.contact, "contact", "", "10-digit contact number")
	cmd.Flags().BoolVar(&cfg.acceptTerms, "accept-terms", false, "accept the Terms of Service")

	return cmd
}

func runSignup(cmd *cobra.Command, sess *session, cfg *signupConfig) error {
	if d := sess.gate.PublicRoute(client.PathSignup); d.IsRedirect() {
		return printDecision(cmd, d)
	}

	form := client.NewSignupFormState()
	var err error
	if form, err = ask(cmd, sess, form, client.FieldName, "Name", cfg.name, false); err != nil {
		return err
	}
	if form, err = ask(cmd, sess, form, client.FieldEmail, "Email", cfg.email, false); err != nil {
		return err
	}
	if form, err = ask(cmd, sess, form, client.FieldContactNumber, "Contact number", cfg.contact, false); err != nil {
		return err
	}
	if form, err = ask(cmd, sess, form, client.FieldPassword, "Password", "", true); err != nil {
		return err
	}
	if form, err = ask(cmd, sess, form, client.FieldConfirmPassword, "Confirm Password", "", true); err != nil {
		return err
	}
	form = form.With(client.FieldTermsAccepted, strconv.FormatBool(cfg.acceptTerms))

	d, err := sess.gate.SubmitSignup(cmd.Context(), form.TouchAll().Signup())
	if err != nil {
		return report(cmd, err)
	}
	cmd.Println("User registered successfully")
	return printDecision(cmd, d)
}

func newLoginCmd(sess *session) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if d := sess.gate.PublicRoute(client.PathLogin); d.IsRedirect() {
				return printDecision(cmd, d)
			}

			form := client.NewLoginFormState()
			var err error
			if form, err = ask(cmd, sess, form, client.FieldEmail, "Email", email, false); err != nil {
				return err
			}
			if form, err = ask(cmd, sess, form, client.FieldPassword, "Password", "", true); err != nil {
				return err
			}

			d, err := sess.gate.SubmitLogin(cmd.Context(), form.Login())
			if err != nil {
				return report(cmd, err)
			}
			return printDecision(cmd, d)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email address")
	return cmd
}

func newLogoutCmd(sess *session) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := sess.gate.Logout()
			if err != nil {
				return err
			}
			cmd.Println("Logged out")
			return printDecision(cmd, d)
		},
	}
}

func newDashboardCmd(sess *session) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the dashboard for the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, d, err := sess.gate.Dashboard(cmd.Context())
			if err != nil && !client.IsUnauthorized(err) {
				return report(cmd, err)
			}
			if user != nil {
				cmd.Printf("Welcome, %s <%s>\n", user.Name, user.Email)
				return nil
			}
			if err != nil {
				cmd.Println("Session rejected by server; please log in again")
			}
			return printDecision(cmd, d)
		},
	}
}

func newOpenCmd(sess *session) *cobra.Command {
	return &cobra.Command{
		Use:   "open <path>",
		Short: "Resolve a client route such as /dashboard or /signup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if d := sess.gate.Decide(args[0]); d.IsRedirect() {
				cmd.Printf("%s -> %s\n", args[0], d.Redirect)
			}
			return printDecision(cmd, sess.gate.Navigate(args[0]))
		},
	}
}

func newStatusCmd(sess *session) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether a valid session token is stored",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch s := sess.gate.Session().(type) {
			case client.Authenticated:
				cmd.Printf("authenticated as %s until %s\n", s.UserID, s.ExpiresAt.Local().Format("2006-01-02 15:04:05"))
			default:
				cmd.Println("anonymous")
			}
			return nil
		},
	}
}

// ask fills field from flagValue, or prompts when it is empty. The field's
// validation message, if any, is printed straight away.
func ask(cmd *cobra.Command, sess *session, form client.FormState, field, label, flagValue string, secret bool) (client.FormState, error) {
	value := flagValue
	if value == "" {
		var err error
		if secret {
			value, err = promptSecret(sess.input, cmd.OutOrStdout(), label)
		} else {
			value, err = prompt(sess.input, cmd.OutOrStdout(), label)
		}
		if err != nil {
			return form, fmt.Errorf("read %s: %w", field, err)
		}
	}
	form = form.With(field, value)
	if msg, ok := form.VisibleErrors()[field]; ok {
		cmd.PrintErrf("  %s\n", msg)
	}
	return form, nil
}

func report(cmd *cobra.Command, err error) error {
	var formErr *client.FormError
	if errors.As(err, &formErr) {
		fields := make([]string, 0, len(formErr.Fields))
		seen := map[string]bool{}
		for _, fe := range formErr.Fields {
			if !seen[fe.Field] {
				seen[fe.Field] = true
				fields = append(fields, fe.Field+": "+fe.Message)
			}
		}
		for _, line := range fields {
			cmd.PrintErrln(line)
		}
		return errors.New("form has errors")
	}
	cmd.PrintErrln(err.Error())
	return err
}

func printDecision(cmd *cobra.Command, d client.Decision) error {
	if d.IsRedirect() {
		cmd.Printf("redirect: %s\n", d.Redirect)
		return nil
	}
	cmd.Printf("view: %s\n", d.Render)
	return nil
}
