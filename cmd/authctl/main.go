// Command authctl reflects the gate's view of a session from the terminal.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"time"

	"auth-gate/internal/reflector"
	"auth-gate/internal/session"

	"github.com/spf13/cobra"
)

type options struct {
	backend    string
	session    string
	cookieName string
	timeout    time.Duration
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "authctl",
		Short:         "Inspect and end sessions on an auth gate",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.PersistentFlags().StringVar(&opts.backend, "backend", "http://localhost:5000", "gate base URL")
	root.PersistentFlags().StringVar(&opts.session, "session", os.Getenv("AUTHCTL_SESSION"), "session cookie value (env AUTHCTL_SESSION)")
	root.PersistentFlags().StringVar(&opts.cookieName, "cookie-name", session.InsecureCookieName, "session cookie name")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "request timeout")

	root.AddCommand(
		newStatusCmd(opts),
		newLoginURLCmd(opts),
		newLogoutCmd(opts),
	)
	return root
}

func newStatusCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show who the session belongs to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := opts.reflector()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			view := r.Load(ctx)
			if err := view.Render(cmd.OutOrStdout()); err != nil {
				return err
			}
			if view.State == reflector.Error {
				return view.Err
			}
			return nil
		},
	}
}

func newLoginURLCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "login-url",
		Short: "Print the URL to open in a browser to log in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := opts.reflector()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), r.LoginURL())
			return err
		},
	}
}

func newLogoutCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session on the gate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.session == "" {
				return errors.New("no session: pass --session or set AUTHCTL_SESSION")
			}

			r, err := opts.reflector()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			if err := r.Logout(ctx); err != nil {
				return err
			}
			return r.View().Render(cmd.OutOrStdout())
		},
	}
}

// reflector builds a client whose jar carries the session cookie for the
// backend, the way a browser would.
func (o *options) reflector() (*reflector.Reflector, error) {
	u, err := url.Parse(o.backend)
	if err != nil {
		return nil, fmt.Errorf("backend url: %w", err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	if o.session != "" {
		jar.SetCookies(u, []*http.Cookie{{
			Name:  o.cookieName,
			Value: o.session,
			Path:  "/",
		}})
	}

	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return reflector.New(o.backend, client)
}
