package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wayfarer-go/wayfarer/pkg/core"
)

func newLoginCmd() *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in once and bind the credentials for later runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.close()
			if err := a.useClient(nil); err != nil {
				return err
			}

			results, err := a.session.Login(cmd.Context(), username, password)
			if err != nil {
				return err
			}
			res, err := awaitLogin(cmd.Context(), results)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), res.Message); err != nil {
				return err
			}
			return loginError(res)
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "account name")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the bound credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.close()
			if err := a.useClient(nil); err != nil {
				return err
			}
			if err := a.session.Logout(cmd.Context()); err != nil {
				return fmt.Errorf("logout: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return err
		},
	}
}

func awaitLogin(ctx context.Context, results <-chan core.LoginResult) (core.LoginResult, error) {
	select {
	case <-ctx.Done():
		return core.LoginResult{}, ctx.Err()
	case res := <-results:
		return res, nil
	}
}
