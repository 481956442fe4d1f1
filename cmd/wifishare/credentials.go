package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ericfisherdev/wifishare/internal/application"
	"github.com/ericfisherdev/wifishare/internal/domain/model"
)

var errNoCredentials = errors.New("no credentials saved; run `wifishare set` first")

// withManager loads configuration, opens a manager and waits for its initial
// load before calling fn.
func withManager(cmd *cobra.Command, fn func(m *application.CredentialsManager) error) error {
	cfg, logger, err := loadEnv(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	manager, cleanup, err := openManager(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := manager.Initial().Wait(cmd.Context()); err != nil {
		return loadError(err)
	}

	return fn(manager)
}

func loadError(err error) error {
	if errors.Is(err, model.ErrMalformedCredentials) {
		return fmt.Errorf("load credentials: %w (run `wifishare reset` or set WIFISHARE_ON_CORRUPT=reset)", err)
	}
	return fmt.Errorf("load credentials: %w", err)
}

func newShowCmd() *cobra.Command {
	var reveal bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the saved network",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withManager(cmd, func(m *application.CredentialsManager) error {
				printState(cmd.OutOrStdout(), m.Snapshot(), reveal)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&reveal, "reveal", false, "Print the password in clear text")
	return cmd
}

func newSetCmd() *cobra.Command {
	var ssid, password string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Validate and save network credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			candidate := model.Credentials{Name: ssid, Password: password}
			if err := candidate.Validate(); err != nil {
				return fmt.Errorf("invalid credentials: %w", err)
			}

			return withManager(cmd, func(m *application.CredentialsManager) error {
				m.UpdateCredentials(ssid, password)
				if err := m.HideForm().Wait(cmd.Context()); err != nil {
					return fmt.Errorf("save credentials: %w", err)
				}

				color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "[+] Saved %q\n", ssid)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&ssid, "ssid", "s", "", "Network name (SSID)")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Network password")
	_ = cmd.MarkFlagRequired("ssid")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newQRCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "qr",
		Short: "Print the WIFI: QR payload for the saved network",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withManager(cmd, func(m *application.CredentialsManager) error {
				state := m.Snapshot()
				if state.NoCredentials {
					return errNoCredentials
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), state.QR)
				return err
			})
		},
	}
}

func newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Forget the saved network",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadEnv(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			manager, cleanup, err := openManager(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			// An unreadable record is exactly what reset is for.
			if err := manager.Initial().Wait(cmd.Context()); err != nil {
				logger.Warn("ignoring stored credentials", "error", err)
			}

			if err := manager.ResetStatus().Wait(cmd.Context()); err != nil {
				return fmt.Errorf("delete credentials: %w", err)
			}

			color.New(color.FgYellow).Fprintln(cmd.OutOrStdout(), "[!] Credentials removed")
			return nil
		},
	}
}

func printState(w io.Writer, state application.State, reveal bool) {
	if state.NoCredentials {
		color.New(color.FgYellow).Fprintln(w, "[!] No credentials saved")
		fmt.Fprintln(w, state.Instructions)
		return
	}

	password := "********"
	if reveal {
		password = state.Credentials.Password
	}

	label := color.New(color.FgCyan)
	label.Fprint(w, "SSID:     ")
	fmt.Fprintln(w, state.Credentials.Name)
	label.Fprint(w, "Password: ")
	fmt.Fprintln(w, password)
	// The payload embeds the password in clear text.
	if reveal {
		label.Fprint(w, "QR:       ")
		fmt.Fprintln(w, state.QR)
	}

	if state.InvalidCredentials {
		color.New(color.FgRed).Fprintln(w, "[-] Saved credentials do not pass validation")
	}
}
