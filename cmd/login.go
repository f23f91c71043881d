package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/s0up4200/venmo-go/venmo"
)

var (
	loginUsername string
	loginPassword string
	loginDeviceID string
)

// loginCmd represents the login command
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and obtain an access token",
	Long: `Log in with your Venmo username (or phone/email) and password.

If the device id is not yet trusted, Venmo will send a 6-digit one-time code
to your phone; the command prompts for it and registers the device as trusted
afterwards so the next login skips the challenge.

The access token never expires until revoked with 'venmo logout'. Save the
printed token and device id in your config to avoid logging in again.`,
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "username, phone or email")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "account password (prompted when omitted)")
	loginCmd.Flags().StringVar(&loginDeviceID, "device-id", "", "device id to log in with (generated when omitted)")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	reader := bufio.NewReader(os.Stdin)

	if loginDeviceID != "" {
		client.UpdateDeviceID(loginDeviceID)
	} else if client.DeviceID() == "" {
		deviceID := uuid.NewString()
		client.UpdateDeviceID(deviceID)
		logger.Debug().Str("device_id", deviceID).Msg("Generated new device id")
	}

	username := loginUsername
	if username == "" {
		fmt.Print("Username (phone/email/username): ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read username: %w", err)
		}
		username = strings.TrimSpace(line)
	}

	password := loginPassword
	if password == "" {
		fmt.Print("Password: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		password = strings.TrimSpace(line)
	}

	auth := venmo.NewAuth(client)
	token, err := auth.Login(ctx, username, password, promptOTP(reader))
	if err != nil {
		return err
	}

	fmt.Println("Successfully logged in. Note your token and device-id:")
	fmt.Printf("  access_token: %s\n  device-id:    %s\n", token, client.DeviceID())
	fmt.Println("Save both under 'credentials' in your config so the next login skips two-factor.")
	return nil
}

// promptOTP reads the 6-digit one-time code from stdin, re-prompting until the
// format is right.
func promptOTP(reader *bufio.Reader) venmo.OTPPrompt {
	return func(ctx context.Context) (string, error) {
		for {
			fmt.Print("Enter the 6-digit code Venmo sent to your phone: ")
			line, err := reader.ReadString('\n')
			if err != nil {
				return "", fmt.Errorf("failed to read one-time code: %w", err)
			}
			code := strings.TrimSpace(line)
			if len(code) == 6 && strings.IndexFunc(code, func(r rune) bool { return r < '0' || r > '9' }) == -1 {
				return code, nil
			}
			fmt.Println("The code must be exactly 6 digits.")
		}
	}
}

// logoutCmd revokes an access token
var logoutCmd = &cobra.Command{
	Use:   "logout [token]",
	Short: "Revoke an access token",
	Long:  `Revoke the given access token, or the configured one when omitted.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		token := cfg.Credentials.AccessToken
		if len(args) > 0 {
			token = args[0]
		}
		if token == "" {
			return fmt.Errorf("no access token to revoke")
		}

		if err := venmo.Logout(context.Background(), logger, token, venmo.WithHost(cfg.API.Host)); err != nil {
			return err
		}
		fmt.Println("Successfully logged out.")
		return nil
	},
}
