package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s0up4200/venmo-go/venmo"
)

var (
	searchLimit   int
	friendsUserID string
)

// whoamiCmd shows the authenticated user's profile
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user's profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}
		profile, err := userSvc.MyProfile(context.Background(), false)
		if err != nil {
			return err
		}
		fmt.Printf("%s (@%s)\n", profile.DisplayName, profile.Username)
		fmt.Printf("  id:      %s\n", profile.ID)
		fmt.Printf("  joined:  %s\n", profile.DateJoined.Format("2006-01-02"))
		fmt.Printf("  friends: %d\n", profile.FriendsCount)
		return nil
	},
}

// balanceCmd shows the current Venmo balance
var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show the current Venmo balance",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}
		balance, err := userSvc.MyBalance(context.Background(), true)
		if err != nil {
			return err
		}
		fmt.Printf("$%.2f\n", balance)
		return nil
	},
}

// searchCmd searches for users
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search for users",
	Long: `Search for users by name. Prefix the query with @ (or pass a full
username) to search by exact username.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}
		page, err := userSvc.SearchUsers(context.Background(), args[0], 0, searchLimit)
		if err != nil {
			return err
		}
		if page.Len() == 0 {
			fmt.Println("No users found.")
			return nil
		}
		fmt.Println(strings.Repeat("-", 70))
		for _, user := range page.Items() {
			fmt.Printf("%-30s @%-20s %s\n", user.DisplayName, user.Username, user.ID)
		}
		return nil
	},
}

// userCmd shows a single user's profile
var userCmd = &cobra.Command{
	Use:   "user <id|@username>",
	Short: "Show a user's profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}
		ctx := context.Background()

		var user *venmo.User
		var err error
		if strings.HasPrefix(args[0], "@") {
			user, err = userSvc.GetUserByUsername(ctx, strings.TrimPrefix(args[0], "@"))
		} else {
			user, err = userSvc.GetUser(ctx, args[0])
		}
		if err != nil {
			if errors.Is(err, venmo.ErrResourceNotFound) {
				return fmt.Errorf("user %s not found", args[0])
			}
			return err
		}

		fmt.Printf("%s (@%s)\n", user.DisplayName, user.Username)
		fmt.Printf("  id:      %s\n", user.ID)
		if !user.DateJoined.IsZero() {
			fmt.Printf("  joined:  %s\n", user.DateJoined.Format("2006-01-02"))
		}
		fmt.Printf("  friends: %d\n", user.FriendsCount)
		return nil
	},
}

// friendsCmd lists a user's friends
var friendsCmd = &cobra.Command{
	Use:   "friends",
	Short: "List a user's friends",
	Long:  `List the friends of the given user id, or your own when omitted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}
		ctx := context.Background()

		userID := friendsUserID
		if userID == "" {
			profile, err := userSvc.MyProfile(ctx, false)
			if err != nil {
				return err
			}
			userID = profile.ID
		}

		page, err := userSvc.FriendsList(ctx, userID, 0, 0)
		if err != nil {
			return err
		}
		fmt.Printf("%d friends:\n", page.Len())
		for _, user := range page.Items() {
			fmt.Printf("  %s (@%s)\n", user.DisplayName, user.Username)
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, "maximum number of results")
	friendsCmd.Flags().StringVar(&friendsUserID, "user", "", "user id to list friends for")

	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(balanceCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(friendsCmd)
}
