package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s0up4200/venmo-go/venmo"
)

var (
	feedUser       string
	feedOther      string
	feedFilter     string
	feedLimit      int
	feedPages      int
	feedSocialOnly bool
	feedPrivate    bool
)

// transactionsCmd shows transaction feeds
var transactionsCmd = &cobra.Command{
	Use:   "transactions",
	Short: "Show a transaction feed",
	Long: `Show a transaction feed: your friends' feed by default, a single user's
feed with --user, or the transactions between you and another user with
--user and --with.

Feeds can be narrowed with --filter, which takes either a preset name from
the config or an inline expression, e.g.:

  venmo transactions --filter 'amount > 20 && contains(note, "rent")'
  venmo transactions --user 12345 --filter 'type == "payment" && daysSince(Transaction.DateCreated) < 30'`,
	RunE: runTransactions,
}

func init() {
	transactionsCmd.Flags().StringVar(&feedUser, "user", "", "user id to show the feed for")
	transactionsCmd.Flags().StringVar(&feedOther, "with", "", "show only transactions between --user and this user id")
	transactionsCmd.Flags().StringVarP(&feedFilter, "filter", "f", "", "filter preset name or expression")
	transactionsCmd.Flags().IntVar(&feedLimit, "limit", 0, "page size")
	transactionsCmd.Flags().IntVar(&feedPages, "pages", 1, "number of pages to fetch")
	transactionsCmd.Flags().BoolVar(&feedSocialOnly, "social-only", false, "only transactions between personal accounts")
	transactionsCmd.Flags().BoolVar(&feedPrivate, "include-private", false, "include non-public stories")

	rootCmd.AddCommand(transactionsCmd)
}

func runTransactions(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	if err := requireAuth(); err != nil {
		return err
	}

	opts := venmo.TransactionOptions{
		SocialOnly:     feedSocialOnly,
		IncludePrivate: feedPrivate,
		Limit:          feedLimit,
	}

	var page *venmo.Page[venmo.Transaction]
	var err error
	switch {
	case feedUser != "" && feedOther != "":
		page, err = userSvc.TransactionsBetween(ctx, feedUser, feedOther, opts)
	case feedUser != "":
		page, err = userSvc.UserTransactions(ctx, feedUser, opts)
	default:
		page, err = userSvc.FriendsFeed(ctx, opts)
	}
	if err != nil {
		return err
	}

	var transactions []venmo.Transaction
	for fetched := 1; ; fetched++ {
		transactions = append(transactions, page.Items()...)
		if fetched >= feedPages || page.Len() == 0 {
			break
		}
		page, err = page.NextPage(ctx)
		if err != nil {
			return err
		}
	}

	if feedFilter != "" {
		compiled, err := filters.Resolve(feedFilter)
		if err != nil {
			return fmt.Errorf("invalid filter: %w", err)
		}
		transactions, err = compiled.Apply(transactions)
		if err != nil {
			return err
		}
	}

	if len(transactions) == 0 {
		fmt.Println("No transactions found.")
		return nil
	}

	fmt.Println(strings.Repeat("-", 80))
	for _, tx := range transactions {
		fmt.Printf("%s  %-13s @%s → @%s\n",
			tx.DateCreated.Format("2006-01-02"), tx.Type,
			tx.Payment.Actor.Username, tx.Payment.TargetUser().Username)
		if tx.Note != "" {
			fmt.Printf("  %s\n", tx.Note)
		}
	}
	return nil
}
