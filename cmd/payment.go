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
	payAmount       float64
	payNote         string
	payTarget       string
	payPrivacy      string
	payFundingID    string
	paymentsAction  string
	transferDest    string
	transferAmount  float64
	transferInstant bool
)

// payCmd sends money
var payCmd = &cobra.Command{
	Use:   "pay",
	Short: "Send money to a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		if err := ensurePaymentService(ctx); err != nil {
			return err
		}
		target, err := resolveTarget(ctx, payTarget)
		if err != nil {
			return err
		}

		payment, err := paymentSvc.SendMoney(ctx, payAmount, payNote, target, venmo.SendOptions{
			FundingSourceID: payFundingID,
			Privacy:         venmo.PaymentPrivacy(payPrivacy),
		})
		if err != nil {
			var paymentErr *venmo.PaymentError
			if errors.As(err, &paymentErr) && paymentErr.IsInsufficientBalance() {
				return fmt.Errorf("not enough balance to send $%.2f", payAmount)
			}
			return err
		}
		fmt.Printf("Sent $%.2f to @%s (payment %s)\n", payment.Amount, payment.TargetUser().Username, payment.ID)
		return nil
	},
}

// requestCmd requests money
var requestCmd = &cobra.Command{
	Use:   "request",
	Short: "Request money from a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		if err := ensurePaymentService(ctx); err != nil {
			return err
		}
		target, err := resolveTarget(ctx, payTarget)
		if err != nil {
			return err
		}

		payment, err := paymentSvc.RequestMoney(ctx, payAmount, payNote, target, venmo.PaymentPrivacy(payPrivacy))
		if err != nil {
			return err
		}
		fmt.Printf("Requested $%.2f from @%s (payment %s)\n", -payment.Amount, payment.TargetUser().Username, payment.ID)
		return nil
	},
}

// resolveTarget accepts either a user id or an @username.
func resolveTarget(ctx context.Context, target string) (string, error) {
	if target == "" {
		return "", errors.New("--to is required")
	}
	if !strings.HasPrefix(target, "@") {
		return target, nil
	}
	user, err := userSvc.GetUserByUsername(ctx, strings.TrimPrefix(target, "@"))
	if err != nil {
		return "", err
	}
	return user.ID, nil
}

// paymentsCmd lists pending payments
var paymentsCmd = &cobra.Command{
	Use:   "payments",
	Short: "List pending payments",
	Long:  `List pending payments: 'charge' for money you requested, 'pay' for money requested from you.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		if err := ensurePaymentService(ctx); err != nil {
			return err
		}

		var page *venmo.Page[venmo.Payment]
		var err error
		switch paymentsAction {
		case "charge":
			page, err = paymentSvc.ChargePayments(ctx, 0)
		case "pay":
			page, err = paymentSvc.PayPayments(ctx, 0)
		default:
			return fmt.Errorf("invalid action %q (must be 'charge' or 'pay')", paymentsAction)
		}
		if err != nil {
			return err
		}

		if page.Len() == 0 {
			fmt.Println("No pending payments.")
			return nil
		}
		for _, payment := range page.Items() {
			fmt.Printf("%s  $%.2f  @%-20s %s\n",
				payment.ID, payment.Amount, payment.TargetUser().Username, payment.Note)
		}
		return nil
	},
}

// remindCmd sends payment reminders
var remindCmd = &cobra.Command{
	Use:   "remind <payment-id>...",
	Short: "Send reminders for pending payments",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		if err := ensurePaymentService(ctx); err != nil {
			return err
		}

		if len(args) == 1 {
			if err := paymentSvc.RemindPayment(ctx, args[0]); err != nil {
				return err
			}
			fmt.Println("Reminder sent.")
			return nil
		}

		result := paymentSvc.RemindAll(ctx, args)
		fmt.Printf("Reminded %d of %d payments\n", len(result.Reminded), result.Requested)
		for _, failed := range result.Failed {
			fmt.Printf("  ✗ %s: %v\n", failed.PaymentID, failed.Err)
		}
		return nil
	},
}

// cancelCmd cancels a pending payment
var cancelCmd = &cobra.Command{
	Use:   "cancel <payment-id>",
	Short: "Cancel a pending payment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		if err := ensurePaymentService(ctx); err != nil {
			return err
		}
		if err := paymentSvc.CancelPayment(ctx, args[0]); err != nil {
			return err
		}
		fmt.Println("Payment cancelled.")
		return nil
	},
}

// transferCmd moves money out of the Venmo balance
var transferCmd = &cobra.Command{
	Use:   "transfer",
	Short: "Transfer the Venmo balance to a bank or card",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		if err := ensurePaymentService(ctx); err != nil {
			return err
		}

		transferType := venmo.TransferStandard
		if transferInstant {
			transferType = venmo.TransferInstant
		}

		if transferDest == "" {
			page, err := paymentSvc.TransferDestinations(ctx, transferType)
			if err != nil {
				return err
			}
			fmt.Println("Eligible destinations:")
			for _, dest := range page.Items() {
				marker := " "
				if dest.IsDefault {
					marker = "*"
				}
				fmt.Printf("%s %d  %s (%s ...%s)\n", marker, dest.ID, dest.Name, dest.Type, dest.LastFour)
			}
			return nil
		}

		balance, err := userSvc.MyBalance(ctx, true)
		if err != nil {
			return err
		}
		paymentSvc.SetBalance(balance)

		result, err := paymentSvc.Transfer(ctx, transferDest, transferAmount, transferType)
		if err != nil {
			return err
		}
		fmt.Printf("Transfer %s initiated: $%.2f to %s (%s)\n",
			result.ID, result.Amount, result.Destination.Name, result.Status)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{payCmd, requestCmd} {
		c.Flags().Float64Var(&payAmount, "amount", 0, "amount in US dollars")
		c.Flags().StringVar(&payNote, "note", "", "note attached to the payment")
		c.Flags().StringVar(&payTarget, "to", "", "target user id or @username")
		c.Flags().StringVar(&payPrivacy, "privacy", "private", "audience: private, friends or public")
		c.MarkFlagRequired("amount")
		c.MarkFlagRequired("note")
	}
	payCmd.Flags().StringVar(&payFundingID, "funding-source", "", "funding source id (default payment method when omitted)")

	paymentsCmd.Flags().StringVar(&paymentsAction, "action", "charge", "payment kind: charge or pay")

	transferCmd.Flags().StringVar(&transferDest, "destination", "", "destination id (lists eligible destinations when omitted)")
	transferCmd.Flags().Float64Var(&transferAmount, "amount", 0, "amount in US dollars (entire balance when omitted)")
	transferCmd.Flags().BoolVar(&transferInstant, "instant", false, "use the fee-charging instant transfer")

	rootCmd.AddCommand(payCmd)
	rootCmd.AddCommand(requestCmd)
	rootCmd.AddCommand(paymentsCmd)
	rootCmd.AddCommand(remindCmd)
	rootCmd.AddCommand(cancelCmd)
	rootCmd.AddCommand(transferCmd)
}
