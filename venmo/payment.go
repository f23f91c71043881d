package venmo

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// defaultPaymentsLimit matches the upstream client's effectively-unbounded
// pending payments fetch.
const defaultPaymentsLimit = 100000

// remindConcurrency bounds parallel reminder calls in RemindAll.
const remindConcurrency = 5

// PaymentService sends, requests and manages payments and balance transfers.
type PaymentService struct {
	client  *Client
	logger  zerolog.Logger
	profile *User
	balance *float64
}

// NewPaymentService creates a PaymentService for the given profile, which is
// the profile fetched at login for the token owner.
func NewPaymentService(client *Client, profile *User) *PaymentService {
	return &PaymentService{client: client, logger: client.logger, profile: profile}
}

// SetBalance records the user's balance so Transfer can fall back to
// transferring the full amount.
func (s *PaymentService) SetBalance(balance float64) {
	s.balance = &balance
}

// ChargePayments returns pending requests for money made by the user.
func (s *PaymentService) ChargePayments(ctx context.Context, limit int) (*Page[Payment], error) {
	return s.payments(ctx, ActionCharge, limit)
}

// PayPayments returns pending requests for money from the user.
func (s *PaymentService) PayPayments(ctx context.Context, limit int) (*Page[Payment], error) {
	return s.payments(ctx, ActionPay, limit)
}

func (s *PaymentService) payments(ctx context.Context, action PaymentAction, limit int) (*Page[Payment], error) {
	if limit <= 0 {
		limit = defaultPaymentsLimit
	}
	params := url.Values{}
	params.Set("action", string(action))
	params.Set("actor", s.profile.ID)

	return fetchPage[Payment](ctx, s.client, PageRequest{
		Path:  "/payments",
		Query: params,
		Limit: limit,
	})
}

// RemindPayment sends a reminder for a pending requested payment.
func (s *PaymentService) RemindPayment(ctx context.Context, paymentID string) error {
	resp, err := s.updatePayment(ctx, "remind", paymentID)
	if err != nil {
		return err
	}
	if resp.HasError() {
		code, _ := embeddedErrorCode(resp.Body)
		if code == codeNoPendingPaymentAlt {
			return &PaymentError{Code: code, Message: fmt.Sprintf("no pending payment %s to remind", paymentID)}
		}
		return &PaymentError{Code: codeAlreadyReminded, Message: fmt.Sprintf("payment %s was already reminded", paymentID)}
	}
	return nil
}

// CancelPayment cancels a pending payment the user has access to.
func (s *PaymentService) CancelPayment(ctx context.Context, paymentID string) error {
	resp, err := s.updatePayment(ctx, "cancel", paymentID)
	if err != nil {
		return err
	}
	if resp.HasError() {
		code, _ := embeddedErrorCode(resp.Body)
		return &PaymentError{Code: code, Message: fmt.Sprintf("no pending payment %s to cancel", paymentID)}
	}
	return nil
}

func (s *PaymentService) updatePayment(ctx context.Context, action, paymentID string) (*ValidatedResponse, error) {
	return s.client.Call(ctx, Request{
		Method:       http.MethodPut,
		Path:         "/payments/" + paymentID,
		Body:         map[string]any{"action": action},
		OKErrorCodes: []int{codeAlreadyReminded, codeNoPendingPayment, codeNoPendingPaymentAlt},
	})
}

// RemindError records one failed reminder in a batch.
type RemindError struct {
	PaymentID string
	Err       error
}

// Error implements the error interface
func (e RemindError) Error() string {
	return fmt.Sprintf("failed to remind payment %s: %v", e.PaymentID, e.Err)
}

func (e RemindError) Unwrap() error {
	return e.Err
}

// BatchRemindResult contains the results of a RemindAll run.
type BatchRemindResult struct {
	Requested int
	Reminded  []string
	Failed    []RemindError
}

// RemindAll sends reminders for every payment id concurrently with bounded
// parallelism. Each worker runs on an independent client so identity headers
// are never shared across in-flight calls. Individual failures are collected,
// not fatal.
func (s *PaymentService) RemindAll(ctx context.Context, paymentIDs []string) BatchRemindResult {
	result := BatchRemindResult{Requested: len(paymentIDs)}
	if len(paymentIDs) == 0 {
		return result
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(remindConcurrency)

	successChan := make(chan string, len(paymentIDs))
	errorChan := make(chan RemindError, len(paymentIDs))

	for _, paymentID := range paymentIDs {
		paymentID := paymentID
		g.Go(func() error {
			worker := &PaymentService{
				client:  s.client.clone(),
				logger:  s.logger,
				profile: s.profile,
			}
			if err := worker.RemindPayment(ctx, paymentID); err != nil {
				errorChan <- RemindError{PaymentID: paymentID, Err: err}
			} else {
				successChan <- paymentID
			}
			return nil // don't stop on individual errors
		})
	}

	g.Wait()
	close(successChan)
	close(errorChan)

	for id := range successChan {
		result.Reminded = append(result.Reminded, id)
	}
	for remindErr := range errorChan {
		result.Failed = append(result.Failed, remindErr)
	}

	return result
}

// PaymentMethods returns the available funding sources. The upstream endpoint
// is not paginated, so the returned page cannot fetch successors.
func (s *PaymentService) PaymentMethods(ctx context.Context) (*Page[PaymentMethod], error) {
	resp, err := s.client.Call(ctx, Request{
		Method: http.MethodGet,
		Path:   "/payment-methods",
	})
	if err != nil {
		return nil, err
	}
	return DeserializePage[PaymentMethod](resp)
}

// DefaultPaymentMethod finds the funding source with the default peer payment
// role.
func (s *PaymentService) DefaultPaymentMethod(ctx context.Context) (*PaymentMethod, error) {
	methods, err := s.PaymentMethods(ctx)
	if err != nil {
		return nil, err
	}
	for _, method := range methods.Items() {
		if method.PeerPaymentRole == RoleDefault {
			return &method, nil
		}
	}
	return nil, ErrNoPaymentMethod
}

// SendOptions tweaks an outgoing payment. The zero value uses the default
// funding source and private audience.
type SendOptions struct {
	FundingSourceID string
	Privacy         PaymentPrivacy
}

// SendMoney sends amount with note to targetUserID. If no funding source is
// given the default one is resolved first.
func (s *PaymentService) SendMoney(ctx context.Context, amount float64, note, targetUserID string, opts SendOptions) (*Payment, error) {
	return s.sendOrRequest(ctx, amount, note, targetUserID, true, opts)
}

// RequestMoney requests amount with note from targetUserID.
func (s *PaymentService) RequestMoney(ctx context.Context, amount float64, note, targetUserID string, privacy PaymentPrivacy) (*Payment, error) {
	return s.sendOrRequest(ctx, amount, note, targetUserID, false, SendOptions{Privacy: privacy})
}

func (s *PaymentService) sendOrRequest(ctx context.Context, amount float64, note, targetUserID string, isSend bool, opts SendOptions) (*Payment, error) {
	privacy := opts.Privacy
	if privacy == "" {
		privacy = PrivacyPrivate
	}

	amount = math.Abs(amount)
	signed := amount
	if !isSend {
		signed = -amount
	}

	body := map[string]any{
		"uuid":     uuid.NewString(),
		"user_id":  targetUserID,
		"audience": string(privacy),
		"amount":   roundCents(signed),
		"note":     note,
	}

	if isSend {
		fundingSourceID := opts.FundingSourceID
		if fundingSourceID == "" {
			method, err := s.DefaultPaymentMethod(ctx)
			if err != nil {
				return nil, err
			}
			fundingSourceID = method.ID
		}
		eligibility, err := s.eligibilityToken(ctx, amount, note, targetUserID)
		if err != nil {
			return nil, err
		}
		body["eligibility_token"] = eligibility.Token
		body["funding_source_id"] = fundingSourceID
	}

	resp, err := s.client.Call(ctx, Request{
		Method: http.MethodPost,
		Path:   "/payments",
		Body:   body,
	})
	if err != nil {
		return nil, err
	}

	// The upstream signals business rejections inside an HTTP 200 body.
	if paymentErr := dataErrorCode(resp); paymentErr != nil {
		return nil, paymentErr
	}

	payment, err := Deserialize[Payment](resp, "payment")
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("payment_id", payment.ID).
		Str("target", targetUserID).
		Float64("amount", signed).
		Msg("Payment created")
	return &payment, nil
}

// dataErrorCode inspects data.error_code on an otherwise-successful payment
// response and maps it onto the payment error taxonomy.
func dataErrorCode(resp *ValidatedResponse) *PaymentError {
	body, ok := resp.Body.(map[string]any)
	if !ok {
		return nil
	}
	data, ok := body["data"].(map[string]any)
	if !ok {
		return nil
	}
	rawCode, ok := data["error_code"].(float64)
	if !ok || rawCode == 0 {
		return nil
	}

	code := int(rawCode)
	title, _ := data["title"].(string)
	message, _ := data["error_msg"].(string)
	if code == codeInsufficientBalance {
		return &PaymentError{Code: code, Title: title, Message: "not enough balance to cover the payment"}
	}
	return &PaymentError{Code: code, Title: title, Message: message}
}

// eligibilityToken generates the token that must accompany outgoing payments.
func (s *PaymentService) eligibilityToken(ctx context.Context, amount float64, note, targetID string) (*EligibilityToken, error) {
	body := map[string]any{
		"funding_source_id": "", // the upstream app leaves this blank
		"action":            "pay",
		"country_code":      "1",
		"target_type":       "user_id",
		"note":              note,
		"target_id":         targetID,
		"amount":            toCents(amount),
	}
	resp, err := s.client.Call(ctx, Request{
		Method: http.MethodPost,
		Path:   "/protection/eligibility",
		Body:   body,
	})
	if err != nil {
		return nil, err
	}
	token, err := Deserialize[EligibilityToken](resp)
	if err != nil {
		return nil, err
	}
	return &token, nil
}

// TransferDestinations lists the eligible destinations for a balance transfer
// of the given type.
func (s *PaymentService) TransferDestinations(ctx context.Context, transferType TransferType) (*Page[TransferDestination], error) {
	resp, err := s.client.Call(ctx, Request{
		Method: http.MethodGet,
		Path:   "/transfers/options",
	})
	if err != nil {
		return nil, err
	}
	return DeserializePage[TransferDestination](resp, string(transferType), "eligible_destinations")
}

// Transfer moves amount from the Venmo balance to destinationID. A zero
// amount falls back to the balance recorded via SetBalance.
func (s *PaymentService) Transfer(ctx context.Context, destinationID string, amount float64, transferType TransferType) (*TransferResult, error) {
	if amount <= 0 {
		if s.balance == nil {
			return nil, errors.New("must pass a transfer amount if no balance available")
		}
		amount = *s.balance
	}
	if transferType == "" {
		transferType = TransferStandard
	}

	amountCents := toCents(amount)
	body := map[string]any{
		"amount":         amountCents,
		"destination_id": destinationID,
		"transfer_type":  string(transferType),
		"final_amount":   amountCents,
	}
	resp, err := s.client.Call(ctx, Request{
		Method: http.MethodPost,
		Path:   "/transfers",
		Body:   body,
	})
	if err != nil {
		return nil, err
	}
	result, err := Deserialize[TransferResult](resp)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// toCents converts a dollar amount to whole cents.
func toCents(amount float64) int {
	return int(math.Round(amount * 100))
}

// roundCents rounds a dollar amount to two decimals.
func roundCents(amount float64) float64 {
	return math.Round(amount*100) / 100
}
