package venmo

import "time"

// PaymentPrivacy is the audience of a payment or transaction.
type PaymentPrivacy string

const (
	PrivacyPrivate PaymentPrivacy = "private"
	PrivacyFriends PaymentPrivacy = "friends"
	PrivacyPublic  PaymentPrivacy = "public"
)

// PaymentStatus is the lifecycle state of a payment.
type PaymentStatus string

const (
	PaymentSettled   PaymentStatus = "settled"
	PaymentCancelled PaymentStatus = "cancelled"
	PaymentPending   PaymentStatus = "pending"
	PaymentHeld      PaymentStatus = "held"
	PaymentFailed    PaymentStatus = "failed"
	PaymentExpired   PaymentStatus = "expired"
)

// PaymentAction distinguishes money sent from money requested.
type PaymentAction string

const (
	ActionPay    PaymentAction = "pay"
	ActionCharge PaymentAction = "charge"
)

// PaymentMethodRole describes how a payment method is used for a payment kind.
type PaymentMethodRole string

const (
	RoleDefault PaymentMethodRole = "default"
	RoleBackup  PaymentMethodRole = "backup"
	RoleNone    PaymentMethodRole = "none"
)

// PaymentMethodType is the funding source kind.
type PaymentMethodType string

const (
	MethodBank    PaymentMethodType = "bank"
	MethodBalance PaymentMethodType = "balance"
	MethodCard    PaymentMethodType = "card"
)

// TransferType selects between the free (slow) and fee-charging (instant)
// balance transfer.
type TransferType string

const (
	TransferStandard TransferType = "standard"
	TransferInstant  TransferType = "instant"
)

// User is a Venmo user profile.
type User struct {
	ID                string         `json:"id"`
	Username          string         `json:"username"`
	DisplayName       string         `json:"display_name"`
	FirstName         string         `json:"first_name"`
	LastName          string         `json:"last_name"`
	About             string         `json:"about"`
	Email             string         `json:"email"`
	Phone             string         `json:"phone"`
	ProfilePictureURL string         `json:"profile_picture_url"`
	FriendsCount      int            `json:"friends_count"`
	FriendStatus      string         `json:"friend_status"`
	DateJoined        time.Time      `json:"date_joined"`
	IsActive          bool           `json:"is_active"`
	IsBlocked         bool           `json:"is_blocked"`
	IsGroup           bool           `json:"is_group"`
	IsPayable         bool           `json:"is_payable"`
	IdentityType      string         `json:"identity_type"`
	Audience          PaymentPrivacy `json:"audience"`
}

// Fee is bundled with eligibility and payment method responses.
type Fee struct {
	ProductURI                 string  `json:"product_uri"`
	AppliedTo                  string  `json:"applied_to"`
	BaseFeeAmount              float64 `json:"base_fee_amount"`
	FeePercentage              float64 `json:"fee_percentage"`
	CalculatedFeeAmountInCents int     `json:"calculated_fee_amount_in_cents"`
	FeeToken                   string  `json:"fee_token"`
}

// EligibilityToken must be generated before sending money and passed in the
// payment payload.
type EligibilityToken struct {
	Token            string `json:"eligibility_token"`
	Eligible         bool   `json:"eligible"`
	Fees             []Fee  `json:"fees"`
	FeeDisclaimer    string `json:"fee_disclaimer"`
	IneligibleReason string `json:"ineligible_reason"`
}

// PaymentTarget wraps the recipient of a payment; the upstream nests the user
// record one level down.
type PaymentTarget struct {
	Type string `json:"type"`
	User User   `json:"user"`
}

// Payment is returned by a successful payment or request.
type Payment struct {
	ID            string         `json:"id"`
	Status        PaymentStatus  `json:"status"`
	Action        PaymentAction  `json:"action"`
	Amount        float64        `json:"amount"`
	Note          string         `json:"note"`
	DateCreated   time.Time      `json:"date_created"`
	DateCompleted *time.Time     `json:"date_completed"`
	DateReminded  *time.Time     `json:"date_reminded"`
	Audience      PaymentPrivacy `json:"audience"`
	Actor         User           `json:"actor"`
	Target        PaymentTarget  `json:"target"`
	Fee           *Fee           `json:"fee"`
}

// TargetUser returns the recipient user of the payment.
func (p Payment) TargetUser() User {
	return p.Target.User
}

// IsPending reports whether the payment is still awaiting settlement.
func (p Payment) IsPending() bool {
	return p.Status == PaymentPending || p.Status == PaymentHeld
}

// PaymentMethod is an available funding source.
type PaymentMethod struct {
	ID                         string            `json:"id"`
	Type                       PaymentMethodType `json:"type"`
	Name                       string            `json:"name"`
	LastFour                   string            `json:"last_four"`
	PeerPaymentRole            PaymentMethodRole `json:"peer_payment_role"`
	MerchantPaymentRole        PaymentMethodRole `json:"merchant_payment_role"`
	TopUpRole                  string            `json:"top_up_role"`
	DefaultTransferDestination string            `json:"default_transfer_destination"`
	Fee                        *Fee              `json:"fee"`
}

// TransferDestination is a payment method variant eligible for balance
// transfers.
type TransferDestination struct {
	ID                 int64             `json:"id"`
	Type               PaymentMethodType `json:"type"`
	Name               string            `json:"name"`
	LastFour           string            `json:"last_four"`
	IsDefault          bool              `json:"is_default"`
	TransferToEstimate time.Time         `json:"transfer_to_estimate"`
	AccountStatus      string            `json:"account_status"`
}

// TransferResult is returned by a successful balance transfer.
type TransferResult struct {
	ID                   string              `json:"id"`
	Amount               float64             `json:"amount"`
	AmountCents          int                 `json:"amount_cents"`
	AmountFeeCents       int                 `json:"amount_fee_cents"`
	AmountRequestedCents int                 `json:"amount_requested_cents"`
	DateRequested        time.Time           `json:"date_requested"`
	Destination          TransferDestination `json:"destination"`
	Status               string              `json:"status"`
	Type                 TransferType        `json:"type"`
}

// TransactionType classifies a feed entry.
type TransactionType string

const (
	TransactionPayment       TransactionType = "payment"
	TransactionRefund        TransactionType = "refund"
	TransactionTransfer      TransactionType = "transfer"
	TransactionTopUp         TransactionType = "top_up"
	TransactionAuthorization TransactionType = "authorization"
	TransactionATMWithdrawal TransactionType = "atm_withdrawal"
	TransactionDisbursement  TransactionType = "disbursement"
)

// App identifies the client application that created a transaction.
type App struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
}

var deviceNames = map[int]string{
	1:  "iPhone",
	4:  "Android",
	10: "Desktop Browser",
}

// DeviceName maps the app id onto a human-readable device name.
func (a App) DeviceName() string {
	if name, ok := deviceNames[a.ID]; ok {
		return name
	}
	return "Other"
}

// Mention links a username tagged in a comment to its user record.
type Mention struct {
	Username string `json:"username"`
	User     User   `json:"user"`
}

// MentionList unwraps the upstream's {"data": [...]} envelope for mentions.
type MentionList struct {
	Data []Mention `json:"data"`
}

// Comment is a comment attached to a transaction.
type Comment struct {
	ID          string      `json:"id"`
	Message     string      `json:"message"`
	DateCreated time.Time   `json:"date_created"`
	Mentions    MentionList `json:"mentions"`
	User        User        `json:"user"`
}

// CommentList unwraps the upstream's {"data": [...]} envelope for comments.
type CommentList struct {
	Data []Comment `json:"data"`
}

// Transaction is a story-feed entry.
type Transaction struct {
	ID          string          `json:"id"`
	Type        TransactionType `json:"type"`
	Note        string          `json:"note"`
	DateCreated time.Time       `json:"date_created"`
	DateUpdated *time.Time      `json:"date_updated"`
	Payment     Payment         `json:"payment"`
	Audience    PaymentPrivacy  `json:"audience"`
	App         App             `json:"app"`
	Comments    CommentList     `json:"comments"`
}
