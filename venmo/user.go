package venmo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// Default page limits, matching the upstream client's observed values.
const (
	defaultSearchLimit  = 50
	defaultFriendsLimit = 3337
	defaultFeedLimit    = 50
)

// UserService queries user profiles, friends lists and transaction feeds.
type UserService struct {
	client  *Client
	logger  zerolog.Logger
	profile *User
	balance *float64
}

// NewUserService creates a UserService on top of a logged-in client.
func NewUserService(client *Client) *UserService {
	return &UserService{client: client, logger: client.logger}
}

// MyProfile returns the authenticated user's profile, cached after the first
// fetch unless forceUpdate is set.
func (s *UserService) MyProfile(ctx context.Context, forceUpdate bool) (*User, error) {
	if s.profile != nil && !forceUpdate {
		return s.profile, nil
	}

	resp, err := s.client.Call(ctx, Request{Method: http.MethodGet, Path: "/account"})
	if err != nil {
		return nil, err
	}
	profile, err := Deserialize[User](resp, "user")
	if err != nil {
		return nil, err
	}
	s.profile = &profile
	return s.profile, nil
}

// MyBalance returns the authenticated user's balance, cached after the first
// fetch unless forceUpdate is set.
func (s *UserService) MyBalance(ctx context.Context, forceUpdate bool) (float64, error) {
	if s.balance != nil && !forceUpdate {
		return *s.balance, nil
	}

	resp, err := s.client.Call(ctx, Request{Method: http.MethodGet, Path: "/account"})
	if err != nil {
		return 0, err
	}
	balance, err := Deserialize[float64](resp, "balance")
	if err != nil {
		return 0, err
	}
	s.balance = &balance
	return balance, nil
}

// SearchUsers searches for users matching query. A query containing "@" (or
// username=true upstream) switches to exact username search. The returned page
// can fetch its successors.
func (s *UserService) SearchUsers(ctx context.Context, query string, offset, limit int) (*Page[User], error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	params := url.Values{}
	params.Set("query", query)
	if strings.Contains(query, "@") {
		params.Set("query", strings.ReplaceAll(query, "@", ""))
		params.Set("type", "username")
	}

	return fetchPage[User](ctx, s.client, PageRequest{
		Path:   "/users",
		Query:  params,
		Offset: offset,
		Limit:  limit,
	})
}

// GetUser fetches the profile with the given id. A missing user surfaces as
// ErrResourceNotFound.
func (s *UserService) GetUser(ctx context.Context, userID string) (*User, error) {
	resp, err := s.client.Call(ctx, Request{
		Method: http.MethodGet,
		Path:   "/users/" + userID,
	})
	if err != nil {
		return nil, err
	}
	user, err := Deserialize[User](resp)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByUsername searches for an exact username match.
func (s *UserService) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	page, err := s.SearchUsers(ctx, "@"+username, 0, defaultSearchLimit)
	if err != nil {
		return nil, err
	}
	for _, user := range page.Items() {
		if user.Username == username {
			return &user, nil
		}
	}
	return nil, fmt.Errorf("username %q: %w", username, ErrResourceNotFound)
}

// FriendsList returns userID's friends.
func (s *UserService) FriendsList(ctx context.Context, userID string, offset, limit int) (*Page[User], error) {
	if limit <= 0 {
		limit = defaultFriendsLimit
	}
	return fetchPage[User](ctx, s.client, PageRequest{
		Path:   "/users/" + userID + "/friends",
		Query:  url.Values{},
		Offset: offset,
		Limit:  limit,
	})
}

// TransactionOptions filters a transaction feed. The zero value asks for
// public stories only with the default page limit.
type TransactionOptions struct {
	// SocialOnly restricts the feed to transactions between personal accounts.
	SocialOnly bool
	// IncludePrivate also returns stories the user has not made public.
	IncludePrivate bool
	// Limit is the page size; zero means the default.
	Limit int
	// BeforeID anchors the first page; it applies to the initial fetch only.
	BeforeID string
}

// UserTransactions returns userID's transactions visible to the caller.
func (s *UserService) UserTransactions(ctx context.Context, userID string, opts TransactionOptions) (*Page[Transaction], error) {
	return s.feed(ctx, userID, opts)
}

// FriendsFeed returns the transactions of the caller's friends.
func (s *UserService) FriendsFeed(ctx context.Context, opts TransactionOptions) (*Page[Transaction], error) {
	return s.feed(ctx, "friends", opts)
}

// TransactionsBetween returns the transactions between two users. userIDOne
// must be the owner of the access token or the upstream rejects the call.
func (s *UserService) TransactionsBetween(ctx context.Context, userIDOne, userIDTwo string, opts TransactionOptions) (*Page[Transaction], error) {
	return s.feed(ctx, userIDOne+"/target-or-actor/"+userIDTwo, opts)
}

func (s *UserService) feed(ctx context.Context, suffix string, opts TransactionOptions) (*Page[Transaction], error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultFeedLimit
	}

	// Fixed params only; before_id anchors the first page and is not part of
	// the continuation.
	params := url.Values{}
	params.Set("social_only", strconv.FormatBool(opts.SocialOnly))
	params.Set("only_public_stories", strconv.FormatBool(!opts.IncludePrivate))

	req := PageRequest{
		Path:  "/stories/target-or-actor/" + suffix,
		Query: params,
		Limit: limit,
	}

	if opts.BeforeID == "" {
		return fetchPage[Transaction](ctx, s.client, req)
	}

	query := cloneQuery(params)
	query.Set("limit", strconv.Itoa(limit))
	query.Set("before_id", opts.BeforeID)
	resp, err := s.client.Call(ctx, Request{
		Method: http.MethodGet,
		Path:   req.Path,
		Query:  query,
	})
	if err != nil {
		return nil, err
	}
	page, err := DeserializePage[Transaction](resp)
	if err != nil {
		return nil, err
	}
	page.bind(s.client, req)
	return page, nil
}
