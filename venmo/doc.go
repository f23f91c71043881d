// Package venmo provides a client for Venmo's private HTTP API.
//
// The package covers authentication (including the two-factor challenge),
// user lookup, transaction feeds, payments and balance transfers.
//
// # Architecture
//
//   - Client: the authenticated request pipeline. Owns one HTTP client, the
//     default headers and the session identity snapshot (access token,
//     device id, session id).
//   - ValidatedResponse: every response is classified once into success, an
//     acceptable domain error, or a typed failure before anything else sees it.
//   - Deserialize / DeserializePage: generic extraction of typed records from
//     the "data" payload, with nested-path support.
//   - Page: a typed result page that remembers the request descriptor it was
//     produced from so NextPage can continue the same query.
//   - Auth: the login and two-factor state flow.
//   - UserService / PaymentService: the per-domain operations.
//
// # Usage
//
//	logger := zerolog.New(os.Stdout)
//	client := venmo.NewClient(logger, venmo.WithDeviceID(deviceID))
//
//	auth := venmo.NewAuth(client)
//	token, err := auth.Login(ctx, username, password, promptOTP)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	users := venmo.NewUserService(client)
//	profile, err := users.MyProfile(ctx, false)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	payments := venmo.NewPaymentService(client, profile)
//	page, err := payments.ChargePayments(ctx, 50)
//	for page.Len() > 0 {
//		// ... use page.Items()
//		page, err = page.NextPage(ctx)
//		if err != nil {
//			break
//		}
//	}
//
// # Error Handling
//
// Failures are typed, never retried, and always propagate to the immediate
// caller:
//
//   - ErrInvalidMethod: unsupported HTTP verb, caught before any network call
//   - *TransportError: network-level failure, surfaced untouched
//   - *APIError: unrecognized status/body combination, carries both
//   - ErrResourceNotFound: the upstream 400 + code 283 sentinel
//   - *AuthError: a failed login or two-factor step
//   - *PaymentError: business-rule rejections embedded in 200-range responses
//   - ErrEmptyBody / *MissingKeyError: deserialization contract violations
//
// # Concurrency
//
// Calls are synchronous and the default client is not internally
// synchronized. CallAsync and the batch helpers run each concurrent call on an
// independent clone of the client.
package venmo
