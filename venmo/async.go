package venmo

import "context"

// CallResult carries the outcome of an asynchronous call.
type CallResult struct {
	Response *ValidatedResponse
	Err      error
}

// CallAsync dispatches a call on its own goroutine and returns a channel that
// yields exactly one result before closing. The call runs on an independent
// clone of the client (own transport, own copy of headers and identity), so
// identity mutation on the primary client cannot race a pending async call.
func (c *Client) CallAsync(ctx context.Context, req Request) <-chan CallResult {
	out := make(chan CallResult, 1)
	worker := c.clone()

	go func() {
		defer close(out)
		resp, err := worker.Call(ctx, req)
		out <- CallResult{Response: resp, Err: err}
	}()

	return out
}
