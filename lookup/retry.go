package lookup

import (
	"context"
	"io"
	"math"
	"net/http"
	"time"
)

// retryBaseDelay is the first backoff after a 429 response. It doubles on
// every attempt up to retryMaxDelay.
var (
	retryBaseDelay = 1 * time.Second
	retryMaxDelay  = 8 * time.Second
)

const maxRetries = 3

// doWithRetry executes req and retries it with exponential backoff while
// the response is 429 Too Many Requests. After the last retry the 429
// response is returned as is.
func doWithRetry(ctx context.Context, client *http.Client, req *http.Request) (*http.Response, error) {
	for attempt := 0; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}

		if resp.StatusCode != http.StatusTooManyRequests || attempt >= maxRetries {
			return resp, nil
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		backoff := time.Duration(math.Pow(2, float64(attempt))) * retryBaseDelay
		if backoff > retryMaxDelay {
			backoff = retryMaxDelay
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}
