package common

import (
	"context"
	"encoding/hex"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sethvargo/go-retry"
)

func IsValidURL(input string) bool {
	_, err := url.ParseRequestURI(input)

	return err == nil
}

func Ptr[T any](value T) *T {
	return &value
}

func IsValidHexAddress(s string) bool {
	return common.IsHexAddress(s)
}

func DecodeHex(s string) ([]byte, error) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
	}

	return hex.DecodeString(s)
}

func IsContextDoneErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// RetryForever calls fn every waitTime until it succeeds or ctx is done
func RetryForever(ctx context.Context, waitTime time.Duration, fn func(context.Context) error) error {
	return retry.Do(ctx, retry.NewConstant(waitTime), func(ctx context.Context) error {
		if err := fn(ctx); err != nil {
			return retry.RetryableError(err)
		}

		return nil
	})
}

// RetryWithBackoff calls fn at most maxRetries+1 times with exponentially growing pauses.
// Errors for which isRecoverable returns false stop the loop immediately.
func RetryWithBackoff(
	ctx context.Context, maxRetries uint64, baseDelay time.Duration,
	fn func(context.Context) error, isRecoverable func(error) bool,
) error {
	if baseDelay <= 0 {
		baseDelay = time.Millisecond
	}

	backoff := retry.WithMaxRetries(maxRetries, retry.NewExponential(baseDelay))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := fn(ctx)
		if err == nil || IsContextDoneErr(err) || (isRecoverable != nil && !isRecoverable(err)) {
			return err
		}

		return retry.RetryableError(err)
	})
}
