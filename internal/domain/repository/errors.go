package repository

import (
	"errors"
	"fmt"
)

// ErrMarketData marks an upstream-data failure. It is fatal to the pipeline
// run for that symbol; all other stage failures degrade to documented
// defaults instead of propagating.
var ErrMarketData = errors.New("market data unavailable")

// MarketDataError wraps err as an upstream-data failure with call context.
func MarketDataError(op, symbol string, err error) error {
	return fmt.Errorf("%s %s: %w", op, symbol, errors.Join(ErrMarketData, err))
}
