package money

import "github.com/ocxide/monee/internal/id"

func newTestCurrencyID() id.CurrencyID {
	return id.NewCurrencyID()
}
