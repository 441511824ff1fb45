// Package feed fetches the transaction feed and reconstructs exchange
// semantics from it.
package feed

import (
	"regexp"
	"strings"

	"github.com/fttech/exchange-client/internal/exchange/api"
)

const (
	TypeExchangeIn  = "EXCHANGE_IN"
	TypeExchangeOut = "EXCHANGE_OUT"
)

// ClassifiedTransaction is a raw transaction with the inferred exchange
// direction and currency legs. Derived on every fetch, never persisted.
type ClassifiedTransaction struct {
	api.Transaction
	FromCurrency string
	ToCurrency   string
}

// The feed does not emit currency legs as fields yet; descriptions like
// "Exchange from USD to EUR" are the only source. This pattern is the whole
// contract — richer semantics belong in the feed schema, not in a smarter
// parser.
var exchangeLegs = regexp.MustCompile(`(?i)from (\w+) to (\w+)`)

// Classify derives exchange sub-types and currency legs. Best effort: a
// description that mentions an exchange but does not match the leg pattern
// yields a sub-typed transaction with no legs, and non-exchange items pass
// through untouched. Classification never fails a fetch.
func Classify(txns []api.Transaction) []ClassifiedTransaction {
	classified := make([]ClassifiedTransaction, len(txns))
	for i, txn := range txns {
		classified[i] = classifyOne(txn)
	}
	return classified
}

func classifyOne(txn api.Transaction) ClassifiedTransaction {
	ct := ClassifiedTransaction{Transaction: txn}
	if !strings.Contains(txn.Description, "Exchange") {
		return ct
	}

	if txn.Amount > 0 {
		ct.TransactionType = TypeExchangeIn
	} else {
		ct.TransactionType = TypeExchangeOut
	}

	if m := exchangeLegs.FindStringSubmatch(txn.Description); m != nil {
		ct.FromCurrency = m[1]
		ct.ToCurrency = m[2]
	}
	return ct
}
