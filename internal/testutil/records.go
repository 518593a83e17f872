package testutil

import (
	"time"

	"github.com/roach88/auditlens/internal/audit"
)

// PriceChange builds a product UPDATE moving the price from old to new.
// An empty old leaves the previous price null.
func PriceChange(productID int64, old, new string, at time.Time, reason string) audit.ProductAudit {
	r := audit.ProductAudit{
		Header:    audit.Header{Operation: audit.OpUpdate, ChangedAt: at},
		ProductID: productID,
		NewPrice:  audit.MoneyOf(audit.MustMoney(new)),
	}
	if old != "" {
		r.OldPrice = audit.MoneyOf(audit.MustMoney(old))
	}
	if reason != "" {
		r.Reason = audit.StringOf(reason)
	}
	return r
}

// OrderCreated builds an order INSERT with an initial status.
func OrderCreated(orderID int64, status string, at time.Time) audit.OrderAudit {
	return audit.OrderAudit{
		Header:    audit.Header{Operation: audit.OpInsert, ChangedAt: at},
		OrderID:   orderID,
		NewStatus: audit.StringOf(status),
	}
}

// StatusChange builds an order UPDATE from one status to another.
func StatusChange(orderID int64, from, to string, at time.Time) audit.OrderAudit {
	return audit.OrderAudit{
		Header:    audit.Header{Operation: audit.OpUpdate, ChangedAt: at},
		OrderID:   orderID,
		OldStatus: audit.StringOf(from),
		NewStatus: audit.StringOf(to),
	}
}

// CustomerRenamed builds a customer UPDATE of the name field. An empty
// from leaves the old name null.
func CustomerRenamed(customerID int64, from, to string, at time.Time) audit.CustomerAudit {
	r := audit.CustomerAudit{
		Header:     audit.Header{Operation: audit.OpUpdate, ChangedAt: at},
		CustomerID: customerID,
		NewName:    audit.StringOf(to),
	}
	if from != "" {
		r.OldName = audit.StringOf(from)
	}
	return r
}

// PaymentStatusChange builds a payment UPDATE of payment_status.
func PaymentStatusChange(paymentID int64, from, to string, at time.Time) audit.PaymentAudit {
	return audit.PaymentAudit{
		Header:           audit.Header{Operation: audit.OpUpdate, ChangedAt: at},
		PaymentID:        paymentID,
		OldPaymentStatus: audit.StringOf(from),
		NewPaymentStatus: audit.StringOf(to),
	}
}

// By sets the acting user on a record built by this package.
func By[R audit.Record](rec R, userID int64) audit.Record {
	switch r := any(rec).(type) {
	case audit.ProductAudit:
		r.ChangedBy = audit.Int64Of(userID)
		return r
	case audit.OrderAudit:
		r.ChangedBy = audit.Int64Of(userID)
		return r
	case audit.CustomerAudit:
		r.ChangedBy = audit.Int64Of(userID)
		return r
	case audit.PaymentAudit:
		r.ChangedBy = audit.Int64Of(userID)
		return r
	}
	return rec
}
