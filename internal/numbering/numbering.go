// Package numbering builds the human-facing reference numbers printed on
// receipts and tickets. Database identity stays on snowflake IDs; these
// numbers exist for operators and consumers.
package numbering

import (
	"fmt"
	"strings"
	"time"
)

// BillNumber is stamped on successful recharge receipts:
// BILL-YYYYMMDD-<last 6 digits of the recharge ID>.
func BillNumber(at time.Time, rechargeID int64) string {
	return fmt.Sprintf("BILL-%s-%06d", at.Format("20060102"), rechargeID%1000000)
}

// TicketNumber identifies a support ticket: TKT-YYYYMM-<last 6 digits>.
func TicketNumber(at time.Time, ticketID int64) string {
	return fmt.Sprintf("TKT-%s-%06d", at.Format("200601"), ticketID%1000000)
}

// AccountNumber derives a prepaid account number from the consumer number.
func AccountNumber(consumerNumber string, accountID int64) string {
	consumerNumber = strings.TrimSpace(consumerNumber)
	if consumerNumber == "" {
		return fmt.Sprintf("PA-%08d", accountID%100000000)
	}
	return fmt.Sprintf("PA-%s-%04d", consumerNumber, accountID%10000)
}

// CategoryCode collapses a free-form ticket category into the short code used
// in ticket numbers and reports.
func CategoryCode(category string) string {
	category = strings.ToUpper(strings.TrimSpace(category))
	switch {
	case category == "":
		return "GEN"
	case len(category) <= 3:
		return category
	default:
		return category[:3]
	}
}
