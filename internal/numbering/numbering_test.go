package numbering

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBillNumber(t *testing.T) {
	at := time.Date(2026, time.March, 10, 14, 30, 0, 0, time.UTC)
	assert.Equal(t, "BILL-20260310-000042", BillNumber(at, 42))
	assert.Equal(t, "BILL-20260310-654321", BillNumber(at, 987654321))
}

func TestTicketNumber(t *testing.T) {
	at := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "TKT-202603-000007", TicketNumber(at, 7))
}

func TestAccountNumber(t *testing.T) {
	assert.Equal(t, "PA-CON-2026-000001-0042", AccountNumber("CON-2026-000001", 42))
	assert.Equal(t, "PA-00000042", AccountNumber("  ", 42))
}

func TestCategoryCode(t *testing.T) {
	assert.Equal(t, "GEN", CategoryCode(""))
	assert.Equal(t, "SUP", CategoryCode("supply"))
	assert.Equal(t, "BIL", CategoryCode("Billing"))
	assert.Equal(t, "NET", CategoryCode("net"))
}
