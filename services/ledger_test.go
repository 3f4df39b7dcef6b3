package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulseinvest/habitloop/models"
)

func TestLedgerCreditAndDebit(t *testing.T) {
	db := openTestDB(t)
	ledger := NewLedgerService(db)
	u := seedUser(t, db, "saver", false, 0)

	require.NoError(t, ledger.Credit(nil, u.ID, 10, models.ReasonPollReward))
	require.NoError(t, ledger.Debit(nil, u.ID, 3, models.ReasonFreezePurchase))

	balance, err := ledger.Balance(u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), balance)

	entries := ledgerEntries(t, db, u.ID)
	require.Len(t, entries, 2)
	assert.Equal(t, int64(10), entries[0].Amount)
	assert.Equal(t, models.ReasonPollReward, entries[0].Reason)
	assert.Equal(t, int64(-3), entries[1].Amount)
	assert.Equal(t, models.ReasonFreezePurchase, entries[1].Reason)
	assert.NotEmpty(t, entries[0].Reference)
}

func TestLedgerDebitNeverOverdraws(t *testing.T) {
	db := openTestDB(t)
	ledger := NewLedgerService(db)
	u := seedUser(t, db, "broke", false, 2)

	err := ledger.Debit(nil, u.ID, 3, models.ReasonFreezePurchase)
	assert.ErrorIs(t, err, ErrInsufficientCredits)

	assert.Equal(t, int64(2), balanceOf(t, db, u.ID))
	assert.Empty(t, ledgerEntries(t, db, u.ID))
}

func TestLedgerUnknownUser(t *testing.T) {
	db := openTestDB(t)
	ledger := NewLedgerService(db)

	assert.ErrorIs(t, ledger.Credit(nil, 999, 5, models.ReasonPollReward), ErrNotFound)
	assert.ErrorIs(t, ledger.Debit(nil, 999, 5, models.ReasonFreezePurchase), ErrNotFound)

	_, err := ledger.Balance(999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLedgerRejectsNonPositiveAmounts(t *testing.T) {
	db := openTestDB(t)
	ledger := NewLedgerService(db)
	u := seedUser(t, db, "zero", false, 5)

	assert.Error(t, ledger.Credit(nil, u.ID, 0, models.ReasonPollReward))
	assert.Error(t, ledger.Debit(nil, u.ID, -1, models.ReasonFreezePurchase))
	assert.Equal(t, int64(5), balanceOf(t, db, u.ID))
}
