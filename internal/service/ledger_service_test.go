package service

import (
	"context"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/api"
	"github.com/mmynk/splitledger/internal/models"
)

func TestGetPairwiseBalances_ExpenseOwed(t *testing.T) {
	env := setupTestServer(t)
	env.user(t, "A", "Alice")
	env.user(t, "B", "Bob")
	env.expense(t, &models.Expense{
		Description:  "Dinner",
		Amount:       dec("100"),
		PaidByUserID: "A",
		Splits: []models.Split{
			{UserID: "A", Amount: dec("0"), Paid: true},
			{UserID: "B", Amount: dec("100")},
		},
	})

	resp, err := env.ledger.GetPairwiseBalances(context.Background(), as("A", &api.GetPairwiseBalancesRequest{}))
	if err != nil {
		t.Fatalf("GetPairwiseBalances failed: %v", err)
	}

	assertDecimal(t, "you_are_owed", resp.Msg.YouAreOwed, "100")
	assertDecimal(t, "you_owe", resp.Msg.YouOwe, "0")
	assertDecimal(t, "total_balance", resp.Msg.TotalBalance, "100")
	owedBy := resp.Msg.OweDetails.YouAreOwedBy
	if len(owedBy) != 1 || owedBy[0].UserID != "B" || owedBy[0].Name != "Bob" {
		t.Fatalf("Unexpected you_are_owed_by: %+v", owedBy)
	}
	assertDecimal(t, "B's debt", owedBy[0].Amount, "100")
	if len(resp.Msg.OweDetails.YouOwe) != 0 {
		t.Errorf("Expected empty you_owe, got %+v", resp.Msg.OweDetails.YouOwe)
	}

	// Bob sees the mirror image.
	resp, err = env.ledger.GetPairwiseBalances(context.Background(), as("B", &api.GetPairwiseBalancesRequest{}))
	if err != nil {
		t.Fatalf("GetPairwiseBalances failed: %v", err)
	}
	assertDecimal(t, "bob total_balance", resp.Msg.TotalBalance, "-100")
	if len(resp.Msg.OweDetails.YouOwe) != 1 || resp.Msg.OweDetails.YouOwe[0].Name != "Alice" {
		t.Errorf("Unexpected you_owe for Bob: %+v", resp.Msg.OweDetails.YouOwe)
	}
}

func TestGetPairwiseBalances_SettledUp(t *testing.T) {
	env := setupTestServer(t)
	env.user(t, "A", "Alice")
	env.user(t, "B", "Bob")
	env.expense(t, &models.Expense{
		Description:  "Dinner",
		Amount:       dec("100"),
		PaidByUserID: "A",
		Splits: []models.Split{
			{UserID: "A", Amount: dec("0"), Paid: true},
			{UserID: "B", Amount: dec("100")},
		},
	})
	env.settlement(t, &models.Settlement{Amount: dec("100"), PaidByUserID: "B", ReceivedByUserID: "A"})

	resp, err := env.ledger.GetPairwiseBalances(context.Background(), as("A", &api.GetPairwiseBalancesRequest{}))
	if err != nil {
		t.Fatalf("GetPairwiseBalances failed: %v", err)
	}
	assertDecimal(t, "you_are_owed", resp.Msg.YouAreOwed, "0")
	assertDecimal(t, "total_balance", resp.Msg.TotalBalance, "0")
	if len(resp.Msg.OweDetails.YouOwe) != 0 || len(resp.Msg.OweDetails.YouAreOwedBy) != 0 {
		t.Errorf("Expected both lists empty, got %+v", resp.Msg.OweDetails)
	}
}

func TestGetPairwiseBalances_IgnoresGroupRecords(t *testing.T) {
	env := setupTestServer(t)
	env.user(t, "A", "Alice")
	env.user(t, "B", "Bob")
	g := env.group(t, "Trip", "A", "B")
	env.expense(t, &models.Expense{
		Description:  "Hotel",
		Amount:       dec("60"),
		PaidByUserID: "A",
		GroupID:      g.ID,
		Splits:       []models.Split{{UserID: "B", Amount: dec("60")}},
	})

	resp, err := env.ledger.GetPairwiseBalances(context.Background(), as("A", &api.GetPairwiseBalancesRequest{}))
	if err != nil {
		t.Fatalf("GetPairwiseBalances failed: %v", err)
	}
	assertDecimal(t, "total_balance", resp.Msg.TotalBalance, "0")
}

func TestGetGroupBalances(t *testing.T) {
	env := setupTestServer(t)
	env.user(t, "A", "Alice")
	env.user(t, "B", "Bob")
	env.user(t, "C", "Carol")
	trip := env.group(t, "Trip", "A", "B")
	flat := env.group(t, "Flat", "A", "C")
	env.group(t, "Other", "B", "C")

	env.expense(t, &models.Expense{
		Description:  "Hotel",
		Amount:       dec("60"),
		PaidByUserID: "A",
		GroupID:      trip.ID,
		Splits: []models.Split{
			{UserID: "A", Amount: dec("0"), Paid: true},
			{UserID: "B", Amount: dec("60")},
		},
	})
	env.expense(t, &models.Expense{
		Description:  "Rent",
		Amount:       dec("50"),
		PaidByUserID: "C",
		GroupID:      flat.ID,
		Splits: []models.Split{
			{UserID: "A", Amount: dec("25")},
			{UserID: "C", Amount: dec("25"), Paid: true},
		},
	})
	env.settlement(t, &models.Settlement{Amount: dec("10"), PaidByUserID: "A", ReceivedByUserID: "C", GroupID: flat.ID})

	resp, err := env.ledger.GetGroupBalances(context.Background(), as("A", &api.GetGroupBalancesRequest{}))
	if err != nil {
		t.Fatalf("GetGroupBalances failed: %v", err)
	}

	groups := resp.Msg.Groups
	if len(groups) != 2 {
		t.Fatalf("Expected 2 groups, got %d", len(groups))
	}
	if groups[0].Name != "Flat" || groups[1].Name != "Trip" {
		t.Fatalf("Expected groups sorted by name, got %s, %s", groups[0].Name, groups[1].Name)
	}
	assertDecimal(t, "Flat balance", groups[0].Balance, "-15")
	assertDecimal(t, "Trip balance", groups[1].Balance, "60")
	if len(groups[1].Members) != 2 || groups[1].Members[1].Name != "Bob" {
		t.Errorf("Expected Trip members with names, got %+v", groups[1].Members)
	}
}

func TestGetMonthlyTotals_And_YearTotal(t *testing.T) {
	env := setupTestServer(t)
	env.user(t, "A", "Alice")
	env.user(t, "B", "Bob")
	year := time.Now().UTC().Year()

	env.expense(t, &models.Expense{
		Description:  "January",
		Amount:       dec("40"),
		Date:         time.Date(year, time.January, 10, 0, 0, 0, 0, time.UTC),
		PaidByUserID: "B",
		Splits: []models.Split{
			{UserID: "A", Amount: dec("20")},
			{UserID: "B", Amount: dec("20"), Paid: true},
		},
	})
	env.expense(t, &models.Expense{
		Description:  "March",
		Amount:       dec("30"),
		Date:         time.Date(year, time.March, 5, 0, 0, 0, 0, time.UTC),
		PaidByUserID: "A",
		Splits:       []models.Split{{UserID: "A", Amount: dec("30"), Paid: true}},
	})
	env.expense(t, &models.Expense{
		Description:  "Last year",
		Amount:       dec("99"),
		Date:         time.Date(year-1, time.December, 31, 23, 0, 0, 0, time.UTC),
		PaidByUserID: "A",
		Splits:       []models.Split{{UserID: "A", Amount: dec("99"), Paid: true}},
	})

	months, err := env.ledger.GetMonthlyTotals(context.Background(), as("A", &api.GetMonthlyTotalsRequest{Year: year}))
	if err != nil {
		t.Fatalf("GetMonthlyTotals failed: %v", err)
	}
	if len(months.Msg.Months) != 12 {
		t.Fatalf("Expected 12 months, got %d", len(months.Msg.Months))
	}
	for i, m := range months.Msg.Months {
		want := "0"
		switch i {
		case 0:
			want = "20"
		case 2:
			want = "30"
		}
		assertDecimal(t, m.Month.Format("Jan"), m.Total, want)
	}

	total, err := env.ledger.GetYearTotal(context.Background(), as("A", &api.GetYearTotalRequest{}))
	if err != nil {
		t.Fatalf("GetYearTotal failed: %v", err)
	}
	if total.Msg.Year != year {
		t.Errorf("Year = %d, want current year %d", total.Msg.Year, year)
	}
	assertDecimal(t, "year total", total.Msg.Total, "50")

	_, err = env.ledger.GetYearTotal(context.Background(), as("A", &api.GetYearTotalRequest{Year: -5}))
	assertCode(t, err, connect.CodeInvalidArgument)
}

func TestDeletedCounterpart(t *testing.T) {
	env := setupTestServer(t)
	env.user(t, "A", "Alice")
	env.user(t, "B", "Bob")
	env.user(t, "C", "Carol")
	env.expense(t, &models.Expense{
		Description:  "Tickets",
		Amount:       dec("50"),
		PaidByUserID: "A",
		Splits: []models.Split{
			{UserID: "B", Amount: dec("25")},
			{UserID: "C", Amount: dec("25")},
		},
	})
	if err := env.store.DeleteUser(context.Background(), "C"); err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}

	contacts, err := env.ledger.GetContacts(context.Background(), as("A", &api.GetContactsRequest{}))
	if err != nil {
		t.Fatalf("GetContacts failed: %v", err)
	}
	if len(contacts.Msg.Users) != 1 || contacts.Msg.Users[0].ID != "B" {
		t.Errorf("Expected only Bob in contacts, got %+v", contacts.Msg.Users)
	}

	balances, err := env.ledger.GetPairwiseBalances(context.Background(), as("A", &api.GetPairwiseBalancesRequest{}))
	if err != nil {
		t.Fatalf("GetPairwiseBalances failed: %v", err)
	}
	assertDecimal(t, "you_are_owed", balances.Msg.YouAreOwed, "50")
	var unknown *api.Debt
	for i, d := range balances.Msg.OweDetails.YouAreOwedBy {
		if d.UserID == "C" {
			unknown = &balances.Msg.OweDetails.YouAreOwedBy[i]
		}
	}
	if unknown == nil {
		t.Fatalf("Expected an entry for the deleted user, got %+v", balances.Msg.OweDetails.YouAreOwedBy)
	}
	if unknown.Name != "Unknown" {
		t.Errorf("Name = %q, want Unknown", unknown.Name)
	}
	assertDecimal(t, "deleted user's debt", unknown.Amount, "25")
}

func TestGetContacts(t *testing.T) {
	env := setupTestServer(t)
	env.user(t, "A", "Alice")
	env.user(t, "B", "Zed")
	env.user(t, "C", "Carol")
	env.user(t, "D", "Dan")
	env.group(t, "Trip", "A", "B", "D")
	env.expense(t, &models.Expense{
		Description:  "Coffee",
		Amount:       dec("4"),
		PaidByUserID: "B",
		Splits:       []models.Split{{UserID: "A", Amount: dec("4")}},
	})
	env.expense(t, &models.Expense{
		Description:  "Lunch",
		Amount:       dec("10"),
		PaidByUserID: "A",
		Splits:       []models.Split{{UserID: "C", Amount: dec("10"), Paid: true}},
	})

	resp, err := env.ledger.GetContacts(context.Background(), as("A", &api.GetContactsRequest{}))
	if err != nil {
		t.Fatalf("GetContacts failed: %v", err)
	}
	users := resp.Msg.Users
	if len(users) != 2 || users[0].Name != "Carol" || users[1].Name != "Zed" {
		t.Errorf("Expected Carol, Zed; got %+v", users)
	}
	if users[0].Email != "" {
		t.Errorf("Counterpart email should not be exposed, got %q", users[0].Email)
	}
	if len(resp.Msg.Groups) != 1 || resp.Msg.Groups[0].MemberCount != 3 {
		t.Errorf("Expected Trip with 3 members, got %+v", resp.Msg.Groups)
	}
}

func TestGetGroupLedger(t *testing.T) {
	env := setupTestServer(t)
	env.user(t, "A", "Alice")
	env.user(t, "B", "Bob")
	env.user(t, "C", "Carol")
	env.user(t, "D", "Dan")
	g := env.group(t, "Trip", "A", "B", "C")
	env.expense(t, &models.Expense{
		Description:  "Hotel",
		Amount:       dec("90"),
		PaidByUserID: "A",
		GroupID:      g.ID,
		Splits: []models.Split{
			{UserID: "A", Amount: dec("30"), Paid: true},
			{UserID: "B", Amount: dec("30")},
			{UserID: "C", Amount: dec("30")},
		},
	})

	resp, err := env.ledger.GetGroupLedger(context.Background(), as("B", &api.GetGroupLedgerRequest{GroupID: g.ID}))
	if err != nil {
		t.Fatalf("GetGroupLedger failed: %v", err)
	}
	if len(resp.Msg.Members) != 3 {
		t.Fatalf("Expected 3 members, got %d", len(resp.Msg.Members))
	}
	if resp.Msg.Members[0].Name != "Alice" {
		t.Errorf("Expected Alice first (largest creditor), got %+v", resp.Msg.Members[0])
	}
	assertDecimal(t, "Alice net", resp.Msg.Members[0].NetBalance, "60")
	if len(resp.Msg.Transfers) != 2 {
		t.Fatalf("Expected 2 transfers, got %+v", resp.Msg.Transfers)
	}
	for _, tr := range resp.Msg.Transfers {
		if tr.ToName != "Alice" {
			t.Errorf("Expected transfers to Alice, got %+v", tr)
		}
		assertDecimal(t, "transfer", tr.Amount, "30")
	}

	_, err = env.ledger.GetGroupLedger(context.Background(), as("D", &api.GetGroupLedgerRequest{GroupID: g.ID}))
	assertCode(t, err, connect.CodePermissionDenied)

	_, err = env.ledger.GetGroupLedger(context.Background(), as("A", &api.GetGroupLedgerRequest{GroupID: "missing"}))
	assertCode(t, err, connect.CodeNotFound)

	_, err = env.ledger.GetGroupLedger(context.Background(), as("A", &api.GetGroupLedgerRequest{}))
	assertCode(t, err, connect.CodeInvalidArgument)
}

func TestGetCounterpartHistory(t *testing.T) {
	env := setupTestServer(t)
	env.user(t, "A", "Alice")
	env.user(t, "B", "Bob")
	env.user(t, "C", "Carol")
	env.expense(t, &models.Expense{
		Description:  "Old",
		Amount:       dec("40"),
		Date:         time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		PaidByUserID: "A",
		Splits:       []models.Split{{UserID: "B", Amount: dec("40")}},
	})
	env.expense(t, &models.Expense{
		Description:  "New",
		Amount:       dec("10"),
		Date:         time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		PaidByUserID: "B",
		Splits:       []models.Split{{UserID: "A", Amount: dec("10")}},
	})
	env.expense(t, &models.Expense{
		Description:  "Unrelated",
		Amount:       dec("5"),
		PaidByUserID: "A",
		Splits:       []models.Split{{UserID: "C", Amount: dec("5")}},
	})
	env.settlement(t, &models.Settlement{
		Amount:           dec("5"),
		Date:             time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
		PaidByUserID:     "B",
		ReceivedByUserID: "A",
	})

	resp, err := env.ledger.GetCounterpartHistory(context.Background(), as("A", &api.GetCounterpartHistoryRequest{UserID: "B"}))
	if err != nil {
		t.Fatalf("GetCounterpartHistory failed: %v", err)
	}
	if resp.Msg.Counterpart.Name != "Bob" {
		t.Errorf("Counterpart = %+v, want Bob", resp.Msg.Counterpart)
	}
	assertDecimal(t, "balance", resp.Msg.Balance, "25")
	if len(resp.Msg.Expenses) != 2 || resp.Msg.Expenses[0].Description != "New" {
		t.Errorf("Expected New then Old, got %+v", resp.Msg.Expenses)
	}
	if len(resp.Msg.Settlements) != 1 {
		t.Errorf("Expected 1 settlement, got %d", len(resp.Msg.Settlements))
	}

	pairwise, err := env.ledger.GetPairwiseBalances(context.Background(), as("A", &api.GetPairwiseBalancesRequest{}))
	if err != nil {
		t.Fatalf("GetPairwiseBalances failed: %v", err)
	}
	for _, d := range pairwise.Msg.OweDetails.YouAreOwedBy {
		if d.UserID == "B" && !d.Amount.Equal(resp.Msg.Balance) {
			t.Errorf("History balance %s disagrees with pairwise %s", resp.Msg.Balance, d.Amount)
		}
	}

	_, err = env.ledger.GetCounterpartHistory(context.Background(), as("A", &api.GetCounterpartHistoryRequest{UserID: "A"}))
	assertCode(t, err, connect.CodeInvalidArgument)
}

func TestLedger_SkipsInvalidStoredRecords(t *testing.T) {
	env := setupTestServer(t)
	env.user(t, "A", "Alice")
	env.user(t, "B", "Bob")
	env.expense(t, &models.Expense{
		Description:  "Good",
		Amount:       dec("10"),
		PaidByUserID: "A",
		Splits:       []models.Split{{UserID: "B", Amount: dec("10")}},
	})
	// Splits do not sum to the amount.
	env.expense(t, &models.Expense{
		Description:  "Corrupt",
		Amount:       dec("10"),
		PaidByUserID: "A",
		Splits:       []models.Split{{UserID: "B", Amount: dec("999")}},
	})
	env.settlement(t, &models.Settlement{Amount: dec("-3"), PaidByUserID: "B", ReceivedByUserID: "A"})

	resp, err := env.ledger.GetPairwiseBalances(context.Background(), as("A", &api.GetPairwiseBalancesRequest{}))
	if err != nil {
		t.Fatalf("GetPairwiseBalances failed: %v", err)
	}
	assertDecimal(t, "you_are_owed", resp.Msg.YouAreOwed, "10")
}

func TestLedger_RequiresIdentity(t *testing.T) {
	env := setupTestServer(t)
	env.user(t, "A", "Alice")

	_, err := env.ledger.GetPairwiseBalances(context.Background(), connect.NewRequest(&api.GetPairwiseBalancesRequest{}))
	assertCode(t, err, connect.CodeUnauthenticated)

	_, err = env.ledger.GetContacts(context.Background(), as("ghost", &api.GetContactsRequest{}))
	assertCode(t, err, connect.CodeUnauthenticated)
}

func TestGetMonthlyTotals_Idempotent(t *testing.T) {
	env := setupTestServer(t)
	env.user(t, "A", "Alice")
	env.expense(t, &models.Expense{
		Description:  "Groceries",
		Amount:       dec("12.34"),
		Date:         time.Date(2025, time.May, 2, 0, 0, 0, 0, time.UTC),
		PaidByUserID: "A",
		Splits:       []models.Split{{UserID: "A", Amount: dec("12.34"), Paid: true}},
	})

	first, err := env.ledger.GetMonthlyTotals(context.Background(), as("A", &api.GetMonthlyTotalsRequest{Year: 2025}))
	if err != nil {
		t.Fatalf("GetMonthlyTotals failed: %v", err)
	}
	second, err := env.ledger.GetMonthlyTotals(context.Background(), as("A", &api.GetMonthlyTotalsRequest{Year: 2025}))
	if err != nil {
		t.Fatalf("GetMonthlyTotals failed: %v", err)
	}
	for i := range first.Msg.Months {
		if !first.Msg.Months[i].Total.Equal(second.Msg.Months[i].Total) ||
			!first.Msg.Months[i].Month.Equal(second.Msg.Months[i].Month) {
			t.Errorf("Month %d differs between calls", i)
		}
	}
	assertDecimal(t, "May", first.Msg.Months[4].Total, "12.34")
}
