package community

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func dec(t *testing.T, value string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(value)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", value, err)
	}
	return d
}

func TestApplyBuyWeightedAverage(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	carat := Carat22K
	position := newPosition("pos-1", "comm-1", MetalGold, &carat, dec(t, "10"), dec(t, "6000"), now)

	applyBuy(&position, dec(t, "5"), dec(t, "6300"), now)

	if !position.Quantity.Equal(dec(t, "15")) {
		t.Fatalf("expected quantity 15, got %s", position.Quantity)
	}
	if !position.TotalInvested.Equal(dec(t, "91500")) {
		t.Fatalf("expected invested 91500, got %s", position.TotalInvested)
	}
	if !position.AvgPricePerUnit.Equal(dec(t, "6100")) {
		t.Fatalf("expected avg 6100, got %s", position.AvgPricePerUnit)
	}
}

func TestApplySell(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		quantity     string
		invested     string
		sell         string
		wantQuantity string
		wantInvested string
	}{
		{name: "partial", quantity: "10", invested: "60000", sell: "4", wantQuantity: "6", wantInvested: "36000"},
		{name: "full", quantity: "10", invested: "60000", sell: "10", wantQuantity: "0", wantInvested: "0"},
		{name: "thirds", quantity: "3", invested: "100", sell: "1", wantQuantity: "2", wantInvested: "66.67"},
		{name: "oversell clamps", quantity: "2", invested: "100", sell: "5", wantQuantity: "0", wantInvested: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			position := Position{
				Type:            MetalSilver,
				Quantity:        dec(t, tt.quantity),
				TotalInvested:   dec(t, tt.invested),
				AvgPricePerUnit: dec(t, "6000"),
			}
			applySell(&position, dec(t, tt.sell), now)

			if !position.Quantity.Equal(dec(t, tt.wantQuantity)) {
				t.Fatalf("expected quantity %s, got %s", tt.wantQuantity, position.Quantity)
			}
			if !position.TotalInvested.Equal(dec(t, tt.wantInvested)) {
				t.Fatalf("expected invested %s, got %s", tt.wantInvested, position.TotalInvested)
			}
			if !position.AvgPricePerUnit.Equal(dec(t, "6000")) {
				t.Fatalf("expected avg unchanged, got %s", position.AvgPricePerUnit)
			}
		})
	}
}

func TestAdjustBalanceNeverNegative(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	wallet := Wallet{Balance: dec(t, "100")}

	adjustBalance(&wallet, dec(t, "-250"), now)
	if !wallet.Balance.IsZero() {
		t.Fatalf("expected balance clamped to 0, got %s", wallet.Balance)
	}

	adjustBalance(&wallet, dec(t, "10.005"), now)
	if !wallet.Balance.Equal(dec(t, "10.01")) {
		t.Fatalf("expected balance 10.01, got %s", wallet.Balance)
	}
	if !wallet.UpdatedAt.Equal(now) {
		t.Fatalf("expected updatedAt set")
	}
}
