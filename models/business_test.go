package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestMergeAbsentFields_FillsOnlyEmpty(t *testing.T) {
	existing := &Business{
		Name:      "Golden Lion Trading",
		OwnerName: "U Kyaw",
		District:  "",
		Address:   "12 Main Rd",
	}
	snapshot := BusinessPayload{
		Name:      "Golden Lion Trading",
		OwnerName: "U Kyaw Kyaw",
		District:  "Hlaing",
		Address:   "99 Other St",
	}

	updates := MergeAbsentFields(existing, snapshot)
	if _, ok := updates["owner_name"]; ok {
		t.Fatal("populated owner_name must not be overwritten")
	}
	if _, ok := updates["address"]; ok {
		t.Fatal("populated address must not be overwritten")
	}
	if updates["district"] != "Hlaing" {
		t.Fatalf("empty district should be filled, got %v", updates["district"])
	}
}

func TestMergeAbsentFields_EmptySnapshotNoUpdates(t *testing.T) {
	existing := &Business{Name: "Shop", OwnerName: ""}
	updates := MergeAbsentFields(existing, BusinessPayload{Name: "Shop"})
	if len(updates) != 0 {
		t.Fatalf("nothing to merge, got %v", updates)
	}
}

func TestMergeAbsentFields_BusinessType(t *testing.T) {
	existing := &Business{BusinessTypeId: 0}
	updates := MergeAbsentFields(existing, BusinessPayload{BusinessTypeId: 3})
	if updates["business_type_id"] != 3 {
		t.Fatalf("business type should be filled, got %v", updates)
	}

	existing.BusinessTypeId = 5
	updates = MergeAbsentFields(existing, BusinessPayload{BusinessTypeId: 3})
	if _, ok := updates["business_type_id"]; ok {
		t.Fatal("set business type must not be overwritten")
	}
}

func TestBusinessPayloadHasCaseData(t *testing.T) {
	if (BusinessPayload{Name: "Shop"}).HasCaseData() {
		t.Fatal("bare payload has no case data")
	}

	amount := decimal.NewFromInt(1000)
	if !(BusinessPayload{FinedAmount: &amount}).HasCaseData() {
		t.Fatal("fine amount is case data")
	}
	if !(BusinessPayload{CaseText: "TCC"}).HasCaseData() {
		t.Fatal("case text is case data")
	}
	if (BusinessPayload{CaseText: "   "}).HasCaseData() {
		t.Fatal("whitespace case text is not case data")
	}
	day := time.Now()
	if !(BusinessPayload{CaseDate: &day}).HasCaseData() {
		t.Fatal("case date is case data")
	}
}
