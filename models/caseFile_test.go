package models

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

// NOTE: decision-guard tests are DB-free; they exercise the state machine
// directly. DecideCase only adds row locking and persistence around
// applyDecision.

func underAssessment() *Case {
	return &Case{
		ID:         1,
		CaseNumber: "C-20250115-0001",
		Status:     CaseStatusUnderAssessment,
		Result:     CaseResultPending,
	}
}

func TestApplyDecision_NotGuilty(t *testing.T) {
	c := underAssessment()
	if err := c.applyDecision(&NewCaseDecision{Decision: CaseDecisionNotGuilty}); err != nil {
		t.Fatal(err)
	}
	if c.Status != CaseStatusNotGuilty || c.Result != CaseResultPass {
		t.Fatalf("status=%s result=%s", c.Status, c.Result)
	}
}

func TestApplyDecision_GuiltyFine(t *testing.T) {
	c := underAssessment()
	amount := decimal.NewFromInt(50000)
	if err := c.applyDecision(&NewCaseDecision{Decision: CaseDecisionGuiltyFine, FineAmount: &amount}); err != nil {
		t.Fatal(err)
	}
	if c.Status != CaseStatusFined || c.Result != CaseResultFail {
		t.Fatalf("status=%s result=%s", c.Status, c.Result)
	}
	if c.FineAmount == nil || !c.FineAmount.Equal(amount) {
		t.Fatal("fine amount not recorded")
	}
}

func TestApplyDecision_GuiltyFineRequiresAmount(t *testing.T) {
	c := underAssessment()
	if err := c.applyDecision(&NewCaseDecision{Decision: CaseDecisionGuiltyFine}); err == nil {
		t.Fatal("guilty-fine without an amount must be rejected")
	}
	if c.Status != CaseStatusUnderAssessment {
		t.Fatal("rejected decision must not mutate the case")
	}
}

func TestApplyDecision_GuiltyComeback(t *testing.T) {
	c := underAssessment()
	c.ComebackNotificationSent = true
	day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	if err := c.applyDecision(&NewCaseDecision{Decision: CaseDecisionGuiltyComeback, ComebackDate: &day}); err != nil {
		t.Fatal(err)
	}
	if c.Status != CaseStatusPendingComeback || c.Result != CaseResultFail {
		t.Fatalf("status=%s result=%s", c.Status, c.Result)
	}
	if c.ComebackDate == nil || !c.ComebackDate.Equal(day) {
		t.Fatal("comeback date not recorded")
	}
	if c.ComebackNotificationSent {
		t.Fatal("a new comeback date must re-arm the notification latch")
	}
}

func TestApplyDecision_GuiltyComebackRequiresDate(t *testing.T) {
	c := underAssessment()
	if err := c.applyDecision(&NewCaseDecision{Decision: CaseDecisionGuiltyComeback}); err == nil {
		t.Fatal("guilty-comeback without a date must be rejected")
	}
}

func TestApplyDecision_OnlyFromUnderAssessment(t *testing.T) {
	terminal := []CaseStatus{
		CaseStatusNotGuilty, CaseStatusFined, CaseStatusPendingComeback,
		CaseStatusResolved, CaseStatusEscalated,
	}
	for _, status := range terminal {
		c := underAssessment()
		c.Status = status
		err := c.applyDecision(&NewCaseDecision{Decision: CaseDecisionNotGuilty})
		if !errors.Is(err, ErrInvalidCaseState) {
			t.Fatalf("status %s: err = %v, want ErrInvalidCaseState", status, err)
		}
	}
}

func TestApplyDecision_UnknownDecision(t *testing.T) {
	c := underAssessment()
	if err := c.applyDecision(&NewCaseDecision{Decision: "acquit"}); err == nil {
		t.Fatal("unknown decision must be rejected")
	}
}

func TestDetectCaseType(t *testing.T) {
	cases := []struct {
		raw  string
		want CaseType
	}{
		{"TCC violation at premises", CaseTypeTCC},
		{"missing tcc certificate", CaseTypeTCC},
		{"EVC not presented", CaseTypeEVC},
		{"evc expired", CaseTypeEVC},
		{"unlicensed operation", CaseTypeOther},
		{"", CaseTypeOther},
	}
	for _, tc := range cases {
		if got := DetectCaseType(tc.raw); got != tc.want {
			t.Fatalf("DetectCaseType(%q) = %s, want %s", tc.raw, got, tc.want)
		}
	}
}
