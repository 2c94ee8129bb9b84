package models

// NOTE: decision semantics are covered through the pure applyDecision
// transition; the surrounding GORM transaction only locks, loads and
// persists. Side effects (keep/merge materialization) run strictly after
// applyDecision passes, so a rejected second decision can never reach them.

import (
	"errors"
	"testing"
	"time"
)

func TestApplyReviewDecision_SetsTerminalState(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	review := DuplicateReview{Status: ReviewStatusPending}

	if err := review.applyDecision(ReviewResolutionMerge, "same shop, second registration", 42, now); err != nil {
		t.Fatal(err)
	}
	if review.Status != ReviewStatusMerged {
		t.Fatalf("status = %s, want %s", review.Status, ReviewStatusMerged)
	}
	if review.Resolution != ReviewResolutionMerge {
		t.Fatalf("resolution = %s, want %s", review.Resolution, ReviewResolutionMerge)
	}
	if review.Notes != "same shop, second registration" {
		t.Fatalf("notes = %q", review.Notes)
	}
	if review.DecidedById != 42 || review.DecidedAt == nil || !review.DecidedAt.Equal(now) {
		t.Fatalf("decider not recorded: %+v", review)
	}
}

func TestApplyReviewDecision_SecondDecisionFails(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	review := DuplicateReview{Status: ReviewStatusPending}
	if err := review.applyDecision(ReviewResolutionKeep, "", 1, now); err != nil {
		t.Fatal(err)
	}

	err := review.applyDecision(ReviewResolutionDelete, "changed my mind", 2, now.Add(time.Hour))
	if !errors.Is(err, ErrReviewAlreadyDecided) {
		t.Fatalf("expected ErrReviewAlreadyDecided, got %v", err)
	}
	if review.Status != ReviewStatusApproved || review.Resolution != ReviewResolutionKeep {
		t.Fatalf("second decision mutated the review: %+v", review)
	}
	if review.DecidedById != 1 || !review.DecidedAt.Equal(now) {
		t.Fatalf("second decision overwrote the decider: %+v", review)
	}
}

func TestApplyReviewDecision_UnknownResolution(t *testing.T) {
	review := DuplicateReview{Status: ReviewStatusPending}
	if err := review.applyDecision("archive", "", 1, time.Now()); err == nil {
		t.Fatal("expected an error for an unknown resolution")
	}
	if review.Status != ReviewStatusPending {
		t.Fatalf("invalid resolution mutated the review: %+v", review)
	}
}

func TestDecidedStatusFollowsResolution(t *testing.T) {
	cases := []struct {
		resolution ReviewResolution
		want       ReviewStatus
	}{
		{ReviewResolutionKeep, ReviewStatusApproved},
		{ReviewResolutionDelete, ReviewStatusRejected},
		{ReviewResolutionMerge, ReviewStatusMerged},
	}
	for _, c := range cases {
		if got := decidedStatus(c.resolution); got != c.want {
			t.Fatalf("decidedStatus(%s) = %s, want %s", c.resolution, got, c.want)
		}
	}
}
