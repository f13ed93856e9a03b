package entity

import (
	"testing"
)

func TestStatusForStageCoversEveryStage(t *testing.T) {
	cases := map[string]string{
		StageWaitingConfirmation: StatusPending,
		StagePhotolith:           StatusActive,
		StageWaitingArrival:      StatusActive,
		StageCustomization:       StatusActive,
		StageDelivery:            StatusActive,
		StageFinalized:           StatusCompleted,
		StageReturned:            StatusReturned,
	}
	for stage, want := range cases {
		if got := StatusForStage(stage); got != want {
			t.Errorf("StatusForStage(%s) = %s, want %s", stage, got, want)
		}
	}

	// unknown stages still yield a usable status
	if got := StatusForStage("bogus"); got != StatusPending {
		t.Errorf("StatusForStage(bogus) = %s, want %s", got, StatusPending)
	}
}

func TestNextStageWalksTheLinearPath(t *testing.T) {
	cases := []struct {
		stage string
		next  string
		ok    bool
	}{
		{StageWaitingConfirmation, StagePhotolith, true},
		{StagePhotolith, StageWaitingArrival, true},
		{StageWaitingArrival, StageCustomization, true},
		{StageCustomization, StageDelivery, true},
		{StageDelivery, StageFinalized, true},
		{StageFinalized, "", false},
		{StageReturned, "", false},
		{"bogus", "", false},
	}
	for _, tc := range cases {
		next, ok := NextStage(tc.stage)
		if next != tc.next || ok != tc.ok {
			t.Errorf("NextStage(%s) = (%s, %v), want (%s, %v)", tc.stage, next, ok, tc.next, tc.ok)
		}
	}
}

func TestChecklistCompleteRequiresEveryKeyTrue(t *testing.T) {
	required := StageChecklistKeys(StagePhotolith)
	if len(required) != 3 {
		t.Fatalf("expected 3 photolith checklist keys, got %d", len(required))
	}

	items := map[string]bool{
		"interpretation": true,
		"order_match":    true,
		"photolith_ok":   true,
	}
	if !ChecklistComplete(items, required) {
		t.Error("complete checklist reported incomplete")
	}

	// flipping any single key off blocks completion
	for _, key := range required {
		items[key] = false
		if ChecklistComplete(items, required) {
			t.Errorf("checklist with %s=false reported complete", key)
		}
		items[key] = true
	}

	// absent key counts as unchecked
	delete(items, "order_match")
	if ChecklistComplete(items, required) {
		t.Error("checklist with missing key reported complete")
	}

	// stages without a checklist are trivially complete
	if !ChecklistComplete(nil, StageChecklistKeys(StageWaitingConfirmation)) {
		t.Error("stage without checklist should always be complete")
	}
}

func TestMissingAttachmentsPerStage(t *testing.T) {
	order := &Order{KanbanStage: StagePhotolith}
	missing := order.MissingAttachments(StagePhotolith)
	if len(missing) != 1 || missing[0] != AttachmentPhotolith {
		t.Fatalf("expected photolith attachment missing, got %v", missing)
	}

	order.SetAttachmentRef(AttachmentPhotolith, "local:photolith-abc-12345678")
	if got := order.MissingAttachments(StagePhotolith); len(got) != 0 {
		t.Errorf("expected no missing attachments, got %v", got)
	}

	// delivery requires both the final product photo and the signature
	order.KanbanStage = StageDelivery
	missing = order.MissingAttachments(StageDelivery)
	if len(missing) != 2 {
		t.Fatalf("expected 2 missing delivery attachments, got %v", missing)
	}
	order.SetAttachmentRef(AttachmentFinalProduct, "minio://final_product-abc")
	missing = order.MissingAttachments(StageDelivery)
	if len(missing) != 1 || missing[0] != AttachmentClientSignature {
		t.Errorf("expected client signature missing, got %v", missing)
	}
}

func TestCanAdvance(t *testing.T) {
	order := &Order{KanbanStage: StageWaitingConfirmation}
	if !order.CanAdvance(nil) {
		t.Error("waiting_confirmation has no guard, advance should be allowed")
	}

	order.KanbanStage = StagePhotolith
	items := map[string]bool{"interpretation": true, "order_match": true, "photolith_ok": true}
	if order.CanAdvance(items) {
		t.Error("photolith without attachment should not advance")
	}
	order.PhotolithURL = "minio://photolith-abc"
	if !order.CanAdvance(items) {
		t.Error("photolith with checklist and attachment should advance")
	}

	order.KanbanStage = StageFinalized
	if order.CanAdvance(nil) {
		t.Error("finalized has no forward successor")
	}
}

func TestValidAttachmentKind(t *testing.T) {
	for _, k := range []string{"photolith", "final_product", "client_signature", "purchase_order_pdf", "mockup"} {
		if !ValidAttachmentKind(k) {
			t.Errorf("kind %s should be valid", k)
		}
	}
	if ValidAttachmentKind("invoice") {
		t.Error("unknown kind reported valid")
	}
}
