package models

import "testing"

func TestPlanCatalog(t *testing.T) {
	for id, p := range Plans {
		if p.ID != id {
			t.Errorf("plan %q carries mismatched id %q", id, p.ID)
		}
		if p.Credits <= 0 || p.AmountCents <= 0 {
			t.Errorf("plan %q has non-positive credits or price: %+v", id, p)
		}
		if !ValidTier(p.Tier) {
			t.Errorf("plan %q maps to unknown tier %q", id, p.Tier)
		}
	}
}

func TestPlanByID(t *testing.T) {
	p, ok := PlanByID("pack_50")
	if !ok {
		t.Fatal("pack_50 missing from catalog")
	}
	if p.Credits != 270 || p.Tier != TierMostPopular {
		t.Errorf("pack_50: got %+v", p)
	}
	if _, ok := PlanByID("pack_9000"); ok {
		t.Error("unknown plan id should not resolve")
	}
}
