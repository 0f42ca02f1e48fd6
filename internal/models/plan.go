package models

// Plan is one purchasable credit pack. AmountCents is what Stripe charges;
// Credits and Tier are applied to the account when the purchase completes.
type Plan struct {
	ID          string `json:"id"`
	AmountCents int64  `json:"amount_cents"`
	Credits     int    `json:"credits"`
	Tier        string `json:"tier"`
}

// Plans is the fixed catalog of credit packs. Checkout sessions and webhook
// fulfillment both resolve plan ids through this table.
var Plans = map[string]Plan{
	"pack_10":  {ID: "pack_10", AmountCents: 1000, Credits: 50, Tier: TierStarter},
	"pack_50":  {ID: "pack_50", AmountCents: 5000, Credits: 270, Tier: TierMostPopular},
	"pack_100": {ID: "pack_100", AmountCents: 10000, Credits: 600, Tier: TierBestValue},
}

// PlanByID looks up a plan, reporting whether it exists.
func PlanByID(id string) (Plan, bool) {
	p, ok := Plans[id]
	return p, ok
}
