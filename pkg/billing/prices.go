package billing

import (
	"fmt"

	"github.com/oncallchat/portal/pkg/orgs"
)

// PriceTable maps configured Stripe price ids to plan tiers. The FREE
// tier has no price; it is what an organization falls back to when its
// subscription goes away.
type PriceTable struct {
	Starter    string
	Pro        string
	Enterprise string
}

// PlanForPrice resolves a Stripe price id to a plan tier. An unmapped
// price id resolves to STARTER: the customer paid for something, so
// they get at least the lowest paid tier until an operator sorts out
// the price configuration.
func (t PriceTable) PlanForPrice(priceID string) orgs.PlanTier {
	switch priceID {
	case t.Starter:
		return orgs.PlanStarter
	case t.Pro:
		return orgs.PlanPro
	case t.Enterprise:
		return orgs.PlanEnterprise
	}
	return orgs.PlanStarter
}

// PriceForPlan resolves a paid plan tier to its configured price id
func (t PriceTable) PriceForPlan(plan orgs.PlanTier) (string, error) {
	switch plan {
	case orgs.PlanStarter:
		return t.Starter, nil
	case orgs.PlanPro:
		return t.Pro, nil
	case orgs.PlanEnterprise:
		return t.Enterprise, nil
	}
	return "", fmt.Errorf("plan %q has no price", plan)
}
