package order

import "strings"

func matchesQuery(o Order, q string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return true
	}
	for _, v := range []string{o.OrderNumber, o.ID, o.Billing.FullName, o.Billing.Email} {
		if strings.Contains(strings.ToLower(v), q) {
			return true
		}
	}
	return false
}
