package httpapi

import "fenrir/internal/money"

func parseMoney(s string) (money.Money, error) {
	return money.FromString(s)
}
