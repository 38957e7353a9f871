package repoargs

import "github.com/shopspring/decimal"

type CreateProject struct {
	SellerID int64
	Title    string
	Price    decimal.Decimal
}
