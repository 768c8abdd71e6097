package booking

import (
	"fmt"

	"github.com/alex-user-go/treks/internal/catalog"
)

// Per-person room costs added on top of the package base price.
const (
	singleRoomCost = 100
	sharedRoomCost = 60
)

// LineItem is one row of a price quote.
type LineItem struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

// Quote is the derived price breakdown for a traveler list. It is recomputed
// from scratch on every read and never cached.
type Quote struct {
	Items []LineItem `json:"items"`
	Total float64    `json:"total"`
}

// ComputeQuote derives the quote for travelers booking pkg.
//
// Line items come out in a fixed two-pass order: every base-price line first,
// in traveler order, then every room-cost line, in traveler order. Travelers
// with an unset room type get no room line. A nil package yields an empty
// quote with total 0.
func ComputeQuote(pkg *catalog.Package, travelers []Traveler) Quote {
	quote := Quote{Items: make([]LineItem, 0, 2*len(travelers))}
	if pkg == nil {
		return quote
	}

	for i := range travelers {
		item := LineItem{
			Label:  fmt.Sprintf("Base Price (Person %d)", i+1),
			Amount: pkg.Price,
		}
		quote.Items = append(quote.Items, item)
		quote.Total += item.Amount
	}

	for i, t := range travelers {
		var item LineItem
		switch t.RoomType {
		case RoomSingle:
			item = LineItem{
				Label:  fmt.Sprintf("Room Cost (Person %d - Single)", i+1),
				Amount: singleRoomCost,
			}
		case RoomShared:
			item = LineItem{
				Label:  fmt.Sprintf("Room Cost (Person %d - Shared)", i+1),
				Amount: sharedRoomCost,
			}
		default:
			continue
		}
		quote.Items = append(quote.Items, item)
		quote.Total += item.Amount
	}

	return quote
}
