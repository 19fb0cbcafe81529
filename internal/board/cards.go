package board

// Card effect kinds.
const (
	CardMoney            = "money"
	CardMove             = "move"
	CardGetOutOfJailFree = "get_out_of_jail_free"
	CardGoToJail         = "go_to_jail"
	CardRepairs          = "repairs"
)

// Deck names.
const (
	DeckChance    = "chance"
	DeckCommunity = "community"
)

type Card struct {
	ID          int
	Description string
	Type        string

	Amount     int  // money effect; negative for a loss
	AllPlayers bool // every other player pays/receives the inverse

	Destination int  // absolute move target, 1-indexed tile
	Spaces      int  // relative move, may be negative
	CollectGo   bool // award pass-Go bonus on absolute moves

	HouseCost int // repairs: cost per house
	HotelCost int // repairs: cost per hotel
}

func CardByID(deck string, id int) *Card {
	cards := ChanceCards
	if deck == DeckCommunity {
		cards = CommunityCards
	}
	for i := range cards {
		if cards[i].ID == id {
			return &cards[i]
		}
	}
	return nil
}

// DeckIDs returns the full ordered card id list for a deck, used to refill a
// depleted draw queue before reshuffling.
func DeckIDs(deck string) []int {
	cards := ChanceCards
	if deck == DeckCommunity {
		cards = CommunityCards
	}
	ids := make([]int, len(cards))
	for i := range cards {
		ids[i] = cards[i].ID
	}
	return ids
}

var ChanceCards = []Card{
	{ID: 1, Description: "Advance to Start (Collect Rs 3000)", Type: CardMove, Destination: 1, CollectGo: true},
	{ID: 2, Description: "Advance to TIA. If you pass Start, collect Rs 2000.", Type: CardMove, Destination: 16, CollectGo: true},
	{ID: 3, Description: "Advance to Pokhara Airport. If you pass Go, collect 2000.", Type: CardMove, Destination: 26, CollectGo: true},
	{ID: 4, Description: "Bank pays you dividend of Rs 500.", Type: CardMoney, Amount: 500},
	{ID: 5, Description: "Get Out of Mamaghar. This card may be kept until needed or traded.", Type: CardGetOutOfJailFree},
	{ID: 6, Description: "Go Back 3 Spaces.", Type: CardMove, Spaces: -3},
	{ID: 7, Description: "Go to Mama Ghar.", Type: CardGoToJail},
	{ID: 8, Description: "Make general repairs on all your property. For each house pay Rs 250. For each hotel pay Rs 500.", Type: CardRepairs, HouseCost: 250, HotelCost: 500},
	{ID: 9, Description: "Pay custom duty of Rs 1500.", Type: CardMoney, Amount: -1500},
	{ID: 10, Description: "Take a trip to Highway. If you pass Go, collect Rs 2000.", Type: CardMove, Destination: 6, CollectGo: true},
	{ID: 11, Description: "You have been elected Chairman of the Board. Pay each player Rs 500.", Type: CardMoney, Amount: -500, AllPlayers: true},
	{ID: 12, Description: "Your building loan matures. Collect Rs 1500.", Type: CardMoney, Amount: 1500},
	{ID: 13, Description: "You have won a lottery. Collect Rs 1000.", Type: CardMoney, Amount: 1000},
	{ID: 14, Description: "Take a trip to Highway. If you pass Go, collect Rs 2000.", Type: CardMove, Destination: 35, CollectGo: true},
	{ID: 15, Description: "Go Back 1 Space.", Type: CardMove, Spaces: -1},
	{ID: 16, Description: "Go Forward 3 Space.", Type: CardMove, Spaces: 3},
	{ID: 17, Description: "Visit N.E.A. If you pass Go, collect Rs 2000.", Type: CardMove, Destination: 14, CollectGo: true},
	{ID: 18, Description: "Visit Water Corp. If you pass Go, collect Rs 2000.", Type: CardMove, Destination: 28, CollectGo: true},
}

var CommunityCards = []Card{
	{ID: 1, Description: "Advance to Start (Collect Rs 3000)", Type: CardMove, Destination: 1, CollectGo: true},
	{ID: 2, Description: "Bank error in your favor. Collect Rs 2000.", Type: CardMoney, Amount: 2000},
	{ID: 3, Description: "Doctor's fee. Pay Rs 500.", Type: CardMoney, Amount: -500},
	{ID: 4, Description: "Get Out of Mamaghar. This card may be kept until needed or traded.", Type: CardGetOutOfJailFree},
	{ID: 5, Description: "Go to Mama Ghar", Type: CardGoToJail},
	{ID: 6, Description: "It is your birthday. Collect Rs 500 from each player.", Type: CardMoney, Amount: 500, AllPlayers: true},
	{ID: 7, Description: "Life insurance matures. Collect Rs 1000.", Type: CardMoney, Amount: 1000},
	{ID: 8, Description: "Pay hospital Rs 1000.", Type: CardMoney, Amount: -1000},
	{ID: 9, Description: "Pay school tax of 1500.", Type: CardMoney, Amount: -1500},
	{ID: 10, Description: "Receive Rs 500 consultancy fee.", Type: CardMoney, Amount: 500},
	{ID: 11, Description: "You are assessed for street repairs. Rs 400 per house. Rs 1150 per hotel.", Type: CardRepairs, HouseCost: 400, HotelCost: 1150},
	{ID: 12, Description: "You have won second prize in a eating contest. Collect Rs 500.", Type: CardMoney, Amount: 500},
	{ID: 13, Description: "Inherit Rs 1000.", Type: CardMoney, Amount: 1000},
	{ID: 14, Description: "From sale of stock you get Rs 500.", Type: CardMoney, Amount: 500},
	{ID: 15, Description: "Holiday fund matures. Receive Rs 1000.", Type: CardMoney, Amount: 1000},
}
