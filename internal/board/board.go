package board

// Tile types on the 40-tile board.
const (
	TypeStart     = "start"
	TypeProperty  = "property"
	TypeTax       = "tax"
	TypeRoute     = "route"
	TypeChance    = "chance"
	TypeCommunity = "community"
	TypeJail      = "jail"
	TypeGoToJail  = "go_to_jail"
	TypeUtility   = "utility"
	TypeFestival  = "festival"
)

const (
	Size     = 40 // number of tiles
	StartPos = 1  // "Go" tile, 1-indexed
	JailPos  = 11 // "Just Visiting" / jail tile
)

type Tile struct {
	ID            int
	Name          string
	Type          string
	Group         string
	Cost          int   // purchase price; percent of money for tax tiles
	BaseRent      int
	Rent          []int // rent by development level, index level-1
	HouseCost     int
	MortgageValue int
}

func (that *Tile) IsPurchasable() bool {
	return that.Type == TypeProperty || that.Type == TypeRoute || that.Type == TypeUtility
}

// MortgageAmount falls back to half the purchase cost when no explicit
// mortgage value is configured.
func (that *Tile) MortgageAmount() int {
	if that.MortgageValue > 0 {
		return that.MortgageValue
	}
	return that.Cost / 2
}

// TileAt returns the tile at a 1-indexed board position.
func TileAt(pos int) *Tile {
	if pos < 1 || pos > Size {
		return nil
	}
	return &Tiles[pos-1]
}

// PropertiesInGroup returns the color-group property tiles for a group name.
func PropertiesInGroup(group string) []*Tile {
	var tiles []*Tile
	for i := range Tiles {
		if Tiles[i].Group == group && Tiles[i].Type == TypeProperty {
			tiles = append(tiles, &Tiles[i])
		}
	}
	return tiles
}

// Groups returns every distinct property color group on the board.
func Groups() []string {
	seen := make(map[string]bool)
	var groups []string
	for i := range Tiles {
		if Tiles[i].Group != "" && !seen[Tiles[i].Group] {
			seen[Tiles[i].Group] = true
			groups = append(groups, Tiles[i].Group)
		}
	}
	return groups
}

var Tiles = []Tile{
	{ID: 1, Name: "Start", Type: TypeStart},
	{ID: 2, Name: "Janakpur", Type: TypeProperty, Group: "EAST", Cost: 1500, BaseRent: 100, Rent: []int{400, 1200, 2000, 2500, 4000}, HouseCost: 550, MortgageValue: 750},
	{ID: 3, Name: "Dharan", Type: TypeProperty, Group: "EAST", Cost: 1500, BaseRent: 100, Rent: []int{400, 1200, 2000, 2500, 4000}, HouseCost: 550, MortgageValue: 750},
	{ID: 4, Name: "Community Fund", Type: TypeCommunity},
	{ID: 5, Name: "Biratnagar", Type: TypeProperty, Group: "EAST", Cost: 1600, BaseRent: 110, Rent: []int{440, 1320, 2200, 2750, 4400}, HouseCost: 600, MortgageValue: 800},
	{ID: 6, Name: "Araniko Highway", Type: TypeRoute, Cost: 2000, BaseRent: 250, Rent: []int{250, 500, 1000, 2000}, MortgageValue: 1000},
	{ID: 7, Name: "Taumadhi Square", Type: TypeProperty, Group: "BHK", Cost: 2500, BaseRent: 180, Rent: []int{720, 2160, 3600, 4500, 7200}, HouseCost: 800, MortgageValue: 1250},
	{ID: 8, Name: "Dattatreya Square", Type: TypeProperty, Group: "BHK", Cost: 2600, BaseRent: 190, Rent: []int{760, 2280, 3800, 4750, 7600}, HouseCost: 850, MortgageValue: 1300},
	{ID: 9, Name: "Fortune Card", Type: TypeChance},
	{ID: 10, Name: "Durbar Square", Type: TypeProperty, Group: "BHK", Cost: 2700, BaseRent: 200, Rent: []int{800, 2400, 4000, 5000, 8000}, HouseCost: 900, MortgageValue: 1350},
	{ID: 11, Name: "Mama Ghar / Just Visiting", Type: TypeJail},
	{ID: 12, Name: "Museum", Type: TypeProperty, Group: "LAL", Cost: 3000, BaseRent: 220, Rent: []int{880, 2640, 4400, 5500, 8800}, HouseCost: 1000, MortgageValue: 1500},
	{ID: 13, Name: "Patan", Type: TypeProperty, Group: "LAL", Cost: 3100, BaseRent: 230, Rent: []int{920, 2760, 4600, 5750, 9200}, HouseCost: 1050, MortgageValue: 1550},
	{ID: 14, Name: "N.E.A", Type: TypeUtility, Cost: 1500, BaseRent: 320, MortgageValue: 550},
	{ID: 15, Name: "Jhamsikhel", Type: TypeProperty, Group: "LAL", Cost: 3200, BaseRent: 240, Rent: []int{960, 2880, 4800, 6000, 9600}, HouseCost: 1100, MortgageValue: 1600},
	{ID: 16, Name: "TIA Airport", Type: TypeRoute, Cost: 2000, BaseRent: 250, Rent: []int{250, 500, 1000, 2000}, MortgageValue: 1000},
	{ID: 17, Name: "Swayambhu", Type: TypeProperty, Group: "KTM", Cost: 4000, BaseRent: 300, Rent: []int{1200, 3600, 6000, 7500, 12000}, HouseCost: 1400, MortgageValue: 2000},
	{ID: 18, Name: "Fortune Card", Type: TypeChance},
	{ID: 19, Name: "Basantapur", Type: TypeProperty, Group: "KTM", Cost: 4200, BaseRent: 320, Rent: []int{1280, 3840, 6400, 8000, 12800}, HouseCost: 1500, MortgageValue: 2100},
	{ID: 20, Name: "Lazimpat", Type: TypeProperty, Group: "KTM", Cost: 4500, BaseRent: 350, Rent: []int{1400, 4200, 7000, 8750, 14000}, HouseCost: 1600, MortgageValue: 2250},
	{ID: 21, Name: "Festival", Type: TypeFestival},
	{ID: 22, Name: "Bharatpur", Type: TypeProperty, Group: "CTN", Cost: 2600, BaseRent: 200, Rent: []int{800, 2400, 4000, 5000, 8000}, HouseCost: 900, MortgageValue: 1300},
	{ID: 23, Name: "Community", Type: TypeCommunity},
	{ID: 24, Name: "Sauraha", Type: TypeProperty, Group: "CTN", Cost: 2800, BaseRent: 220, Rent: []int{880, 2640, 4400, 5500, 8800}, HouseCost: 1000, MortgageValue: 1400},
	{ID: 25, Name: "Tourism Tax", Type: TypeTax, Cost: 10},
	{ID: 26, Name: "PKR Airport", Type: TypeRoute, Cost: 2000, BaseRent: 250, Rent: []int{250, 500, 1000, 2000}, MortgageValue: 1000},
	{ID: 27, Name: "Sarangkot", Type: TypeProperty, Group: "PKR", Cost: 3500, BaseRent: 280, Rent: []int{1120, 3360, 5600, 7000, 11200}, HouseCost: 1200, MortgageValue: 1750},
	{ID: 28, Name: "Water Corp.", Type: TypeUtility, Cost: 1500, BaseRent: 320, MortgageValue: 550},
	{ID: 29, Name: "Begnas", Type: TypeProperty, Group: "PKR", Cost: 3600, BaseRent: 290, Rent: []int{1160, 3480, 5800, 7250, 11600}, HouseCost: 1250, MortgageValue: 1800},
	{ID: 30, Name: "Lakeside", Type: TypeProperty, Group: "PKR", Cost: 3800, BaseRent: 300, Rent: []int{1200, 3600, 6000, 7500, 12000}, HouseCost: 1300, MortgageValue: 1900},
	{ID: 31, Name: "Go to Mama Ghar", Type: TypeGoToJail},
	{ID: 32, Name: "Butwal", Type: TypeProperty, Group: "WEST", Cost: 2000, BaseRent: 125, Rent: []int{500, 1500, 2500, 3125, 5000}, HouseCost: 650, MortgageValue: 1000},
	{ID: 33, Name: "Nepalgunj", Type: TypeProperty, Group: "WEST", Cost: 2100, BaseRent: 130, Rent: []int{520, 1560, 2600, 3250, 5200}, HouseCost: 700, MortgageValue: 1050},
	{ID: 34, Name: "Fortune Card", Type: TypeChance},
	{ID: 35, Name: "Rara", Type: TypeProperty, Group: "WEST", Cost: 2500, BaseRent: 180, Rent: []int{720, 2160, 3600, 4500, 7200}, HouseCost: 900, MortgageValue: 1250},
	{ID: 36, Name: "Mahendra", Type: TypeRoute, Cost: 2000, BaseRent: 250, Rent: []int{250, 500, 1000, 2000}, MortgageValue: 1000},
	{ID: 37, Name: "Community", Type: TypeCommunity},
	{ID: 38, Name: "Langtang", Type: TypeProperty, Group: "TREK", Cost: 4000, BaseRent: 300, Rent: []int{1200, 3600, 6000, 7500, 12000}, HouseCost: 1400, MortgageValue: 2000},
	{ID: 39, Name: "Income Tax (IRD)", Type: TypeTax, Cost: 20},
	{ID: 40, Name: "Everest Base Camp", Type: TypeProperty, Group: "TREK", Cost: 4500, BaseRent: 350, Rent: []int{1400, 4200, 7000, 8750, 14000}, HouseCost: 1600, MortgageValue: 2250},
}
