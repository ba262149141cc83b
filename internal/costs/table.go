// Package costs holds the static ausbau (development) cost table and the
// validated lookup over it.
package costs

import "github.com/gustav-de-Mando/KuratorV1/internal/models"

// Development names a buildable infrastructure or a recruitable unit.
type Development string

const (
	Economy     Development = "Wirtschaft"
	Population  Development = "Bevölkerung"
	Mining      Development = "Bergbau"
	Agriculture Development = "Agrabau"
	Suburb      Development = "Nebenstadt"
	TradePost   Development = "Handelsposten"
	Capital     Development = "Hauptstadt"
	TradeCenter Development = "Handelszentrum"
	Fortress    Development = "Festung"

	Infantry   Development = "Infanterie"
	Cavalry    Development = "Kavallerie"
	Artillery  Development = "Artillerie"
	Corvette   Development = "Korvette"
	Frigate    Development = "Fregatte"
	ShipOfLine Development = "Linienschiff"
)

// Developments lists every entry in display order.
var Developments = []Development{
	Economy, Population, Mining, Agriculture, Suburb, TradePost, Capital, TradeCenter, Fortress,
	Infantry, Cavalry, Artillery, Corvette, Frigate, ShipOfLine,
}

var military = map[Development]bool{
	Infantry: true, Cavalry: true, Artillery: true,
	Corvette: true, Frigate: true, ShipOfLine: true,
}

// Military reports whether d is a unit type rather than infrastructure.
func (d Development) Military() bool { return military[d] }

// v builds a vector in the column order of the original ledger:
// wood, stone, iron, cloth, food, ducats.
func v(wood, stone, iron, cloth, food, ducats int64) Vector {
	return Vector{
		models.Wood:   wood,
		models.Stone:  stone,
		models.Iron:   iron,
		models.Cloth:  cloth,
		models.Food:   food,
		models.Ducats: ducats,
	}
}

var table = map[Development]map[int]Vector{
	Economy: {
		2: v(60, 60, 10, 0, 0, 1_500_000),
		3: v(150, 150, 20, 0, 0, 3_000_000),
		4: v(200, 200, 50, 10, 0, 5_000_000),
		5: v(350, 350, 100, 20, 0, 7_500_000),
		6: v(450, 450, 150, 50, 0, 10_000_000),
		7: v(500, 500, 200, 100, 0, 15_000_000),
	},
	Population: {
		2: v(80, 30, 0, 0, 20, 750_000),
		3: v(200, 100, 0, 0, 50, 1_000_000),
		4: v(250, 150, 10, 10, 75, 2_000_000),
		5: v(400, 300, 25, 20, 100, 3_000_000),
		6: v(500, 400, 50, 50, 200, 5_000_000),
		7: v(600, 450, 100, 100, 300, 7_000_000),
	},
	Mining: {
		2: v(50, 50, 20, 0, 0, 2_000_000),
		3: v(100, 100, 30, 0, 0, 4_000_000),
		4: v(150, 150, 75, 10, 0, 6_000_000),
		5: v(300, 300, 125, 20, 0, 8_000_000),
		6: v(400, 400, 175, 50, 0, 10_000_000),
		7: v(450, 450, 250, 100, 0, 12_500_000),
	},
	Agriculture: {
		2: v(50, 50, 10, 0, 0, 2_000_000),
		3: v(125, 125, 20, 0, 0, 4_000_000),
		4: v(175, 175, 50, 10, 0, 6_000_000),
		5: v(325, 325, 100, 20, 0, 8_000_000),
		6: v(425, 425, 150, 50, 0, 10_000_000),
		7: v(475, 475, 200, 100, 0, 12_500_000),
	},
	Suburb: {
		2: v(150, 150, 50, 50, 0, 5_000_000),
		3: v(250, 250, 50, 150, 0, 7_000_000),
	},
	TradePost: {
		2: v(200, 200, 50, 100, 0, 5_000_000),
		3: v(300, 300, 75, 200, 0, 7_000_000),
		4: v(500, 500, 100, 300, 0, 10_000_000),
		5: v(750, 750, 150, 500, 0, 15_000_000),
	},
	Capital: {
		2: v(200, 200, 50, 100, 0, 5_000_000),
		3: v(300, 300, 75, 200, 0, 7_000_000),
		4: v(500, 500, 100, 300, 0, 10_000_000),
		5: v(750, 750, 150, 500, 0, 12_500_000),
		6: v(850, 850, 200, 750, 0, 17_500_000),
		7: v(1000, 1000, 250, 1000, 0, 20_000_000),
	},
	TradeCenter: {
		2: v(200, 200, 50, 200, 0, 7_000_000),
		3: v(300, 300, 75, 300, 0, 10_000_000),
		4: v(500, 500, 100, 500, 0, 12_500_000),
		5: v(750, 750, 150, 750, 0, 17_500_000),
		6: v(850, 850, 200, 1000, 0, 20_000_000),
		7: v(1000, 1000, 250, 1250, 0, 25_000_000),
	},
	Fortress: {
		1: v(100, 200, 100, 0, 75, 3_000_000),
		2: v(150, 300, 150, 0, 100, 5_500_000),
		3: v(200, 400, 200, 0, 150, 8_000_000),
		4: v(250, 500, 250, 50, 200, 11_500_000),
		5: v(300, 750, 300, 75, 250, 16_000_000),
	},
	Infantry:   {1: v(0, 0, 20, 20, 30, 250_000)},
	Cavalry:    {1: v(0, 0, 20, 10, 40, 325_000)},
	Artillery:  {1: v(0, 0, 40, 20, 10, 500_000)},
	Corvette:   {1: v(40, 0, 20, 25, 20, 275_000)},
	Frigate:    {1: v(60, 0, 30, 40, 30, 400_000)},
	ShipOfLine: {1: v(80, 0, 45, 60, 40, 550_000)},
}
