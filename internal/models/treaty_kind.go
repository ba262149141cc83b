package models

import (
	"fmt"
	"strings"
)

// TreatyKind enumerates the diplomatic treaties players can conclude.
// Every kind carries its own texts; there is no fallback lookup.
type TreatyKind int

const (
	NonAggression TreatyKind = iota + 1
	Protection
	Alliance
	Marriage
	GrandAlliance
)

// TreatyKinds lists every kind in display order.
var TreatyKinds = []TreatyKind{NonAggression, Protection, Alliance, Marriage, GrandAlliance}

type treatySpec struct {
	title      string
	limit      int
	salutation string
	clause     string
	ratified   func(other string) string
	expired    func(other string) string
}

var treatySpecs = map[TreatyKind]treatySpec{
	NonAggression: {
		title:      "Nichtangriffspakt",
		limit:      5,
		salutation: "Eure Exzellenz",
		clause: "Die unterzeichnenden Parteien verpflichten sich, für die Dauer des Vertrags keine " +
			"militärischen Aktionen gegeneinander durchzuführen und von feindlichen Handlungen abzusehen.",
		ratified: func(other string) string {
			return fmt.Sprintf("Der Friedenspakt mit dem Reich %s wurde feierlich unterzeichnet. "+
				"Möge dieses Abkommen eine Ära des Friedens und der Prosperität einläuten. "+
				"Eine Kopie der Urkunde wurde in den königlichen Archiven hinterlegt.", other)
		},
		expired: func(other string) string {
			return fmt.Sprintf("Der Friedenspakt mit dem Reich %s ist gemäß seiner Bestimmungen erloschen. "+
				"Die Diplomaten beider Reiche empfehlen eine Neubewertung der Beziehungen.", other)
		},
	},
	Protection: {
		title:      "Schutzbündnis",
		limit:      3,
		salutation: "Eure Majestät",
		clause: "Im Falle eines Angriffs auf eine der unterzeichnenden Parteien verpflichtet sich die andere " +
			"Partei, militärischen Beistand zu leisten und der angegriffenen Partei zur Seite zu stehen.",
		ratified: func(other string) string {
			return fmt.Sprintf("Das Schutzbündnis mit dem Reich %s wurde besiegelt. "+
				"Unsere Truppen stehen bereit, unsere Verbündeten zu verteidigen. "+
				"Das offizielle Dokument wurde mit dem königlichen Siegel versehen.", other)
		},
		expired: func(other string) string {
			return fmt.Sprintf("Das Schutzbündnis mit dem Reich %s ist erloschen. "+
				"Unsere militärischen Verpflichtungen gegenüber diesem Reich sind hiermit aufgehoben. "+
				"Das Oberkommando erwartet Eure weiteren Instruktionen.", other)
		},
	},
	Alliance: {
		title:      "Allianzvertrag",
		limit:      2,
		salutation: "Eure Erhabenheit",
		clause: "Die unterzeichnenden Parteien verpflichten sich zu einer umfassenden Allianz, die militärische, " +
			"wirtschaftliche und diplomatische Zusammenarbeit umfasst. Keine Partei darf ohne Zustimmung " +
			"der anderen in Konflikte eintreten.",
		ratified: func(other string) string {
			return fmt.Sprintf("Die Allianz mit dem Reich %s wurde feierlich geschlossen. "+
				"Diese glorreiche Verbindung wird die Macht beider Reiche mehren. "+
				"Das Bündnisdokument wurde im Staatsarchiv verwahrt.", other)
		},
		expired: func(other string) string {
			return fmt.Sprintf("Die Allianz mit dem Reich %s ist nach Ablauf der vereinbarten Zeit erloschen. "+
				"Die Staatsräte ersuchen um eine Audienz, um die künftige Ausrichtung unserer "+
				"Außenpolitik zu besprechen.", other)
		},
	},
	Marriage: {
		title:      "Hochzeitspakt",
		limit:      1,
		salutation: "Eure Hoheit",
		clause: "Durch die Verbindung der Herrscherhäuser in einer Hochzeit verpflichten sich die Parteien zu " +
			"ewiger Freundschaft, gegenseitiger Unterstützung und der Förderung beider Reiche als vereinte Familie.",
		ratified: func(other string) string {
			return fmt.Sprintf("Der heilige Hochzeitspakt mit dem Reich %s wurde gesegnet. "+
				"Diese Verbindung zweier edler Häuser wird die Geschichte neu schreiben. "+
				"Die Eheurkunde wurde in beiden Königshäusern hinterlegt.", other)
		},
		expired: func(other string) string {
			return fmt.Sprintf("Der Hochzeitspakt mit dem Reich %s ist nach Ablauf seiner Laufzeit erloschen. "+
				"Die königlichen Berater empfehlen eine Erneuerung der Verbindung zur Sicherung "+
				"der dynastischen Interessen.", other)
		},
	},
	GrandAlliance: {
		title:      "Großallianzvertrag",
		limit:      1,
		salutation: "Erhabener",
		clause: "Die Parteien schließen sich in einer Großallianz zusammen, die alle Aspekte der " +
			"zwischenstaatlichen Beziehungen umfasst. Dies beinhaltet gemeinsame Verteidigung, " +
			"wirtschaftliche Integration und eine vereinte Außenpolitik.",
		ratified: func(other string) string {
			return fmt.Sprintf("Die Großallianz mit dem Reich %s wurde geschlossen. "+
				"Dieses mächtige Bündnis wird unsere Feinde erzittern lassen. "+
				"Das Dokument wurde mit den Siegeln beider Reiche versehen.", other)
		},
		expired: func(other string) string {
			return fmt.Sprintf("Die Großallianz mit dem Reich %s ist zu ihrem Ende gekommen. "+
				"Unsere militärischen Verbände stehen bereit, neue Befehle zu empfangen. "+
				"Der Kriegsrat erbittet eine Audienz zur Besprechung der strategischen Lage.", other)
		},
	},
}

func (k TreatyKind) spec() treatySpec {
	s, ok := treatySpecs[k]
	if !ok {
		panic(fmt.Sprintf("models: unknown treaty kind %d", int(k)))
	}
	return s
}

// Valid reports whether k is one of the declared kinds.
func (k TreatyKind) Valid() bool {
	_, ok := treatySpecs[k]
	return ok
}

func (k TreatyKind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("TreatyKind(%d)", int(k))
	}
	return k.spec().title
}

// Limit is the number of active treaties of this kind a single player may hold.
func (k TreatyKind) Limit() int { return k.spec().limit }

// Clause is the treaty text printed on the document.
func (k TreatyKind) Clause() string { return k.spec().clause }

func (k TreatyKind) address(own string) string {
	s := k.spec()
	if k == GrandAlliance {
		return fmt.Sprintf("%s Herrscher von %s,", s.salutation, own)
	}
	return fmt.Sprintf("%s, Herrscher von %s,", s.salutation, own)
}

// RatifiedMessage is the direct message sent to the ruler of own once the
// treaty with other has been accepted by both sides.
func (k TreatyKind) RatifiedMessage(own, other string) string {
	return fmt.Sprintf("✅ **%s ratifiziert**\n\n%s\n\n%s", k, k.address(own), k.spec().ratified(other))
}

// ExpiredMessage is the direct message sent to the ruler of own when the
// treaty with other runs out.
func (k TreatyKind) ExpiredMessage(own, other string) string {
	return fmt.Sprintf("📜 **%s ausgelaufen**\n\n%s\n\n%s", k, k.address(own), k.spec().expired(other))
}

// ParseTreatyKind matches a kind by its title, case-insensitively.
func ParseTreatyKind(s string) (TreatyKind, error) {
	s = strings.TrimSpace(s)
	for _, k := range TreatyKinds {
		if strings.EqualFold(k.String(), s) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown treaty kind %q", s)
}
