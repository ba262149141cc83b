package negotiation

import (
	"fmt"
	"strings"

	"github.com/gustav-de-Mando/KuratorV1/internal/chat"
	"github.com/gustav-de-Mando/KuratorV1/internal/models"
)

const timeoutReason = "Zeitüberschreitung: Es wurde nicht rechtzeitig geantwortet."

const dateLayout = "02.01.2006"

func own(n *models.Negotiation, r models.Role) (self, other models.Party) {
	if r == models.RoleInitiator {
		return n.Initiator, n.Counterparty
	}
	return n.Counterparty, n.Initiator
}

// termsEmbed summarises the negotiation for both proposal messages.
func termsEmbed(n *models.Negotiation) *chat.Embed {
	e := &chat.Embed{
		Title:  "📜 " + n.Title(),
		Color:  chat.ColorBlue,
		Footer: "Verhandlungs-ID: " + n.ID,
	}
	e.AddField("Von", fmt.Sprintf("%s (%s)", n.Initiator.Nation, n.Initiator.Mention()), true)
	e.AddField("An", fmt.Sprintf("%s (%s)", n.Counterparty.Nation, n.Counterparty.Mention()), true)

	switch {
	case n.Trade != nil:
		e.AddField("Angebot", n.Trade.Offer.String(), false)
		e.AddField("Gegenleistung", n.Trade.Request.String(), false)
	case n.Treaty != nil:
		e.Description = n.Treaty.Type.Clause()
		e.AddField("Laufzeit", fmt.Sprintf("%d Tage", n.Treaty.DurationDays), true)
		e.AddField("Läuft ab", n.Treaty.ExpiresAt.Format(dateLayout), true)
	}

	e.AddField("Vertragsbruch-Klausel", n.Clause(), false)
	if strings.TrimSpace(n.Notes) != "" {
		e.AddField("Anmerkungen", n.Notes, false)
	}
	return e
}

func proposalMessage(n *models.Negotiation, r models.Role) chat.Message {
	kind := n.Title()
	var content string
	if r == models.RoleInitiator {
		content = fmt.Sprintf("Bitte antworte mit 'ja' oder 'nein [Grund]', um den folgenden %s zu bestätigen:", kind)
	} else {
		content = fmt.Sprintf("Du hast einen neuen Vorschlag (%s) von %s aus %s erhalten. "+
			"Bitte antworte mit 'ja' oder 'nein [Grund]':", kind, n.Initiator.DisplayName, n.Initiator.Nation)
	}
	return chat.Message{Content: content, Embed: termsEmbed(n)}
}

func timeoutText(n *models.Negotiation) string {
	return fmt.Sprintf("Zeit abgelaufen. Der %s wurde abgebrochen.", n.Title())
}

func deliveryRefusedText(n *models.Negotiation) string {
	return fmt.Sprintf("%s hat DMs deaktiviert. Der %s konnte nicht zugestellt werden und wurde abgebrochen.",
		n.Counterparty.DisplayName, n.Title())
}

func awaitingPartnerText(n *models.Negotiation) string {
	return fmt.Sprintf("Deine Zustimmung wurde vermerkt. Der Vorschlag wurde an %s (%s) gesandt.",
		n.Counterparty.DisplayName, n.Counterparty.Nation)
}

func sinkWarningText(n *models.Negotiation) string {
	return fmt.Sprintf("⚠️ Der %s ist gültig, konnte aber nicht im Handelsbuch eingetragen werden. "+
		"Bitte informiere die Spielleitung.", n.Title())
}

func rejectionReason(n *models.Negotiation, by models.Role, given string) string {
	if strings.TrimSpace(given) != "" {
		return given
	}
	if by == models.RoleInitiator {
		return fmt.Sprintf("Der %s wurde vom Initiator abgelehnt.", n.Title())
	}
	return fmt.Sprintf("Der %s wurde vom Partner abgelehnt.", n.Title())
}

func rejectionMessage(n *models.Negotiation, r models.Role, reason string) chat.Message {
	self, other := own(n, r)

	var b strings.Builder
	if n.Kind == models.KindTreaty {
		b.WriteString("❌ **Vertragsverhandlungen gescheitert**\n\n")
		fmt.Fprintf(&b, "Eure Exzellenz, Herrscher von %s,\n\n", self.Nation)
		fmt.Fprintf(&b, "Mit Bedauern müssen wir Euch mitteilen, dass die Verhandlungen über einen %s mit dem Reich %s "+
			"nicht den gewünschten Erfolg gebracht haben.", n.Title(), other.Nation)
	} else {
		b.WriteString("❌ **Handelsverhandlungen gescheitert**\n\n")
		fmt.Fprintf(&b, "Eure Exzellenz, Herrscher von %s,\n\n", self.Nation)
		fmt.Fprintf(&b, "Mit Bedauern müssen wir Euch mitteilen, dass die Handelsverhandlungen mit dem Reich %s "+
			"nicht den gewünschten Erfolg gebracht haben.", other.Nation)
	}
	b.WriteString(" Die diplomatischen Gesandten sind ohne Einigung zurückgekehrt.\n\n")
	fmt.Fprintf(&b, "Grund: %s\n\n", reason)
	b.WriteString("Die königlichen Berater empfehlen, zu einem späteren Zeitpunkt neue Verhandlungen aufzunehmen.")
	return chat.Text(b.String())
}

func rejectionAnnouncement(n *models.Negotiation) chat.Message {
	return chat.Text(fmt.Sprintf("📜 **%s abgelehnt** 📜\n\n"+
		"Die Verhandlungen zwischen den Reichen %s (%s) und %s (%s) wurden ohne Einigung beendet. "+
		"Die Diplomaten beider Länder haben sich zurückgezogen.",
		n.Title(), n.Initiator.Nation, n.Initiator.Mention(), n.Counterparty.Nation, n.Counterparty.Mention()))
}

func tradeRatified(self, other string) string {
	return fmt.Sprintf("✅ **Handelsvertrag ratifiziert**\n\n"+
		"Eure Exzellenz, Herrscher von %s,\n\n"+
		"Mit großer Freude verkünden wir, dass der Handelsvertrag mit dem Reich %s von beiden Parteien "+
		"ratifiziert wurde. Die vereinbarten Handelswege werden umgehend geöffnet, und der Austausch von "+
		"Waren wird unverzüglich beginnen.\n\n"+
		"Eine formelle Kopie des Dokuments wurde in Euren königlichen Handelsarchiven hinterlegt.", self, other)
}

// acceptedMessage is the per-party notice. Without a document it falls
// back to a short plain-text confirmation.
func acceptedMessage(n *models.Negotiation, r models.Role, file *chat.File) chat.Message {
	if file == nil {
		return chat.Text(fmt.Sprintf("✅ Der %s wurde von beiden Parteien angenommen!", n.Title()))
	}

	self, other := own(n, r)
	var text string
	if n.Kind == models.KindTreaty && n.Treaty != nil {
		text = n.Treaty.Type.RatifiedMessage(self.Nation, other.Nation)
	} else {
		text = tradeRatified(self.Nation, other.Nation)
	}
	return chat.Message{Content: text, Files: []chat.File{*file}}
}

func acceptedAnnouncement(n *models.Negotiation, file *chat.File, links []string) chat.Message {
	if file == nil {
		msg := chat.Message{
			Content: fmt.Sprintf("🤝 Neuer %s zwischen %s (%s) und %s (%s)!",
				n.Title(), n.Initiator.Nation, n.Initiator.Mention(), n.Counterparty.Nation, n.Counterparty.Mention()),
			Embed: termsEmbed(n),
		}
		msg.Embed.Color = chat.ColorGreen
		return msg
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📜 **%s ratifiziert** 📜\n\n", n.Title())
	fmt.Fprintf(&b, "Die ehrenwerten Reiche %s (%s) und %s (%s) haben einen feierlichen %s geschlossen.",
		n.Initiator.Nation, n.Initiator.Mention(), n.Counterparty.Nation, n.Counterparty.Mention(), n.Title())
	if n.Kind == models.KindTrade {
		b.WriteString(" Möge dieser Austausch von Waren den Wohlstand beider Reiche fördern.")
	} else if n.Treaty != nil {
		fmt.Fprintf(&b, " Der Vertrag läuft bis zum %s.", n.Treaty.ExpiresAt.Format(dateLayout))
	}
	for _, l := range links {
		b.WriteString("\n")
		b.WriteString(l)
	}
	return chat.Message{Content: b.String(), Files: []chat.File{*file}}
}
