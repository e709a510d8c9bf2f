package notification

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/monartisan/backend/internal/domain/client"
	"github.com/monartisan/backend/internal/domain/identity"
	"github.com/monartisan/backend/internal/domain/intervention"
	"github.com/monartisan/backend/internal/domain/notification"
	"github.com/shopspring/decimal"
)

// Messages are written in French for clients and artisans in France.

type message struct {
	subject string
	body    string
}

var paris = loadParis()

func loadParis() *time.Location {
	loc, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		return time.UTC
	}
	return loc
}

func quoteSent(a *identity.Artisan, c *client.Client, number string, total decimal.Decimal, link string, channel notification.Channel) message {
	if channel == notification.ChannelSMS {
		return message{body: strings.TrimSpace(fmt.Sprintf("%s : devis %s de %s TTC. %s", a.Name, number, formatEUR(total), link))}
	}
	body := fmt.Sprintf("Bonjour %s,\n\n%s vous a envoyé le devis %s d'un montant de %s TTC.",
		c.DisplayName(), a.Name, number, formatEUR(total))
	if link != "" {
		body += "\nConsultez-le et donnez votre réponse sur votre espace client : " + link
	}
	return message{
		subject: fmt.Sprintf("Devis %s de %s", number, a.Name),
		body:    body + signature(a),
	}
}

func invoiceIssued(a *identity.Artisan, c *client.Client, number string, total decimal.Decimal, due time.Time, link string, channel notification.Channel) message {
	if channel == notification.ChannelSMS {
		return message{body: strings.TrimSpace(fmt.Sprintf("%s : facture %s de %s TTC, échéance %s. %s",
			a.Name, number, formatEUR(total), due.In(paris).Format("02/01/2006"), link))}
	}
	body := fmt.Sprintf("Bonjour %s,\n\nVoici la facture %s d'un montant de %s TTC, à régler avant le %s.",
		c.DisplayName(), number, formatEUR(total), due.In(paris).Format("02/01/2006"))
	if link != "" {
		body += "\nTéléchargez-la sur votre espace client : " + link
	}
	return message{
		subject: fmt.Sprintf("Facture %s de %s", number, a.Name),
		body:    body + signature(a),
	}
}

func interventionScheduled(a *identity.Artisan, c *client.Client, title string, start time.Time, channel notification.Channel) message {
	when := formatSlot(start)
	if channel == notification.ChannelSMS {
		return message{body: fmt.Sprintf("%s : intervention \"%s\" prévue le %s.", a.Name, title, when)}
	}
	return message{
		subject: "Confirmation de votre rendez-vous",
		body: fmt.Sprintf("Bonjour %s,\n\nNous confirmons l'intervention \"%s\" le %s.",
			c.DisplayName(), title, when) + signature(a),
	}
}

func interventionReminder(a *identity.Artisan, i *intervention.Intervention, channel notification.Channel) message {
	when := formatSlot(i.ScheduledStart)
	if channel == notification.ChannelSMS {
		return message{body: fmt.Sprintf("Rappel %s : intervention \"%s\" le %s.", a.Name, i.Title, when)}
	}
	body := fmt.Sprintf("Bonjour,\n\nNous vous rappelons l'intervention \"%s\" prévue le %s.", i.Title, when)
	if !i.Address.IsEmpty() {
		body += "\nAdresse : " + i.Address.String()
	}
	return message{
		subject: "Rappel : intervention " + when,
		body:    body + signature(a),
	}
}

func paymentReceived(c *client.Client, number string, amount, outstanding decimal.Decimal, fullyPaid bool) message {
	body := fmt.Sprintf("Paiement de %s reçu de %s sur la facture %s.", formatEUR(amount), c.DisplayName(), number)
	if fullyPaid {
		body += " La facture est soldée."
	} else {
		body += fmt.Sprintf(" Reste dû : %s.", formatEUR(outstanding))
	}
	return message{subject: "Paiement reçu " + number, body: body}
}

func reviewSubmitted(c *client.Client, rating int) message {
	return message{
		subject: "Nouvel avis client",
		body:    fmt.Sprintf("%s a laissé un avis %d/5. Il est en attente de modération.", c.DisplayName(), rating),
	}
}

func signature(a *identity.Artisan) string {
	s := "\n\n" + a.Name
	if a.Phone != "" {
		s += "\n" + a.Phone
	}
	return s
}

func formatSlot(t time.Time) string {
	return t.In(paris).Format("02/01/2006 à 15h04")
}

// formatEUR renders an amount the French way: 1 234,50 €
func formatEUR(d decimal.Decimal) string {
	s := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteRune(' ')
		}
		b.WriteRune(r)
	}
	return sign + b.String() + "," + frac + " €"
}
