// mapper.go - Translation between ExpenseRecord and Notion page properties

package notion

import (
	"strings"
	"time"

	"github.com/jomei/notionapi"

	"github.com/ninjaforhire/mighty-gobbla/internal/processor"
)

// PaymentMeta is the Notion-facing breakdown of a payment tag like
// "Card-1234", "Check-101" or "Cash".
type PaymentMeta struct {
	Type     string // Payment Type select: "Credit Card", "Check", "Cash"
	Method   string // Payment Method select; empty means omit the property
	LastFour string // card suffix or check number; empty means omit
}

// SplitPayment decodes the compact payment tag produced by the field parser.
// Cards without a determined suffix keep the select but drop the last-four.
func SplitPayment(payment string) PaymentMeta {
	meta := PaymentMeta{Type: "Credit Card"}

	switch {
	case strings.Contains(payment, "Card"):
		if _, suffix, ok := strings.Cut(payment, "-"); ok && suffix != "XXXX" {
			meta.LastFour = suffix
		}
	case strings.Contains(payment, "PayPal"):
		// The schema's Payment Method options do not include PayPal; leave
		// the method unset and keep the card-backed type assumption.
	case strings.Contains(payment, "Check"):
		meta.Type = "Check"
		meta.Method = "Check"
		if _, number, ok := strings.Cut(payment, "-"); ok {
			meta.LastFour = number
		}
	case strings.Contains(payment, "Cash"):
		meta.Type = "Cash"
		meta.Method = "Cash"
	}

	return meta
}

// buildProperties maps a parsed record onto the expenses database schema.
// The filename serves as the entry title.
func buildProperties(record processor.ExpenseRecord, filename string) notionapi.Properties {
	day, err := time.Parse("2006-01-02", record.ISODate())
	if err != nil {
		day = time.Now()
	}
	start := notionapi.Date(day)

	props := notionapi.Properties{
		propTitle: notionapi.TitleProperty{
			Title: []notionapi.RichText{{Text: &notionapi.Text{Content: filename}}},
		},
		propVendor: notionapi.RichTextProperty{
			RichText: []notionapi.RichText{{Text: &notionapi.Text{Content: record.Store}}},
		},
		propDatePaid: notionapi.DateProperty{
			Date: &notionapi.DateObject{Start: &start},
		},
		propSubtotal: notionapi.NumberProperty{
			Number: record.Amount,
		},
	}

	meta := SplitPayment(record.Payment)
	props[propPaymentType] = notionapi.SelectProperty{
		Select: notionapi.Option{Name: meta.Type},
	}
	if meta.Method != "" {
		props[propPaymentMethod] = notionapi.SelectProperty{
			Select: notionapi.Option{Name: meta.Method},
		}
	}
	if meta.LastFour != "" {
		props[propLastFour] = notionapi.RichTextProperty{
			RichText: []notionapi.RichText{{Text: &notionapi.Text{Content: meta.LastFour}}},
		}
	}

	return props
}

// recordFromPage pulls the fields the duplicate detector compares against.
func recordFromPage(page notionapi.Page) processor.StoredRecord {
	record := processor.StoredRecord{URL: page.URL}

	if prop, ok := page.Properties[propTitle].(*notionapi.TitleProperty); ok {
		record.Title = plainText(prop.Title)
	}
	if prop, ok := page.Properties[propVendor].(*notionapi.RichTextProperty); ok {
		record.Vendor = plainText(prop.RichText)
	}
	if prop, ok := page.Properties[propSubtotal].(*notionapi.NumberProperty); ok {
		record.Subtotal = prop.Number
	}
	if prop, ok := page.Properties[propTaxAmount].(*notionapi.NumberProperty); ok {
		record.Tax = prop.Number
	}

	return record
}

func plainText(rich []notionapi.RichText) string {
	var sb strings.Builder
	for _, rt := range rich {
		sb.WriteString(rt.PlainText)
	}
	return sb.String()
}
