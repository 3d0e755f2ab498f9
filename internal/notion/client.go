// client.go - Notion expenses database as the expense record store

package notion

import (
	"context"
	"fmt"
	"time"

	"github.com/jomei/notionapi"
	"github.com/rs/zerolog"

	"github.com/ninjaforhire/mighty-gobbla/internal/processor"
)

// Property names in the expenses database schema.
const (
	propTitle         = "Expense Description"
	propVendor        = "Vendor/Supplier"
	propDatePaid      = "Date Paid"
	propSubtotal      = "Subtotal"
	propTaxAmount     = "Tax Amount"
	propPaymentType   = "Payment Type"
	propPaymentMethod = "Payment Method"
	propLastFour      = "Last 4 of Card"
)

// Config holds the Notion credentials.
type Config struct {
	Token      string
	DatabaseID string
}

// Client talks to one Notion expenses database. It implements
// processor.RecordStore.
type Client struct {
	api        *notionapi.Client
	databaseID notionapi.DatabaseID
	log        zerolog.Logger
}

// NewClient creates a Client for the configured database.
func NewClient(cfg Config, log zerolog.Logger) *Client {
	return &Client{
		api:        notionapi.NewClient(notionapi.Token(cfg.Token)),
		databaseID: notionapi.DatabaseID(cfg.DatabaseID),
		log:        log,
	}
}

// QueryByDate returns every expense whose Date Paid equals the given ISO
// date.
func (c *Client) QueryByDate(ctx context.Context, isoDate string) ([]processor.StoredRecord, error) {
	day, err := time.Parse("2006-01-02", isoDate)
	if err != nil {
		return nil, fmt.Errorf("invalid query date %q: %w", isoDate, err)
	}
	equals := notionapi.Date(day)

	resp, err := c.api.Database.Query(ctx, c.databaseID, &notionapi.DatabaseQueryRequest{
		Filter: &notionapi.PropertyFilter{
			Property: propDatePaid,
			Date: &notionapi.DateFilterCondition{
				Equals: &equals,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("querying expenses for %s: %w", isoDate, err)
	}

	records := make([]processor.StoredRecord, 0, len(resp.Results))
	for _, page := range resp.Results {
		records = append(records, recordFromPage(page))
	}
	return records, nil
}

// CreateRecord adds a new expense page and returns its URL.
func (c *Client) CreateRecord(ctx context.Context, record processor.ExpenseRecord, filename string) (string, error) {
	page, err := c.api.Page.Create(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: c.databaseID,
		},
		Properties: buildProperties(record, filename),
	})
	if err != nil {
		return "", fmt.Errorf("creating expense page: %w", err)
	}
	c.log.Info().Str("url", page.URL).Str("filename", filename).Msg("expense added to notion")
	return page.URL, nil
}
