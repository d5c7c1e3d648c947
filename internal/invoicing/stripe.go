package invoicing

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/planbar-app/planbar/internal/billing"
	"github.com/planbar-app/planbar/internal/model"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/invoice"
	"github.com/stripe/stripe-go/v79/invoiceitem"
)

// Service pushes a month's client rollups to Stripe as draft invoices. The
// drafts are reviewed and sent from the Stripe dashboard; nothing here
// auto-advances.
type Service struct {
	logger   *slog.Logger
	key      string
	currency string
}

type Result struct {
	ClientName string `json:"client_name"`
	InvoiceID  string `json:"invoice_id"`
}

func New(logger *slog.Logger, stripeSecretKey, currency string) *Service {
	if strings.TrimSpace(currency) == "" {
		currency = string(stripe.CurrencyEUR)
	}
	return &Service{
		logger:   logger,
		key:      strings.TrimSpace(stripeSecretKey),
		currency: currency,
	}
}

func (s *Service) Enabled() bool {
	return s.key != ""
}

// PushMonth creates one draft invoice per client with a non-zero monthly
// amount. Clients without a Stripe customer id are skipped and logged; the
// rollup itself is still reported to the caller through the metrics map.
func (s *Service) PushMonth(month time.Time, metrics map[string]billing.ClientMetric, clients []model.Client) ([]Result, error) {
	if !s.Enabled() {
		return nil, fmt.Errorf("invoicing: stripe key not configured")
	}
	stripe.Key = s.key

	customerByName := make(map[string]string, len(clients))
	for _, c := range clients {
		customerByName[c.Name] = c.StripeCustomerID
	}

	period := month.Format("January 2006")
	var results []Result
	for name, m := range metrics {
		if m.TotalAmount <= 0 {
			continue
		}
		customerID := customerByName[name]
		if customerID == "" {
			s.logger.Warn("client has no stripe customer id; skipping invoice", "client", name)
			continue
		}

		amountCents := int64(math.Round(m.TotalAmount * 100))
		_, err := invoiceitem.New(&stripe.InvoiceItemParams{
			Customer:    stripe.String(customerID),
			Currency:    stripe.String(s.currency),
			Amount:      stripe.Int64(amountCents),
			Description: stripe.String(fmt.Sprintf("Studio time %s: %.1fh at %.2f/h", period, m.TotalHours, m.PricePerHour)),
		})
		if err != nil {
			return results, fmt.Errorf("invoicing: create invoice item for %s: %w", name, err)
		}

		inv, err := invoice.New(&stripe.InvoiceParams{
			Customer:                    stripe.String(customerID),
			AutoAdvance:                 stripe.Bool(false),
			PendingInvoiceItemsBehavior: stripe.String("include"),
			Description:                 stripe.String("Planbar " + period),
		})
		if err != nil {
			return results, fmt.Errorf("invoicing: create invoice for %s: %w", name, err)
		}

		s.logger.Info("draft invoice created",
			"client", name,
			"invoice_id", inv.ID,
			"amount_cents", amountCents,
		)
		results = append(results, Result{ClientName: name, InvoiceID: inv.ID})
	}
	return results, nil
}
