// Package notify is the audit/notification sink. Delivery is fire-and-forget;
// a lost notification never fails an RFQ operation.
package notify

import (
	"github.com/rs/zerolog"

	"github.com/nurpe/procure-rfq/internal/model"
)

type LogNotifier struct {
	log zerolog.Logger
}

func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) RFQCreated(rfq model.RFQ) {
	n.log.Info().
		Str("rfq_number", rfq.RFQNumber).
		Str("site_code", rfq.SiteCode).
		Str("commodity_type", string(rfq.CommodityType)).
		Str("total_value", rfq.TotalValue.String()).
		Msg("rfq submitted")
}

func (n *LogNotifier) RFQDecided(rfq model.RFQ) {
	event := n.log.Info().
		Str("rfq_number", rfq.RFQNumber).
		Str("status", string(rfq.Status))
	if rfq.DecidedByUserID != nil {
		event = event.Str("decided_by", rfq.DecidedByUserID.String())
	}
	event.Msg("rfq decided")
}
