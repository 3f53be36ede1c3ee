package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/alejandrodnm/arbot/internal/domain"
)

const (
	gammaEventsPath = "/events"

	// Gamma pagina de a 100 como máximo.
	gammaPageMax = 100
)

// gammaEvent es la forma cruda de un evento en Gamma.
type gammaEvent struct {
	ID      string        `json:"id"`
	Title   string        `json:"title"`
	Markets []gammaMarket `json:"markets"`
}

// gammaMarket es la forma cruda de un mercado. Gamma codifica outcomes y
// precios como strings JSON anidados ("[\"0.48\", \"0.52\"]").
type gammaMarket struct {
	ConditionID   string  `json:"conditionId"`
	Question      string  `json:"question"`
	Slug          string  `json:"slug"`
	OutcomePrices string  `json:"outcomePrices"`
	LiquidityNum  float64 `json:"liquidityNum,omitempty"`
	Liquidity     string  `json:"liquidity,omitempty"`
	Active        bool    `json:"active"`
	Closed        bool    `json:"closed"`
}

// FetchEvents devuelve hasta maxEvents eventos abiertos con al menos dos
// mercados binarios activos cada uno. Los mercados malformados se saltan.
func (c *Client) FetchEvents(ctx context.Context, maxEvents int) ([]domain.Event, error) {
	if maxEvents <= 0 {
		maxEvents = gammaPageMax
	}
	limit := maxEvents
	if limit > gammaPageMax {
		limit = gammaPageMax
	}

	var out []domain.Event
	for offset := 0; len(out) < maxEvents; offset += limit {
		url := fmt.Sprintf("%s%s?closed=false&active=true&limit=%d&offset=%d",
			c.gammaBase, gammaEventsPath, limit, offset)

		var page []gammaEvent
		if err := c.get(ctx, c.gammaLimiter, url, &page); err != nil {
			return nil, fmt.Errorf("polymarket.FetchEvents: %w", err)
		}
		if len(page) == 0 {
			break
		}

		for _, ge := range page {
			event, ok := mapEvent(ge)
			if !ok {
				continue
			}
			out = append(out, event)
			if len(out) == maxEvents {
				break
			}
		}
	}

	slog.Debug("events fetched", "events", len(out))
	return out, nil
}

// mapEvent convierte un evento crudo; eventos con menos de dos mercados
// utilizables no sirven para buscar pares.
func mapEvent(ge gammaEvent) (domain.Event, bool) {
	event := domain.Event{ID: ge.ID, Title: ge.Title}
	for _, gm := range ge.Markets {
		m, ok := mapMarket(gm)
		if !ok {
			continue
		}
		event.Markets = append(event.Markets, m)
	}
	if len(event.Markets) < 2 {
		return domain.Event{}, false
	}
	return event, true
}

func mapMarket(gm gammaMarket) (domain.Market, bool) {
	if !gm.Active || gm.Closed || gm.ConditionID == "" {
		return domain.Market{}, false
	}

	// outcomePrices viene como JSON string anidado: "[\"0.48\", \"0.52\"]".
	var rawPrices []string
	if err := json.Unmarshal([]byte(gm.OutcomePrices), &rawPrices); err != nil || len(rawPrices) != 2 {
		slog.Debug("market prices unparseable, skipping", "condition_id", gm.ConditionID)
		return domain.Market{}, false
	}
	yes, err1 := strconv.ParseFloat(rawPrices[0], 64)
	no, err2 := strconv.ParseFloat(rawPrices[1], 64)
	if err1 != nil || err2 != nil || yes < 0 || yes > 1 || no < 0 || no > 1 {
		return domain.Market{}, false
	}

	liq := gm.LiquidityNum
	if liq == 0 && gm.Liquidity != "" {
		liq, _ = strconv.ParseFloat(gm.Liquidity, 64)
	}

	return domain.Market{
		ConditionID:  gm.ConditionID,
		Question:     gm.Question,
		Slug:         gm.Slug,
		PriceYes:     yes,
		PriceNo:      no,
		LiquidityUSD: liq,
	}, true
}
