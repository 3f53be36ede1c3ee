package domain

// Market representa un mercado de predicción binario en Polymarket.
type Market struct {
	ConditionID  string
	Question     string
	Slug         string
	PriceYes     float64 // precio del outcome afirmativo en [0,1]
	PriceNo      float64 // precio del outcome negativo en [0,1]
	LiquidityUSD float64 // liquidez disponible en USD
}

// MarketPair son dos mercados relacionados bajo el mismo evento lógico.
// El pipeline evalúa cada par en busca de arbitraje cross-market.
type MarketPair struct {
	EventID string
	A       Market
	B       Market
}

// Prices devuelve el vector de precios por átomo (mercado, outcome) en el
// orden canónico: A-afirmativo, A-negativo, B-afirmativo, B-negativo.
func (p MarketPair) Prices() []float64 {
	return []float64{p.A.PriceYes, p.A.PriceNo, p.B.PriceYes, p.B.PriceNo}
}

// MinLiquidity devuelve la liquidez mínima entre las dos patas del par.
func (p MarketPair) MinLiquidity() float64 {
	if p.A.LiquidityUSD < p.B.LiquidityUSD {
		return p.A.LiquidityUSD
	}
	return p.B.LiquidityUSD
}

// Event agrupa los mercados que comparten un evento lógico.
// Todos los pares no ordenados dentro de un evento son candidatos.
type Event struct {
	ID      string
	Title   string
	Markets []Market
}

// Pairs devuelve todos los pares no ordenados de mercados del evento.
func (e Event) Pairs() []MarketPair {
	var out []MarketPair
	for i := 0; i < len(e.Markets); i++ {
		for j := i + 1; j < len(e.Markets); j++ {
			out = append(out, MarketPair{EventID: e.ID, A: e.Markets[i], B: e.Markets[j]})
		}
	}
	return out
}
