package domain

// ValidationReason explica por qué una oportunidad pasó o no el gate de ejecución.
type ValidationReason string

const (
	ReasonOK                ValidationReason = "ok"
	ReasonProfitBelowMargin ValidationReason = "profit_below_margin"
	ReasonLiquidityBelowMin ValidationReason = "liquidity_below_min"
)

// ValidationResult es el veredicto del gate. Un fallo aquí es un resultado de
// negocio, no un error: la oportunidad simplemente no se ejecuta.
type ValidationResult struct {
	Passed bool
	Reason ValidationReason
}

// ValidateExecution es el gate puro de umbrales: pasa si la ganancia estimada
// alcanza el margen mínimo Y la liquidez mínima por pata alcanza el umbral.
// Sin I/O ni efectos secundarios.
func ValidateExecution(profitUSD, minLegLiquidityUSD, minMarginUSD, minLiquidityUSD float64) ValidationResult {
	if profitUSD < minMarginUSD {
		return ValidationResult{Passed: false, Reason: ReasonProfitBelowMargin}
	}
	if minLegLiquidityUSD < minLiquidityUSD {
		return ValidationResult{Passed: false, Reason: ReasonLiquidityBelowMin}
	}
	return ValidationResult{Passed: true, Reason: ReasonOK}
}
