package models

// MarketRegime is the coarse market-state classification used to
// contextualize signals.
type MarketRegime string

const (
	RegimeBull           MarketRegime = "BULL"
	RegimeBear           MarketRegime = "BEAR"
	RegimeSideways       MarketRegime = "SIDEWAYS"
	RegimeHighVolatility MarketRegime = "HIGH_VOLATILITY"
	RegimeLowVolatility  MarketRegime = "LOW_VOLATILITY"
)

// IsValidRegime reports whether s names a known regime.
func IsValidRegime(s string) bool {
	switch MarketRegime(s) {
	case RegimeBull, RegimeBear, RegimeSideways, RegimeHighVolatility, RegimeLowVolatility:
		return true
	default:
		return false
	}
}

type VolatilityLevel string

const (
	VolLevelVeryLow  VolatilityLevel = "VERY_LOW"
	VolLevelLow      VolatilityLevel = "LOW"
	VolLevelMedium   VolatilityLevel = "MEDIUM"
	VolLevelHigh     VolatilityLevel = "HIGH"
	VolLevelVeryHigh VolatilityLevel = "VERY_HIGH"
)

type LiquidityCondition string

const (
	LiquidityHigh     LiquidityCondition = "HIGH_LIQUIDITY"
	LiquidityNormal   LiquidityCondition = "NORMAL_LIQUIDITY"
	LiquidityLow      LiquidityCondition = "LOW_LIQUIDITY"
	LiquidityStressed LiquidityCondition = "STRESSED_LIQUIDITY"
)

// MarketCondition is derived per request and not persisted.
type MarketCondition struct {
	Regime          MarketRegime       `json:"regime"`
	Volatility      VolatilityLevel    `json:"volatility"`
	Liquidity       LiquidityCondition `json:"liquidity"`
	Sentiment       float64            `json:"sentiment"` // [-1, 1]
	VIXLevel        float64            `json:"vix_level"`
	SectorStrengths map[string]float64 `json:"sector_strengths,omitempty"`
}

type VolatilityRegime string

const (
	VolRegimeLow      VolatilityRegime = "LOW"
	VolRegimeModerate VolatilityRegime = "MODERATE"
	VolRegimeHigh     VolatilityRegime = "HIGH"
)

type VolatilityTrend string

const (
	VolTrendRising  VolatilityTrend = "RISING"
	VolTrendStable  VolatilityTrend = "STABLE"
	VolTrendFalling VolatilityTrend = "FALLING"
)

type VolatilityAnalysis struct {
	Historical float64          `json:"historical"`
	Realized   float64          `json:"realized"`
	Clustering float64          `json:"clustering"`
	Regime     VolatilityRegime `json:"regime"`
	Trend      VolatilityTrend  `json:"trend"`
}
