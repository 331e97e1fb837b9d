package models

// Requests for the signals HTTP endpoints. Defined in domain for consistency
// and reuse.

type BatchSignalsRequest struct {
	Symbols []string `json:"symbols" validate:"required,min=1,max=20,dive,required,max=12"`
}

type FilterSignalsRequest struct {
	Signals []TradingSignal `json:"signals" validate:"required,min=1"`
	Regime  string          `json:"regime" validate:"required,oneof=BULL BEAR SIDEWAYS HIGH_VOLATILITY LOW_VOLATILITY"`
}

type RecommendationRequest struct {
	Regime string `json:"regime" query:"regime" validate:"required,oneof=BULL BEAR SIDEWAYS HIGH_VOLATILITY LOW_VOLATILITY"`
}
