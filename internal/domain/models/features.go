package models

// FeatureCount is the fixed width of every feature vector. Slot meanings are
// a cross-stage contract; changing an index's meaning is a breaking change.
const FeatureCount = 25

// Feature slot indices.
const (
	FeatReturn1  = 0 // 1-period return
	FeatReturn5  = 1 // 5-period return
	FeatReturn10 = 2 // 10-period return

	FeatMARatio5  = 3 // price / 5-period moving average
	FeatMARatio20 = 4 // price / 20-period moving average

	FeatVolatility5  = 5
	FeatVolatility20 = 6

	FeatVolumeRatio5  = 7
	FeatVolumeRatio20 = 8

	FeatRSI       = 9
	FeatMACD      = 10
	FeatBollinger = 11

	FeatSpread      = 12 // bid/ask spread proxy
	FeatPriceImpact = 13

	FeatHourOfDay = 14
	FeatDayOfWeek = 15

	FeatRelPerformance = 16 // 20-period return, percent
	FeatMomentum       = 17 // (5-period - 20-period return), percent

	// Slots 18..24 are reserved and zero-filled.
)

// FeatureVector is a fixed-width vector of engineered market features.
type FeatureVector [FeatureCount]float64

// Label is the 3-way training class derived from forward returns.
type Label int

const (
	LabelSell Label = 0
	LabelHold Label = 1
	LabelBuy  Label = 2
)

func (l Label) String() string {
	switch l {
	case LabelSell:
		return "SELL"
	case LabelBuy:
		return "BUY"
	default:
		return "HOLD"
	}
}

// TrainingSample pairs a feature vector with its forward-return label.
type TrainingSample struct {
	Features FeatureVector
	Label    Label
}

// Prediction is a model's raw output for one feature vector.
type Prediction struct {
	Class      Label    `json:"class"`
	Score      float64  `json:"score"` // weighted rule score in [-1, 1]
	Confidence float64  `json:"confidence"`
	Strength   float64  `json:"strength"`
	Reasons    []string `json:"reasons,omitempty"`
}
