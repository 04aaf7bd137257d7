package form

// Option is one selectable value of a discrete field.
type Option struct {
	Label  string
	Amount PositiveNumber
}

// Growth buckets as offered in the select; each bucket sends a representative
// percentage as its amount.
var GrowthRateOptions = []Option{
	{Label: "<15%", Amount: 10},
	{Label: "15-50%", Amount: 30},
	{Label: "50-100%", Amount: 75},
	{Label: "100-150%", Amount: 125},
	{Label: ">150%", Amount: 150},
}

// RunwayOptions are expressed in months.
var RunwayOptions = []Option{
	{Label: "1-3 months", Amount: 2},
	{Label: "3-6 months", Amount: 4},
	{Label: "6-12 months", Amount: 9},
	{Label: "12-18 months", Amount: 15},
	{Label: ">18 months", Amount: 18},
}

// TermLengthMarks are the slider stops (min 6, max 15, step 3).
var TermLengthMarks = []int{6, 9, 12, 15}

// GracePeriodOptions are the radio values in months. Zero is a valid choice
// even though it is not a PositiveNumber.
var GracePeriodOptions = []int{0, 3, 6}
