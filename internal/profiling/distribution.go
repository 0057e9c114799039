package profiling

import (
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"frogwalk/domain/core"
	"frogwalk/domain/walk"
)

// Summary holds the descriptive statistics of one sample
type Summary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Median float64 `json:"median"`
	Q25    float64 `json:"q25"`
	Q75    float64 `json:"q75"`
}

// Shape describes how far a sample is from a normal distribution
type Shape struct {
	Skewness float64 `json:"skewness"`
	Kurtosis float64 `json:"kurtosis"`
	IsNormal bool    `json:"is_normal"`
	NormalP  float64 `json:"normal_p"`
}

// Profile is the summary plus shape of one sample
type Profile struct {
	Summary Summary `json:"summary"`
	Shape   Shape   `json:"shape"`
}

// DisplacementProfile profiles final positions of a batch. Y is empty for 1D batches.
type DisplacementProfile struct {
	Dimension walk.Dimension `json:"dimension"`
	X         Profile        `json:"x"`
	Y         *Profile       `json:"y,omitempty"`
	Distance  Profile        `json:"distance"`
}

// DistributionAnalyzer handles distribution shape analysis
type DistributionAnalyzer struct{}

// NewDistributionAnalyzer creates a new distribution analyzer
func NewDistributionAnalyzer() *DistributionAnalyzer {
	return &DistributionAnalyzer{}
}

// AnalyzeFinalPositions profiles each axis and the Euclidean distance from the origin
func (da *DistributionAnalyzer) AnalyzeFinalPositions(d walk.Dimension, finals []walk.Position) (*DisplacementProfile, error) {
	if len(finals) == 0 {
		return nil, core.ErrEmptyBatch
	}

	xs := make([]float64, len(finals))
	ys := make([]float64, len(finals))
	dist := make([]float64, len(finals))
	for i, p := range finals {
		xs[i] = float64(p.X)
		ys[i] = float64(p.Y)
		dist[i] = math.Sqrt(float64(p.SquaredDistance()))
	}

	profile := &DisplacementProfile{Dimension: d}

	x, err := da.AnalyzeDistribution(xs)
	if err != nil {
		return nil, err
	}
	profile.X = x

	if d == walk.TwoDimensional {
		y, err := da.AnalyzeDistribution(ys)
		if err != nil {
			return nil, err
		}
		profile.Y = &y
	}

	distance, err := da.AnalyzeDistribution(dist)
	if err != nil {
		return nil, err
	}
	profile.Distance = distance

	return profile, nil
}

// AnalyzeDistribution computes summary statistics and shape of one sample
func (da *DistributionAnalyzer) AnalyzeDistribution(data []float64) (Profile, error) {
	profile := Profile{}

	mean, err := stats.Mean(data)
	if err != nil {
		return profile, err
	}

	stdDev, err := stats.StandardDeviation(data)
	if err != nil {
		return profile, err
	}

	min, err := stats.Min(data)
	if err != nil {
		return profile, err
	}

	max, err := stats.Max(data)
	if err != nil {
		return profile, err
	}

	median, err := stats.Median(data)
	if err != nil {
		return profile, err
	}

	// nearest rank is defined for any non-empty sample; interpolated percentiles
	// reject small ones
	q25, err := stats.PercentileNearestRank(data, 25)
	if err != nil {
		return profile, err
	}

	q75, err := stats.PercentileNearestRank(data, 75)
	if err != nil {
		return profile, err
	}

	skewness := calculateSkewness(data, stdDev)
	kurtosis := calculateKurtosis(data, stdDev)
	isNormal, normalP := testNormality(len(data), skewness, kurtosis)

	profile.Summary = Summary{
		Count:  len(data),
		Mean:   mean,
		StdDev: stdDev,
		Min:    min,
		Max:    max,
		Median: median,
		Q25:    q25,
		Q75:    q75,
	}
	profile.Shape = Shape{
		Skewness: skewness,
		Kurtosis: kurtosis,
		IsNormal: isNormal,
		NormalP:  normalP,
	}

	return profile, nil
}

// calculateSkewness is the adjusted Fisher-Pearson coefficient G1
func calculateSkewness(data []float64, stdDev float64) float64 {
	if len(data) < 3 || stdDev == 0 {
		return 0
	}
	return stat.Skew(data, nil)
}

// calculateKurtosis is the sample excess kurtosis G2 shifted by 3, so a normal
// sample scores about 3
func calculateKurtosis(data []float64, stdDev float64) float64 {
	if len(data) < 4 || stdDev == 0 {
		return 3
	}
	return stat.ExKurtosis(data, nil) + 3
}

// testNormality is a Jarque-Bera style check: the statistic is chi-square with two
// degrees of freedom under normality.
func testNormality(n int, skewness, kurtosis float64) (isNormal bool, pValue float64) {
	if n < 8 {
		return false, 1.0
	}

	excess := kurtosis - 3
	jb := float64(n) / 6 * (skewness*skewness + excess*excess/4)

	chiDist := distuv.ChiSquared{K: 2}
	pValue = 1 - chiDist.CDF(jb)

	return pValue > 0.05, pValue
}
