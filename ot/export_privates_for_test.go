package ot

// Test-only exports of the unexported search and growth helpers.

// Search moves, exported for decision-table tests.
const (
	MoveStop         = int(moveStop)
	MoveRaiseLambda  = int(moveRaiseLambda)
	MoveRaiseEpsilon = int(moveRaiseEpsilon)
	MoveLowerEpsilon = int(moveLowerEpsilon)
	MoveRescue       = int(moveRescue)
)

// Decide exposes decide.
func Decide(perplexity, fit, l0 float64, n int, o Options) int {
	return int(decide(perplexity, fit, l0, n, o))
}

// LearnGrowth exposes learnGrowth.
func LearnGrowth(mass, prior, prev []float64, dt, ratio float64) []float64 {
	return learnGrowth(mass, prior, prev, dt, ratio)
}

// Schedule exposes the annealing schedule.
func Schedule(eps0, eps float64, stages int) []float64 {
	return schedule(eps0, eps, stages)
}

// LogSumExp exposes logSumExp.
func LogSumExp(x []float64) float64 { return logSumExp(x) }
