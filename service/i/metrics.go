package i

// Recorder receives simulation measurements.
type Recorder interface {
	Ticks(n int)
	Generation(maxFitness, averageFitness float64, arrived int)
	Solved()
}
