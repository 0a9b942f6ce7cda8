package bench

// Registry returns the standard benchmark set, one entry per benchmark and
// size class.
func Registry() []BenchmarkDescription {
	descs := []BenchmarkDescription{}

	for _, size := range StandardSizes {
		descs = append(descs, &ConstructionBenchmarkDescription{Size: size})
	}

	for _, size := range StandardSizes {
		descs = append(descs, &SubmissionBenchmarkDescription{Size: size})
	}

	return descs
}
