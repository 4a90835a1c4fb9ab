package graph

const (
	defaultBatchSize      = 10000
	defaultParallelWrites = 4
)

// GraphClient runs the import phases: reference extraction, node creation
// and relationship linking.
//
// A GraphClient should be created using NewGraphClient.
type GraphClient struct {
	batchSize      int
	parallelWrites int
}

// NewGraphClientParams defines the configuration parameters for creating
// a new GraphClient.
//
// BatchSize is the number of nodes or relationships handed to the storage
// engine per call. ParallelWrites bounds the relationship batches in flight.
type NewGraphClientParams struct {
	BatchSize      int
	ParallelWrites int
}

// NewGraphClient creates and returns a new GraphClient configured with
// the provided parameters. Non-positive values select the defaults.
//
// Example:
//
//	client, err := graph.NewGraphClient(graph.NewGraphClientParams{
//		BatchSize:      5000,
//		ParallelWrites: 8,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
func NewGraphClient(params NewGraphClientParams) (*GraphClient, error) {
	batchSize := params.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	parallelWrites := params.ParallelWrites
	if parallelWrites <= 0 {
		parallelWrites = defaultParallelWrites
	}
	return &GraphClient{
		batchSize:      batchSize,
		parallelWrites: parallelWrites,
	}, nil
}
