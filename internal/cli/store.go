package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kindredlab/kintree/pkg/gen"
)

// storeFlags selects the relationship store a command reads from. Commands
// take a people.json file as positional argument or a MongoDB collection via
// flags; exactly one source must be given.
type storeFlags struct {
	mongoURI        string
	mongoDatabase   string
	mongoCollection string
}

// register adds the store selection flags to cmd.
func (f *storeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.mongoURI, "mongo-uri", "", "MongoDB connection URI (instead of a people file)")
	cmd.Flags().StringVar(&f.mongoDatabase, "mongo-db", "kintree", "MongoDB database name")
	cmd.Flags().StringVar(&f.mongoCollection, "mongo-collection", "people", "MongoDB collection of person documents")
}

// open resolves the flags into a store. The returned close function is always
// safe to call; for file stores it is a no-op.
func (f *storeFlags) open(ctx context.Context, peopleFile string) (gen.Store, func(), error) {
	if f.mongoURI != "" {
		if peopleFile != "" {
			return nil, nil, fmt.Errorf("give either a people file or --mongo-uri, not both")
		}
		store, err := gen.NewMongoStore(ctx, gen.MongoConfig{
			URI:        f.mongoURI,
			Database:   f.mongoDatabase,
			Collection: f.mongoCollection,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("open mongodb store: %w", err)
		}
		return store, func() { _ = store.Close(context.Background()) }, nil
	}

	if peopleFile == "" {
		return nil, nil, fmt.Errorf("a people file or --mongo-uri is required")
	}
	store, err := gen.ReadPeopleFile(peopleFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load people %s: %w", peopleFile, err)
	}
	return store, func() {}, nil
}
