package snapshotutils

import (
	"context"
	"fmt"

	"github.com/papercomputeco/masque/pkg/snapshot"
	"github.com/papercomputeco/masque/pkg/snapshot/inmemory"
	"github.com/papercomputeco/masque/pkg/snapshot/postgres"
	"github.com/papercomputeco/masque/pkg/snapshot/sqlite"
)

type NewDriverOpts struct {
	ProviderType string

	// Target is the SQLite database path or the PostgreSQL connection string.
	Target string
}

func NewDriver(ctx context.Context, o *NewDriverOpts) (snapshot.Driver, error) {
	switch o.ProviderType {
	case "", "memory":
		return inmemory.NewDriver(), nil
	case "sqlite":
		if o.Target == "" {
			return nil, fmt.Errorf("sqlite snapshot provider requires a target path")
		}
		return sqlite.NewDriver(o.Target)
	case "postgres":
		if o.Target == "" {
			return nil, fmt.Errorf("postgres snapshot provider requires a connection string")
		}
		return postgres.NewDriver(ctx, o.Target)
	default:
		return nil, fmt.Errorf("unsupported snapshot provider: %s", o.ProviderType)
	}
}
