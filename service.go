package area

import "context"

// Service defines the contract of the area backend the editor saves to.
type Service interface {
	GetArea(ctx context.Context, id string) (*AreaRecord, error)
	CreateAreaWithActions(ctx context.Context, req *SaveRequest) (*AreaRecord, error)
	UpdateAreaComplete(ctx context.Context, id string, req *SaveRequest) (*AreaRecord, error)
}

// Label is the display metadata of a catalog entry.
type Label struct {
	Name string
	Icon string
}

// Catalog resolves service and definition references into display labels.
type Catalog interface {
	Lookup(serviceKey, definitionID string) (Label, bool)
}
