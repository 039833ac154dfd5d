package model

type BomTreeNode struct {
	Part               PartSummary   `json:"part"`
	QuantityFromParent *int          `json:"quantityFromParent,omitempty"`
	HasChildren        bool          `json:"hasChildren"`
	Children           []BomTreeNode `json:"children"`
}

type BomTreeResponse struct {
	Root           BomTreeNode `json:"root"`
	RequestedDepth int         `json:"requestedDepth"`
	NodeLimit      int         `json:"nodeLimit"`
	NodeCount      int         `json:"nodeCount"`
}

// AllModels lists the tables managed by AutoMigrate, parents first.
func AllModels() []any {
	return []any{&Part{}, &BomLink{}, &AuditLog{}, &Sequence{}}
}
